package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pintscoredd/zerodte/internal/analytics"
	"github.com/pintscoredd/zerodte/internal/config"
	"github.com/pintscoredd/zerodte/internal/feed"
	"github.com/pintscoredd/zerodte/internal/journal"
	"github.com/pintscoredd/zerodte/internal/session"
)

// Index underlyings quote cash-settled european options.
var indexTickers = map[string]bool{
	"SPX": true,
	"XSP": true,
	"NDX": true,
	"RUT": true,
}

type Server struct {
	store     *Store
	refresher *Refresher
	journal   *journal.Journal
	session   *session.Session
	config    *config.ServerConfig
	tickers   []string
	logger    *zap.Logger
}

// NewServer wires the handlers. refresher may be nil, which disables
// on-demand refresh.
func NewServer(store *Store, refresher *Refresher, jnl *journal.Journal, sess *session.Session, cfg *config.ServerConfig, tickers []string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:     store,
		refresher: refresher,
		journal:   jnl,
		session:   sess,
		config:    cfg,
		tickers:   tickers,
		logger:    logger,
	}
}

type healthResponse struct {
	Status      string     `json:"status"`
	MarketOpen  bool       `json:"market_open"`
	Tickers     []string   `json:"tickers"`
	RefreshedAt *time.Time `json:"refreshed_at,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:     "ok",
		MarketOpen: s.session.IsOpen(time.Now()),
		Tickers:    s.tickers,
	}
	if at := s.store.RefreshedAt(); !at.IsZero() {
		resp.RefreshedAt = &at
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type tickerInfo struct {
	Symbol   string `json:"symbol"`
	Type     string `json:"type"`
	Analyzed bool   `json:"analyzed"`
}

func (s *Server) handleTickers(w http.ResponseWriter, r *http.Request) {
	infos := make([]tickerInfo, 0, len(s.tickers))
	for _, symbol := range s.tickers {
		kind := "stock"
		if indexTickers[symbol] {
			kind = "index"
		}
		_, analyzed := s.store.Latest(symbol)
		infos = append(infos, tickerInfo{Symbol: symbol, Type: kind, Analyzed: analyzed})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"tickers": infos,
		"count":   len(infos),
	})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))
	if !config.ValidTickers[ticker] {
		s.writeError(w, http.StatusNotFound, "unknown ticker: "+ticker)
		return
	}

	analysis, ok := s.store.Latest(ticker)
	if !ok {
		s.writeError(w, http.StatusNotFound, "no analysis yet for "+ticker)
		return
	}
	s.writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))
	if !config.ValidTickers[ticker] {
		s.writeError(w, http.StatusNotFound, "unknown ticker: "+ticker)
		return
	}
	if s.refresher == nil {
		s.writeError(w, http.StatusServiceUnavailable, "refresh unavailable")
		return
	}

	analysis, err := s.refresher.RefreshOne(r.Context(), ticker)
	switch {
	case errors.Is(err, feed.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "no chain published for "+ticker)
	case errors.Is(err, feed.ErrRateLimited):
		s.writeError(w, http.StatusTooManyRequests, "feed rate limited")
	case err != nil:
		s.logger.Warn("refresh failed", zap.String("ticker", ticker), zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "snapshot fetch failed")
	case analysis == nil:
		s.writeError(w, http.StatusUnprocessableEntity, "snapshot not analyzable")
	default:
		s.writeJSON(w, http.StatusOK, analysis)
	}
}

type gexResponse struct {
	Ticker  string               `json:"ticker"`
	Taken   time.Time            `json:"taken"`
	Spot    float64              `json:"spot"`
	Flip    *float64             `json:"flip,omitempty"`
	MaxPain *float64             `json:"max_pain,omitempty"`
	Levels  analytics.GexProfile `json:"levels"`
}

func (s *Server) handleGex(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))
	if !config.ValidTickers[ticker] {
		s.writeError(w, http.StatusNotFound, "unknown ticker: "+ticker)
		return
	}

	analysis, ok := s.store.Latest(ticker)
	if !ok {
		s.writeError(w, http.StatusNotFound, "no analysis yet for "+ticker)
		return
	}

	s.writeJSON(w, http.StatusOK, gexResponse{
		Ticker:  analysis.Ticker,
		Taken:   analysis.Taken,
		Spot:    analysis.Spot,
		Flip:    analysis.Flip,
		MaxPain: analysis.MaxPain,
		Levels:  analysis.Profile,
	})
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	n := 20
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.writeError(w, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		if parsed > 500 {
			parsed = 500
		}
		n = parsed
	}

	entries, err := s.journal.Tail(n)
	if err != nil {
		s.logger.Warn("journal read failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "journal unavailable")
		return
	}
	if entries == nil {
		entries = []string{}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
