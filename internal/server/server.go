// Package server exposes the dashboard HTTP API: current analyses, gex
// profiles, the trade journal and a websocket feed of refreshes.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pintscoredd/zerodte/internal/metrics"
	"github.com/pintscoredd/zerodte/internal/ws"
)

// NewRouter assembles the route tree. hub and m may be nil, in which
// case the websocket and metrics endpoints are not mounted.
func NewRouter(srv *Server, hub *ws.Hub, m *metrics.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)
	r.Use(zapLoggerMiddleware(logger))

	r.Get("/healthz", srv.handleHealth)
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/tickers", srv.handleTickers)
		api.Get("/analysis/{ticker}", srv.handleAnalysis)
		api.Post("/analysis/{ticker}/refresh", srv.handleRefresh)
		api.Get("/gex/{ticker}", srv.handleGex)
		api.Get("/journal", srv.handleJournal)
	})

	if hub != nil {
		r.Get("/ws", hub.HandleWS)
	}

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func zapLoggerMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
			)
			next.ServeHTTP(w, r)
		})
	}
}
