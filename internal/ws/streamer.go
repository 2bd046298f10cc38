package ws

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/pintscoredd/zerodte/internal/engine"
)

// AnalysisSource supplies the most recent analysis for a ticker.
type AnalysisSource interface {
	Latest(ticker string) (*engine.Analysis, bool)
}

// Streamer pushes the current analysis to subscribed clients on a
// fixed interval.
type Streamer struct {
	hub      *Hub
	source   AnalysisSource
	interval time.Duration
	logger   *zap.Logger
}

// NewStreamer creates a new Streamer.
func NewStreamer(hub *Hub, source AnalysisSource, interval time.Duration, logger *zap.Logger) *Streamer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Streamer{
		hub:      hub,
		source:   source,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the streaming loop. Call in a goroutine.
// Returns when context is cancelled.
func (s *Streamer) Run(ctx context.Context) {
	// Align first tick to top of second for predictable timing
	now := time.Now()
	nextSecond := now.Truncate(time.Second).Add(time.Second)
	s.logger.Debug("aligning to next second",
		zap.Time("now", now),
		zap.Time("nextSecond", nextSecond),
		zap.Duration("wait", time.Until(nextSecond)),
	)

	select {
	case <-ctx.Done():
		s.logger.Info("streamer cancelled during alignment")
		return
	case <-time.After(time.Until(nextSecond)):
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("streamer started",
		zap.Duration("interval", s.interval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("streamer stopping")
			return

		case <-ticker.C:
			s.broadcastNext()
		}
	}
}

// broadcastNext sends the latest analysis to every active ticker group.
func (s *Streamer) broadcastNext() {
	tickers := s.hub.ActiveTickers()
	if len(tickers) == 0 {
		return
	}

	for _, symbol := range tickers {
		analysis, ok := s.source.Latest(symbol)
		if !ok {
			continue
		}

		payload, err := json.Marshal(analysis)
		if err != nil {
			s.logger.Debug("failed to encode analysis",
				zap.String("ticker", symbol),
				zap.Error(err),
			)
			continue
		}

		s.hub.Broadcast(symbol, buildAnalysisMessage(symbol, payload))

		s.logger.Debug("broadcast analysis",
			zap.String("ticker", symbol),
			zap.Int("size", len(payload)),
		)
	}
}
