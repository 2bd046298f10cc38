package server

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pintscoredd/zerodte/internal/chain"
	"github.com/pintscoredd/zerodte/internal/engine"
	"github.com/pintscoredd/zerodte/internal/metrics"
	"github.com/pintscoredd/zerodte/internal/session"
)

// SnapshotSource supplies chain snapshots for a ticker.
type SnapshotSource interface {
	Snapshot(ctx context.Context, ticker string) (chain.Snapshot, error)
}

// Refresher keeps the store current, refetching snapshots and rerunning
// the engine on a fixed interval while the market session is open.
type Refresher struct {
	feed     SnapshotSource
	engine   *engine.Engine
	store    *Store
	session  *session.Session
	tickers  []string
	interval time.Duration
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewRefresher creates a Refresher. metrics may be nil.
func NewRefresher(src SnapshotSource, eng *engine.Engine, store *Store, sess *session.Session,
	tickers []string, interval time.Duration, m *metrics.Metrics, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		feed:     src,
		engine:   eng,
		store:    store,
		session:  sess,
		tickers:  tickers,
		interval: interval,
		metrics:  m,
		logger:   logger,
	}
}

// Run fills the store once at startup, then refreshes on every tick
// while the session is open. Returns when context is cancelled.
func (rf *Refresher) Run(ctx context.Context) {
	rf.logger.Info("refresher started",
		zap.Strings("tickers", rf.tickers),
		zap.Duration("interval", rf.interval),
	)

	// Initial fill regardless of session state so the dashboard has
	// something to show after a restart.
	rf.refresh(ctx)

	ticker := time.NewTicker(rf.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			rf.logger.Info("refresher stopping")
			return

		case <-ticker.C:
			if !rf.session.IsOpen(time.Now()) {
				rf.logger.Debug("market closed, skipping refresh")
				continue
			}
			rf.refresh(ctx)
		}
	}
}

// RefreshOne refetches one ticker, reruns the engine, and stores the
// result. Returns (nil, nil) when the snapshot is not analyzable.
func (rf *Refresher) RefreshOne(ctx context.Context, symbol string) (*engine.Analysis, error) {
	start := time.Now()
	snap, err := rf.feed.Snapshot(ctx, symbol)
	if rf.metrics != nil {
		rf.metrics.ObserveSnapshot(symbol, time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}

	analysis := rf.engine.Analyze(snap)
	if analysis == nil {
		return nil, nil
	}

	rf.store.SetAnalysis(symbol, analysis)
	if rf.metrics != nil {
		rf.metrics.RecordAnalysis(symbol,
			string(analysis.Recommendation.State),
			analysis.Recommendation.Score,
			len(snap.Contracts),
		)
	}
	return analysis, nil
}

func (rf *Refresher) refresh(ctx context.Context) {
	for _, symbol := range rf.tickers {
		if ctx.Err() != nil {
			return
		}

		analysis, err := rf.RefreshOne(ctx, symbol)
		if err != nil {
			rf.logger.Warn("snapshot failed",
				zap.String("ticker", symbol),
				zap.Error(err),
			)
			continue
		}
		if analysis == nil {
			rf.logger.Debug("snapshot not analyzable", zap.String("ticker", symbol))
		}
	}
}
