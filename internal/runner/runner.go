// Package runner drives one analysis cycle across the configured
// tickers with a small worker pool. New actionable recommendations are
// journaled and pushed through the notifier; every usable snapshot is
// archived when recording is enabled.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pintscoredd/zerodte/internal/archive"
	"github.com/pintscoredd/zerodte/internal/chain"
	"github.com/pintscoredd/zerodte/internal/engine"
	"github.com/pintscoredd/zerodte/internal/journal"
	"github.com/pintscoredd/zerodte/internal/metrics"
	"github.com/pintscoredd/zerodte/internal/notify"
)

// A ticker failing this many cycles in a row triggers one failure
// notification. The streak resets on the next good snapshot.
const failureNotifyThreshold = 3

// SnapshotService supplies chain snapshots for a ticker.
type SnapshotService interface {
	Snapshot(ctx context.Context, ticker string) (chain.Snapshot, error)
}

// Options wires a Runner. Archive and Metrics may be nil.
type Options struct {
	Feed     SnapshotService
	Engine   *engine.Engine
	Journal  *journal.Journal
	Notifier notify.Notifier
	Tracker  *Tracker
	Archive  *archive.Archive
	Metrics  *metrics.Metrics
	Workers  int
	Logger   *zap.Logger
}

type Runner struct {
	feed     SnapshotService
	engine   *engine.Engine
	journal  *journal.Journal
	notifier notify.Notifier
	tracker  *Tracker
	archive  *archive.Archive
	metrics  *metrics.Metrics
	workers  int
	logger   *zap.Logger

	mu          sync.Mutex
	failStreaks map[string]int
}

// CycleResult summarizes one pass over the ticker list.
type CycleResult struct {
	Total      int
	Analyzed   int
	Actionable int
	Skipped    int
	Failed     int
	Errors     []string
}

type tickerResult struct {
	Ticker     string
	Actionable bool
	Skipped    bool
	Err        error
}

func New(opts Options) *Runner {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		feed:        opts.Feed,
		engine:      opts.Engine,
		journal:     opts.Journal,
		notifier:    opts.Notifier,
		tracker:     opts.Tracker,
		archive:     opts.Archive,
		metrics:     opts.Metrics,
		workers:     workers,
		logger:      logger,
		failStreaks: make(map[string]int),
	}
}

// Execute runs one cycle over the tickers. date keys the archive day.
func (r *Runner) Execute(ctx context.Context, tickers []string, date string) *CycleResult {
	result := &CycleResult{Total: len(tickers)}

	if len(tickers) == 0 {
		return result
	}

	jobs := make(chan string, len(tickers))
	results := make(chan tickerResult, len(tickers))

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			r.worker(ctx, workerID, date, jobs, results)
		}(i)
	}

	// Send jobs
	go func() {
		for _, symbol := range tickers {
			select {
			case <-ctx.Done():
				return
			case jobs <- symbol:
			}
		}
		close(jobs)
	}()

	// Wait for workers and close results
	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results
	for res := range results {
		switch {
		case res.Err != nil:
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", res.Ticker, res.Err))
		case res.Skipped:
			result.Skipped++
		default:
			result.Analyzed++
			if res.Actionable {
				result.Actionable++
			}
		}
	}

	return result
}

func (r *Runner) worker(ctx context.Context, id int, date string, jobs <-chan string, results chan<- tickerResult) {
	for symbol := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		result := r.processTicker(ctx, symbol, date)

		select {
		case <-ctx.Done():
			return
		case results <- result:
		}
	}
}

func (r *Runner) processTicker(ctx context.Context, symbol, date string) tickerResult {
	res := tickerResult{Ticker: symbol}

	start := time.Now()
	snap, err := r.feed.Snapshot(ctx, symbol)
	if r.metrics != nil {
		r.metrics.ObserveSnapshot(symbol, time.Since(start), err)
	}
	if err != nil {
		res.Err = err
		r.noteFailure(ctx, symbol, err)
		return res
	}
	r.clearFailures(symbol)

	if r.archive != nil {
		if err := r.archive.Record(date, snap); err != nil {
			r.logger.Warn("archive write failed",
				zap.String("ticker", symbol),
				zap.Error(err),
			)
		}
	}

	analysis := r.engine.Analyze(snap)
	if analysis == nil {
		r.logger.Debug("snapshot not analyzable", zap.String("ticker", symbol))
		res.Skipped = true
		return res
	}
	if r.metrics != nil {
		r.metrics.RecordAnalysis(symbol,
			string(analysis.Recommendation.State),
			analysis.Recommendation.Score,
			len(snap.Contracts),
		)
	}

	rec := analysis.Recommendation
	if rec.State != engine.StateActionable {
		return res
	}
	res.Actionable = true

	summary := fmt.Sprintf("%s %s", symbol, rec.Summary())
	if !r.tracker.Changed(symbol, summary) {
		r.logger.Debug("recommendation unchanged", zap.String("ticker", symbol))
		return res
	}

	if err := r.journal.Append(summary); err != nil {
		r.logger.Warn("journal append failed", zap.Error(err))
	} else if r.metrics != nil {
		r.metrics.RecordJournalEntry()
	}
	if err := r.notifier.SendRecommendation(ctx, symbol, rec); err != nil {
		r.logger.Warn("notification failed",
			zap.String("ticker", symbol),
			zap.Error(err),
		)
	}
	if err := r.tracker.Record(symbol, summary); err != nil {
		r.logger.Warn("state file write failed", zap.Error(err))
	}

	r.logger.Info("new recommendation",
		zap.String("ticker", symbol),
		zap.String("headline", rec.Headline),
		zap.String("confidence", string(rec.Confidence)),
		zap.Int("score", rec.Score),
	)
	return res
}

func (r *Runner) noteFailure(ctx context.Context, symbol string, cause error) {
	r.mu.Lock()
	r.failStreaks[symbol]++
	streak := r.failStreaks[symbol]
	r.mu.Unlock()

	r.logger.Warn("snapshot failed",
		zap.String("ticker", symbol),
		zap.Int("streak", streak),
		zap.Error(cause),
	)

	// Fire exactly once per streak, when it crosses the threshold.
	if streak == failureNotifyThreshold {
		if err := r.notifier.SendFailure(ctx, symbol, cause); err != nil {
			r.logger.Warn("failure notification failed", zap.Error(err))
		}
	}
}

func (r *Runner) clearFailures(symbol string) {
	r.mu.Lock()
	delete(r.failStreaks, symbol)
	r.mu.Unlock()
}
