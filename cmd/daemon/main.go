package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pintscoredd/zerodte/internal/archive"
	"github.com/pintscoredd/zerodte/internal/config"
	"github.com/pintscoredd/zerodte/internal/engine"
	"github.com/pintscoredd/zerodte/internal/feed"
	"github.com/pintscoredd/zerodte/internal/journal"
	"github.com/pintscoredd/zerodte/internal/notify"
	"github.com/pintscoredd/zerodte/internal/runner"
	"github.com/pintscoredd/zerodte/internal/session"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Setup logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	// Load daemon config
	daemonCfg := LoadDaemonConfig()

	logger.Info("daemon configuration loaded",
		zap.String("configPath", daemonCfg.ConfigPath),
		zap.String("stateFile", daemonCfg.StateFile),
		zap.Bool("runOnStartup", daemonCfg.RunOnStartup),
	)

	// Load engine config
	cfg, err := config.Load(daemonCfg.ConfigPath)
	if err != nil {
		logger.Error("failed to load config", zap.Error(err))
		return 1
	}

	if err := config.ValidateTickers(cfg.Tickers); err != nil {
		logger.Error("invalid ticker list", zap.Error(err))
		return 1
	}

	logger.Info("configuration loaded",
		zap.Int("workers", cfg.Daemon.Workers),
		zap.Int("intervalSec", cfg.Daemon.IntervalSec),
		zap.Int("tickers", len(cfg.Tickers)),
	)

	notifyCfg := notify.LoadConfig()
	if err := notifyCfg.Validate(); err != nil {
		logger.Error("invalid notification config", zap.Error(err))
		return 1
	}

	sess, err := session.New(session.DefaultTimezone)
	if err != nil {
		logger.Error("failed to load session calendar", zap.Error(err))
		return 1
	}

	tracker, err := runner.NewTracker(daemonCfg.StateFile)
	if err != nil {
		logger.Error("failed to load state file", zap.Error(err))
		return 1
	}

	jnl, err := journal.New(cfg.Journal.Path, logger)
	if err != nil {
		logger.Error("failed to open journal", zap.Error(err))
		return 1
	}

	var arc *archive.Archive
	if cfg.Archive.Enabled {
		arc = archive.New(cfg.Archive.Directory, logger)
	}

	client := feed.NewClient(cfg.Feed, logger)
	svc := feed.NewService(client, sess, time.Duration(cfg.Feed.CacheTTLSec)*time.Second, logger)

	r := runner.New(runner.Options{
		Feed:     svc,
		Engine:   engine.New(engine.Config{Band: cfg.Engine.Band, Scale: cfg.Engine.Scale}, logger),
		Journal:  jnl,
		Notifier: notify.New(notifyCfg, logger),
		Tracker:  tracker,
		Archive:  arc,
		Workers:  cfg.Daemon.Workers,
		Logger:   logger,
	})

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("daemon started",
		zap.Duration("interval", time.Duration(cfg.Daemon.IntervalSec)*time.Second),
	)

	wasOpen := false
	if daemonCfg.RunOnStartup && sess.IsOpen(time.Now()) {
		wasOpen = true
		runCycle(ctx, r, sess, cfg.Tickers, logger)
	}

	ticker := time.NewTicker(time.Duration(cfg.Daemon.IntervalSec) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", zap.String("signal", sig.String()))
			cancel()
			closeArchive(arc, logger)
			return 0

		case <-ticker.C:
			now := time.Now()
			if !sess.IsOpen(now) {
				if wasOpen {
					// Session just ended. Publish the day's archive.
					logger.Info("session closed", zap.String("date", sess.TradeDate(now)))
					closeArchive(arc, logger)
					wasOpen = false
				}
				continue
			}
			wasOpen = true
			runCycle(ctx, r, sess, cfg.Tickers, logger)

		case <-ctx.Done():
			logger.Info("context cancelled, shutting down")
			closeArchive(arc, logger)
			return 0
		}
	}
}

// runCycle executes one analysis pass and logs its outcome
func runCycle(ctx context.Context, r *runner.Runner, sess *session.Session, tickers []string, logger *zap.Logger) {
	start := time.Now()
	date := sess.TradeDate(start)

	result := r.Execute(ctx, tickers, date)

	logger.Info("analysis cycle finished",
		zap.String("date", date),
		zap.Duration("duration", time.Since(start)),
		zap.Int("total", result.Total),
		zap.Int("analyzed", result.Analyzed),
		zap.Int("actionable", result.Actionable),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)

	for _, e := range result.Errors {
		logger.Error("cycle error", zap.String("error", e))
	}
}

func closeArchive(arc *archive.Archive, logger *zap.Logger) {
	if arc == nil {
		return
	}
	if err := arc.Close(); err != nil {
		logger.Error("failed to publish archive", zap.Error(err))
	}
}
