package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pintscoredd/zerodte/internal/archive"
	"github.com/pintscoredd/zerodte/internal/feed"
	"github.com/pintscoredd/zerodte/internal/session"
)

func recordCmd() *cobra.Command {
	var (
		interval time.Duration
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Capture chain snapshots into the archive until interrupted",
		Long: `Capture a snapshot of every configured ticker on a fixed cadence and
append it to the day's archive. The day's files are only published on
exit, so an interrupted recording never leaves a partial file behind.

Examples:
  # Record the configured tickers once a minute
  zerodte record

  # Tighter cadence into the close
  zerodte record --interval 15s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			symbols, err := resolveTickers(nil)
			if err != nil {
				return err
			}
			sess, err := session.New(session.DefaultTimezone)
			if err != nil {
				return err
			}

			client := feed.NewClient(cfg.Feed, logger)
			// TTL zero: every capture is a fresh fetch.
			svc := feed.NewService(client, sess, 0, logger)
			arc := archive.New(cfg.Archive.Directory, logger)

			logger.Info("recording started",
				zap.Strings("tickers", symbols),
				zap.Duration("interval", interval),
				zap.String("directory", cfg.Archive.Directory),
			)

			capture := func() {
				now := time.Now()
				if !force && !sess.IsOpen(now) {
					logger.Debug("market closed, skipping capture")
					return
				}
				date := sess.TradeDate(now)
				for _, symbol := range symbols {
					snap, err := svc.Snapshot(ctx, symbol)
					if err != nil {
						logger.Warn("snapshot failed", zap.String("ticker", symbol), zap.Error(err))
						continue
					}
					if err := arc.Record(date, snap); err != nil {
						logger.Warn("archive write failed", zap.String("ticker", symbol), zap.Error(err))
					}
				}
			}
			capture()

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					logger.Info("recording stopped, publishing archive")
					return arc.Close()
				case <-ticker.C:
					capture()
				}
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", time.Minute, "capture cadence")
	cmd.Flags().BoolVar(&force, "force", false, "capture even while the session is closed")

	return cmd
}
