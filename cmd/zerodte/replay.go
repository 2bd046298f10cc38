package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pintscoredd/zerodte/internal/archive"
	"github.com/pintscoredd/zerodte/internal/engine"
)

func replayCmd() *cobra.Command {
	var tickers []string

	cmd := &cobra.Command{
		Use:   "replay [YYYY-MM-DD]",
		Short: "Rerun the engine over an archived day",
		Long: `Feed every archived snapshot for a day back through the engine and
print each change of recommendation, in recording order. Without a date
the most recent archived day is replayed.

Examples:
  # Replay the latest archived day
  zerodte replay

  # Replay one ticker for a specific day
  zerodte replay 2025-11-14 --tickers SPX`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := cfg.Archive.Directory

			var date string
			if len(args) == 1 {
				if _, err := time.Parse("2006-01-02", args[0]); err != nil {
					return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
				}
				date = args[0]
			} else {
				latest, err := archive.LatestDate(dir)
				if err != nil {
					return err
				}
				date = latest
			}

			symbols := tickers
			if len(symbols) == 0 {
				found, err := archive.Tickers(dir, date)
				if err != nil {
					return err
				}
				symbols = found
			}
			if len(symbols) == 0 {
				return fmt.Errorf("no archived tickers for %s", date)
			}

			eng := engine.New(engine.Config{Band: cfg.Engine.Band, Scale: cfg.Engine.Scale}, logger)

			fmt.Printf("Replaying %s (%d tickers)\n", date, len(symbols))
			var failed int
			for _, symbol := range symbols {
				if err := replayTicker(eng, dir, date, symbol); err != nil {
					logger.Error("replay failed", zap.String("ticker", symbol), zap.Error(err))
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d tickers failed", failed, len(symbols))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&tickers, "tickers", nil, "restrict the replay to these tickers")

	return cmd
}

// replayTicker reruns one ticker's day and prints every change of
// recommendation.
func replayTicker(eng *engine.Engine, dir, date, symbol string) error {
	snaps, err := archive.ReadDay(dir, date, strings.ToUpper(symbol))
	if err != nil {
		return err
	}

	var analyzed, actionable int
	var last string
	for _, snap := range snaps {
		analysis := eng.Analyze(snap)
		if analysis == nil {
			continue
		}
		analyzed++
		rec := analysis.Recommendation
		if rec.State == engine.StateActionable {
			actionable++
		}
		if summary := rec.Summary(); summary != last {
			fmt.Printf("  %s  %-4s  %s\n", analysis.Taken.Format("15:04:05"), symbol, summary)
			last = summary
		}
	}

	fmt.Printf("  %s: %d snapshots, %d analyzed, %d actionable\n", symbol, len(snaps), analyzed, actionable)
	return nil
}
