package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pintscoredd/zerodte/internal/engine"
	"github.com/pintscoredd/zerodte/internal/feed"
	"github.com/pintscoredd/zerodte/internal/session"
)

func analyzeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze [TICKER...]",
		Short: "Fetch live snapshots and print trade recommendations",
		Long: `Fetch a snapshot for each ticker, run the decision engine once and
print the result. Without arguments the configured ticker list is used.

Examples:
  # Analyze the configured tickers
  zerodte analyze

  # Analyze specific tickers
  zerodte analyze SPY QQQ

  # Raw JSON for scripting
  zerodte analyze --json SPX`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			symbols, err := resolveTickers(args)
			if err != nil {
				return err
			}

			sess, err := session.New(session.DefaultTimezone)
			if err != nil {
				return err
			}
			client := feed.NewClient(cfg.Feed, logger)
			svc := feed.NewService(client, sess, time.Duration(cfg.Feed.CacheTTLSec)*time.Second, logger)
			eng := engine.New(engine.Config{Band: cfg.Engine.Band, Scale: cfg.Engine.Scale}, logger)

			var failed int
			for _, symbol := range symbols {
				snap, err := svc.Snapshot(ctx, symbol)
				if err != nil {
					logger.Error("snapshot failed", zap.String("ticker", symbol), zap.Error(err))
					failed++
					continue
				}

				analysis := eng.Analyze(snap)
				if analysis == nil {
					logger.Warn("snapshot not analyzable", zap.String("ticker", symbol))
					failed++
					continue
				}

				if asJSON {
					data, err := json.MarshalIndent(analysis, "", "  ")
					if err != nil {
						return fmt.Errorf("encoding analysis: %w", err)
					}
					fmt.Println(string(data))
					continue
				}
				fmt.Print(renderAnalysis(analysis))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d tickers failed", failed, len(symbols))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw analysis JSON")

	return cmd
}

func renderAnalysis(a *engine.Analysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  spot %.2f  vwap %.2f  (%s)\n",
		a.Ticker, a.Spot, a.VWAP, a.Taken.Format("15:04:05"))
	if a.Flip != nil {
		fmt.Fprintf(&b, "  gamma flip   %.0f\n", *a.Flip)
	}
	if a.MaxPain != nil {
		fmt.Fprintf(&b, "  max pain     %.0f\n", *a.MaxPain)
	}
	if a.PCR != nil {
		fmt.Fprintf(&b, "  put/call OI  %.2f\n", *a.PCR)
	}

	rec := a.Recommendation
	fmt.Fprintf(&b, "  %s\n", rec.Summary())
	if rec.State == engine.StateActionable && rec.Contract != nil {
		fmt.Fprintf(&b, "    contract   %s (delta %.2f, IV %.1f%%)\n",
			rec.Contract.Symbol, rec.Contract.Greeks.Delta, rec.Contract.Greeks.IV*100)
		if rec.ProfitLevel != nil {
			fmt.Fprintf(&b, "    profit     %.0f\n", *rec.ProfitLevel)
		}
		if rec.StopLevel != nil {
			fmt.Fprintf(&b, "    stop       %.0f\n", *rec.StopLevel)
		}
	}
	for _, met := range rec.Met {
		fmt.Fprintf(&b, "    + %s\n", met)
	}
	for _, miss := range rec.Failed {
		fmt.Fprintf(&b, "    - %s\n", miss)
	}
	b.WriteString("\n")
	return b.String()
}
