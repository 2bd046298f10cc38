package notify

import (
	"fmt"
	"strings"

	"github.com/pintscoredd/zerodte/internal/engine"
)

// FormatRecommendation creates a notification body for a trade idea.
func FormatRecommendation(rec engine.Recommendation) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Bias: %s\n", rec.Bias))
	sb.WriteString(fmt.Sprintf("Confidence: %s (score %+d)\n", rec.Confidence, rec.Score))

	if rec.Contract != nil {
		sb.WriteString(fmt.Sprintf("Contract: %s @ %.2f\n", rec.Contract.Symbol, rec.Contract.Mid))
		sb.WriteString(fmt.Sprintf("Delta: %.2f  IV: %.1f%%\n",
			rec.Contract.Greeks.Delta, rec.Contract.Greeks.IV*100))
	}

	sb.WriteString(fmt.Sprintf("Target: %g", rec.Target))
	if rec.ProfitLevel != nil {
		sb.WriteString(fmt.Sprintf("\nProfit level: %g", *rec.ProfitLevel))
	}
	if rec.StopLevel != nil {
		sb.WriteString(fmt.Sprintf("\nStop level: %g", *rec.StopLevel))
	}

	if len(rec.Met) > 0 {
		sb.WriteString("\n\nMet:\n")
		for _, cond := range rec.Met {
			sb.WriteString(fmt.Sprintf("- %s\n", cond))
		}
	}

	// Include first 3 failed conditions if available
	if len(rec.Failed) > 0 {
		sb.WriteString("\nAgainst:\n")
		limit := 3
		if len(rec.Failed) < limit {
			limit = len(rec.Failed)
		}
		for i := 0; i < limit; i++ {
			sb.WriteString(fmt.Sprintf("- %s\n", rec.Failed[i]))
		}
		if len(rec.Failed) > 3 {
			sb.WriteString(fmt.Sprintf("... and %d more", len(rec.Failed)-3))
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// FormatFailureMessage creates a failure notification body.
func FormatFailureMessage(ticker string, err error) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Ticker: %s", ticker))
	if err != nil {
		sb.WriteString(fmt.Sprintf("\n\nError: %v", err))
	}

	return sb.String()
}
