package config

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationErrors collects all ticker validation errors
type ValidationErrors struct {
	InvalidTickers []string
	Duplicates     []string
}

// HasErrors returns true if any validation errors exist
func (e *ValidationErrors) HasErrors() bool {
	return len(e.InvalidTickers) > 0 || len(e.Duplicates) > 0
}

// Error formats all validation errors into a clear message
func (e *ValidationErrors) Error() string {
	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")

	if len(e.InvalidTickers) > 0 {
		sb.WriteString("\nInvalid tickers:\n")
		for _, t := range e.InvalidTickers {
			sb.WriteString(fmt.Sprintf("  - %s\n", t))
		}
		sb.WriteString(fmt.Sprintf("\nValid tickers: %s\n", validTickersList()))
	}

	if len(e.Duplicates) > 0 {
		sb.WriteString("\nDuplicate tickers:\n")
		for _, t := range e.Duplicates {
			sb.WriteString(fmt.Sprintf("  - %s\n", t))
		}
	}

	return sb.String()
}

// ValidateTickers checks the configured ticker list against the known
// same-day-expiry universe and rejects duplicates.
func ValidateTickers(tickers []string) error {
	errs := &ValidationErrors{}

	seen := make(map[string]bool)
	for _, ticker := range tickers {
		if !ValidTickers[ticker] {
			errs.InvalidTickers = append(errs.InvalidTickers, ticker)
		}
		if seen[ticker] {
			errs.Duplicates = append(errs.Duplicates, ticker)
		}
		seen[ticker] = true
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func validTickersList() string {
	tickers := make([]string, 0, len(ValidTickers))
	for t := range ValidTickers {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return strings.Join(tickers, ", ")
}
