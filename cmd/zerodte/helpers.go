package main

import (
	"strings"

	"github.com/pintscoredd/zerodte/internal/config"
)

// resolveTickers picks the symbols to work on: positional args beat the
// config list, which beats the built-in default. Symbols are upcased
// and validated.
func resolveTickers(args []string) ([]string, error) {
	symbols := cfg.Tickers
	if len(args) > 0 {
		symbols = args
	}
	if len(symbols) == 0 {
		symbols = config.DefaultTickers
	}

	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, strings.ToUpper(strings.TrimSpace(s)))
	}
	if err := config.ValidateTickers(out); err != nil {
		return nil, err
	}
	return out, nil
}
