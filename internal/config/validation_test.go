package config

import (
	"strings"
	"testing"
)

func TestValidateTickers_ValidList(t *testing.T) {
	err := ValidateTickers([]string{"SPY", "QQQ", "IWM"})
	if err != nil {
		t.Errorf("expected no error for valid tickers, got: %v", err)
	}
}

func TestValidateTickers_InvalidTicker(t *testing.T) {
	err := ValidateTickers([]string{"SPY", "INVALID_TICKER", "QQQ"})
	if err == nil {
		t.Fatal("expected error for invalid ticker")
	}

	if !strings.Contains(err.Error(), "INVALID_TICKER") {
		t.Errorf("error should mention invalid ticker, got: %v", err)
	}
	if !strings.Contains(err.Error(), "Valid tickers:") {
		t.Errorf("error should list the valid universe, got: %v", err)
	}
}

func TestValidateTickers_Duplicates(t *testing.T) {
	err := ValidateTickers([]string{"SPY", "SPY"})
	if err == nil {
		t.Fatal("expected error for duplicate tickers")
	}

	if !strings.Contains(err.Error(), "Duplicate tickers") {
		t.Errorf("error should mention duplicates, got: %v", err)
	}
}

func TestValidateTickers_MultipleErrors(t *testing.T) {
	err := ValidateTickers([]string{"INVALID1", "INVALID2", "SPY", "SPY"})
	if err == nil {
		t.Fatal("expected error for multiple issues")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "INVALID1") || !strings.Contains(errStr, "INVALID2") {
		t.Errorf("error should list all invalid tickers, got: %v", err)
	}
	if !strings.Contains(errStr, "SPY") {
		t.Errorf("error should list the duplicate, got: %v", err)
	}
}

func TestValidateTickers_EmptyListAllowed(t *testing.T) {
	if err := ValidateTickers(nil); err != nil {
		t.Errorf("empty list should validate (defaults apply upstream), got: %v", err)
	}
}
