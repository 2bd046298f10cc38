package config

import (
	"os"
	"testing"
)

func TestLoadWithAPIKey(t *testing.T) {
	_ = os.Setenv("ZERODTE_API_KEY", "test-key-123")
	defer func() { _ = os.Unsetenv("ZERODTE_API_KEY") }()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected config to load with API key, got error: %v", err)
	}

	if cfg.Feed.APIKey != "test-key-123" {
		t.Errorf("expected API key 'test-key-123', got '%s'", cfg.Feed.APIKey)
	}

	if cfg.Feed.BaseURL != "https://api.zerodte.app" {
		t.Errorf("expected default base URL, got '%s'", cfg.Feed.BaseURL)
	}

	if cfg.Engine.Band != 0.02 {
		t.Errorf("expected default band 0.02, got %v", cfg.Engine.Band)
	}

	if cfg.Engine.Scale != 10.0 {
		t.Errorf("expected default scale 10, got %v", cfg.Engine.Scale)
	}

	if cfg.Daemon.Workers != 3 {
		t.Errorf("expected 3 workers by default, got %d", cfg.Daemon.Workers)
	}

	if len(cfg.Tickers) == 0 {
		t.Error("expected default tickers to be populated")
	}
}

func TestLoadWithoutAPIKey(t *testing.T) {
	_ = os.Unsetenv("ZERODTE_API_KEY")

	_, err := Load("")
	if err == nil {
		t.Fatal("expected error when API key is missing")
	}
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	_ = os.Setenv("ZERODTE_API_KEY", "test-key-123")
	_ = os.Setenv("ZERODTE_ENGINE_SCALE", "1")
	defer func() {
		_ = os.Unsetenv("ZERODTE_API_KEY")
		_ = os.Unsetenv("ZERODTE_ENGINE_SCALE")
	}()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Engine.Scale != 1.0 {
		t.Errorf("expected scale override 1, got %v", cfg.Engine.Scale)
	}
}

func TestValidateRejectsBadRanges(t *testing.T) {
	base := func() *Config {
		return &Config{
			Feed:   FeedConfig{APIKey: "k"},
			Engine: EngineConfig{Band: 0.02, Scale: 10},
			Daemon: DaemonConfig{Workers: 1, IntervalSec: 60},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero workers", mutate: func(c *Config) { c.Daemon.Workers = 0 }},
		{name: "zero band", mutate: func(c *Config) { c.Engine.Band = 0 }},
		{name: "negative scale", mutate: func(c *Config) { c.Engine.Scale = -10 }},
		{name: "zero interval", mutate: func(c *Config) { c.Daemon.IntervalSec = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := base().Validate(); err != nil {
		t.Errorf("baseline config should validate, got: %v", err)
	}
}

func TestLoadServerConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "WS_ENABLED", "WS_STREAM_INTERVAL", "REFRESH_INTERVAL"} {
		_ = os.Unsetenv(key)
	}

	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if !cfg.WSEnabled {
		t.Error("expected websocket enabled by default")
	}
	if cfg.WSStreamInterval.Seconds() != 5 {
		t.Errorf("expected 5s stream interval, got %v", cfg.WSStreamInterval)
	}
}

func TestLoadServerConfigBadIntervalFallsBack(t *testing.T) {
	_ = os.Setenv("WS_STREAM_INTERVAL", "not-a-duration")
	defer func() { _ = os.Unsetenv("WS_STREAM_INTERVAL") }()

	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WSStreamInterval.Seconds() != 5 {
		t.Errorf("expected fallback 5s interval, got %v", cfg.WSStreamInterval)
	}
}
