package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Feed    FeedConfig    `mapstructure:"feed"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Daemon  DaemonConfig  `mapstructure:"daemon"`
	Journal JournalConfig `mapstructure:"journal"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Tickers []string      `mapstructure:"tickers"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type FeedConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	APIKey        string `mapstructure:"api_key"`
	TimeoutSec    int    `mapstructure:"timeout_sec"`
	RetryCount    int    `mapstructure:"retry_count"`
	RetryDelay    int    `mapstructure:"retry_delay_sec"`
	RatePerSecond int    `mapstructure:"rate_per_second"`
	CacheTTLSec   int    `mapstructure:"cache_ttl_sec"`
}

type EngineConfig struct {
	// Band is the strike band around spot for trade candidates, e.g.
	// 0.02 keeps strikes within 2% of spot.
	Band float64 `mapstructure:"band"`
	// Scale translates strikes to the tracked index quote scale.
	Scale float64 `mapstructure:"scale"`
}

type DaemonConfig struct {
	Workers     int `mapstructure:"workers"`
	IntervalSec int `mapstructure:"interval_sec"`
}

type JournalConfig struct {
	Path string `mapstructure:"path"`
}

type ArchiveConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Directory string `mapstructure:"directory"`
}

type LoggingConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Directory string `mapstructure:"directory"`
	Level     string `mapstructure:"level"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("feed.base_url", "https://api.zerodte.app")
	v.SetDefault("feed.timeout_sec", 30)
	v.SetDefault("feed.retry_count", 3)
	v.SetDefault("feed.retry_delay_sec", 2)
	v.SetDefault("feed.rate_per_second", 5)
	v.SetDefault("feed.cache_ttl_sec", 30)
	v.SetDefault("engine.band", 0.02)
	v.SetDefault("engine.scale", 10.0)
	v.SetDefault("daemon.workers", 3)
	v.SetDefault("daemon.interval_sec", 60)
	v.SetDefault("journal.path", "journal/trades.log")
	v.SetDefault("archive.enabled", true)
	v.SetDefault("archive.directory", "data")
	v.SetDefault("tickers", DefaultTickers)
	v.SetDefault("logging.enabled", true)
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")

	// Environment variable support
	v.SetEnvPrefix("ZERODTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Explicitly bind nested keys to env vars
	_ = v.BindEnv("feed.api_key", "ZERODTE_API_KEY")

	// Load config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("default")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Feed.APIKey == "" {
		return fmt.Errorf("api_key is required (set ZERODTE_API_KEY env var)")
	}
	if c.Daemon.Workers < 1 {
		return fmt.Errorf("workers must be >= 1")
	}
	if c.Engine.Band <= 0 {
		return fmt.Errorf("engine band must be > 0")
	}
	if c.Engine.Scale <= 0 {
		return fmt.Errorf("engine scale must be > 0")
	}
	if c.Daemon.IntervalSec < 1 {
		return fmt.Errorf("daemon interval must be >= 1s")
	}
	return nil
}
