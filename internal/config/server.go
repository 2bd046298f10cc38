package config

import (
	"os"
	"time"
)

type ServerConfig struct {
	Port string
	// WebSocket configuration
	WSEnabled        bool
	WSStreamInterval time.Duration
	// How often the server refreshes its cached analyses in the
	// background while the market session is open.
	RefreshInterval time.Duration
}

func LoadServerConfig() (*ServerConfig, error) {
	// Parse WebSocket stream interval
	wsIntervalStr := getEnvOrDefault("WS_STREAM_INTERVAL", "5s")
	wsInterval, err := time.ParseDuration(wsIntervalStr)
	if err != nil {
		wsInterval = 5 * time.Second // Default on parse error
	}

	refreshStr := getEnvOrDefault("REFRESH_INTERVAL", "30s")
	refresh, err := time.ParseDuration(refreshStr)
	if err != nil {
		refresh = 30 * time.Second // Default on parse error
	}

	cfg := &ServerConfig{
		Port:             getEnvOrDefault("PORT", "8080"),
		WSEnabled:        getEnvOrDefault("WS_ENABLED", "true") == "true",
		WSStreamInterval: wsInterval,
		RefreshInterval:  refresh,
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
