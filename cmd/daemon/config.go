package main

import (
	"os"
	"strconv"
)

// DaemonConfig holds daemon-specific configuration
type DaemonConfig struct {
	ConfigPath   string // Path to engine config YAML
	StateFile    string // File tracking the last journaled summary per ticker
	RunOnStartup bool   // Run a cycle immediately if the session is open
}

// LoadDaemonConfig loads configuration from environment variables
func LoadDaemonConfig() *DaemonConfig {
	return &DaemonConfig{
		ConfigPath:   getEnvOrDefault("DAEMON_CONFIG_PATH", "/app/configs/default.yaml"),
		StateFile:    getEnvOrDefault("DAEMON_STATE_FILE", "/app/data/.daemon-state"),
		RunOnStartup: getEnvBoolOrDefault("DAEMON_RUN_ON_STARTUP", true),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
