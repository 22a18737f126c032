// Package config provides environment configuration helpers for motionsense commands.
package config

import (
	"os"
	"strconv"
	"time"
)

// Default service configuration.
const (
	DefaultAddr     = ":8090"
	DefaultLogLevel = "info"
)

// Addr returns the listen address from MOTIONSENSE_ADDR.
// Falls back to DefaultAddr if not set.
func Addr() string {
	if addr := os.Getenv("MOTIONSENSE_ADDR"); addr != "" {
		return addr
	}
	return DefaultAddr
}

// RelayURL returns the display relay websocket URL from MOTIONSENSE_RELAY_URL.
// Empty means no relay.
func RelayURL() string {
	return os.Getenv("MOTIONSENSE_RELAY_URL")
}

// LogLevel returns the log level from LOG_LEVEL or the default.
func LogLevel() string {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		return level
	}
	return DefaultLogLevel
}

// Float returns a float environment variable, or def if unset or malformed.
func Float(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// Duration returns a duration environment variable (e.g. "600ms"), or def if
// unset or malformed.
func Duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
