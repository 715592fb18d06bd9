// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is the baseline runtime configuration for the router service.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string
	// EndpointsPath points to an optional YAML endpoint table; empty means
	// the built-in defaults.
	EndpointsPath string
	// DispatchMode selects the executor: "simulate" or "live".
	DispatchMode string
	// ActionLogPath enables the JSONL action log when non-empty.
	ActionLogPath string
	// RedisURL enables the redis action log when non-empty.
	RedisURL string
	// MetricsAddr serves prometheus metrics when non-empty.
	MetricsAddr string
	// Workers bounds batch parallelism; zero means sequential.
	Workers int
	// Seed fixes the simulator and tracking-id RNGs when non-zero.
	Seed int64
}

// FromEnv loads config from environment with safe defaults.
func FromEnv() Config {
	cfg := Config{
		Addr:          ":8080",
		DispatchMode:  "simulate",
		ActionLogPath: "action_log.json",
		Workers:       4,
	}

	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("ENDPOINTS_PATH"); v != "" {
		cfg.EndpointsPath = v
	}
	if v := strings.ToLower(os.Getenv("DISPATCH_MODE")); v == "simulate" || v == "live" {
		cfg.DispatchMode = v
	}
	if v, ok := os.LookupEnv("ACTION_LOG_PATH"); ok {
		cfg.ActionLogPath = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("BATCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("DISPATCH_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = n
		}
	}

	return cfg
}
