// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RunQueueSize bounds the in-memory bracket-run job queue.
	RunQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of simulation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the run-ID deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the result store.
	ShardCount int `koanf:"shard_count"`

	// DefaultBracketSize is used when a run request omits the size.
	DefaultBracketSize int `koanf:"default_bracket_size"`

	// ExchangeDecisionTimerMS bounds how long an interactive exchange
	// waits for an action before hesitation is forced.
	ExchangeDecisionTimerMS int `koanf:"exchange_decision_timer_ms"`

	// ExchangesPerPeriod sets the exchange count per regulation period.
	ExchangesPerPeriod int `koanf:"exchanges_per_period"`

	// SessionTTLSeconds bounds how long an idle interactive session is
	// kept before it is reaped.
	SessionTTLSeconds int `koanf:"session_ttl_seconds"`
}

// New creates a Config using provided options. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use (e.g.,
// loading from env/files) and is currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:                "info",
		Addr:                    ":9080",
		RunQueueSize:            100_000,
		WorkerCount:             runtime.NumCPU() * 4,
		DedupeSize:              500_000,
		ShardCount:              8,
		DefaultBracketSize:      8,
		ExchangeDecisionTimerMS: 10_000,
		ExchangesPerPeriod:      4,
		SessionTTLSeconds:       1800,
	}
	return c
}
