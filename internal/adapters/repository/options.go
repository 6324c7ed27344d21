// Package repository defines the bracket-run result store interface and errors.
package repository

import "time"

// storeConfig collects construction-time settings that are not fields
// on the store itself.
type storeConfig struct {
	shardCount int
}

// Option applies a configuration option to the ShardStore.
type Option func(*storeConfig, *ShardStore)

// WithShardCount sets the number of shards records are spread across.
func WithShardCount(count int) Option {
	return func(c *storeConfig, _ *ShardStore) {
		if count > 0 {
			c.shardCount = count
		}
	}
}

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(_ *storeConfig, s *ShardStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}
