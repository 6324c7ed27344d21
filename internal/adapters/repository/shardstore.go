// Package repository defines the bracket-run result store interface and errors.
package repository

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/Tencide/matsim/internal/domain/model"
	"github.com/Tencide/matsim/pkg/metrics"
)

// Sharded, in-memory Store implementation.
//
// Records are keyed by run ID and spread across shards by FNV-1a hash,
// so concurrent workers writing results contend on different locks.
// RecentRuns orders by completion time DESC, then run ID ASC
// (deterministic for equal timestamps).

// Default store configuration constants.
const (
	defaultShardCount            = 8
	defaultMetricsUpdateInterval = 5 * time.Second
)

type shard struct {
	mu   sync.RWMutex
	runs map[string]model.BracketRunRecord
}

// ShardStore is an in-memory sharded Store.
type ShardStore struct {
	shards                []*shard
	metricsUpdateInterval time.Duration

	// Background metrics management
	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewShardStore constructs a sharded store with configuration options.
func NewShardStore(ctx context.Context, opts ...Option) *ShardStore {
	s := &ShardStore{
		metricsUpdateInterval: defaultMetricsUpdateInterval,
	}

	shardCount := defaultShardCount
	cfg := &storeConfig{shardCount: shardCount}
	for _, opt := range opts {
		opt(cfg, s)
	}
	if cfg.shardCount > 0 {
		shardCount = cfg.shardCount
	}

	s.shards = make([]*shard, shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{runs: make(map[string]model.BracketRunRecord)}
	}

	s.stopChan = make(chan struct{})

	metrics.UpdateRepositoryShardCount(shardCount)
	s.startMetricsUpdater(ctx)

	return s
}

// shardFor picks the shard owning a run ID.
func (s *ShardStore) shardFor(runID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(runID))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// SaveRun implements Store.SaveRun.
func (s *ShardStore) SaveRun(ctx context.Context, rec model.BracketRunRecord) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	if rec.RunID == "" {
		return ErrEmptyRunID
	}

	sh := s.shardFor(rec.RunID)
	sh.mu.Lock()
	sh.runs[rec.RunID] = rec
	sh.mu.Unlock()
	return nil
}

// Run implements Store.Run.
func (s *ShardStore) Run(ctx context.Context, runID string) (model.BracketRunRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(runID)
	sh.mu.RLock()
	rec, ok := sh.runs[runID]
	sh.mu.RUnlock()
	if !ok {
		return model.BracketRunRecord{}, ErrNotFound
	}
	return rec, nil
}

// RecentRuns implements Store.RecentRuns.
func (s *ShardStore) RecentRuns(ctx context.Context, n int) ([]model.BracketRunRecord, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}

	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	var all []model.BracketRunRecord
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, rec := range sh.runs {
			all = append(all, rec)
		}
		sh.mu.RUnlock()
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CompletedAt.Equal(all[j].CompletedAt) {
			return all[i].CompletedAt.After(all[j].CompletedAt)
		}
		return all[i].RunID < all[j].RunID
	})

	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

// Count implements Store.Count.
func (s *ShardStore) Count(ctx context.Context) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.runs)
		sh.mu.RUnlock()
	}
	return total
}

// Close gracefully shuts down the background metrics goroutine.
func (s *ShardStore) Close() error {
	select {
	case <-s.stopChan:
		// Channel already closed
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// startMetricsUpdater starts a background goroutine that updates repository metrics.
func (s *ShardStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics(ctx)
			}
		}
	}()
}

// updateMetrics updates all repository-related metrics.
func (s *ShardStore) updateMetrics(ctx context.Context) {
	count := s.Count(ctx)
	metrics.UpdateRepositoryRecordsTotal(count)
	metrics.UpdateCompletedRuns(count)
}
