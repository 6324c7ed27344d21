// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	runqueue "github.com/Tencide/matsim/internal/adapters/mq/queue"
	workerpool "github.com/Tencide/matsim/internal/adapters/mq/worker"
	repository "github.com/Tencide/matsim/internal/adapters/repository"
	"github.com/Tencide/matsim/internal/domain/bracket"
	"github.com/Tencide/matsim/internal/domain/dedupe"
	"github.com/Tencide/matsim/internal/domain/exchange"
	"github.com/Tencide/matsim/internal/domain/matchsim"
	"github.com/Tencide/matsim/internal/domain/model"
	"github.com/Tencide/matsim/internal/domain/rng"
	"github.com/Tencide/matsim/pkg/logger"
	"github.com/Tencide/matsim/pkg/metrics"
	"github.com/google/uuid"
)

// Default service configuration constants.
const (
	defaultQueueSize          = 100_000
	defaultDedupeSize         = 50_000
	defaultShardCount         = 8
	defaultBracketSize        = 8
	defaultSessionTTL         = 30 * time.Minute
	sessionReapInterval       = time.Minute
	defaultExchangesPerPeriod = 4
	defaultDecisionTimer      = 10 * time.Second
)

// session is one open interactive match.
type session struct {
	id         string
	state      exchange.State
	src        *rng.Source
	lastActive time.Time
}

// Service implements the API dependencies for the match simulation system.
type Service struct {
	mu sync.RWMutex

	// Core components
	results    repository.Store
	deduper    dedupe.Deduper
	runQueue   runqueue.Queue
	workerPool *workerpool.Pool
	engine     *bracket.Engine
	simulator  *matchsim.Simulator
	resolver   *exchange.Resolver

	// Interactive sessions
	sessionMu sync.Mutex
	sessions  map[string]*session

	// Configuration
	workerCount        int
	queueSize          int
	dedupeSize         int
	shardCount         int
	bracketSize        int
	decisionTimer      time.Duration
	exchangesPerPeriod int
	sessionTTL         time.Duration

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of simulation workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the run queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the run-ID deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the number of result-store shards.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithDefaultBracketSize sets the size used when a run omits one.
func WithDefaultBracketSize(size int) Option {
	return func(s *Service) {
		if size == bracket.Size8 || size == bracket.Size16 {
			s.bracketSize = size
		}
	}
}

// WithDecisionTimer sets the interactive exchange decision timer.
func WithDecisionTimer(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.decisionTimer = d
		}
	}
}

// WithExchangesPerPeriod sets the exchange count per regulation period.
func WithExchangesPerPeriod(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.exchangesPerPeriod = n
		}
	}
}

// WithSessionTTL bounds how long an idle interactive session survives.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:          defaultQueueSize,
		dedupeSize:         defaultDedupeSize,
		shardCount:         defaultShardCount,
		bracketSize:        defaultBracketSize,
		decisionTimer:      defaultDecisionTimer,
		exchangesPerPeriod: defaultExchangesPerPeriod,
		sessionTTL:         defaultSessionTTL,
		sessions:           make(map[string]*session),
		stopCh:             make(chan struct{}),
		logger:             nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting match simulation service...")

	// Initialize components
	s.results = repository.NewShardStore(ctx, repository.WithShardCount(s.shardCount))
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.runQueue = runqueue.NewInMemoryQueue(
		runqueue.WithCapacity(s.queueSize),
		runqueue.WithBufferSize(s.queueSize),
	)
	s.simulator = matchsim.New(matchsim.WithLogger(s.logger.Named("matchsim")))
	s.engine = bracket.New(
		bracket.WithLogger(s.logger.Named("bracket")),
		bracket.WithSimulator(s.simulator),
	)
	s.resolver = exchange.New(
		exchange.WithLogger(s.logger.Named("exchange")),
		exchange.WithDecisionTimer(s.decisionTimer),
		exchange.WithExchangesPerPeriod(s.exchangesPerPeriod),
	)

	// Create and start the worker pool; the service itself is the runner.
	s.workerPool = workerpool.NewPool(s.workerCount, s.runQueue, s, s.results)
	s.workerPool.Start(ctx)

	go s.reapSessions(ctx)

	s.started = true
	s.logger.Info(ctx, "match simulation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("shards", s.shardCount),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping match simulation service...")

	// Stop worker pool
	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	// Close result store
	if s.results != nil {
		if closer, ok := s.results.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}

	// Close queue
	if q, ok := s.runQueue.(*runqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	// Signal cleanup loops to stop
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "match simulation service stopped")
}

// RunBracket simulates a full double-elimination run for a queued job.
// It implements worker.Runner so pool workers drive the engine directly.
func (s *Service) RunBracket(ctx context.Context, job workerpool.Job) (model.BracketRunRecord, error) {
	src := rng.NewFromString(job.Seed)

	provider := fieldProvider(job.Player, job.Field)
	result, final, err := s.engine.Run(job.Player, provider, src, job.BracketSize)
	if err != nil {
		return model.BracketRunRecord{}, err
	}

	return model.BracketRunRecord{
		RunID:       job.RunID,
		Seed:        job.Seed,
		BracketSize: job.BracketSize,
		Result:      result,
		FinalState:  final,
		SubmittedAt: job.SubmittedAt,
		CompletedAt: time.Now(),
	}, nil
}

// fieldProvider hands out the submitted field in order, synthesizing a
// peer-rated opponent once the field runs dry.
func fieldProvider(player model.CompetitorSnapshot, field []model.Opponent) bracket.OpponentProvider {
	next := 0
	return func(round bracket.Round) model.Opponent {
		if next < len(field) {
			opp := field[next]
			next++
			return opp
		}
		return model.Opponent{
			ID:            "field-" + string(round),
			Name:          "Unseeded " + string(round),
			OverallRating: player.OverallRating,
		}
	}
}

// SubmitBracketRun validates, deduplicates, and enqueues a run request.
// Returns the run ID and whether the job was accepted. A resubmitted run
// ID reports accepted without enqueuing again.
func (s *Service) SubmitBracketRun(ctx context.Context, req model.BracketRunRequest) (string, bool) {
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	if req.Seed == "" {
		req.Seed = uuid.NewString()
	}
	if req.BracketSize == 0 {
		req.BracketSize = s.bracketSize
	}
	if req.BracketSize != bracket.Size8 && req.BracketSize != bracket.Size16 {
		return req.RunID, false
	}
	req.SubmittedAt = time.Now()

	if s.deduper.SeenAndRecord(ctx, req.RunID) {
		s.logger.Debug(ctx, "duplicate run submission, skipping",
			logger.String("runID", req.RunID),
		)
		return req.RunID, true // already accepted
	}

	if !s.runQueue.Enqueue(ctx, req) {
		// Allow a retry after queue pressure clears.
		s.deduper.Unrecord(ctx, req.RunID)
		return req.RunID, false
	}

	metrics.UpdateQueueSize(s.runQueue.Len(ctx))
	return req.RunID, true
}

// BracketResult returns the stored record for a completed run.
func (s *Service) BracketResult(ctx context.Context, runID string) (model.BracketRunRecord, error) {
	return s.results.Run(ctx, runID)
}

// RecentRuns returns up to n most recently completed runs.
func (s *Service) RecentRuns(ctx context.Context, n int) ([]model.BracketRunRecord, error) {
	return s.results.RecentRuns(ctx, n)
}

// SimulateMatch resolves a single match synchronously and returns the
// result alongside the player's post-match state.
func (s *Service) SimulateMatch(ctx context.Context, player model.CompetitorSnapshot, opp model.Opponent, seed string) (model.MatchResult, model.CompetitorSnapshot, string) {
	if seed == "" {
		seed = uuid.NewString()
	}
	src := rng.NewFromString(seed)

	result := s.simulator.SimulateMatch(player, opp, src)
	after, _ := matchsim.ApplyEnergyDrain(player, result.Intensity)
	if result.InjuryOccurred {
		after.AddInjuryPoints(result.InjuryPoints)
	}
	return result, after, seed
}

// CreateExchange opens an interactive match session and returns its ID
// with the opening prompt.
func (s *Service) CreateExchange(ctx context.Context, player model.CompetitorSnapshot, opp model.Opponent, seed string) (string, exchange.Prompt) {
	if seed == "" {
		seed = uuid.NewString()
	}

	st := s.resolver.NewState(player, opp, exchange.PositionNeutral)
	sess := &session{
		id:         uuid.NewString(),
		state:      st,
		src:        rng.NewFromString(seed),
		lastActive: time.Now(),
	}

	s.sessionMu.Lock()
	s.sessions[sess.id] = sess
	count := len(s.sessions)
	s.sessionMu.Unlock()

	metrics.UpdateActiveSessions(count)
	return sess.id, s.resolver.BuildPrompt(st)
}

// ResolveExchange applies one action to an open session. A decided match
// removes the session and returns its final state.
func (s *Service) ResolveExchange(ctx context.Context, sessionID, actionKey string) (exchange.State, exchange.LogEntry, *exchange.Prompt, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return exchange.State{}, exchange.LogEntry{}, nil, ErrSessionNotFound
	}

	next, entry, prompt, err := s.resolver.Resolve(sess.state, actionKey, sess.src)
	if err != nil {
		return exchange.State{}, exchange.LogEntry{}, nil, err
	}

	sess.state = next
	sess.lastActive = time.Now()
	if next.Done {
		delete(s.sessions, sessionID)
		metrics.UpdateActiveSessions(len(s.sessions))
	}
	return next, entry, prompt, nil
}

// reapSessions drops interactive sessions idle past the TTL.
func (s *Service) reapSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.sessionTTL)
			s.sessionMu.Lock()
			for id, sess := range s.sessions {
				if sess.lastActive.Before(cutoff) {
					delete(s.sessions, id)
				}
			}
			metrics.UpdateActiveSessions(len(s.sessions))
			s.sessionMu.Unlock()
		}
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.runQueue.Len(ctx)
		completed := s.results.Count(ctx)

		s.sessionMu.Lock()
		openSessions := len(s.sessions)
		s.sessionMu.Unlock()

		stats["queueLength"] = queueLen
		stats["completedRuns"] = completed
		stats["openSessions"] = openSessions

		// Update metrics
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateCompletedRuns(completed)
		metrics.UpdateActiveSessions(openSessions)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
