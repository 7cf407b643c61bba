// Package execctx is the keyed store of in-flight execution contexts
// (spec.md §4.8): atomic put/take, background TTL eviction, and an
// optional hard cap that rejects new intents rather than evicting
// in-flight ones. Grounded on DimaJoyti-go-coffee's arbitrage_detector.go,
// the closest concurrency idiom in the pack for a mutex-guarded map swept
// by a cancellable background loop (Start/Stop/detectionLoop).
package execctx

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/zappilot/dustzap/pkg/types"
)

// ErrTooManyContexts is returned by Put when maxContexts is already
// reached (spec.md §4.8's bounding behavior).
var ErrTooManyContexts = errors.New("execctx: too many in-flight contexts")

type entry struct {
	ctx       *types.ExecutionContext
	createdAt time.Time
}

// Store is the sole process-wide mutable state of the engine (spec.md §5).
type Store struct {
	mu                  sync.Mutex
	entries             map[string]*entry
	maxContexts         int
	connectionTimeout   time.Duration
	cleanupInterval     time.Duration
	stopCh              chan struct{}
	stopped             bool
}

// Option configures a Store at construction time.
type Option func(*Store)

func WithMaxContexts(max int) Option {
	return func(s *Store) { s.maxContexts = max }
}

func WithConnectionTimeout(d time.Duration) Option {
	return func(s *Store) { s.connectionTimeout = d }
}

func WithCleanupInterval(d time.Duration) Option {
	return func(s *Store) { s.cleanupInterval = d }
}

// New builds a Store with spec.md's defaults: maxContexts=1000,
// connectionTimeoutMs=5min, cleanupIntervalMs=60s.
func New(opts ...Option) *Store {
	s := &Store{
		entries:           make(map[string]*entry),
		maxContexts:       1000,
		connectionTimeout: 5 * time.Minute,
		cleanupInterval:   60 * time.Second,
		stopCh:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores a context under its intent id, rejecting the insert with
// ErrTooManyContexts when the store is already at capacity.
func (s *Store) Put(ctx *types.ExecutionContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) >= s.maxContexts {
		return ErrTooManyContexts
	}
	s.entries[ctx.IntentID] = &entry{ctx: ctx, createdAt: time.Now()}
	return nil
}

// Take atomically removes and returns the context for id, guaranteeing
// that at most one caller ever receives it — this is what enforces
// single-consumer streaming semantics (spec.md §4.8).
func (s *Store) Take(id string) (*types.ExecutionContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	delete(s.entries, id)
	return e.ctx, true
}

// Count reports the number of in-flight contexts, for tests and metrics.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// evictExpired removes every entry older than connectionTimeout.
func (s *Store) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, e := range s.entries {
		if now.Sub(e.createdAt) > s.connectionTimeout {
			delete(s.entries, id)
		}
	}
}

// Run starts the cancellable background eviction loop (spec.md §9
// "cleanup timer -> cancellable periodic task"). Returns when ctx is
// cancelled or Stop is called.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.evictExpired()
		}
	}
}

// Stop signals Run to exit, for tests that construct a Store without an
// outer cancellable context.
func (s *Store) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.stopCh)
}
