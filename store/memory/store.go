// Package memory is a fully in-memory implementation of store.Store.
// Safe for concurrent access. Intended for unit testing and for the
// orchestrator's degraded local-only mode.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	pipeline "github.com/brian95240/elite-video-pipeline-v3.0"
	"github.com/brian95240/elite-video-pipeline-v3.0/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

type stateRecord struct {
	attrs     map[string]string
	expiresAt time.Time // zero means no expiry
}

func (r *stateRecord) expired(now time.Time) bool {
	return !r.expiresAt.IsZero() && now.After(r.expiresAt)
}

// Store is an in-memory store.Store. Blocking dequeues are woken by
// enqueues through a shared condition variable.
type Store struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queues map[string][][]byte
	states map[string]*stateRecord
}

// New returns a new empty Store.
func New() *Store {
	s := &Store{
		queues: make(map[string][][]byte),
		states: make(map[string]*stateRecord),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Ping always succeeds for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Queue store
// ──────────────────────────────────────────────────

// Enqueue appends payload to the tail of the named queue and wakes any
// blocked dequeuer.
func (s *Store) Enqueue(_ context.Context, queue string, payload []byte) error {
	if !store.ValidQueue(queue) {
		return fmt.Errorf("pipeline/memory: enqueue %q: %w", queue, pipeline.ErrUnknownQueue)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]byte, len(payload))
	copy(cp, payload)
	s.queues[queue] = append(s.queues[queue], cp)
	s.cond.Broadcast()
	return nil
}

// Dequeue removes and returns the head element, blocking up to timeout.
// Zero timeout blocks until an item arrives or ctx is done. Returns
// (nil, nil) when the timeout elapses with no item. Each payload is
// delivered to exactly one caller.
func (s *Store) Dequeue(ctx context.Context, queue string, timeout time.Duration) ([]byte, error) {
	if !store.ValidQueue(queue) {
		return nil, fmt.Errorf("pipeline/memory: dequeue %q: %w", queue, pipeline.ErrUnknownQueue)
	}

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if q := s.queues[queue]; len(q) > 0 {
			head := q[0]
			s.queues[queue] = q[1:]
			return head, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return nil, nil
		}

		// Wake periodically so deadline and ctx are re-checked even
		// when no enqueue arrives.
		wake := time.AfterFunc(10*time.Millisecond, s.cond.Broadcast)
		s.cond.Wait()
		wake.Stop()
	}
}

// QueueLength returns the current depth of the named queue.
func (s *Store) QueueLength(_ context.Context, queue string) (int64, error) {
	if !store.ValidQueue(queue) {
		return 0, fmt.Errorf("pipeline/memory: queue length %q: %w", queue, pipeline.ErrUnknownQueue)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.queues[queue])), nil
}

// ListQueue returns up to limit payloads from the head without removal.
func (s *Store) ListQueue(_ context.Context, queue string, limit int64) ([][]byte, error) {
	if !store.ValidQueue(queue) {
		return nil, fmt.Errorf("pipeline/memory: list %q: %w", queue, pipeline.ErrUnknownQueue)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.queues[queue]
	if limit > 0 && int64(len(q)) > limit {
		q = q[:limit]
	}
	out := make([][]byte, len(q))
	for i, p := range q {
		cp := make([]byte, len(p))
		copy(cp, p)
		out[i] = cp
	}
	return out, nil
}

// PurgeQueue removes every element from the named queue.
func (s *Store) PurgeQueue(_ context.Context, queue string) error {
	if !store.ValidQueue(queue) {
		return fmt.Errorf("pipeline/memory: purge %q: %w", queue, pipeline.ErrUnknownQueue)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.queues, queue)
	return nil
}

// ──────────────────────────────────────────────────
// State store
// ──────────────────────────────────────────────────

// CreateState writes a fresh attribute map under key with the given TTL.
func (s *Store) CreateState(_ context.Context, key string, attrs map[string]string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &stateRecord{attrs: make(map[string]string, len(attrs))}
	for k, v := range attrs {
		rec.attrs[k] = v
	}
	if ttl > 0 {
		rec.expiresAt = time.Now().Add(ttl)
	}
	s.states[key] = rec
	return nil
}

// UpdateState merges partial attributes into an existing record without
// refreshing its expiry.
func (s *Store) UpdateState(_ context.Context, key string, attrs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.states[key]
	if !ok || rec.expired(time.Now()) {
		return fmt.Errorf("pipeline/memory: update state %q: %w", key, pipeline.ErrStateNotFound)
	}
	for k, v := range attrs {
		rec.attrs[k] = v
	}
	return nil
}

// GetState returns a copy of the attribute map for key.
func (s *Store) GetState(_ context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.states[key]
	if !ok || rec.expired(time.Now()) {
		return nil, fmt.Errorf("pipeline/memory: get state %q: %w", key, pipeline.ErrStateNotFound)
	}

	out := make(map[string]string, len(rec.attrs))
	for k, v := range rec.attrs {
		out[k] = v
	}
	return out, nil
}

// ScanKeys enumerates non-expired keys matching the given prefix.
func (s *Store) ScanKeys(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var keys []string
	for k, rec := range s.states {
		if rec.expired(now) {
			continue
		}
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// DeleteState removes a record. Deleting an absent key is not an error.
func (s *Store) DeleteState(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, key)
	return nil
}
