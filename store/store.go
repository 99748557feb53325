// Package store defines the queue/state persistence contract for the
// pipeline. The contract requires an atomic tail-push / blocking-head-pop
// ordered list primitive per named queue, a keyed hash-map primitive with
// per-key expiry and merge writes, and prefix-based key enumeration.
// Backends: Redis and Memory.
package store

import (
	"context"
	"time"
)

// Queue names. There are exactly six: one per queued stage plus the
// dead-letter queue. The final three pipeline stages are driven
// synchronously and have no queue.
const (
	QueueOracle       = "oracle"
	QueueTrickster    = "trickster"
	QueueCartographer = "cartographer"
	QueueSpectacle    = "spectacle"
	QueueIronist      = "ironist"
	QueueDeadLetter   = "dlq"
)

// Key prefixes for state-store records.
const (
	// StateKeyPrefix namespaces authoritative job records.
	StateKeyPrefix = "pipeline:state:"
	// VertexKeyPrefix namespaces seeded archetype profile records.
	VertexKeyPrefix = "emotional_vertices:"
)

// StageQueues returns the five stage queue names in processing order.
func StageQueues() []string {
	return []string{
		QueueOracle, QueueTrickster, QueueCartographer,
		QueueSpectacle, QueueIronist,
	}
}

// AllQueues returns every named queue, dead-letter queue included.
func AllQueues() []string {
	return append(StageQueues(), QueueDeadLetter)
}

// StateKey returns the state-store key for a job record.
func StateKey(jobID string) string { return StateKeyPrefix + jobID }

// VertexKey returns the state-store key for a seeded archetype profile.
func VertexKey(emotion, intensity string) string {
	return VertexKeyPrefix + emotion + ":" + intensity
}

// QueueStore is the ordered-queue half of the contract. Delivery is
// at-most-once per pop: there is no acknowledgment protocol, so a consumer
// crash after a pop and before reporting loses that unit of work. This is a
// documented limitation of the design, not something backends mask.
type QueueStore interface {
	// Enqueue appends payload to the tail of the named queue.
	// Unknown queue names are rejected with pipeline.ErrUnknownQueue.
	Enqueue(ctx context.Context, queue string, payload []byte) error

	// Dequeue removes and returns the head element, blocking up to
	// timeout (zero blocks indefinitely). A nil payload with nil error
	// means the timeout elapsed with no item. Each payload is delivered
	// to exactly one concurrent caller.
	Dequeue(ctx context.Context, queue string, timeout time.Duration) ([]byte, error)

	// QueueLength returns the current depth of the named queue.
	QueueLength(ctx context.Context, queue string) (int64, error)

	// ListQueue returns up to limit payloads from the head of the queue
	// without removing them. Used for dead-letter inspection.
	ListQueue(ctx context.Context, queue string, limit int64) ([][]byte, error)

	// PurgeQueue removes every element from the named queue.
	PurgeQueue(ctx context.Context, queue string) error
}

// StateStore is the keyed hash-map half of the contract.
type StateStore interface {
	// CreateState writes a fresh attribute map under key with the given
	// expiry. The TTL is fixed at creation; UpdateState never extends it.
	// A zero ttl stores the record without expiry.
	CreateState(ctx context.Context, key string, attrs map[string]string, ttl time.Duration) error

	// UpdateState merges partial attributes into an existing record
	// without refreshing its TTL. Missing records are rejected with
	// pipeline.ErrStateNotFound: a record that expired mid-flight
	// surfaces loudly rather than being silently recreated.
	UpdateState(ctx context.Context, key string, attrs map[string]string) error

	// GetState returns the full attribute map for key, or
	// pipeline.ErrStateNotFound when absent or expired.
	GetState(ctx context.Context, key string) (map[string]string, error)

	// ScanKeys enumerates keys matching the given prefix.
	ScanKeys(ctx context.Context, prefix string) ([]string, error)

	// DeleteState removes a record. Deleting an absent key is not an
	// error.
	DeleteState(ctx context.Context, key string) error
}

// Store is the aggregate persistence interface implemented by each backend.
type Store interface {
	QueueStore
	StateStore

	// Ping checks store connectivity.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// ValidQueue reports whether name is one of the six named queues.
func ValidQueue(name string) bool {
	switch name {
	case QueueOracle, QueueTrickster, QueueCartographer,
		QueueSpectacle, QueueIronist, QueueDeadLetter:
		return true
	default:
		return false
	}
}
