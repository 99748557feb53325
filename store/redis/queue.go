package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pipeline "github.com/brian95240/elite-video-pipeline-v3.0"
	"github.com/brian95240/elite-video-pipeline-v3.0/store"
)

// Enqueue appends payload to the tail of the named queue's List.
func (s *Store) Enqueue(ctx context.Context, queue string, payload []byte) error {
	if !store.ValidQueue(queue) {
		return fmt.Errorf("pipeline/redis: enqueue %q: %w", queue, pipeline.ErrUnknownQueue)
	}

	if err := s.client.RPush(ctx, queueKey(queue), payload).Err(); err != nil {
		return fmt.Errorf("pipeline/redis: enqueue %q: %w", queue, err)
	}
	return nil
}

// Dequeue removes and returns the head element of the named queue, blocking
// up to timeout. Zero timeout blocks indefinitely. Returns (nil, nil) when
// the timeout elapses with no item.
func (s *Store) Dequeue(ctx context.Context, queue string, timeout time.Duration) ([]byte, error) {
	if !store.ValidQueue(queue) {
		return nil, fmt.Errorf("pipeline/redis: dequeue %q: %w", queue, pipeline.ErrUnknownQueue)
	}

	res, err := s.client.BLPop(ctx, timeout, queueKey(queue)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("pipeline/redis: dequeue %q: %w", queue, err)
	}

	// BLPop returns [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("pipeline/redis: dequeue %q: unexpected reply length %d", queue, len(res))
	}
	return []byte(res[1]), nil
}

// QueueLength returns the current depth of the named queue.
func (s *Store) QueueLength(ctx context.Context, queue string) (int64, error) {
	if !store.ValidQueue(queue) {
		return 0, fmt.Errorf("pipeline/redis: queue length %q: %w", queue, pipeline.ErrUnknownQueue)
	}

	n, err := s.client.LLen(ctx, queueKey(queue)).Result()
	if err != nil {
		return 0, fmt.Errorf("pipeline/redis: queue length %q: %w", queue, err)
	}
	return n, nil
}

// ListQueue returns up to limit payloads from the head of the queue without
// removing them.
func (s *Store) ListQueue(ctx context.Context, queue string, limit int64) ([][]byte, error) {
	if !store.ValidQueue(queue) {
		return nil, fmt.Errorf("pipeline/redis: list %q: %w", queue, pipeline.ErrUnknownQueue)
	}
	if limit <= 0 {
		limit = -1 // LRANGE 0 -1 is the whole list
	} else {
		limit--
	}

	vals, err := s.client.LRange(ctx, queueKey(queue), 0, limit).Result()
	if err != nil {
		return nil, fmt.Errorf("pipeline/redis: list %q: %w", queue, err)
	}

	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out, nil
}

// PurgeQueue removes every element from the named queue.
func (s *Store) PurgeQueue(ctx context.Context, queue string) error {
	if !store.ValidQueue(queue) {
		return fmt.Errorf("pipeline/redis: purge %q: %w", queue, pipeline.ErrUnknownQueue)
	}

	if err := s.client.Del(ctx, queueKey(queue)).Err(); err != nil {
		return fmt.Errorf("pipeline/redis: purge %q: %w", queue, err)
	}
	return nil
}
