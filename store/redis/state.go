package redis

import (
	"context"
	"fmt"
	"time"

	pipeline "github.com/brian95240/elite-video-pipeline-v3.0"
)

// CreateState writes a fresh attribute hash under key with the given TTL.
// The hash write and the expiry are applied in one transaction pipeline.
func (s *Store) CreateState(ctx context.Context, key string, attrs map[string]string, ttl time.Duration) error {
	fields := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		fields[k] = v
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline/redis: create state %q: %w", key, err)
	}
	return nil
}

// UpdateState merges partial attributes into an existing hash. The TTL is
// deliberately not refreshed. A missing or expired record is rejected so the
// fixed-TTL tradeoff surfaces instead of ghost-writing a partial hash.
func (s *Store) UpdateState(ctx context.Context, key string, attrs map[string]string) error {
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("pipeline/redis: update state %q: %w", key, err)
	}
	if exists == 0 {
		return fmt.Errorf("pipeline/redis: update state %q: %w", key, pipeline.ErrStateNotFound)
	}

	fields := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		fields[k] = v
	}
	if err := s.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("pipeline/redis: update state %q: %w", key, err)
	}
	return nil
}

// GetState returns the full attribute map for key.
func (s *Store) GetState(ctx context.Context, key string) (map[string]string, error) {
	vals, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("pipeline/redis: get state %q: %w", key, err)
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("pipeline/redis: get state %q: %w", key, pipeline.ErrStateNotFound)
	}
	return vals, nil
}

// ScanKeys enumerates keys matching the given prefix using SCAN.
func (s *Store) ScanKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("pipeline/redis: scan %q: %w", prefix, err)
	}
	return keys, nil
}

// DeleteState removes a record. Deleting an absent key is not an error.
func (s *Store) DeleteState(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("pipeline/redis: delete state %q: %w", key, err)
	}
	return nil
}
