package pipeline

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds configuration for the pipeline orchestrator.
type Config struct {
	// RedisAddr is the address of the Redis queue/state store.
	RedisAddr string

	// RedisDB is the Redis logical database number.
	RedisDB int

	// AuditURL is the optional Postgres connection string for the audit
	// store. Empty disables audit recording.
	AuditURL string

	// JobTTL is the expiry applied to job state records at creation.
	// It is never refreshed by subsequent updates: a job still in flight
	// past this horizon disappears from the state store. Dead-letter
	// entries are retained without expiry.
	JobTTL time.Duration

	// DequeueTimeout is the default blocking-pop timeout for workers.
	// Zero blocks indefinitely.
	DequeueTimeout time.Duration

	// MaxRetries is how many times a failed stage is re-attempted within
	// a single advance before the job is dead-lettered.
	MaxRetries int

	// QualityGates enables the ironist quality-gate check.
	QualityGates bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		RedisAddr:      "localhost:6379",
		RedisDB:        0,
		JobTTL:         24 * time.Hour,
		DequeueTimeout: 5 * time.Second,
		MaxRetries:     3,
		QualityGates:   true,
	}
}

// FromEnv returns a Config populated from environment variables, falling
// back to DefaultConfig for anything unset. A .env file in the working
// directory is loaded first if present (missing file is not an error).
//
// Recognized variables: PIPELINE_REDIS_ADDR, PIPELINE_REDIS_DB,
// PIPELINE_AUDIT_URL, PIPELINE_JOB_TTL, PIPELINE_DEQUEUE_TIMEOUT,
// PIPELINE_MAX_RETRIES, PIPELINE_QUALITY_GATES.
func FromEnv() Config {
	_ = godotenv.Load() //nolint:errcheck // absent .env file is fine

	cfg := DefaultConfig()

	if v := os.Getenv("PIPELINE_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("PIPELINE_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RedisDB = n
		}
	}
	if v := os.Getenv("PIPELINE_AUDIT_URL"); v != "" {
		cfg.AuditURL = v
	}
	if v := os.Getenv("PIPELINE_JOB_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.JobTTL = d
		}
	}
	if v := os.Getenv("PIPELINE_DEQUEUE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.DequeueTimeout = d
		}
	}
	if v := os.Getenv("PIPELINE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("PIPELINE_QUALITY_GATES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.QualityGates = b
		}
	}

	return cfg
}
