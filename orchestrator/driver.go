// Package orchestrator coordinates the full job lifecycle: submission,
// stage-by-stage advancement, worker status reporting, dead-lettering, and
// administrative resets. It owns the state machine; stores and workers
// never transition a job themselves.
package orchestrator

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	pipeline "github.com/brian95240/elite-video-pipeline-v3.0"
	"github.com/brian95240/elite-video-pipeline-v3.0/archetype"
	"github.com/brian95240/elite-video-pipeline-v3.0/audit"
	"github.com/brian95240/elite-video-pipeline-v3.0/backoff"
	"github.com/brian95240/elite-video-pipeline-v3.0/cinematography"
	"github.com/brian95240/elite-video-pipeline-v3.0/dlq"
	"github.com/brian95240/elite-video-pipeline-v3.0/stage"
	"github.com/brian95240/elite-video-pipeline-v3.0/store"
)

// tracerName is the instrumentation scope name for pipeline tracing.
const tracerName = "github.com/brian95240/elite-video-pipeline-v3.0"

// Mode selects how the driver persists work. It is fixed at construction;
// there is no runtime fallback between modes.
type Mode int

const (
	// ModeDurable runs against a shared store: durable state, queues, DLQ.
	ModeDurable Mode = iota
	// ModeLocalOnly acknowledges submissions with a locally derived job ID
	// but persists nothing. Advance and every store-backed operation
	// refuse with ErrLocalOnly.
	ModeLocalOnly
)

// Driver orchestrates jobs through the fixed stage sequence.
type Driver struct {
	mode    Mode
	store   store.Store
	catalog *archetype.Catalog
	engine  *cinematography.Engine
	gate    *cinematography.QualityGate
	dlq     *dlq.Service
	audit   audit.Recorder

	cfg          pipeline.Config
	retryDelay   backoff.Strategy
	qualityGates bool
	validate     *validator.Validate
	logger       *slog.Logger
	tracer       trace.Tracer
	runners      map[stage.Stage]StageRunner
}

// Option configures the Driver.
type Option func(*Driver)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// WithAudit wires a lifecycle recorder. Recorder errors are logged, never
// propagated.
func WithAudit(r audit.Recorder) Option {
	return func(d *Driver) { d.audit = r }
}

// WithConfig overrides the default configuration.
func WithConfig(cfg pipeline.Config) Option {
	return func(d *Driver) {
		d.cfg = cfg
		d.qualityGates = cfg.QualityGates
	}
}

// WithStageRunner registers a custom runner for one stage, replacing the
// default.
func WithStageRunner(s stage.Stage, fn StageRunner) Option {
	return func(d *Driver) { d.runners[s] = fn }
}

// WithTracerProvider sets the TracerProvider used for spans around Submit,
// Advance, and stage execution. Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(d *Driver) { d.tracer = tp.Tracer(tracerName) }
}

// WithBackoff sets the delay strategy between stage retry attempts.
// Defaults to no delay.
func WithBackoff(s backoff.Strategy) Option {
	return func(d *Driver) { d.retryDelay = s }
}

// WithQualityGates toggles the ironist quality-gate check.
func WithQualityGates(enabled bool) Option {
	return func(d *Driver) { d.qualityGates = enabled }
}

// WithValidator sets a custom request validator.
func WithValidator(v *validator.Validate) Option {
	return func(d *Driver) { d.validate = v }
}

// New creates a durable driver over the shared store.
func New(st store.Store, catalog *archetype.Catalog, opts ...Option) (*Driver, error) {
	if st == nil {
		return nil, pipeline.ErrNoStore
	}
	d := newDriver(ModeDurable, st, catalog, opts...)
	d.dlq = dlq.NewService(st, dlq.WithLogger(d.logger))
	return d, nil
}

// NewLocal creates a local-only driver: submissions are validated and
// acknowledged with a job ID, but nothing is persisted.
func NewLocal(catalog *archetype.Catalog, opts ...Option) *Driver {
	return newDriver(ModeLocalOnly, nil, catalog, opts...)
}

func newDriver(mode Mode, st store.Store, catalog *archetype.Catalog, opts ...Option) *Driver {
	if catalog == nil {
		catalog = archetype.Default()
	}
	d := &Driver{
		mode:         mode,
		store:        st,
		catalog:      catalog,
		gate:         cinematography.DefaultQualityGate(),
		audit:        audit.Nop{},
		cfg:          pipeline.DefaultConfig(),
		retryDelay:   backoff.None{},
		qualityGates: true,
		validate:     validator.New(),
		logger:       slog.Default(),
		tracer:       otel.Tracer(tracerName),
		runners:      make(map[stage.Stage]StageRunner),
	}
	for _, o := range opts {
		o(d)
	}
	if d.engine == nil {
		d.engine = cinematography.NewEngine(cinematography.WithLogger(d.logger))
	}
	for _, s := range stage.All() {
		if _, ok := d.runners[s]; !ok {
			d.runners[s] = d.defaultRunner(s)
		}
	}
	return d
}

// Mode reports the driver's persistence mode.
func (d *Driver) Mode() Mode { return d.mode }

// DLQ exposes the dead letter queue service; nil in local-only mode.
func (d *Driver) DLQ() *dlq.Service { return d.dlq }

// Catalog exposes the archetype catalog the driver validates against.
func (d *Driver) Catalog() *archetype.Catalog { return d.catalog }
