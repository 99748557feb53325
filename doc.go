// Package pipeline provides the core job-orchestration layer for the Elite
// Video Pipeline: job submission, per-stage queueing, status transitions,
// dead-letter routing, and health/metrics reporting, coordinated through a
// shared Redis queue/state store.
//
// Pipeline is designed as a library, not a service. Import it, configure a
// store backend, and drive jobs through the fixed eight-stage sequence:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	st := redisstore.New(client)
//	drv, err := orchestrator.New(st, archetype.Default())
//	if err != nil { ... }
//
//	jobID, err := drv.Submit(ctx, orchestrator.SubmitRequest{
//		VideoID:   "video_001",
//		Emotion:   "curiosity",
//		Intensity: "medium",
//	})
//	if err != nil { ... }
//	if err := drv.Advance(ctx, jobID); err != nil { ... }
//
// Subsystem packages:
//
//   - job: the job entity and its status state machine
//   - stage: the closed eight-stage enumeration
//   - archetype: the immutable 12-archetype emotional profile catalog
//   - cinematography: filter-chain templating and quality gates
//   - store: the queue/state persistence contract (redis and memory backends)
//   - dlq: dead-letter entries and inspection
//   - orchestrator: the driver that sequences jobs through the stages
//   - worker: blocking stage consumers for distributed processing
//   - health: connectivity, queue, and catalog probes plus metrics
//   - audit: optional Postgres recorder for historical reporting
//
// The orchestrator is the exclusive writer of job state. Workers never
// mutate the store directly; they report stage outcomes through the
// orchestrator's status-update operation. Queues carry point-in-time
// snapshots of job payloads, not live references, so a popped payload may be
// stale relative to the authoritative state record.
package pipeline
