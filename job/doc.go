// Package job defines the pipeline job entity and its status state machine.
//
// A job's authoritative record lives in the state store as an attribute map
// with a fixed 24-hour expiry. Queues carry JSON snapshots of the record,
// encoded with EncodeSnapshot; a snapshot is a point-in-time copy and may be
// stale relative to the state record by the time a worker pops it.
package job
