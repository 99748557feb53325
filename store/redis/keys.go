package redis

// Redis key naming conventions for pipeline data.
// Queue lists are prefixed to avoid collisions with state hashes; state and
// vertex keys are stored verbatim as supplied by the store package helpers.

const queueKeyPrefix = "pipeline:queue:"

// queueKey returns the List key for a queue: pipeline:queue:{name}
func queueKey(name string) string { return queueKeyPrefix + name }
