// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Interaction pipeline metrics
	IncInteractionRecorded()
	IncExtractionFailed()
	ObserveExtractionDuration(duration time.Duration)

	// User upsert metrics
	IncUserUpserted(outcome string) // outcome: "created", "updated", "unchanged"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
