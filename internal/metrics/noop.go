package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncInteractionRecorded is a no-op.
func (n *NoopRecorder) IncInteractionRecorded() {}

// IncExtractionFailed is a no-op.
func (n *NoopRecorder) IncExtractionFailed() {}

// ObserveExtractionDuration is a no-op.
func (n *NoopRecorder) ObserveExtractionDuration(duration time.Duration) {}

// IncUserUpserted is a no-op.
func (n *NoopRecorder) IncUserUpserted(outcome string) {}
