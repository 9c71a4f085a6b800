package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	InteractionsRecorded      uint64
	ExtractionsFailed         uint64
	ExtractionDurationCount   uint64
	ExtractionDurationTotalNs int64
	UsersCreated              uint64
	UsersUpdated              uint64
	UsersUnchanged            uint64
}

// InMemoryRecorder stores metrics in memory using atomic counters.
type InMemoryRecorder struct {
	interactionsRecorded      uint64
	extractionsFailed         uint64
	extractionDurationCount   uint64
	extractionDurationTotalNs int64
	usersCreated              uint64
	usersUpdated              uint64
	usersUnchanged            uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		InteractionsRecorded:      atomic.LoadUint64(&m.interactionsRecorded),
		ExtractionsFailed:         atomic.LoadUint64(&m.extractionsFailed),
		ExtractionDurationCount:   atomic.LoadUint64(&m.extractionDurationCount),
		ExtractionDurationTotalNs: atomic.LoadInt64(&m.extractionDurationTotalNs),
		UsersCreated:              atomic.LoadUint64(&m.usersCreated),
		UsersUpdated:              atomic.LoadUint64(&m.usersUpdated),
		UsersUnchanged:            atomic.LoadUint64(&m.usersUnchanged),
	}
}

// IncInteractionRecorded increments the recorded interaction counter.
func (m *InMemoryRecorder) IncInteractionRecorded() {
	atomic.AddUint64(&m.interactionsRecorded, 1)
}

// IncExtractionFailed increments the failed extraction counter.
func (m *InMemoryRecorder) IncExtractionFailed() {
	atomic.AddUint64(&m.extractionsFailed, 1)
}

// ObserveExtractionDuration records one model invocation duration.
func (m *InMemoryRecorder) ObserveExtractionDuration(duration time.Duration) {
	atomic.AddUint64(&m.extractionDurationCount, 1)
	atomic.AddInt64(&m.extractionDurationTotalNs, duration.Nanoseconds())
}

// IncUserUpserted increments the counter for the given upsert outcome.
func (m *InMemoryRecorder) IncUserUpserted(outcome string) {
	switch outcome {
	case "created":
		atomic.AddUint64(&m.usersCreated, 1)
	case "updated":
		atomic.AddUint64(&m.usersUpdated, 1)
	case "unchanged":
		atomic.AddUint64(&m.usersUnchanged, 1)
	}
}
