package metrics

import (
	"sync"
	"time"
)

// Recorder defines minimal metric hooks for dispatch instrumentation.
type Recorder interface {
	ObserveDispatch(endpoint string, status string, duration time.Duration)
	ObserveRetry(endpoint string)
	ObserveBatch(size int)
}

// NoopRecorder drops all observations.
type NoopRecorder struct{}

func (NoopRecorder) ObserveDispatch(string, string, time.Duration) {}
func (NoopRecorder) ObserveRetry(string)                          {}
func (NoopRecorder) ObserveBatch(int)                             {}

// Snapshot is a point-in-time view of the in-memory counters.
type Snapshot struct {
	TotalDispatches  int64
	FailedDispatches int64
	RetryAttempts    int64
	BatchItems       int64
}

// InMemoryRecorder counts observations for run reports and tests.
type InMemoryRecorder struct {
	mu   sync.Mutex
	snap Snapshot
}

func NewInMemoryRecorder() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

func (r *InMemoryRecorder) ObserveDispatch(_ string, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.TotalDispatches++
	if status == "failed" {
		r.snap.FailedDispatches++
	}
}

func (r *InMemoryRecorder) ObserveRetry(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.RetryAttempts++
}

func (r *InMemoryRecorder) ObserveBatch(size int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.BatchItems += int64(size)
}

func (r *InMemoryRecorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}
