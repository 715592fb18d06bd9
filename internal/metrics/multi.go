package metrics

import "time"

// MultiRecorder fans out metrics to multiple recorders.
type MultiRecorder struct {
	recorders []Recorder
}

func NewMultiRecorder(recorders ...Recorder) *MultiRecorder {
	nonNil := make([]Recorder, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			nonNil = append(nonNil, r)
		}
	}
	return &MultiRecorder{recorders: nonNil}
}

func (m *MultiRecorder) ObserveDispatch(endpoint string, status string, duration time.Duration) {
	for _, r := range m.recorders {
		r.ObserveDispatch(endpoint, status, duration)
	}
}

func (m *MultiRecorder) ObserveRetry(endpoint string) {
	for _, r := range m.recorders {
		r.ObserveRetry(endpoint)
	}
}

func (m *MultiRecorder) ObserveBatch(size int) {
	for _, r := range m.recorders {
		r.ObserveBatch(size)
	}
}
