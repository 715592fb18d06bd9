package actionlog

import "time"

// Record is one persisted action-log entry.
type Record struct {
	ID         string         `json:"id"`
	Timestamp  string         `json:"ts"`
	ActionType string         `json:"action_type"`
	Data       map[string]any `json:"data,omitempty"`
	Result     string         `json:"result,omitempty"`
	Status     string         `json:"status"`
}

// Sink receives terminal action outcomes and no-op entries. Calls are
// fire-and-forget from the router's perspective: a sink failure must never
// abort routing. Implementations must tolerate concurrent appends.
type Sink interface {
	LogAction(actionType string, data map[string]any, result string, status string) (string, error)
}

// Stats summarizes stored actions by status.
type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

func newTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Multi fans one append out to several sinks. The first id wins; errors
// from secondary sinks are dropped.
type Multi struct {
	sinks []Sink
}

func NewMulti(sinks ...Sink) *Multi {
	nonNil := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			nonNil = append(nonNil, s)
		}
	}
	return &Multi{sinks: nonNil}
}

func (m *Multi) LogAction(actionType string, data map[string]any, result string, status string) (string, error) {
	var firstID string
	var firstErr error
	for _, s := range m.sinks {
		id, err := s.LogAction(actionType, data, result, status)
		if firstID == "" && err == nil {
			firstID = id
		}
		if firstErr == nil && err != nil {
			firstErr = err
		}
	}
	return firstID, firstErr
}
