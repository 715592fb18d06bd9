package actionlog

import (
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps action records in process memory, append-only, and
// answers recent/stats queries. It is the default store for a single-node
// deployment and for tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LogAction(actionType string, data map[string]any, result string, status string) (string, error) {
	rec := Record{
		ID:         uuid.NewString(),
		Timestamp:  newTimestamp(),
		ActionType: actionType,
		Data:       data,
		Result:     result,
		Status:     status,
	}

	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	return rec.ID, nil
}

// Recent returns up to n most recent records, newest first.
func (s *MemoryStore) Recent(n int) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || n > len(s.records) {
		n = len(s.records)
	}
	out := make([]Record, 0, n)
	for i := len(s.records) - 1; i >= len(s.records)-n; i-- {
		out = append(out, s.records[i])
	}
	return out
}

func (s *MemoryStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{Total: len(s.records), ByStatus: make(map[string]int)}
	for _, rec := range s.records {
		stats.ByStatus[rec.Status]++
	}
	return stats
}
