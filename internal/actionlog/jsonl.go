package actionlog

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// JSONLSink appends action records as line-delimited JSON. A sink with an
// empty path is disabled and accepts appends as no-ops.
type JSONLSink struct {
	mu   sync.Mutex
	path string
}

func NewJSONLSink(path string) *JSONLSink {
	return &JSONLSink{path: path}
}

func (s *JSONLSink) Enabled() bool {
	return s != nil && s.path != ""
}

func (s *JSONLSink) LogAction(actionType string, data map[string]any, result string, status string) (string, error) {
	if !s.Enabled() {
		return "", nil
	}

	rec := Record{
		ID:         uuid.NewString(),
		Timestamp:  newTimestamp(),
		ActionType: actionType,
		Data:       data,
		Result:     result,
		Status:     status,
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("action log marshal: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return "", fmt.Errorf("action log mkdir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("action log open: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(b, '\n')); err != nil {
		return "", fmt.Errorf("action log write: %w", err)
	}
	return rec.ID, nil
}

// ExportJSONLToCSV converts a line-delimited action log into CSV.
func ExportJSONLToCSV(inputPath string, outputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open action log: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output csv: %w", err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	defer w.Flush()
	if err := w.Write([]string{"id", "ts", "action_type", "status", "result"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	s := bufio.NewScanner(in)
	for s.Scan() {
		line := s.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("parse action log line: %w", err)
		}
		if err := w.Write([]string{rec.ID, rec.Timestamp, rec.ActionType, rec.Status, rec.Result}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("scan action log: %w", err)
	}
	return nil
}
