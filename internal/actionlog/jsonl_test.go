package actionlog

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestJSONLSinkAppendsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "action_log.json")
	sink := NewJSONLSink(path)

	id, err := sink.LogAction("escalate", map[string]any{"priority": "high"}, "Success: test", "success")
	if err != nil {
		t.Fatalf("log action: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}
	if _, err := sink.LogAction("alert", nil, "Failed after 3 attempts", "failed"); err != nil {
		t.Fatalf("second log action: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var records []Record
	s := bufio.NewScanner(f)
	for s.Scan() {
		var rec Record
		if err := json.Unmarshal(s.Bytes(), &rec); err != nil {
			t.Fatalf("parse line: %v", err)
		}
		records = append(records, rec)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(records))
	}
	if records[0].ActionType != "escalate" || records[0].Status != "success" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].Status != "failed" {
		t.Fatalf("unexpected second record: %+v", records[1])
	}
}

func TestJSONLSinkDisabledIsNoOp(t *testing.T) {
	sink := NewJSONLSink("")
	if sink.Enabled() {
		t.Fatal("empty path must disable the sink")
	}
	id, err := sink.LogAction("escalate", nil, "ok", "success")
	if err != nil || id != "" {
		t.Fatalf("disabled sink must no-op, got id=%q err=%v", id, err)
	}
}

func TestExportJSONLToCSV(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "action_log.json")
	csvPath := filepath.Join(dir, "actions.csv")

	sink := NewJSONLSink(logPath)
	_, _ = sink.LogAction("escalate", nil, "Success: test", "success")
	_, _ = sink.LogAction("alert", nil, "Failed after 2 attempts", "failed")

	if err := ExportJSONLToCSV(logPath, csvPath); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "id" || rows[0][2] != "action_type" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][2] != "escalate" || rows[2][3] != "failed" {
		t.Fatalf("unexpected rows: %v", rows[1:])
	}
}

func TestExportJSONLToCSVMissingInput(t *testing.T) {
	dir := t.TempDir()
	if err := ExportJSONLToCSV(filepath.Join(dir, "missing.json"), filepath.Join(dir, "out.csv")); err == nil {
		t.Fatal("expected error for missing input")
	}
}
