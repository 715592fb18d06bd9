package endpoint

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp yaml: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeTempYAML(t, `
endpoints:
  /crm/escalate:
    method: POST
    base_url: https://api.example.com
    success_rate: 0.95
    timeout: 2s
    retry_count: 3
    retry_delay: 1s
  default:
    method: POST
    base_url: https://api.example.com
    success_rate: 0.90
    timeout: 1s
    retry_count: 1
    retry_delay: 500ms
`)

	reg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	cfg := reg.Resolve("/crm/escalate")
	if cfg.Timeout != 2*time.Second || cfg.RetryCount != 3 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if got := reg.Resolve("/unknown").SuccessRate; got != 0.90 {
		t.Fatalf("expected default fallback, got %v", got)
	}
}

func TestLoadFileRejectsEmpty(t *testing.T) {
	path := writeTempYAML(t, "endpoints: {}\n")
	if _, err := LoadFile(path); !errors.Is(err, ErrFileEmptyEndpoints) {
		t.Fatalf("expected ErrFileEmptyEndpoints, got %v", err)
	}
}

func TestLoadFileRejectsBadTimeout(t *testing.T) {
	path := writeTempYAML(t, `
endpoints:
  default:
    method: POST
    success_rate: 0.9
    timeout: two-seconds
`)
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected invalid timeout error")
	}
}

func TestLoadFileMissingDefault(t *testing.T) {
	path := writeTempYAML(t, `
endpoints:
  /crm/escalate:
    method: POST
    success_rate: 0.95
    timeout: 2s
`)
	if _, err := LoadFile(path); !errors.Is(err, ErrNoDefaultEntry) {
		t.Fatalf("expected ErrNoDefaultEntry, got %v", err)
	}
}
