package endpoint

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrFileEmptyEndpoints = errors.New("endpoints file: no endpoints defined")

// File is the on-disk endpoints document.
type File struct {
	Endpoints map[string]FileEntry `yaml:"endpoints"`
}

// FileEntry declares one endpoint's dispatch policy. Durations use Go
// duration syntax ("2s", "500ms").
type FileEntry struct {
	Method      string  `yaml:"method"`
	BaseURL     string  `yaml:"base_url"`
	SuccessRate float64 `yaml:"success_rate"`
	Timeout     string  `yaml:"timeout"`
	RetryCount  int     `yaml:"retry_count"`
	RetryDelay  string  `yaml:"retry_delay"`
}

// LoadFile parses and validates a YAML endpoints file into a Registry.
func LoadFile(path string) (*Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("endpoints: read %q: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("endpoints: unmarshal %q: %w", path, err)
	}
	if len(f.Endpoints) == 0 {
		return nil, ErrFileEmptyEndpoints
	}

	entries := make(map[string]Config, len(f.Endpoints))
	for endpointPath, entry := range f.Endpoints {
		cfg, err := entry.toConfig(endpointPath)
		if err != nil {
			return nil, err
		}
		entries[endpointPath] = cfg
	}

	reg, err := NewRegistry(entries)
	if err != nil {
		return nil, fmt.Errorf("endpoints: %w", err)
	}
	return reg, nil
}

func (e FileEntry) toConfig(path string) (Config, error) {
	timeout, err := time.ParseDuration(e.Timeout)
	if err != nil {
		return Config{}, fmt.Errorf("endpoints: %q has invalid timeout: %w", path, err)
	}
	retryDelay := time.Duration(0)
	if e.RetryDelay != "" {
		retryDelay, err = time.ParseDuration(e.RetryDelay)
		if err != nil {
			return Config{}, fmt.Errorf("endpoints: %q has invalid retry_delay: %w", path, err)
		}
	}
	return Config{
		Method:      e.Method,
		BaseURL:     e.BaseURL,
		SuccessRate: e.SuccessRate,
		Timeout:     timeout,
		RetryCount:  e.RetryCount,
		RetryDelay:  retryDelay,
	}, nil
}
