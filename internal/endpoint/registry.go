package endpoint

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultKey is the registry entry used when no path matches.
const DefaultKey = "default"

var (
	ErrNoDefaultEntry = errors.New("endpoint registry has no default entry")
	ErrEmptyPath      = errors.New("endpoint path is empty")
)

// Config describes the dispatch policy for one logical endpoint path.
type Config struct {
	Method      string
	BaseURL     string
	SuccessRate float64
	Timeout     time.Duration
	RetryCount  int
	RetryDelay  time.Duration
}

// Registry is an immutable path-to-config map. It is read-only after
// construction and safe for unsynchronized concurrent reads.
type Registry struct {
	entries map[string]Config
}

func NewRegistry(entries map[string]Config) (*Registry, error) {
	if _, ok := entries[DefaultKey]; !ok {
		return nil, ErrNoDefaultEntry
	}
	copied := make(map[string]Config, len(entries))
	for path, cfg := range entries {
		if path == "" {
			return nil, ErrEmptyPath
		}
		if err := validateConfig(path, cfg); err != nil {
			return nil, err
		}
		copied[path] = cfg
	}
	return &Registry{entries: copied}, nil
}

// Resolve returns the config for an exact path match, falling back to the
// default entry. Placeholder substitution happens before resolution via
// Expand.
func (r *Registry) Resolve(path string) Config {
	if cfg, ok := r.entries[path]; ok {
		return cfg
	}
	return r.entries[DefaultKey]
}

// Paths returns the registered endpoint paths, default entry included.
func (r *Registry) Paths() []string {
	paths := make([]string, 0, len(r.entries))
	for path := range r.entries {
		paths = append(paths, path)
	}
	return paths
}

// Expand substitutes {placeholder} tokens in a path with values from vars.
// Tokens with no matching value are left untouched.
func Expand(path string, vars map[string]string) string {
	if !strings.Contains(path, "{") {
		return path
	}
	for key, value := range vars {
		if value == "" {
			continue
		}
		path = strings.ReplaceAll(path, "{"+key+"}", value)
	}
	return path
}

func validateConfig(path string, cfg Config) error {
	if cfg.Method == "" {
		return fmt.Errorf("endpoint %q: method is empty", path)
	}
	if cfg.SuccessRate < 0 || cfg.SuccessRate > 1 {
		return fmt.Errorf("endpoint %q: success_rate %v outside [0,1]", path, cfg.SuccessRate)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("endpoint %q: timeout must be positive", path)
	}
	if cfg.RetryCount < 0 {
		return fmt.Errorf("endpoint %q: negative retry_count", path)
	}
	if cfg.RetryDelay < 0 {
		return fmt.Errorf("endpoint %q: negative retry_delay", path)
	}
	return nil
}

// Default returns the built-in dispatch table covering the CRM, risk,
// alerting, and webhook destinations.
func Default() *Registry {
	reg, err := NewRegistry(map[string]Config{
		"/crm/escalate": {
			Method: "POST", BaseURL: "https://api.example.com",
			SuccessRate: 0.95, Timeout: 2 * time.Second,
			RetryCount: 3, RetryDelay: time.Second,
		},
		"/crm/ticket/create": {
			Method: "POST", BaseURL: "https://api.example.com",
			SuccessRate: 0.98, Timeout: 1500 * time.Millisecond,
			RetryCount: 2, RetryDelay: 500 * time.Millisecond,
		},
		"/crm/contact/update": {
			Method: "PUT", BaseURL: "https://api.example.com",
			SuccessRate: 0.97, Timeout: time.Second,
			RetryCount: 2, RetryDelay: 500 * time.Millisecond,
		},
		"/risk/escalate": {
			Method: "POST", BaseURL: "https://risk.example.com",
			SuccessRate: 0.99, Timeout: time.Second,
			RetryCount: 3, RetryDelay: 500 * time.Millisecond,
		},
		"/risk/alert": {
			Method: "POST", BaseURL: "https://risk.example.com",
			SuccessRate: 0.98, Timeout: time.Second,
			RetryCount: 3, RetryDelay: 500 * time.Millisecond,
		},
		"/alerts/data_quality": {
			Method: "POST", BaseURL: "https://alerts.example.com",
			SuccessRate: 0.96, Timeout: time.Second,
			RetryCount: 2, RetryDelay: 500 * time.Millisecond,
		},
		"/alerts/send_email": {
			Method: "POST", BaseURL: "https://alerts.example.com",
			SuccessRate: 0.95, Timeout: 2 * time.Second,
			RetryCount: 3, RetryDelay: 700 * time.Millisecond,
		},
		"/webhooks/{event_type}/process": {
			Method: "POST", BaseURL: "https://webhooks.example.com",
			SuccessRate: 0.93, Timeout: 2 * time.Second,
			RetryCount: 2, RetryDelay: time.Second,
		},
		DefaultKey: {
			Method: "POST", BaseURL: "https://api.example.com",
			SuccessRate: 0.90, Timeout: time.Second,
			RetryCount: 1, RetryDelay: 500 * time.Millisecond,
		},
	})
	if err != nil {
		panic(err)
	}
	return reg
}
