package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/docrouter/internal/endpoint"
)

var (
	ErrTimeout    = errors.New("dispatch timeout")
	ErrConnection = errors.New("dispatch connection failure")
)

// CallResult is the normalized outcome of one dispatch attempt. It is
// produced fresh per attempt and never mutated afterwards.
type CallResult struct {
	Success    bool           `json:"success"`
	StatusCode int            `json:"status_code,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Executor performs one dispatch attempt against a resolved endpoint.
//
// A structured failure (the remote responded but indicated failure) is
// returned as a CallResult with Success=false and a nil error. Timeouts and
// connection-level failures are returned as a TransientError. Any other
// error is treated as fatal by callers.
type Executor interface {
	Execute(ctx context.Context, cfg endpoint.Config, path string, payload map[string]any) (CallResult, error)
}

// TransientError marks a dispatch failure with no structured response.
// It is retryable up to the endpoint's retry budget.
type TransientError struct {
	Cause error
}

func (e TransientError) Error() string {
	if e.Cause == nil {
		return "transient dispatch failure"
	}
	return fmt.Sprintf("transient dispatch failure: %v", e.Cause)
}

func (e TransientError) Unwrap() error {
	return e.Cause
}

// IsTransient reports whether err carries the transient-failure signal.
func IsTransient(err error) bool {
	var te TransientError
	return errors.As(err, &te)
}
