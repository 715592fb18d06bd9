package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/your-org/docrouter/internal/endpoint"
)

// HTTPExecutor issues real HTTP calls against base_url + path with the
// endpoint's timeout as the request deadline. It exposes the same
// return/raise shape as the Simulator.
type HTTPExecutor struct {
	Client *http.Client
}

func NewHTTPExecutor(client *http.Client) *HTTPExecutor {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPExecutor{Client: client}
}

func (e *HTTPExecutor) Execute(ctx context.Context, cfg endpoint.Config, path string, payload map[string]any) (CallResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return CallResult{}, fmt.Errorf("marshal dispatch payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, cfg.Method, cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return CallResult{}, fmt.Errorf("build dispatch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.Client.Do(req)
	if err != nil {
		// Timeouts and connection errors carry no structured response.
		return CallResult{}, TransientError{Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return CallResult{}, TransientError{Cause: fmt.Errorf("read dispatch response: %w", err)}
	}

	if resp.StatusCode >= 400 {
		return CallResult{
			Success:    false,
			StatusCode: resp.StatusCode,
			Error:      string(respBody),
		}, nil
	}

	var data map[string]any
	if len(respBody) > 0 {
		// A non-JSON success body is tolerated; the status code decides.
		_ = json.Unmarshal(respBody, &data)
	}
	return CallResult{
		Success:    true,
		StatusCode: resp.StatusCode,
		Data:       data,
	}, nil
}
