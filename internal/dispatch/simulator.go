package dispatch

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/your-org/docrouter/internal/endpoint"
)

const minSimulatedLatency = 100 * time.Millisecond

// Simulator draws dispatch outcomes from the endpoint's configured success
// rate instead of calling a real transport. The randomness source and the
// latency sleep are injectable so tests can force deterministic outcomes.
type Simulator struct {
	mu    sync.Mutex
	rng   *rand.Rand
	sleep func(context.Context, time.Duration)
	now   func() time.Time
}

// SimulatorOption customizes a Simulator.
type SimulatorOption func(*Simulator)

// WithSleep replaces the latency sleep. Tests pass a no-op.
func WithSleep(sleep func(context.Context, time.Duration)) SimulatorOption {
	return func(s *Simulator) { s.sleep = sleep }
}

// WithClock replaces the timestamp source.
func WithClock(now func() time.Time) SimulatorOption {
	return func(s *Simulator) { s.now = now }
}

func NewSimulator(seed int64, opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		rng:   rand.New(rand.NewSource(seed)),
		sleep: sleepContext,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) Execute(ctx context.Context, cfg endpoint.Config, path string, payload map[string]any) (CallResult, error) {
	s.mu.Lock()
	latency := s.latency(cfg.Timeout)
	success := s.rng.Float64() < cfg.SuccessRate
	kind := s.rng.Intn(4)
	s.mu.Unlock()

	s.sleep(ctx, latency)

	if success {
		return CallResult{
			Success:    true,
			StatusCode: 200,
			Data: map[string]any{
				"message":   fmt.Sprintf("Successfully processed %v for %v", payload["action_type"], payload["target"]),
				"id":        s.responseID(),
				"timestamp": s.now().Format(time.RFC3339),
			},
		}, nil
	}

	switch kind {
	case 0:
		return CallResult{}, TransientError{Cause: fmt.Errorf("%w: simulated timeout", ErrTimeout)}
	case 1:
		return CallResult{
			Success:    false,
			StatusCode: 500,
			Error:      "Internal Server Error: The server encountered an unexpected condition.",
		}, nil
	case 2:
		return CallResult{
			Success:    false,
			StatusCode: 400,
			Error:      "Validation Error: The request data did not pass validation.",
		}, nil
	default:
		return CallResult{
			Success:    false,
			StatusCode: 401,
			Error:      "Authentication Error: Invalid or expired credentials.",
		}, nil
	}
}

// latency draws a value bounded by the configured timeout. Callers hold mu.
func (s *Simulator) latency(timeout time.Duration) time.Duration {
	if timeout <= minSimulatedLatency {
		return timeout
	}
	spread := timeout - minSimulatedLatency
	return minSimulatedLatency + time.Duration(s.rng.Int63n(int64(spread)))
}

func (s *Simulator) responseID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("ACT-%06d", 100000+s.rng.Intn(900000))
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
