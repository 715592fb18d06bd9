package action

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/your-org/docrouter/internal/actionlog"
	"github.com/your-org/docrouter/internal/dispatch"
	"github.com/your-org/docrouter/internal/endpoint"
	"github.com/your-org/docrouter/internal/metrics"
	"github.com/your-org/docrouter/internal/trace"
	"github.com/your-org/docrouter/pkg/intake"
)

// Processor executes one suggestion: it resolves the endpoint, builds the
// outbound payload, and drives the executor through the retry loop.
type Processor struct {
	registry *endpoint.Registry
	executor dispatch.Executor
	sink     actionlog.Sink
	recorder metrics.Recorder
	tracer   oteltrace.Tracer

	wait func(context.Context, time.Duration) error
	now  func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// Option customizes a Processor.
type Option func(*Processor)

// WithSink attaches the action-log collaborator. Sink failures are
// swallowed; routing never aborts on a logging error.
func WithSink(sink actionlog.Sink) Option {
	return func(p *Processor) { p.sink = sink }
}

func WithMetrics(recorder metrics.Recorder) Option {
	return func(p *Processor) { p.recorder = recorder }
}

func WithTracer(tracer oteltrace.Tracer) Option {
	return func(p *Processor) { p.tracer = tracer }
}

// WithWait replaces the retry wait. Tests pass an instant wait.
func WithWait(wait func(context.Context, time.Duration) error) Option {
	return func(p *Processor) { p.wait = wait }
}

func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithSeed seeds tracking-id generation deterministically.
func WithSeed(seed int64) Option {
	return func(p *Processor) { p.rng = rand.New(rand.NewSource(seed)) }
}

func NewProcessor(registry *endpoint.Registry, executor dispatch.Executor, opts ...Option) *Processor {
	p := &Processor{
		registry: registry,
		executor: executor,
		recorder: metrics.NoopRecorder{},
		tracer:   noop.NewTracerProvider().Tracer("docrouter"),
		wait:     waitContext,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs the retry loop for one suggestion and returns its terminal
// outcome. The attempt count equals the number of executor invocations;
// the loop never exceeds retry_count+1 invocations.
func (p *Processor) Process(ctx context.Context, suggestion intake.Suggestion, result intake.Result) Outcome {
	actionType := suggestion.Action
	if actionType == "" {
		actionType = "process"
	}
	target := suggestion.Target
	if target == "" {
		target = "default"
	}
	priority := suggestion.Priority
	if priority == "" {
		priority = intake.PriorityNormal
	}

	path := suggestion.Endpoint
	if path == "" {
		path = "/actions/" + actionType
	}
	path = endpoint.Expand(path, substitutions(result.Fields))

	cfg := p.registry.Resolve(path)
	payload := p.buildPayload(actionType, target, priority, suggestion.Details, result)

	outcome := Outcome{
		ActionType: actionType,
		Target:     target,
		Endpoint:   path,
		Priority:   priority,
		Timestamp:  p.now().Format(time.RFC3339),
		Status:     StatusPending,
	}

	ctx, span := p.tracer.Start(ctx, trace.SpanDispatchAction,
		oteltrace.WithAttributes(trace.DispatchAttributes(actionType, path, priority)...))
	defer span.End()

	start := p.now()
	p.runRetryLoop(ctx, cfg, path, payload, &outcome, suggestion.Details)
	p.recorder.ObserveDispatch(path, outcome.Status, p.now().Sub(start))
	span.SetAttributes(trace.OutcomeAttributes(outcome.Status, outcome.Attempts)...)
	return outcome
}

func (p *Processor) runRetryLoop(ctx context.Context, cfg endpoint.Config, path string, payload map[string]any, outcome *Outcome, details string) {
	for attempt := 0; attempt <= cfg.RetryCount; attempt++ {
		outcome.Attempts++

		response, err := p.executor.Execute(ctx, cfg, path, payload)

		switch {
		case err == nil && response.Success:
			outcome.Status = StatusSuccess
			outcome.Response = &response
			p.logAction(outcome.ActionType, payload, fmt.Sprintf("Success: %s", details), StatusSuccess)
			return

		case err == nil:
			// Structured failure: the remote responded with an error shape.
			outcome.Response = &response
			if attempt < cfg.RetryCount {
				p.recorder.ObserveRetry(path)
				if waitErr := p.wait(ctx, cfg.RetryDelay); waitErr != nil {
					p.fail(outcome, payload, fmt.Sprintf("Canceled after %d attempts: %v", outcome.Attempts, waitErr))
					return
				}
				continue
			}
			outcome.Status = StatusFailed
			p.logAction(outcome.ActionType, payload,
				fmt.Sprintf("Failed after %d attempts: %s", outcome.Attempts, responseError(response)), StatusFailed)
			return

		case dispatch.IsTransient(err):
			if attempt < cfg.RetryCount {
				p.recorder.ObserveRetry(path)
				if waitErr := p.wait(ctx, cfg.RetryDelay); waitErr != nil {
					p.fail(outcome, payload, fmt.Sprintf("Canceled after %d attempts: %v", outcome.Attempts, waitErr))
					return
				}
				continue
			}
			outcome.Status = StatusFailed
			outcome.Response = &dispatch.CallResult{Success: false, Error: err.Error()}
			p.logAction(outcome.ActionType, payload,
				fmt.Sprintf("Network error after %d attempts: %v", outcome.Attempts, err), StatusFailed)
			return

		default:
			// Unexpected failure is terminal for this action.
			outcome.Status = StatusFailed
			outcome.Response = &dispatch.CallResult{Success: false, Error: err.Error()}
			p.logAction(outcome.ActionType, payload, fmt.Sprintf("Unexpected error: %v", err), StatusFailed)
			return
		}
	}
}

func (p *Processor) fail(outcome *Outcome, payload map[string]any, result string) {
	outcome.Status = StatusFailed
	outcome.Response = &dispatch.CallResult{Success: false, Error: result}
	p.logAction(outcome.ActionType, payload, result, StatusFailed)
}

// buildPayload assembles the outbound request body. The text excerpt is
// stripped from forwarded fields; a tracking id is generated when the
// upstream agent supplied none.
func (p *Processor) buildPayload(actionType, target, priority, details string, result intake.Result) map[string]any {
	format := result.Format
	if format == "" {
		format = "Unknown"
	}
	trackingID := result.TrackingID
	if trackingID == "" {
		trackingID = p.trackingID()
	}

	fields := make(map[string]any, len(result.Fields))
	for k, v := range result.Fields {
		if k == "text_excerpt" {
			continue
		}
		fields[k] = v
	}

	payload := map[string]any{
		"action_type": actionType,
		"target":      target,
		"priority":    priority,
		"details":     details,
		"timestamp":   p.now().Format(time.RFC3339),
		"context": map[string]any{
			"format":      format,
			"tracking_id": trackingID,
			"fields":      fields,
		},
	}
	if intake.Escalates(priority) {
		payload["escalation"] = true
		payload["notify_manager"] = priority == intake.PriorityCritical
	}
	return payload
}

func (p *Processor) logAction(actionType string, payload map[string]any, result string, status string) {
	if p.sink == nil {
		return
	}
	_, _ = p.sink.LogAction(actionType, payload, result, status)
}

func (p *Processor) trackingID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("TR-%05d", 10000+p.rng.Intn(90000))
}

func substitutions(fields map[string]any) map[string]string {
	if fields == nil {
		return nil
	}
	if eventType, ok := fields["event_type"].(string); ok && eventType != "" {
		return map[string]string{"event_type": eventType}
	}
	return nil
}

func responseError(response dispatch.CallResult) string {
	if response.Error != "" {
		return response.Error
	}
	return "Unknown error"
}

func waitContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
