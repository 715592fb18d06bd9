package route

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/your-org/docrouter/internal/action"
	"github.com/your-org/docrouter/internal/actionlog"
	"github.com/your-org/docrouter/internal/metrics"
	"github.com/your-org/docrouter/pkg/intake"
)

// Route statuses for one agent result.
const (
	StatusNoActionRequired = "no_action_required"
	StatusSuccess          = "success"
	StatusPartiallyFailed  = "partially_failed"
)

// Batch statuses over many agent results.
const (
	BatchSuccess             = "success"
	BatchPartiallySuccessful = "partially_successful"
	BatchFailed              = "failed"
)

// Result is the routing record for one agent result.
type Result struct {
	Status       string           `json:"status"`
	ActionsTaken []action.Outcome `json:"actions_taken"`
	Timestamp    string           `json:"timestamp"`
}

// BatchEntry is one batch item's route result, or the error captured while
// routing it.
type BatchEntry struct {
	Status    string  `json:"status"`
	Result    *Result `json:"result,omitempty"`
	Error     string  `json:"error,omitempty"`
	ItemIndex int     `json:"item_index"`
}

// BatchResult aggregates routing over many agent results. Actions preserve
// input order even when items are processed concurrently.
type BatchResult struct {
	Status     string       `json:"status"`
	Total      int          `json:"total"`
	Successful int          `json:"successful"`
	Failed     int          `json:"failed"`
	Actions    []BatchEntry `json:"actions"`
}

// Router decides whether an agent result implies a follow-up action and
// delegates execution to the action processor.
type Router struct {
	processor *action.Processor
	sink      actionlog.Sink
	recorder  metrics.Recorder
	workers   int
	now       func() time.Time
}

type Option func(*Router)

func WithSink(sink actionlog.Sink) Option {
	return func(r *Router) { r.sink = sink }
}

func WithMetrics(recorder metrics.Recorder) Option {
	return func(r *Router) { r.recorder = recorder }
}

// WithWorkers bounds batch concurrency. One worker means sequential
// processing.
func WithWorkers(n int) Option {
	return func(r *Router) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Router) { r.now = now }
}

func NewRouter(processor *action.Processor, opts ...Option) *Router {
	r := &Router{
		processor: processor,
		recorder:  metrics.NoopRecorder{},
		workers:   1,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route resolves the action implied by one agent result and executes it.
//
// Resolution precedence: an explicit suggestion, then the legacy bare
// string form, then a synthesized data-quality alert for invalid results.
// A valid result with no action routes to no_action_required.
func (r *Router) Route(ctx context.Context, agentResult intake.Result) Result {
	result := Result{
		Status:       "pending",
		ActionsTaken: []action.Outcome{},
		Timestamp:    r.now().Format(time.RFC3339),
	}

	suggestion := r.resolveSuggestion(agentResult)
	if suggestion == nil {
		result.Status = StatusNoActionRequired
		if r.sink != nil {
			_, _ = r.sink.LogAction("no_action", map[string]any{}, "No action required", "success")
		}
		return result
	}

	outcome := r.processor.Process(ctx, *suggestion, agentResult)
	result.ActionsTaken = append(result.ActionsTaken, outcome)

	result.Status = StatusSuccess
	for _, taken := range result.ActionsTaken {
		if taken.Status == action.StatusFailed {
			result.Status = StatusPartiallyFailed
			break
		}
	}
	return result
}

func (r *Router) resolveSuggestion(agentResult intake.Result) *intake.Suggestion {
	if agentResult.SuggestedAction != nil {
		return agentResult.SuggestedAction
	}

	if agentResult.LegacyAction != "" {
		return &intake.Suggestion{
			Action:   agentResult.LegacyAction,
			Target:   "legacy",
			Priority: intake.PriorityNormal,
			Details:  "Legacy action format",
			Endpoint: "/actions/" + agentResult.LegacyAction,
		}
	}

	if !agentResult.IsValid() {
		return &intake.Suggestion{
			Action:   "alert",
			Target:   "data_quality",
			Priority: intake.PriorityMedium,
			Details:  "Data validation failed",
			Endpoint: "/alerts/data_quality",
		}
	}
	return nil
}

// ProcessBatch routes each agent result independently. A panic while
// routing one item is captured as an error entry; it never aborts the
// batch. Entries are collected by input index.
func (r *Router) ProcessBatch(ctx context.Context, agentResults []intake.Result) BatchResult {
	batch := BatchResult{
		Status:  BatchSuccess,
		Total:   len(agentResults),
		Actions: make([]BatchEntry, len(agentResults)),
	}
	r.recorder.ObserveBatch(len(agentResults))

	if r.workers <= 1 || len(agentResults) <= 1 {
		for idx, agentResult := range agentResults {
			batch.Actions[idx] = r.routeEntry(ctx, agentResult, idx)
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, r.workers)
		for idx, agentResult := range agentResults {
			wg.Add(1)
			go func(idx int, agentResult intake.Result) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				batch.Actions[idx] = r.routeEntry(ctx, agentResult, idx)
			}(idx, agentResult)
		}
		wg.Wait()
	}

	for _, entry := range batch.Actions {
		if entry.Status == StatusSuccess || entry.Status == StatusNoActionRequired {
			batch.Successful++
		} else {
			batch.Failed++
		}
	}

	if batch.Failed > 0 {
		if batch.Successful > 0 {
			batch.Status = BatchPartiallySuccessful
		} else {
			batch.Status = BatchFailed
		}
	}
	return batch
}

func (r *Router) routeEntry(ctx context.Context, agentResult intake.Result, idx int) (entry BatchEntry) {
	defer func() {
		if rec := recover(); rec != nil {
			entry = BatchEntry{
				Status:    "error",
				Error:     fmt.Sprintf("routing item %d: %v", idx, rec),
				ItemIndex: idx,
			}
		}
	}()

	routed := r.Route(ctx, agentResult)
	return BatchEntry{Status: routed.Status, Result: &routed, ItemIndex: idx}
}
