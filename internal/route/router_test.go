package route

import (
	"context"
	"testing"
	"time"

	"github.com/your-org/docrouter/internal/action"
	"github.com/your-org/docrouter/internal/actionlog"
	"github.com/your-org/docrouter/internal/dispatch"
	"github.com/your-org/docrouter/internal/endpoint"
	"github.com/your-org/docrouter/internal/metrics"
	"github.com/your-org/docrouter/pkg/intake"
)

// fixedExecutor returns the same outcome on every call.
type fixedExecutor struct {
	succeed bool
}

func (f *fixedExecutor) Execute(_ context.Context, _ endpoint.Config, path string, _ map[string]any) (dispatch.CallResult, error) {
	if f.succeed {
		return dispatch.CallResult{Success: true, StatusCode: 200}, nil
	}
	return dispatch.CallResult{Success: false, StatusCode: 500, Error: "Internal Server Error"}, nil
}

type panicExecutor struct{}

func (panicExecutor) Execute(context.Context, endpoint.Config, string, map[string]any) (dispatch.CallResult, error) {
	panic("executor blew up")
}

func newTestRouter(t *testing.T, exec dispatch.Executor, opts ...Option) (*Router, *actionlog.MemoryStore) {
	t.Helper()
	reg, err := endpoint.NewRegistry(map[string]endpoint.Config{
		endpoint.DefaultKey: {
			Method: "POST", BaseURL: "https://api.example.com",
			SuccessRate: 1.0, Timeout: time.Second,
			RetryCount: 1, RetryDelay: time.Millisecond,
		},
	})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	store := actionlog.NewMemoryStore()
	processor := action.NewProcessor(reg, exec,
		action.WithSink(store),
		action.WithWait(func(context.Context, time.Duration) error { return nil }))
	opts = append([]Option{WithSink(store)}, opts...)
	return NewRouter(processor, opts...), store
}

func suggested(action string, priority string) *intake.Suggestion {
	return &intake.Suggestion{
		Action:   action,
		Target:   "crm",
		Priority: priority,
		Details:  "routing test",
		Endpoint: "/crm/escalate",
	}
}

func TestRoutePrefersSuggestedAction(t *testing.T) {
	router, _ := newTestRouter(t, &fixedExecutor{succeed: true})

	agentResult := intake.Result{
		SuggestedAction: suggested("escalate", intake.PriorityHigh),
		LegacyAction:    "notify",
	}
	result := router.Route(context.Background(), agentResult)
	if result.Status != StatusSuccess {
		t.Fatalf("expected success, got %q", result.Status)
	}
	if len(result.ActionsTaken) != 1 || result.ActionsTaken[0].ActionType != "escalate" {
		t.Fatalf("suggested action must win over legacy, got %+v", result.ActionsTaken)
	}
}

func TestRouteLegacyAction(t *testing.T) {
	router, _ := newTestRouter(t, &fixedExecutor{succeed: true})

	result := router.Route(context.Background(), intake.Result{LegacyAction: "notify"})
	if len(result.ActionsTaken) != 1 {
		t.Fatalf("expected one action, got %d", len(result.ActionsTaken))
	}
	outcome := result.ActionsTaken[0]
	if outcome.ActionType != "notify" || outcome.Target != "legacy" {
		t.Fatalf("unexpected legacy outcome: %+v", outcome)
	}
	if outcome.Endpoint != "/actions/notify" {
		t.Fatalf("unexpected endpoint: %q", outcome.Endpoint)
	}
}

func TestRouteInvalidResultRaisesDataQualityAlert(t *testing.T) {
	router, _ := newTestRouter(t, &fixedExecutor{succeed: true})

	result := router.Route(context.Background(), intake.Result{Valid: intake.Bool(false)})
	if len(result.ActionsTaken) != 1 {
		t.Fatalf("expected one action, got %d", len(result.ActionsTaken))
	}
	outcome := result.ActionsTaken[0]
	if outcome.ActionType != "alert" || outcome.Target != "data_quality" {
		t.Fatalf("unexpected alert outcome: %+v", outcome)
	}
	if outcome.Priority != intake.PriorityMedium || outcome.Endpoint != "/alerts/data_quality" {
		t.Fatalf("unexpected alert shape: %+v", outcome)
	}
}

func TestRouteNoActionRequired(t *testing.T) {
	router, store := newTestRouter(t, &fixedExecutor{succeed: true})

	result := router.Route(context.Background(), intake.Result{Status: "processed"})
	if result.Status != StatusNoActionRequired || len(result.ActionsTaken) != 0 {
		t.Fatalf("expected no_action_required, got %+v", result)
	}

	recent := store.Recent(1)
	if len(recent) != 1 || recent[0].ActionType != "no_action" {
		t.Fatalf("expected no_action record, got %+v", recent)
	}
	if recent[0].Result != "No action required" || recent[0].Status != "success" {
		t.Fatalf("unexpected no_action record: %+v", recent[0])
	}
}

func TestRouteFailedDispatchMarksPartiallyFailed(t *testing.T) {
	router, _ := newTestRouter(t, &fixedExecutor{succeed: false})

	result := router.Route(context.Background(), intake.Result{
		SuggestedAction: suggested("escalate", intake.PriorityHigh),
	})
	if result.Status != StatusPartiallyFailed {
		t.Fatalf("expected partially_failed, got %q", result.Status)
	}
}

func TestProcessBatchAllSuccessful(t *testing.T) {
	router, _ := newTestRouter(t, &fixedExecutor{succeed: true})

	batch := router.ProcessBatch(context.Background(), []intake.Result{
		{SuggestedAction: suggested("escalate", intake.PriorityHigh)},
		{Status: "processed"}, // no action still counts as successful
	})
	if batch.Status != BatchSuccess || batch.Successful != 2 || batch.Failed != 0 {
		t.Fatalf("unexpected batch: %+v", batch)
	}
}

func TestProcessBatchMixedOutcomes(t *testing.T) {
	router, _ := newTestRouter(t, &fixedExecutor{succeed: false})

	batch := router.ProcessBatch(context.Background(), []intake.Result{
		{SuggestedAction: suggested("escalate", intake.PriorityHigh)},
		{Status: "processed"},
	})
	if batch.Status != BatchPartiallySuccessful {
		t.Fatalf("expected partially_successful, got %q", batch.Status)
	}
	if batch.Successful != 1 || batch.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", batch)
	}
}

func TestProcessBatchAllFailed(t *testing.T) {
	router, _ := newTestRouter(t, &fixedExecutor{succeed: false})

	batch := router.ProcessBatch(context.Background(), []intake.Result{
		{SuggestedAction: suggested("escalate", intake.PriorityHigh)},
		{SuggestedAction: suggested("alert", intake.PriorityMedium)},
	})
	if batch.Status != BatchFailed || batch.Failed != 2 {
		t.Fatalf("expected failed batch, got %+v", batch)
	}
}

func TestProcessBatchEmpty(t *testing.T) {
	router, _ := newTestRouter(t, &fixedExecutor{succeed: true})

	batch := router.ProcessBatch(context.Background(), nil)
	if batch.Status != BatchSuccess || batch.Total != 0 || len(batch.Actions) != 0 {
		t.Fatalf("unexpected empty batch result: %+v", batch)
	}
}

func TestProcessBatchCapturesPanic(t *testing.T) {
	router, _ := newTestRouter(t, panicExecutor{})

	batch := router.ProcessBatch(context.Background(), []intake.Result{
		{SuggestedAction: suggested("escalate", intake.PriorityHigh)},
		{Status: "processed"},
	})
	if batch.Status != BatchPartiallySuccessful {
		t.Fatalf("expected partially_successful, got %q", batch.Status)
	}
	entry := batch.Actions[0]
	if entry.Status != "error" || entry.Error == "" || entry.Result != nil {
		t.Fatalf("expected captured panic entry, got %+v", entry)
	}
	if batch.Actions[1].Status != StatusNoActionRequired {
		t.Fatalf("panic must not poison the following item, got %+v", batch.Actions[1])
	}
}

func TestProcessBatchParallelPreservesOrder(t *testing.T) {
	router, _ := newTestRouter(t, &fixedExecutor{succeed: true}, WithWorkers(4))

	agentResults := make([]intake.Result, 16)
	for i := range agentResults {
		agentResults[i] = intake.Result{SuggestedAction: suggested("escalate", intake.PriorityHigh)}
	}

	batch := router.ProcessBatch(context.Background(), agentResults)
	if batch.Status != BatchSuccess || batch.Total != 16 {
		t.Fatalf("unexpected batch: %+v", batch)
	}
	for i, entry := range batch.Actions {
		if entry.ItemIndex != i {
			t.Fatalf("entry %d carries index %d", i, entry.ItemIndex)
		}
		if entry.Result == nil || entry.Result.Status != StatusSuccess {
			t.Fatalf("entry %d not successful: %+v", i, entry)
		}
	}
}

func TestProcessBatchRecordsMetrics(t *testing.T) {
	recorder := metrics.NewInMemoryRecorder()
	router, _ := newTestRouter(t, &fixedExecutor{succeed: true}, WithMetrics(recorder))

	router.ProcessBatch(context.Background(), make([]intake.Result, 3))
	if got := recorder.Snapshot().BatchItems; got != 3 {
		t.Fatalf("expected 3 batch items observed, got %d", got)
	}
}
