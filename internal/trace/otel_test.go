package trace

import (
	"context"
	"testing"
)

func TestSetupOTelDisabled(t *testing.T) {
	t.Setenv("TRACE_ENABLED", "")

	rt, err := SetupOTelFromEnv("docrouter-test")
	if err != nil {
		t.Fatalf("setup otel: %v", err)
	}
	if rt.Tracer == nil {
		t.Fatal("disabled setup must still return a usable tracer")
	}
	if err := rt.Shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
}

func TestSetupOTelStdoutExporter(t *testing.T) {
	t.Setenv("TRACE_ENABLED", "true")
	t.Setenv("TRACE_ENDPOINT", "")

	rt, err := SetupOTelFromEnv("docrouter-test")
	if err != nil {
		t.Fatalf("setup otel: %v", err)
	}
	if rt.Tracer == nil {
		t.Fatal("expected non-nil tracer")
	}

	_, span := rt.Tracer.Start(context.Background(), SpanDispatchAction)
	span.End()

	if err := rt.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown otel: %v", err)
	}
}

func TestDispatchSpanAttributes(t *testing.T) {
	attrs := DispatchAttributes("escalate", "/risk/escalate", "critical")
	want := map[string]string{
		"action.type":     "escalate",
		"action.endpoint": "/risk/escalate",
		"action.priority": "critical",
	}
	if len(attrs) != len(want) {
		t.Fatalf("want %d attributes, got %d", len(want), len(attrs))
	}
	for _, kv := range attrs {
		if want[string(kv.Key)] != kv.Value.AsString() {
			t.Fatalf("attribute %s = %q, want %q", kv.Key, kv.Value.AsString(), want[string(kv.Key)])
		}
	}

	outcome := OutcomeAttributes("failed", 3)
	if string(outcome[0].Key) != "action.status" || outcome[0].Value.AsString() != "failed" {
		t.Fatalf("unexpected status attribute: %v", outcome[0])
	}
	if string(outcome[1].Key) != "action.attempts" || outcome[1].Value.AsInt64() != 3 {
		t.Fatalf("unexpected attempts attribute: %v", outcome[1])
	}
}

func TestEnvBool(t *testing.T) {
	for value, want := range map[string]bool{
		"1": true, "true": true, "YES": true, " on ": true,
		"": false, "0": false, "off": false, "enabled": false,
	} {
		t.Setenv("TRACE_ENABLED", value)
		if got := envBool("TRACE_ENABLED"); got != want {
			t.Fatalf("envBool(%q) = %v, want %v", value, got, want)
		}
	}
}
