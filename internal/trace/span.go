package trace

import "go.opentelemetry.io/otel/attribute"

// SpanDispatchAction names the span recorded around one routed action,
// covering every retry attempt.
const SpanDispatchAction = "dispatch_action"

// DispatchAttributes are set when the span starts, before the first
// executor call.
func DispatchAttributes(actionType, endpoint, priority string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("action.type", actionType),
		attribute.String("action.endpoint", endpoint),
		attribute.String("action.priority", priority),
	}
}

// OutcomeAttributes are set once the retry loop settles on a terminal
// status.
func OutcomeAttributes(status string, attempts int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("action.status", status),
		attribute.Int("action.attempts", attempts),
	}
}
