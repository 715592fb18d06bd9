// Package jsonagent validates incoming JSON webhook payloads against
// per-event-type schemas and derives the follow-up action the router
// executes.
package jsonagent

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/your-org/docrouter/pkg/intake"
)

var (
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?)?$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

var topLevelRequired = []string{"event_type", "payload", "timestamp", "source", "version"}

// Validator runs schema validation for JSON webhook documents.
type Validator struct {
	schemas        map[string]Schema
	priorityValues []string
	severityValues []string
	riskThreshold  float64
	quantityMin    float64
	priceMin       float64

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Validator)

// WithSeed seeds tracking-id generation deterministically.
func WithSeed(seed int64) Option {
	return func(v *Validator) { v.rng = rand.New(rand.NewSource(seed)) }
}

func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		schemas:        defaultSchemas(),
		priorityValues: []string{"low", "medium", "high", "critical"},
		severityValues: []string{"minor", "moderate", "major", "critical"},
		riskThreshold:  0.7,
		quantityMin:    1,
		priceMin:       0.01,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate accepts a parsed object, a JSON string or byte slice, or a path
// to a file containing JSON. Malformed input short-circuits with a single
// diagnostic anomaly; once parsing succeeds every check runs and anomalies
// accumulate in detection order.
func (v *Validator) Validate(input any) intake.Result {
	doc, errResult := v.coerce(input)
	if errResult != nil {
		return *errResult
	}

	var anomalies []string
	for _, field := range topLevelRequired {
		if _, present := doc[field]; !present {
			anomalies = append(anomalies, fmt.Sprintf("Missing required top-level field: %s", field))
		}
	}

	eventType, _ := doc["event_type"].(string)
	eventType = strings.ToLower(eventType)
	payload, payloadPresent := doc["payload"]
	if !payloadPresent {
		// An absent payload is treated as empty so schema checks still
		// report every missing required field.
		payload = map[string]any{}
	}
	timestamp := doc["timestamp"]
	source := doc["source"]
	version := doc["version"]

	fields := map[string]any{
		"event_type": eventType,
		"source":     stringOrEmpty(source),
		"version":    version,
		"timestamp":  stringOrEmpty(timestamp),
	}

	if _, present := doc["timestamp"]; present {
		anomalies = append(anomalies, checkFieldType("timestamp", timestamp, TypeString)...)
		if ts, ok := timestamp.(string); ok {
			anomalies = append(anomalies, checkPattern("timestamp", ts, datePattern)...)
		}
	}
	if payloadPresent {
		anomalies = append(anomalies, checkFieldType("payload", payload, TypeObject)...)
	}
	if _, present := doc["version"]; present {
		anomalies = append(anomalies, checkFieldType("version", version, TypeStringOrNumber)...)
	}

	schema, known := v.schemas[eventType]
	payloadObj, payloadIsObj := payload.(map[string]any)

	if known && payloadIsObj {
		anomalies = append(anomalies, v.validatePayload(eventType, schema, payloadObj, fields)...)
	} else {
		if eventType == "" {
			anomalies = append(anomalies, "Missing or empty event_type")
		} else if !known {
			anomalies = append(anomalies, fmt.Sprintf("Unknown event_type: '%s'. Supported types: %s",
				eventType, strings.Join(eventTypeOrder, ", ")))
		}
		if !payloadIsObj {
			anomalies = append(anomalies, "Payload must be a JSON object")
		}
	}

	valid := len(anomalies) == 0
	trackingID := v.trackingID()
	fields["text_excerpt"] = buildSummary(eventType, source, version, timestamp, trackingID, valid, payloadObj, anomalies)

	return intake.Result{
		Status:          "processed",
		Format:          "JSON",
		Valid:           intake.Bool(valid),
		Anomalies:       anomalies,
		Fields:          fields,
		SuggestedAction: v.suggestAction(eventType, payloadObj, anomalies),
		TrackingID:      trackingID,
	}
}

func (v *Validator) coerce(input any) (map[string]any, *intake.Result) {
	switch in := input.(type) {
	case map[string]any:
		return in, nil
	case []byte:
		return v.parse(in)
	case string:
		if info, err := os.Stat(in); err == nil && !info.IsDir() {
			b, err := os.ReadFile(in)
			if err != nil {
				return nil, v.errorResult(fmt.Sprintf("File read error: %v", err))
			}
			return v.parse(b)
		}
		return v.parse([]byte(in))
	default:
		return nil, v.errorResult("Input is not an object, JSON text, or file path")
	}
}

func (v *Validator) parse(raw []byte) (map[string]any, *intake.Result) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, v.errorResult(fmt.Sprintf("JSON parse error: %v", err))
	}
	return doc, nil
}

func (v *Validator) errorResult(anomaly string) *intake.Result {
	return &intake.Result{
		Status:    "error",
		Format:    "JSON",
		Valid:     intake.Bool(false),
		Anomalies: []string{anomaly},
		Fields: map[string]any{
			"error":        anomaly,
			"text_excerpt": anomaly,
		},
		TrackingID: v.trackingID(),
	}
}

func (v *Validator) validatePayload(eventType string, schema Schema, payload map[string]any, fields map[string]any) []string {
	var anomalies []string

	for _, field := range schema.Required {
		if _, present := payload[field]; !present {
			anomalies = append(anomalies, fmt.Sprintf("Missing required field '%s' for event_type '%s'", field, eventType))
		}
	}
	for _, rule := range schema.Types {
		if value, present := payload[rule.Name]; present {
			anomalies = append(anomalies, checkFieldType(rule.Name, value, rule.Type)...)
		}
	}
	for _, rule := range schema.Nested {
		anomalies = append(anomalies, checkNested(payload, rule)...)
	}

	switch eventType {
	case "rfq":
		anomalies = append(anomalies, v.validateRFQ(payload)...)
	case "invoice":
		anomalies = append(anomalies, v.validateInvoice(payload)...)
	case "complaint":
		anomalies = append(anomalies, v.validateComplaint(payload)...)
	case "fraud_alert":
		anomalies = append(anomalies, v.validateFraudAlert(payload, fields)...)
	}
	return anomalies
}

func (v *Validator) validateRFQ(payload map[string]any) []string {
	var anomalies []string
	if priority, ok := payload["priority"].(string); ok {
		anomalies = append(anomalies, checkEnum("priority", priority, v.priorityValues)...)
	}
	if date, ok := payload["date_requested"].(string); ok {
		anomalies = append(anomalies, checkPattern("date_requested", date, datePattern)...)
	}
	if customer, ok := payload["customer"].(map[string]any); ok {
		if email, ok := customer["contact_email"].(string); ok {
			anomalies = append(anomalies, checkPattern("contact_email", email, emailPattern)...)
		}
	}
	if items, ok := payload["items"].([]any); ok {
		for i, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if quantity, ok := numberValue(obj["quantity"]); ok {
				anomalies = append(anomalies, checkMinimum(fmt.Sprintf("items[%d].quantity", i), quantity, v.quantityMin)...)
			}
		}
	}
	return anomalies
}

func (v *Validator) validateInvoice(payload map[string]any) []string {
	var anomalies []string
	if amount, ok := numberValue(payload["amount"]); ok {
		anomalies = append(anomalies, checkMinimum("amount", amount, v.priceMin)...)
	}
	if date, ok := payload["date_issued"].(string); ok {
		anomalies = append(anomalies, checkPattern("date_issued", date, datePattern)...)
	}
	if items, ok := payload["items"].([]any); ok {
		for i, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if quantity, ok := numberValue(obj["quantity"]); ok {
				anomalies = append(anomalies, checkMinimum(fmt.Sprintf("items[%d].quantity", i), quantity, v.quantityMin)...)
			}
			if price, ok := numberValue(obj["price"]); ok {
				anomalies = append(anomalies, checkMinimum(fmt.Sprintf("items[%d].price", i), price, v.priceMin)...)
			}
		}
	}
	return anomalies
}

func (v *Validator) validateComplaint(payload map[string]any) []string {
	var anomalies []string
	if severity, ok := payload["severity"].(string); ok {
		anomalies = append(anomalies, checkEnum("severity", severity, v.severityValues)...)
	}
	if date, ok := payload["date_filed"].(string); ok {
		anomalies = append(anomalies, checkPattern("date_filed", date, datePattern)...)
	}
	return anomalies
}

func (v *Validator) validateFraudAlert(payload map[string]any, fields map[string]any) []string {
	var anomalies []string
	if score, ok := numberValue(payload["risk_score"]); ok && score > v.riskThreshold {
		fields["risk_flag"] = true
		fields["risk_score"] = score
	}
	if ts, ok := payload["timestamp"].(string); ok {
		anomalies = append(anomalies, checkPattern("timestamp", ts, datePattern)...)
	}
	return anomalies
}

func (v *Validator) suggestAction(eventType string, payload map[string]any, anomalies []string) *intake.Suggestion {
	if len(anomalies) > 0 {
		priority := intake.PriorityMedium
		if len(anomalies) > 3 {
			priority = intake.PriorityHigh
		}
		return &intake.Suggestion{
			Action:   "alert",
			Target:   "data_quality",
			Priority: priority,
			Details:  fmt.Sprintf("Data quality issues detected in %s webhook", eventType),
			Endpoint: "/alerts/data_quality",
		}
	}

	if eventType == "fraud_alert" {
		if score, ok := numberValue(payload["risk_score"]); ok && score > v.riskThreshold {
			return &intake.Suggestion{
				Action:   "escalate",
				Target:   "risk",
				Priority: intake.PriorityCritical,
				Details:  fmt.Sprintf("High risk score detected: %v", score),
				Endpoint: "/risk/escalate",
			}
		}
	}

	return &intake.Suggestion{
		Action:   "process",
		Target:   "webhook",
		Priority: intake.PriorityNormal,
		Details:  fmt.Sprintf("Valid %s webhook received", eventType),
		Endpoint: fmt.Sprintf("/webhooks/%s/process", eventType),
	}
}

func (v *Validator) trackingID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return fmt.Sprintf("JSON-%05d", 10000+v.rng.Intn(90000))
}

func buildSummary(eventType string, source, version, timestamp any, trackingID string, valid bool, payload map[string]any, anomalies []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event Type: %s\n", displayValue(eventType))
	fmt.Fprintf(&b, "Source: %s\n", displayValue(source))
	fmt.Fprintf(&b, "Version: %s\n", displayValue(version))
	fmt.Fprintf(&b, "Timestamp: %s\n", displayValue(timestamp))
	fmt.Fprintf(&b, "Tracking ID: %s\n", trackingID)
	if valid {
		b.WriteString("Validation: VALID\n")
	} else {
		b.WriteString("Validation: INVALID\n")
	}

	b.WriteString("\nPayload:\n")
	if len(payload) == 0 {
		b.WriteString("  (No payload fields)\n")
	} else {
		keys := make([]string, 0, len(payload))
		for k := range payload {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch value := payload[k].(type) {
			case map[string]any:
				fmt.Fprintf(&b, "  - %s: object with %d entries\n", k, len(value))
			case []any:
				fmt.Fprintf(&b, "  - %s: array with %d items\n", k, len(value))
			default:
				fmt.Fprintf(&b, "  - %s: %v\n", k, value)
			}
		}
	}

	if len(anomalies) > 0 {
		b.WriteString("\nAnomalies:\n")
		for _, a := range anomalies {
			fmt.Fprintf(&b, "  - %s\n", a)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func displayValue(v any) string {
	if v == nil {
		return "N/A"
	}
	if s, ok := v.(string); ok {
		if s == "" {
			return "N/A"
		}
		return s
	}
	return fmt.Sprint(v)
}

func stringOrEmpty(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
