package intake

// Priority levels understood by the routing core.
const (
	PriorityLow      = "low"
	PriorityNormal   = "normal"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Suggestion is an unexecuted follow-up action proposed by a format agent.
type Suggestion struct {
	Action   string `json:"action"`
	Target   string `json:"target"`
	Priority string `json:"priority"`
	Details  string `json:"details"`
	Endpoint string `json:"endpoint,omitempty"`
}

// Result is the normalized output of one format agent run and the input
// contract of the router.
type Result struct {
	Status          string         `json:"status,omitempty"`
	Format          string         `json:"format,omitempty"`
	Valid           *bool          `json:"valid,omitempty"`
	Anomalies       []string       `json:"anomalies,omitempty"`
	Fields          map[string]any `json:"fields,omitempty"`
	Summary         string         `json:"summary,omitempty"`
	SuggestedAction *Suggestion    `json:"suggested_action,omitempty"`
	// LegacyAction carries the old bare-string action form still emitted by
	// some upstream producers.
	LegacyAction string `json:"action,omitempty"`
	TrackingID   string `json:"tracking_id,omitempty"`
}

// IsValid reports the validity flag, treating an absent flag as valid.
func (r Result) IsValid() bool {
	return r.Valid == nil || *r.Valid
}

// Bool returns a pointer suitable for Result.Valid.
func Bool(v bool) *bool {
	return &v
}

// Escalates reports whether a priority level requires escalation handling.
func Escalates(priority string) bool {
	return priority == PriorityHigh || priority == PriorityCritical
}
