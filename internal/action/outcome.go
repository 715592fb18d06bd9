package action

import "github.com/your-org/docrouter/internal/dispatch"

// Outcome statuses. An outcome starts pending, is updated in place across
// retry attempts, and is finalized exactly once.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Outcome is the terminal record of one executed suggestion.
type Outcome struct {
	ActionType string               `json:"action_type"`
	Target     string               `json:"target"`
	Endpoint   string               `json:"endpoint"`
	Priority   string               `json:"priority"`
	Timestamp  string               `json:"timestamp"`
	Status     string               `json:"status"`
	Attempts   int                  `json:"attempts"`
	Response   *dispatch.CallResult `json:"response,omitempty"`
}
