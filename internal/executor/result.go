package executor

import "time"

// ActionOutcome records the fate of one applied action.
type ActionOutcome struct {
	Action    string `json:"action"`
	AlarmName string `json:"alarmName"`
	Succeeded bool   `json:"succeeded"`
	Error     string `json:"error,omitempty"`
}

// Result aggregates the outcomes of one plan application.
type Result struct {
	Region    string          `json:"region"`
	StartedAt time.Time       `json:"startedAt"`
	Created   int             `json:"created"`
	Deleted   int             `json:"deleted"`
	Failed    int             `json:"failed"`
	Skipped   int             `json:"skipped"`
	Outcomes  []ActionOutcome `json:"outcomes"`
}

// Attempted counts the actions that were actually tried against the API.
// Skipped actions were never attempted.
func (r *Result) Attempted() int {
	return r.Created + r.Deleted + r.Failed
}

// AllFailed reports whether every attempted action failed. This is the
// hard-failure signal: a run where nothing succeeded usually means missing
// permissions rather than bad luck. An empty run never counts as failed.
func (r *Result) AllFailed() bool {
	return r.Attempted() > 0 && r.Failed == r.Attempted()
}
