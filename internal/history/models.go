// Package history persists processing runs in SQLite. Every file the
// pipeline touches leaves a run record with its per-step outcomes, which
// drive the status, statistics, and metadata snapshot surfaces.
package history

import "time"

// Status describes where a run is in its lifecycle.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// OutcomeStatus describes how a single step ended.
type OutcomeStatus string

const (
	OutcomeCompleted OutcomeStatus = "completed"
	OutcomeFailed    OutcomeStatus = "failed"
)

// StepOutcome records one step of one run. Details carries the handler's
// structured notes, such as collision bounds or output dimensions.
type StepOutcome struct {
	Step    string         `json:"step"`
	Status  OutcomeStatus  `json:"status"`
	Error   string         `json:"error,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Run is one processing attempt for one file.
type Run struct {
	ID           string        `json:"id"`
	Filename     string        `json:"filename"`
	Status       Status        `json:"status"`
	Category     string        `json:"category"`
	ErrorMessage string        `json:"error_message,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
	Outcomes     []StepOutcome `json:"outcomes"`
}

// Succeeded reports whether every recorded step completed.
func (r *Run) Succeeded() bool {
	if r.Status != StatusCompleted {
		return false
	}
	for _, outcome := range r.Outcomes {
		if outcome.Status != OutcomeCompleted {
			return false
		}
	}
	return true
}

// Stats aggregates run counts per status.
type Stats struct {
	Total     int `json:"total"`
	Queued    int `json:"queued"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// SuccessRate returns completed runs as a fraction of finished runs.
func (s Stats) SuccessRate() float64 {
	finished := s.Completed + s.Failed
	if finished == 0 {
		return 0
	}
	return float64(s.Completed) / float64(finished)
}
