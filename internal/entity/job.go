package entity

import (
	"time"

	"github.com/obielum/doctrack/constants"
)

// ProcessingJob represents in-flight server-side work for exactly one document.
// Jobs are transient: they live in the tracker registry, never in the database.
type ProcessingJob struct {
	DocumentID   string              `json:"document_id"`
	Status       constants.JobStatus `json:"status"`
	Progress     int                 `json:"progress"` // 0-100, meaningful while pending/processing
	ErrorMessage *string             `json:"error_message,omitempty"`
	StartedAt    time.Time           `json:"started_at"`
	FinishedAt   *time.Time          `json:"finished_at,omitempty"`
}

// Terminal reports whether the job has reached completed or failed.
func (j *ProcessingJob) Terminal() bool {
	return j.Status.IsTerminal()
}

// Clone returns a copy safe to hand out of the registry.
func (j *ProcessingJob) Clone() *ProcessingJob {
	out := *j
	if j.ErrorMessage != nil {
		msg := *j.ErrorMessage
		out.ErrorMessage = &msg
	}
	if j.FinishedAt != nil {
		ts := *j.FinishedAt
		out.FinishedAt = &ts
	}
	return &out
}
