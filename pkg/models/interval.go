package models

import (
	"time"

	"github.com/google/uuid"
)

// StatusInterval is one contiguous period a job spent in one status.
// A nil EndedAt marks the open interval; a job has at most one. Closed
// intervals are never modified. The pause fields are populated only for
// detained intervals.
type StatusInterval struct {
	ID          uuid.UUID  `db:"id"           json:"id"`
	JobID       uuid.UUID  `db:"job_id"       json:"job_id"`
	Status      string     `db:"status"       json:"status"`
	StartedAt   time.Time  `db:"started_at"   json:"started_at"`
	EndedAt     *time.Time `db:"ended_at"     json:"ended_at,omitempty"`
	PauseReason *string    `db:"pause_reason" json:"pause_reason,omitempty"`
	PauseDetail *string    `db:"pause_detail" json:"pause_detail,omitempty"`
	ETA         *time.Time `db:"eta"          json:"eta,omitempty"`
}
