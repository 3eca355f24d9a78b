package models

import (
	"time"

	"github.com/google/uuid"
)

// ActiveTimer is ephemeral: it exists only while a timer runs and is deleted
// in the same transaction that writes the TimeEntry it becomes.
type ActiveTimer struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	StartTime time.Time `json:"start_time"`
	CreatedAt time.Time `json:"created_at"`
}

// TimeEntry is immutable once created.
type TimeEntry struct {
	ID          uuid.UUID  `json:"id"`
	TaskID      uuid.UUID  `json:"task_id"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Duration    int        `json:"duration"`
	Description *string    `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
