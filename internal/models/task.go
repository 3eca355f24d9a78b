package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

type Task struct {
	ID          uuid.UUID       `json:"id"`
	ProjectID   uuid.UUID       `json:"project_id"`
	NoteID      *uuid.UUID      `json:"note_id,omitempty"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Status      string          `json:"status"`
	Priority    string          `json:"priority"`
	AssigneeID  *uuid.UUID      `json:"assignee_id,omitempty"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Tags        json.RawMessage `json:"tags"`
	SeriesID    *uuid.UUID      `json:"series_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
