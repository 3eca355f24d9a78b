package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	ProjectID   uuid.UUID  `json:"project_id"`
	NoteID      *uuid.UUID `json:"note_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Priority    string     `json:"priority"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
	Tags        []string   `json:"tags"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
	Tags        []string   `json:"tags"`
}

type CreateSeriesRequest struct {
	TemplateTaskID uuid.UUID  `json:"template_task_id"`
	Pattern        string     `json:"pattern"`
	Interval       int        `json:"interval"`
	Weekdays       []int      `json:"weekdays"`
	MonthDay       *int       `json:"month_day"`
	MonthOfYear    *int       `json:"month_of_year"`
	EndDate        *time.Time `json:"end_date"`
	MaxOccurrences *int       `json:"max_occurrences"`
}
