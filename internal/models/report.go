package models

import (
	"time"

	"github.com/google/uuid"
)

type WeeklyReport struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`
	CompletedTasks int       `json:"completed_tasks"`
	TrackedSeconds int       `json:"tracked_seconds"`
	ActiveProjects int       `json:"active_projects"`
	CreatedAt      time.Time `json:"created_at"`
}
