package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PatternDaily   = "daily"
	PatternWeekly  = "weekly"
	PatternMonthly = "monthly"
	PatternYearly  = "yearly"
)

// RecurringTask describes a series: a repeating pattern plus the template
// task that instances are cloned from. CurrentOccurrence never exceeds
// MaxOccurrences when the latter is set.
type RecurringTask struct {
	ID                uuid.UUID  `json:"id"`
	TemplateTaskID    uuid.UUID  `json:"template_task_id"`
	Pattern           string     `json:"pattern"`
	Interval          int        `json:"interval"`
	Weekdays          []int      `json:"weekdays"`
	MonthDay          *int       `json:"month_day,omitempty"`
	MonthOfYear       *int       `json:"month_of_year,omitempty"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	MaxOccurrences    *int       `json:"max_occurrences,omitempty"`
	CurrentOccurrence int        `json:"current_occurrence"`
	LastGeneratedDate *time.Time `json:"last_generated_date,omitempty"`
	IsActive          bool       `json:"is_active"`
	CreatedAt         time.Time  `json:"created_at"`
}
