package dto

import "time"

type ManualEntryRequest struct {
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Duration    int        `json:"duration"`
	Description *string    `json:"description"`
}
