package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

type User struct {
	ID                   uuid.UUID `json:"id"`
	Email                string    `json:"email"`
	Name                 string    `json:"name"`
	AvatarURL            *string   `json:"avatar_url,omitempty"`
	Provider             string    `json:"-"`
	ProviderID           string    `json:"-"`
	Plan                 string    `json:"plan"`
	DailyExtractionCount int       `json:"daily_extraction_count"`
	LastExtractionReset  time.Time `json:"last_extraction_reset"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
