package models

import (
	"time"

	"github.com/google/uuid"
)

type FeatureFlag struct {
	ID        uuid.UUID `json:"id"`
	ScopeType string    `json:"scope_type"`
	ScopeID   uuid.UUID `json:"scope_id"`
	Key       string    `json:"key"`
	Value     bool      `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
