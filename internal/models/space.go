package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SpaceTypePersonal     = "personal"
	SpaceTypeOrganization = "organization"
)

// Space is a top-level ownership root. Workspaces and projects hang off it;
// it is created once and never reparented.
type Space struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}
