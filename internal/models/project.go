package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ProjectStatusActive  = "active"
	ProjectStatusDeleted = "deleted"
)

// Project is scoped to a workspace or a space (one of the two in practice).
// Deletion is logical: status flips to "deleted", the row stays.
type Project struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Color       string     `json:"color"`
	SpaceID     *uuid.UUID `json:"space_id,omitempty"`
	WorkspaceID *uuid.UUID `json:"workspace_id,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
