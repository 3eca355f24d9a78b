package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

type Workspace struct {
	ID                uuid.UUID `json:"id"`
	SpaceID           uuid.UUID `json:"space_id"`
	Name              string    `json:"name"`
	ManagerNoteAccess bool      `json:"manager_note_access"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Membership grants a user presence in a workspace. At most one row exists
// per (workspace, user) pair.
type Membership struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	UserID      uuid.UUID `json:"user_id"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	User        *User     `json:"user,omitempty"`
}
