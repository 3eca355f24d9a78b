package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	VisibilityPrivate   = "private"
	VisibilityWorkspace = "workspace"
	VisibilitySpace     = "space"
)

// Note's visibility scope is advisory metadata for UI filtering. Authorship
// and the scoping references are what actually gate access.
type Note struct {
	ID              uuid.UUID       `json:"id"`
	SpaceID         *uuid.UUID      `json:"space_id,omitempty"`
	WorkspaceID     *uuid.UUID      `json:"workspace_id,omitempty"`
	ProjectID       *uuid.UUID      `json:"project_id,omitempty"`
	AuthorID        *uuid.UUID      `json:"author_id,omitempty"`
	Title           string          `json:"title"`
	Content         string          `json:"content"`
	Tags            json.RawMessage `json:"tags"`
	VisibilityScope string          `json:"visibility_scope"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
