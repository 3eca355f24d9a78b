package dto

import "github.com/google/uuid"

type CreateNoteRequest struct {
	SpaceID         *uuid.UUID `json:"space_id"`
	WorkspaceID     *uuid.UUID `json:"workspace_id"`
	ProjectID       *uuid.UUID `json:"project_id"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	Tags            []string   `json:"tags"`
	VisibilityScope string     `json:"visibility_scope"`
}

type UpdateNoteRequest struct {
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Tags            []string `json:"tags"`
	VisibilityScope string   `json:"visibility_scope"`
}
