package dto

import "github.com/google/uuid"

type CreateProjectRequest struct {
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	Color       string     `json:"color"`
	SpaceID     *uuid.UUID `json:"space_id"`
	WorkspaceID *uuid.UUID `json:"workspace_id"`
}

type UpdateProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Color       string  `json:"color"`
}
