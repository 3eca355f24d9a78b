package dto

import "github.com/google/uuid"

type CreateWorkspaceRequest struct {
	Name string `json:"name"`
}

type UpdateWorkspaceRequest struct {
	Name              string `json:"name"`
	ManagerNoteAccess bool   `json:"manager_note_access"`
}

type AddMemberRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role"`
}

type SetFlagRequest struct {
	Key   string `json:"key"`
	Value bool   `json:"value"`
}
