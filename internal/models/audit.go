package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog rows are append-only: never updated, never deleted.
type AuditLog struct {
	ID          uuid.UUID       `json:"id"`
	WorkspaceID *uuid.UUID      `json:"workspace_id,omitempty"`
	ActorID     uuid.UUID       `json:"actor_id"`
	Action      string          `json:"action"`
	TargetType  string          `json:"target_type"`
	TargetID    uuid.UUID       `json:"target_id"`
	Diff        json.RawMessage `json:"diff,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
