package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lukab/flowtrack-api/internal/database"
	"github.com/lukab/flowtrack-api/internal/models"
)

// AuditService writes the append-only action trail. There is no update or
// delete path on purpose.
type AuditService struct {
	db *database.DB
}

func NewAuditService(db *database.DB) *AuditService {
	return &AuditService{db: db}
}

func (s *AuditService) Record(ctx context.Context, workspaceID *uuid.UUID, actorID uuid.UUID, action, targetType string, targetID uuid.UUID, diff json.RawMessage) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO audit_logs (workspace_id, actor_id, action, target_type, target_id, diff_json)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, workspaceID, actorID, action, targetType, targetID, diff)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

func (s *AuditService) ListForWorkspace(ctx context.Context, workspaceID uuid.UUID, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, workspace_id, actor_id, action, target_type, target_id, diff_json, created_at
		FROM audit_logs WHERE workspace_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, workspaceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AuditLog
	for rows.Next() {
		var e models.AuditLog
		if err := rows.Scan(&e.ID, &e.WorkspaceID, &e.ActorID, &e.Action, &e.TargetType, &e.TargetID, &e.Diff, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
