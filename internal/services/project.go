package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lukab/flowtrack-api/internal/database"
	"github.com/lukab/flowtrack-api/internal/models"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectScope    = errors.New("project must belong to exactly one of a space or a workspace")
)

type ProjectService struct {
	db *database.DB
}

func NewProjectService(db *database.DB) *ProjectService {
	return &ProjectService{db: db}
}

func (s *ProjectService) Create(ctx context.Context, name string, description *string, color string, spaceID, workspaceID *uuid.UUID) (*models.Project, error) {
	if (spaceID == nil) == (workspaceID == nil) {
		return nil, ErrProjectScope
	}
	if color == "" {
		color = "#6366F1"
	}

	var p models.Project
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO projects (name, description, color, space_id, workspace_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, description, color, space_id, workspace_id, status, created_at, updated_at
	`, name, description, color, spaceID, workspaceID).Scan(
		&p.ID, &p.Name, &p.Description, &p.Color, &p.SpaceID, &p.WorkspaceID, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &p, nil
}

// GetByID returns active projects only; deleted ones behave as missing.
func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, name, description, color, space_id, workspace_id, status, created_at, updated_at
		FROM projects WHERE id = $1 AND status = $2
	`, id, models.ProjectStatusActive).Scan(
		&p.ID, &p.Name, &p.Description, &p.Color, &p.SpaceID, &p.WorkspaceID, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

func (s *ProjectService) ListForWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Project, error) {
	return s.list(ctx, `workspace_id = $1`, workspaceID)
}

func (s *ProjectService) ListForSpace(ctx context.Context, spaceID uuid.UUID) ([]models.Project, error) {
	return s.list(ctx, `space_id = $1`, spaceID)
}

func (s *ProjectService) list(ctx context.Context, where string, arg any) ([]models.Project, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, name, description, color, space_id, workspace_id, status, created_at, updated_at
		FROM projects WHERE `+where+` AND status = 'active'
		ORDER BY created_at
	`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Color, &p.SpaceID, &p.WorkspaceID, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, name string, description *string, color string) (*models.Project, error) {
	var p models.Project
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE projects SET name = $1, description = $2, color = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5
		RETURNING id, name, description, color, space_id, workspace_id, status, created_at, updated_at
	`, name, description, color, id, models.ProjectStatusActive).Scan(
		&p.ID, &p.Name, &p.Description, &p.Color, &p.SpaceID, &p.WorkspaceID, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return &p, nil
}

// Delete is logical: the row stays so tasks, time entries and reports keep
// their history, but the project stops resolving everywhere else.
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE projects SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, models.ProjectStatusDeleted, id, models.ProjectStatusActive)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}
