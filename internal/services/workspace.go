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
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrNotWorkspaceAdmin = errors.New("user is not a workspace admin")
	ErrAlreadyMember     = errors.New("user is already a member")
	ErrMembershipMissing = errors.New("membership not found")
)

type WorkspaceService struct {
	db *database.DB
}

func NewWorkspaceService(db *database.DB) *WorkspaceService {
	return &WorkspaceService{db: db}
}

// Create provisions an organization space, the workspace inside it, and an
// admin membership for the creator, all in one transaction.
func (s *WorkspaceService) Create(ctx context.Context, ownerID uuid.UUID, name string) (*models.Workspace, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var spaceID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO spaces (owner_id, type) VALUES ($1, $2) RETURNING id
	`, ownerID, models.SpaceTypeOrganization).Scan(&spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to create space: %w", err)
	}

	var ws models.Workspace
	err = tx.QueryRow(ctx, `
		INSERT INTO workspaces (space_id, name)
		VALUES ($1, $2)
		RETURNING id, space_id, name, manager_note_access, created_at, updated_at
	`, spaceID, name).Scan(&ws.ID, &ws.SpaceID, &ws.Name, &ws.ManagerNoteAccess, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO memberships (workspace_id, user_id, role)
		VALUES ($1, $2, $3)
	`, ws.ID, ownerID, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &ws, nil
}

func (s *WorkspaceService) GetByID(ctx context.Context, id uuid.UUID) (*models.Workspace, error) {
	var ws models.Workspace
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, space_id, name, manager_note_access, created_at, updated_at
		FROM workspaces WHERE id = $1
	`, id).Scan(&ws.ID, &ws.SpaceID, &ws.Name, &ws.ManagerNoteAccess, &ws.CreatedAt, &ws.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return &ws, nil
}

func (s *WorkspaceService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Workspace, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT w.id, w.space_id, w.name, w.manager_note_access, w.created_at, w.updated_at
		FROM workspaces w
		JOIN memberships m ON m.workspace_id = w.id
		WHERE m.user_id = $1
		ORDER BY w.created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workspaces []models.Workspace
	for rows.Next() {
		var ws models.Workspace
		if err := rows.Scan(&ws.ID, &ws.SpaceID, &ws.Name, &ws.ManagerNoteAccess, &ws.CreatedAt, &ws.UpdatedAt); err != nil {
			return nil, err
		}
		workspaces = append(workspaces, ws)
	}
	return workspaces, rows.Err()
}

func (s *WorkspaceService) Update(ctx context.Context, id uuid.UUID, name string, managerNoteAccess bool) (*models.Workspace, error) {
	var ws models.Workspace
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE workspaces SET name = $1, manager_note_access = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING id, space_id, name, manager_note_access, created_at, updated_at
	`, name, managerNoteAccess, id).Scan(&ws.ID, &ws.SpaceID, &ws.Name, &ws.ManagerNoteAccess, &ws.CreatedAt, &ws.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}
	return &ws, nil
}

// AddMember enrolls a user. The unique constraint on (workspace_id, user_id)
// turns a duplicate add into ErrAlreadyMember instead of a second row.
func (s *WorkspaceService) AddMember(ctx context.Context, workspaceID, userID uuid.UUID, role string) (*models.Membership, error) {
	if role != models.RoleAdmin {
		role = models.RoleMember
	}

	var m models.Membership
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO memberships (workspace_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (workspace_id, user_id) DO NOTHING
		RETURNING id, workspace_id, user_id, role, created_at
	`, workspaceID, userID, role).Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAlreadyMember
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	return &m, nil
}

func (s *WorkspaceService) RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `
		DELETE FROM memberships WHERE workspace_id = $1 AND user_id = $2
	`, workspaceID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMembershipMissing
	}
	return nil
}

func (s *WorkspaceService) UpdateMemberRole(ctx context.Context, workspaceID, userID uuid.UUID, role string) error {
	if role != models.RoleAdmin && role != models.RoleMember {
		return fmt.Errorf("unknown role %q", role)
	}
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE memberships SET role = $1 WHERE workspace_id = $2 AND user_id = $3
	`, role, workspaceID, userID)
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMembershipMissing
	}
	return nil
}

func (s *WorkspaceService) Members(ctx context.Context, workspaceID uuid.UUID) ([]models.Membership, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT m.id, m.workspace_id, m.user_id, m.role, m.created_at,
		       u.id, u.email, u.name, u.avatar_url
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.workspace_id = $1
		ORDER BY m.created_at
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.Membership
	for rows.Next() {
		var m models.Membership
		var u models.User
		if err := rows.Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt,
			&u.ID, &u.Email, &u.Name, &u.AvatarURL); err != nil {
			return nil, err
		}
		m.User = &u
		members = append(members, m)
	}
	return members, rows.Err()
}
