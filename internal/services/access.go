package services

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lukab/flowtrack-api/internal/database"
)

// Entity kinds accepted by CanAccess.
const (
	KindProject   = "project"
	KindTask      = "task"
	KindNote      = "note"
	KindWorkspace = "workspace"
)

// AccessService decides whether a user may act on an entity. Every check
// fails closed: a missing entity, an unresolvable scope or a storage error
// all come back as a denial. Decisions are pure reads and are never cached.
type AccessService struct {
	db  *database.DB
	dir *DirectoryService
}

func NewAccessService(db *database.DB, dir *DirectoryService) *AccessService {
	return &AccessService{db: db, dir: dir}
}

// CanAccess is the never-throws façade used by the request layer. Unknown
// kinds and internal errors are denials; the caller only learns yes or no.
func (s *AccessService) CanAccess(ctx context.Context, userID uuid.UUID, kind string, entityID uuid.UUID) bool {
	var (
		allowed bool
		err     error
	)
	switch kind {
	case KindProject:
		allowed, err = s.CanAccessProject(ctx, entityID, userID)
	case KindTask:
		allowed, err = s.CanAccessTask(ctx, entityID, userID)
	case KindNote:
		allowed, err = s.CanAccessNote(ctx, entityID, userID)
	case KindWorkspace:
		allowed, err = s.CanAccessWorkspace(ctx, entityID, userID)
	default:
		return false
	}
	if err != nil {
		log.Printf("access check failed for %s %s: %v", kind, entityID, err)
		return false
	}
	return allowed
}

// CanAccessProject allows when the project's workspace is in the user's
// membership set or its space is owned by the user.
func (s *AccessService) CanAccessProject(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	var workspaceID, spaceID *uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		SELECT workspace_id, space_id FROM projects WHERE id = $1
	`, projectID).Scan(&workspaceID, &spaceID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.scopeAllows(ctx, userID, workspaceID, spaceID)
}

// CanAccessTask resolves through the owning project; a task whose project
// cannot be resolved is denied.
func (s *AccessService) CanAccessTask(ctx context.Context, taskID, userID uuid.UUID) (bool, error) {
	var workspaceID, spaceID *uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		SELECT p.workspace_id, p.space_id
		FROM tasks t
		JOIN projects p ON t.project_id = p.id
		WHERE t.id = $1
	`, taskID).Scan(&workspaceID, &spaceID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.scopeAllows(ctx, userID, workspaceID, spaceID)
}

// CanAccessNote allows the author, anyone in the note's workspace, the owner
// of the note's space, or anyone who can access the note's project. The
// visibility_scope column is UI metadata and does not gate access here.
func (s *AccessService) CanAccessNote(ctx context.Context, noteID, userID uuid.UUID) (bool, error) {
	var authorID, workspaceID, spaceID, projectID *uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		SELECT author_id, workspace_id, space_id, project_id FROM notes WHERE id = $1
	`, noteID).Scan(&authorID, &workspaceID, &spaceID, &projectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if authorID != nil && *authorID == userID {
		return true, nil
	}

	allowed, err := s.scopeAllows(ctx, userID, workspaceID, spaceID)
	if err != nil || allowed {
		return allowed, err
	}

	if projectID != nil {
		return s.CanAccessProject(ctx, *projectID, userID)
	}
	return false, nil
}

// CanAccessWorkspace requires a membership row. Owning the surrounding space
// does not by itself grant workspace access.
func (s *AccessService) CanAccessWorkspace(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM memberships WHERE workspace_id = $1 AND user_id = $2)
	`, workspaceID, userID).Scan(&exists)
	return exists, err
}

func (s *AccessService) scopeAllows(ctx context.Context, userID uuid.UUID, workspaceID, spaceID *uuid.UUID) (bool, error) {
	if workspaceID != nil {
		workspaces, err := s.dir.WorkspaceIDs(ctx, userID)
		if err != nil {
			return false, err
		}
		if containsID(workspaces, *workspaceID) {
			return true, nil
		}
	}
	if spaceID != nil {
		spaces, err := s.dir.SpaceIDs(ctx, userID)
		if err != nil {
			return false, err
		}
		if containsID(spaces, *spaceID) {
			return true, nil
		}
	}
	return false, nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
