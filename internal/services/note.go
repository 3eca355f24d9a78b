package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lukab/flowtrack-api/internal/database"
	"github.com/lukab/flowtrack-api/internal/models"
)

var ErrNoteNotFound = errors.New("note not found")

type NoteService struct {
	db *database.DB
}

func NewNoteService(db *database.DB) *NoteService {
	return &NoteService{db: db}
}

type CreateNoteInput struct {
	SpaceID         *uuid.UUID
	WorkspaceID     *uuid.UUID
	ProjectID       *uuid.UUID
	AuthorID        uuid.UUID
	Title           string
	Content         string
	Tags            []string
	VisibilityScope string
}

func (s *NoteService) Create(ctx context.Context, in CreateNoteInput) (*models.Note, error) {
	if in.VisibilityScope == "" {
		in.VisibilityScope = models.VisibilityPrivate
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	var n models.Note
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO notes (space_id, workspace_id, project_id, author_id, title, content, tags, visibility_scope)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, space_id, workspace_id, project_id, author_id, title, content, tags, visibility_scope, created_at, updated_at
	`, in.SpaceID, in.WorkspaceID, in.ProjectID, in.AuthorID, in.Title, in.Content, tagsJSON, in.VisibilityScope).Scan(
		&n.ID, &n.SpaceID, &n.WorkspaceID, &n.ProjectID, &n.AuthorID, &n.Title, &n.Content,
		&n.Tags, &n.VisibilityScope, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return &n, nil
}

func (s *NoteService) GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	var n models.Note
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, space_id, workspace_id, project_id, author_id, title, content, tags, visibility_scope, created_at, updated_at
		FROM notes WHERE id = $1
	`, id).Scan(
		&n.ID, &n.SpaceID, &n.WorkspaceID, &n.ProjectID, &n.AuthorID, &n.Title, &n.Content,
		&n.Tags, &n.VisibilityScope, &n.CreatedAt, &n.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return &n, nil
}

func (s *NoteService) ListForWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Note, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, space_id, workspace_id, project_id, author_id, title, content, tags, visibility_scope, created_at, updated_at
		FROM notes WHERE workspace_id = $1
		ORDER BY updated_at DESC
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.SpaceID, &n.WorkspaceID, &n.ProjectID, &n.AuthorID, &n.Title, &n.Content,
			&n.Tags, &n.VisibilityScope, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *NoteService) Update(ctx context.Context, id uuid.UUID, title, content string, tags []string, visibilityScope string) (*models.Note, error) {
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	var n models.Note
	err = s.db.Pool.QueryRow(ctx, `
		UPDATE notes SET title = $1, content = $2, tags = $3, visibility_scope = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING id, space_id, workspace_id, project_id, author_id, title, content, tags, visibility_scope, created_at, updated_at
	`, title, content, tagsJSON, visibilityScope, id).Scan(
		&n.ID, &n.SpaceID, &n.WorkspaceID, &n.ProjectID, &n.AuthorID, &n.Title, &n.Content,
		&n.Tags, &n.VisibilityScope, &n.CreatedAt, &n.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return &n, nil
}

func (s *NoteService) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoteNotFound
	}
	return nil
}
