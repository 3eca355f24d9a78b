package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lukab/flowtrack-api/internal/database"
	"github.com/lukab/flowtrack-api/internal/models"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskService struct {
	db *database.DB
}

func NewTaskService(db *database.DB) *TaskService {
	return &TaskService{db: db}
}

type CreateTaskInput struct {
	ProjectID   uuid.UUID
	NoteID      *uuid.UUID
	Title       string
	Description *string
	Priority    string
	AssigneeID  *uuid.UUID
	DueDate     *time.Time
	Tags        []string
}

func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) (*models.Task, error) {
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	var t models.Task
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO tasks (project_id, note_id, title, description, priority, assignee_id, due_date, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, project_id, note_id, title, description, status, priority, assignee_id, due_date, tags, series_id, created_at, updated_at
	`, in.ProjectID, in.NoteID, in.Title, in.Description, in.Priority, in.AssigneeID, in.DueDate, tagsJSON).Scan(
		&t.ID, &t.ProjectID, &t.NoteID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.AssigneeID, &t.DueDate, &t.Tags, &t.SeriesID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &t, nil
}

func (s *TaskService) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var t models.Task
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, project_id, note_id, title, description, status, priority, assignee_id, due_date, tags, series_id, created_at, updated_at
		FROM tasks WHERE id = $1
	`, id).Scan(
		&t.ID, &t.ProjectID, &t.NoteID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.AssigneeID, &t.DueDate, &t.Tags, &t.SeriesID, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

func (s *TaskService) ListForProject(ctx context.Context, projectID uuid.UUID) ([]models.Task, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, project_id, note_id, title, description, status, priority, assignee_id, due_date, tags, series_id, created_at, updated_at
		FROM tasks WHERE project_id = $1
		ORDER BY created_at
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.NoteID, &t.Title, &t.Description, &t.Status, &t.Priority,
			&t.AssigneeID, &t.DueDate, &t.Tags, &t.SeriesID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	AssigneeID  *uuid.UUID
	DueDate     *time.Time
	Tags        []string
}

// Update patches the provided fields via COALESCE so absent ones keep their
// stored values. AssigneeID and DueDate cannot be cleared through this path.
func (s *TaskService) Update(ctx context.Context, id uuid.UUID, in UpdateTaskInput) (*models.Task, error) {
	var tagsJSON []byte
	if in.Tags != nil {
		var err error
		tagsJSON, err = json.Marshal(in.Tags)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tags: %w", err)
		}
	}

	var t models.Task
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE tasks SET
			title = COALESCE($1, title),
			description = COALESCE($2, description),
			status = COALESCE($3, status),
			priority = COALESCE($4, priority),
			assignee_id = COALESCE($5, assignee_id),
			due_date = COALESCE($6, due_date),
			tags = COALESCE($7, tags),
			updated_at = NOW()
		WHERE id = $8
		RETURNING id, project_id, note_id, title, description, status, priority, assignee_id, due_date, tags, series_id, created_at, updated_at
	`, in.Title, in.Description, in.Status, in.Priority, in.AssigneeID, in.DueDate, tagsJSON, id).Scan(
		&t.ID, &t.ProjectID, &t.NoteID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.AssigneeID, &t.DueDate, &t.Tags, &t.SeriesID, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &t, nil
}

func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}
