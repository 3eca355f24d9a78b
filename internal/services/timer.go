package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lukab/flowtrack-api/internal/database"
	"github.com/lukab/flowtrack-api/internal/models"
)

var (
	ErrTimerAlreadyRunning = errors.New("timer already running for this task")
	ErrNoActiveTimer       = errors.New("no active timer for this task")
)

// TimerService tracks at most one running timer per task. The uniqueness
// constraint on active_timers(task_id) is the serializer: concurrent starts
// race at the storage layer, not in process.
type TimerService struct {
	db  *database.DB
	now func() time.Time
}

func NewTimerService(db *database.DB) *TimerService {
	return &TimerService{db: db, now: time.Now}
}

// Start creates the active timer for the task, or fails with
// ErrTimerAlreadyRunning when one exists.
func (s *TimerService) Start(ctx context.Context, taskID uuid.UUID) (*models.ActiveTimer, error) {
	var timer models.ActiveTimer
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO active_timers (task_id, start_time)
		VALUES ($1, $2)
		ON CONFLICT (task_id) DO NOTHING
		RETURNING id, task_id, start_time, created_at
	`, taskID, s.now().UTC()).Scan(&timer.ID, &timer.TaskID, &timer.StartTime, &timer.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTimerAlreadyRunning
	}
	if err != nil {
		return nil, fmt.Errorf("failed to start timer: %w", err)
	}
	return &timer, nil
}

// Stop converts the active timer into a time entry. The delete and the
// insert share one transaction: a crash between them leaves the timer
// running, never a consumed timer without an entry. A retried Stop after
// success finds no active timer and fails with ErrNoActiveTimer.
func (s *TimerService) Stop(ctx context.Context, taskID uuid.UUID) (*models.TimeEntry, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var startTime time.Time
	err = tx.QueryRow(ctx, `
		DELETE FROM active_timers WHERE task_id = $1 RETURNING start_time
	`, taskID).Scan(&startTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoActiveTimer
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume active timer: %w", err)
	}

	endTime := s.now().UTC()
	duration := int(endTime.Sub(startTime).Seconds())

	var entry models.TimeEntry
	err = tx.QueryRow(ctx, `
		INSERT INTO time_entries (task_id, start_time, end_time, duration)
		VALUES ($1, $2, $3, $4)
		RETURNING id, task_id, start_time, end_time, duration, description, created_at
	`, taskID, startTime, endTime, duration).Scan(
		&entry.ID, &entry.TaskID, &entry.StartTime, &entry.EndTime,
		&entry.Duration, &entry.Description, &entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create time entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &entry, nil
}

// RecordManualEntry writes a time entry directly, bypassing the running-timer
// state machine entirely.
func (s *TimerService) RecordManualEntry(ctx context.Context, taskID uuid.UUID, start time.Time, end *time.Time, duration int, description *string) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO time_entries (task_id, start_time, end_time, duration, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, task_id, start_time, end_time, duration, description, created_at
	`, taskID, start, end, duration, description).Scan(
		&entry.ID, &entry.TaskID, &entry.StartTime, &entry.EndTime,
		&entry.Duration, &entry.Description, &entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record time entry: %w", err)
	}
	return &entry, nil
}

// ActiveForUser returns the running timer on any task the user can reach, or
// nil when none is running.
func (s *TimerService) ActiveForUser(ctx context.Context, userID uuid.UUID) (*models.ActiveTimer, error) {
	var timer models.ActiveTimer
	err := s.db.Pool.QueryRow(ctx, `
		SELECT at.id, at.task_id, at.start_time, at.created_at
		FROM active_timers at
		JOIN tasks t ON at.task_id = t.id
		JOIN projects p ON t.project_id = p.id
		WHERE EXISTS(SELECT 1 FROM memberships m WHERE m.workspace_id = p.workspace_id AND m.user_id = $1)
		   OR EXISTS(SELECT 1 FROM spaces sp WHERE sp.id = p.space_id AND sp.owner_id = $1)
		LIMIT 1
	`, userID).Scan(&timer.ID, &timer.TaskID, &timer.StartTime, &timer.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &timer, nil
}

func (s *TimerService) EntriesForTask(ctx context.Context, taskID uuid.UUID) ([]models.TimeEntry, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, task_id, start_time, end_time, duration, description, created_at
		FROM time_entries WHERE task_id = $1
		ORDER BY start_time DESC
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.TimeEntry
	for rows.Next() {
		var e models.TimeEntry
		if err := rows.Scan(&e.ID, &e.TaskID, &e.StartTime, &e.EndTime, &e.Duration, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
