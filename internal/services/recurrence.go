package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lukab/flowtrack-api/internal/database"
	"github.com/lukab/flowtrack-api/internal/models"
)

var (
	ErrSeriesNotFound       = errors.New("recurring series not found")
	ErrInvalidRecurrence    = errors.New("invalid recurrence rule")
	ErrTemplateTaskNotFound = errors.New("template task not found")
)

// RecurrenceService materializes task instances from recurring series.
// Generation is conditional on the stored occurrence counter, so concurrent
// or repeated sweeps never duplicate an occurrence.
type RecurrenceService struct {
	db  *database.DB
	now func() time.Time
}

func NewRecurrenceService(db *database.DB) *RecurrenceService {
	return &RecurrenceService{db: db, now: time.Now}
}

// RecurrenceRule is the caller-facing shape of a series definition.
type RecurrenceRule struct {
	Pattern        string
	Interval       int
	Weekdays       []int
	MonthDay       *int
	MonthOfYear    *int
	EndDate        *time.Time
	MaxOccurrences *int
}

func (r RecurrenceRule) validate() error {
	switch r.Pattern {
	case models.PatternDaily, models.PatternWeekly, models.PatternMonthly, models.PatternYearly:
	default:
		return fmt.Errorf("%w: unknown pattern %q", ErrInvalidRecurrence, r.Pattern)
	}
	if r.Interval < 1 {
		return fmt.Errorf("%w: interval must be at least 1", ErrInvalidRecurrence)
	}
	for _, day := range r.Weekdays {
		if day < 0 || day > 6 {
			return fmt.Errorf("%w: weekday %d out of range", ErrInvalidRecurrence, day)
		}
	}
	if r.MonthDay != nil && (*r.MonthDay < 1 || *r.MonthDay > 31) {
		return fmt.Errorf("%w: month day %d out of range", ErrInvalidRecurrence, *r.MonthDay)
	}
	if r.MonthOfYear != nil && (*r.MonthOfYear < 1 || *r.MonthOfYear > 12) {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidRecurrence, *r.MonthOfYear)
	}
	return nil
}

// CreateSeries persists the rule and links the template task to it.
func (s *RecurrenceService) CreateSeries(ctx context.Context, templateTaskID uuid.UUID, rule RecurrenceRule) (*models.RecurringTask, error) {
	if err := rule.validate(); err != nil {
		return nil, err
	}

	weekdays, err := json.Marshal(rule.Weekdays)
	if err != nil {
		return nil, fmt.Errorf("failed to encode weekdays: %w", err)
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var series models.RecurringTask
	var rawWeekdays []byte
	err = tx.QueryRow(ctx, `
		INSERT INTO recurring_tasks (template_task_id, pattern, interval_value, weekdays, month_day, month_of_year, end_date, max_occurrences)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, template_task_id, pattern, interval_value, weekdays, month_day, month_of_year,
		          end_date, max_occurrences, current_occurrence, last_generated_date, is_active, created_at
	`, templateTaskID, rule.Pattern, rule.Interval, weekdays, rule.MonthDay, rule.MonthOfYear, rule.EndDate, rule.MaxOccurrences).Scan(
		&series.ID, &series.TemplateTaskID, &series.Pattern, &series.Interval, &rawWeekdays,
		&series.MonthDay, &series.MonthOfYear, &series.EndDate, &series.MaxOccurrences,
		&series.CurrentOccurrence, &series.LastGeneratedDate, &series.IsActive, &series.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create series: %w", err)
	}
	if err := json.Unmarshal(rawWeekdays, &series.Weekdays); err != nil {
		return nil, fmt.Errorf("failed to decode weekdays: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE tasks SET series_id = $1, updated_at = NOW() WHERE id = $2
	`, series.ID, templateTaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to link template task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrTemplateTaskNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &series, nil
}

func (s *RecurrenceService) GetSeries(ctx context.Context, seriesID uuid.UUID) (*models.RecurringTask, error) {
	var series models.RecurringTask
	var rawWeekdays []byte
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, template_task_id, pattern, interval_value, weekdays, month_day, month_of_year,
		       end_date, max_occurrences, current_occurrence, last_generated_date, is_active, created_at
		FROM recurring_tasks WHERE id = $1
	`, seriesID).Scan(
		&series.ID, &series.TemplateTaskID, &series.Pattern, &series.Interval, &rawWeekdays,
		&series.MonthDay, &series.MonthOfYear, &series.EndDate, &series.MaxOccurrences,
		&series.CurrentOccurrence, &series.LastGeneratedDate, &series.IsActive, &series.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSeriesNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawWeekdays, &series.Weekdays); err != nil {
		return nil, fmt.Errorf("failed to decode weekdays: %w", err)
	}
	return &series, nil
}

// Cancel deactivates a series without touching already generated instances.
func (s *RecurrenceService) Cancel(ctx context.Context, seriesID uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE recurring_tasks SET is_active = FALSE WHERE id = $1
	`, seriesID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSeriesNotFound
	}
	return nil
}

// GenerateNextOccurrence materializes the next due instance of the series.
// It returns (nil, nil) when there is nothing to do: the series is inactive
// or exhausted, the next occurrence is not due yet, or another instance
// claimed this occurrence number first. The occurrence counter is advanced
// with a conditional update, which makes generation idempotent per
// (series, occurrence number).
func (s *RecurrenceService) GenerateNextOccurrence(ctx context.Context, seriesID uuid.UUID) (*models.Task, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var series models.RecurringTask
	var rawWeekdays []byte
	var template models.Task
	err = tx.QueryRow(ctx, `
		SELECT r.id, r.pattern, r.interval_value, r.weekdays, r.month_day, r.month_of_year,
		       r.end_date, r.max_occurrences, r.current_occurrence, r.last_generated_date, r.is_active,
		       t.id, t.project_id, t.title, t.description, t.priority, t.due_date, t.tags
		FROM recurring_tasks r
		JOIN tasks t ON r.template_task_id = t.id
		WHERE r.id = $1
	`, seriesID).Scan(
		&series.ID, &series.Pattern, &series.Interval, &rawWeekdays, &series.MonthDay, &series.MonthOfYear,
		&series.EndDate, &series.MaxOccurrences, &series.CurrentOccurrence, &series.LastGeneratedDate, &series.IsActive,
		&template.ID, &template.ProjectID, &template.Title, &template.Description, &template.Priority, &template.DueDate, &template.Tags,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSeriesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load series: %w", err)
	}
	if err := json.Unmarshal(rawWeekdays, &series.Weekdays); err != nil {
		return nil, fmt.Errorf("failed to decode weekdays: %w", err)
	}

	if !series.IsActive {
		return nil, nil
	}

	now := s.now().UTC()

	if series.EndDate != nil && series.EndDate.Before(now) {
		return nil, s.deactivate(ctx, tx, seriesID)
	}
	if series.MaxOccurrences != nil && series.CurrentOccurrence >= *series.MaxOccurrences {
		return nil, s.deactivate(ctx, tx, seriesID)
	}

	from := now
	if series.LastGeneratedDate != nil {
		from = *series.LastGeneratedDate
	} else if template.DueDate != nil {
		from = *template.DueDate
	}

	next := nextOccurrence(from, series)

	// An occurrence on or after end_date is never generated.
	if series.EndDate != nil && !next.Before(*series.EndDate) {
		return nil, s.deactivate(ctx, tx, seriesID)
	}
	if next.After(now) {
		return nil, nil
	}

	tag, err := tx.Exec(ctx, `
		UPDATE recurring_tasks
		SET current_occurrence = $1, last_generated_date = $2
		WHERE id = $3 AND current_occurrence = $4
	`, series.CurrentOccurrence+1, next, seriesID, series.CurrentOccurrence)
	if err != nil {
		return nil, fmt.Errorf("failed to claim occurrence: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Another instance generated this occurrence number first.
		return nil, nil
	}

	var task models.Task
	err = tx.QueryRow(ctx, `
		INSERT INTO tasks (project_id, title, description, status, priority, due_date, tags, series_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, project_id, note_id, title, description, status, priority, assignee_id, due_date, tags, series_id, created_at, updated_at
	`, template.ProjectID, template.Title, template.Description, models.TaskStatusTodo, template.Priority, next, template.Tags, seriesID).Scan(
		&task.ID, &task.ProjectID, &task.NoteID, &task.Title, &task.Description, &task.Status,
		&task.Priority, &task.AssigneeID, &task.DueDate, &task.Tags, &task.SeriesID,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create occurrence task: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &task, nil
}

func (s *RecurrenceService) deactivate(ctx context.Context, tx pgx.Tx, seriesID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `
		UPDATE recurring_tasks SET is_active = FALSE WHERE id = $1
	`, seriesID); err != nil {
		return fmt.Errorf("failed to deactivate series: %w", err)
	}
	return tx.Commit(ctx)
}

// SweepDueSeries walks every active series and generates whatever is due.
// One series failing does not abort the sweep.
func (s *RecurrenceService) SweepDueSeries(ctx context.Context) (int, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id FROM recurring_tasks WHERE is_active = TRUE
	`)
	if err != nil {
		return 0, err
	}

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	generated := 0
	for _, id := range ids {
		task, err := s.GenerateNextOccurrence(ctx, id)
		if err != nil {
			log.Printf("recurrence sweep: series %s: %v", id, err)
			continue
		}
		if task != nil {
			generated++
		}
	}
	return generated, nil
}

// nextOccurrence computes the due date following from, preserving the time
// of day. Months shorter than the target day clamp to their last day.
func nextOccurrence(from time.Time, series models.RecurringTask) time.Time {
	switch series.Pattern {
	case models.PatternDaily:
		return from.AddDate(0, 0, series.Interval)

	case models.PatternWeekly:
		if len(series.Weekdays) == 0 {
			return from.AddDate(0, 0, 7*series.Interval)
		}
		weekdays := append([]int(nil), series.Weekdays...)
		sort.Ints(weekdays)
		current := int(from.Weekday())
		for _, day := range weekdays {
			if day > current {
				return from.AddDate(0, 0, day-current)
			}
		}
		// Weekday set exhausted for this week: step interval weeks and
		// land on the first weekday in the set.
		return from.AddDate(0, 0, 7*series.Interval-current+weekdays[0])

	case models.PatternMonthly:
		day := from.Day()
		if series.MonthDay != nil {
			day = *series.MonthDay
		}
		anchor := time.Date(from.Year(), from.Month(), 1, from.Hour(), from.Minute(), from.Second(), from.Nanosecond(), from.Location())
		anchor = anchor.AddDate(0, series.Interval, 0)
		return time.Date(anchor.Year(), anchor.Month(), clampDay(day, anchor.Year(), anchor.Month()), from.Hour(), from.Minute(), from.Second(), from.Nanosecond(), from.Location())

	case models.PatternYearly:
		year := from.Year() + series.Interval
		month := from.Month()
		if series.MonthOfYear != nil {
			month = time.Month(*series.MonthOfYear)
		}
		day := from.Day()
		if series.MonthDay != nil {
			day = *series.MonthDay
		}
		return time.Date(year, month, clampDay(day, year, month), from.Hour(), from.Minute(), from.Second(), from.Nanosecond(), from.Location())
	}
	return from
}

func clampDay(day, year int, month time.Month) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}
