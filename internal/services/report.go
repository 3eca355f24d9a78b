package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lukab/flowtrack-api/internal/database"
	"github.com/lukab/flowtrack-api/internal/models"
)

const reportWindow = 7 * 24 * time.Hour

// ReportService aggregates each user's trailing week into a durable report
// row. One user failing never aborts the batch.
type ReportService struct {
	db  *database.DB
	now func() time.Time
}

func NewReportService(db *database.DB) *ReportService {
	return &ReportService{db: db, now: time.Now}
}

// GenerateWeeklyReports builds a report for every user and returns how many
// were written. Per-user failures are logged and skipped.
func (s *ReportService) GenerateWeeklyReports(ctx context.Context) (int, error) {
	rows, err := s.db.Pool.Query(ctx, `SELECT id FROM users`)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	var userIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		userIDs = append(userIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	generated := 0
	for _, userID := range userIDs {
		if _, err := s.GenerateUserReport(ctx, userID); err != nil {
			log.Printf("weekly report: user %s: %v", userID, err)
			continue
		}
		generated++
	}
	return generated, nil
}

// GenerateUserReport aggregates one user's completed tasks, tracked time and
// active projects over the trailing window.
func (s *ReportService) GenerateUserReport(ctx context.Context, userID uuid.UUID) (*models.WeeklyReport, error) {
	periodEnd := s.now().UTC()
	periodStart := periodEnd.Add(-reportWindow)

	var completedTasks int
	err := s.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM tasks
		WHERE assignee_id = $1 AND status = $2 AND updated_at >= $3
	`, userID, models.TaskStatusDone, periodStart).Scan(&completedTasks)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed tasks: %w", err)
	}

	var trackedSeconds int
	err = s.db.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(te.duration), 0)
		FROM time_entries te
		JOIN tasks t ON te.task_id = t.id
		WHERE t.assignee_id = $1 AND te.start_time >= $2
	`, userID, periodStart).Scan(&trackedSeconds)
	if err != nil {
		return nil, fmt.Errorf("failed to sum tracked time: %w", err)
	}

	var activeProjects int
	err = s.db.Pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT t.project_id)
		FROM tasks t
		JOIN projects p ON t.project_id = p.id
		WHERE t.assignee_id = $1 AND p.status = $2
	`, userID, models.ProjectStatusActive).Scan(&activeProjects)
	if err != nil {
		return nil, fmt.Errorf("failed to count active projects: %w", err)
	}

	var report models.WeeklyReport
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO weekly_reports (user_id, period_start, period_end, completed_tasks, tracked_seconds, active_projects)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, period_start, period_end, completed_tasks, tracked_seconds, active_projects, created_at
	`, userID, periodStart, periodEnd, completedTasks, trackedSeconds, activeProjects).Scan(
		&report.ID, &report.UserID, &report.PeriodStart, &report.PeriodEnd,
		&report.CompletedTasks, &report.TrackedSeconds, &report.ActiveProjects, &report.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}
	return &report, nil
}

// ReportsForUser lists a user's past reports, newest first.
func (s *ReportService) ReportsForUser(ctx context.Context, userID uuid.UUID) ([]models.WeeklyReport, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, user_id, period_start, period_end, completed_tasks, tracked_seconds, active_projects, created_at
		FROM weekly_reports WHERE user_id = $1
		ORDER BY period_end DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.WeeklyReport
	for rows.Next() {
		var r models.WeeklyReport
		if err := rows.Scan(&r.ID, &r.UserID, &r.PeriodStart, &r.PeriodEnd, &r.CompletedTasks, &r.TrackedSeconds, &r.ActiveProjects, &r.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
