package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lukab/flowtrack-api/internal/database"
	"github.com/lukab/flowtrack-api/internal/models"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupReportService(t *testing.T, now time.Time) (*ReportService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	svc := NewReportService(&database.DB{Pool: mock})
	svc.now = func() time.Time { return now }
	return svc, mock
}

func expectUserReport(mock pgxmock.PgxPoolIface, userID uuid.UUID, periodStart, periodEnd time.Time) {
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tasks`).
		WithArgs(userID, models.TaskStatusDone, periodStart).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(te.duration\), 0\)`).
		WithArgs(userID, periodStart).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(5400))
	mock.ExpectQuery(`SELECT COUNT\(DISTINCT t.project_id\)`).
		WithArgs(userID, models.ProjectStatusActive).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`INSERT INTO weekly_reports`).
		WithArgs(userID, periodStart, periodEnd, 7, 5400, 2).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "period_start", "period_end", "completed_tasks", "tracked_seconds", "active_projects", "created_at",
		}).AddRow(uuid.New(), userID, periodStart, periodEnd, 7, 5400, 2, periodEnd))
}

func TestReportService_GenerateUserReport(t *testing.T) {
	now := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	svc, mock := setupReportService(t, now)
	userID := uuid.New()
	periodStart := now.Add(-7 * 24 * time.Hour)

	expectUserReport(mock, userID, periodStart, now)

	report, err := svc.GenerateUserReport(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, 7, report.CompletedTasks)
	assert.Equal(t, 5400, report.TrackedSeconds)
	assert.Equal(t, 2, report.ActiveProjects)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportService_GenerateWeeklyReports_SkipsFailedUser(t *testing.T) {
	now := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	svc, mock := setupReportService(t, now)
	goodUser := uuid.New()
	badUser := uuid.New()
	periodStart := now.Add(-7 * 24 * time.Hour)

	mock.ExpectQuery(`SELECT id FROM users`).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(badUser).AddRow(goodUser))

	// First user fails at the aggregation step; the batch keeps going.
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tasks`).
		WithArgs(badUser, models.TaskStatusDone, periodStart).
		WillReturnError(assert.AnError)

	expectUserReport(mock, goodUser, periodStart, now)

	generated, err := svc.GenerateWeeklyReports(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, generated)
	assert.NoError(t, mock.ExpectationsWereMet())
}
