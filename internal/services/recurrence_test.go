package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lukab/flowtrack-api/internal/database"
	"github.com/lukab/flowtrack-api/internal/models"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRecurrenceService(t *testing.T, now time.Time) (*RecurrenceService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	svc := NewRecurrenceService(&database.DB{Pool: mock})
	svc.now = func() time.Time { return now }
	return svc, mock
}

func intPtr(v int) *int { return &v }

func TestNextOccurrence(t *testing.T) {
	// 2025-06-02 is a Monday.
	monday := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		from   time.Time
		series models.RecurringTask
		want   time.Time
	}{
		{
			name:   "daily",
			from:   monday,
			series: models.RecurringTask{Pattern: models.PatternDaily, Interval: 1},
			want:   monday.AddDate(0, 0, 1),
		},
		{
			name:   "daily every three days",
			from:   monday,
			series: models.RecurringTask{Pattern: models.PatternDaily, Interval: 3},
			want:   monday.AddDate(0, 0, 3),
		},
		{
			name:   "weekly without weekday set",
			from:   monday,
			series: models.RecurringTask{Pattern: models.PatternWeekly, Interval: 2},
			want:   monday.AddDate(0, 0, 14),
		},
		{
			name:   "weekly next day in set",
			from:   monday,
			series: models.RecurringTask{Pattern: models.PatternWeekly, Interval: 1, Weekdays: []int{1, 3, 5}},
			want:   monday.AddDate(0, 0, 2), // Wednesday
		},
		{
			name:   "weekly wraps to next week",
			from:   monday.AddDate(0, 0, 4), // Friday
			series: models.RecurringTask{Pattern: models.PatternWeekly, Interval: 1, Weekdays: []int{1, 3, 5}},
			want:   monday.AddDate(0, 0, 7), // next Monday
		},
		{
			name:   "monthly preserves day",
			from:   time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC),
			series: models.RecurringTask{Pattern: models.PatternMonthly, Interval: 1},
			want:   time.Date(2025, 7, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name:   "monthly clamps day 31 to short month",
			from:   time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC),
			series: models.RecurringTask{Pattern: models.PatternMonthly, Interval: 1, MonthDay: intPtr(31)},
			want:   time.Date(2025, 2, 28, 9, 0, 0, 0, time.UTC),
		},
		{
			name:   "monthly with explicit month day",
			from:   time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC),
			series: models.RecurringTask{Pattern: models.PatternMonthly, Interval: 1, MonthDay: intPtr(1)},
			want:   time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			name:   "yearly",
			from:   time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
			series: models.RecurringTask{Pattern: models.PatternYearly, Interval: 1},
			want:   time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "yearly leap day clamps on non-leap year",
			from: time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC),
			series: models.RecurringTask{
				Pattern: models.PatternYearly, Interval: 1,
				MonthOfYear: intPtr(2), MonthDay: intPtr(29),
			},
			want: time.Date(2025, 2, 28, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextOccurrence(tt.from, tt.series)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecurrenceRule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rule    RecurrenceRule
		wantErr bool
	}{
		{"valid daily", RecurrenceRule{Pattern: models.PatternDaily, Interval: 1}, false},
		{"valid weekly with weekdays", RecurrenceRule{Pattern: models.PatternWeekly, Interval: 1, Weekdays: []int{0, 6}}, false},
		{"unknown pattern", RecurrenceRule{Pattern: "hourly", Interval: 1}, true},
		{"zero interval", RecurrenceRule{Pattern: models.PatternDaily, Interval: 0}, true},
		{"weekday out of range", RecurrenceRule{Pattern: models.PatternWeekly, Interval: 1, Weekdays: []int{7}}, true},
		{"month day out of range", RecurrenceRule{Pattern: models.PatternMonthly, Interval: 1, MonthDay: intPtr(32)}, true},
		{"month out of range", RecurrenceRule{Pattern: models.PatternYearly, Interval: 1, MonthOfYear: intPtr(13)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRecurrence)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func seriesRow(seriesID uuid.UUID, template models.Task, series models.RecurringTask) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "pattern", "interval_value", "weekdays", "month_day", "month_of_year",
		"end_date", "max_occurrences", "current_occurrence", "last_generated_date", "is_active",
		"t_id", "t_project_id", "t_title", "t_description", "t_priority", "t_due_date", "t_tags",
	}).AddRow(
		seriesID, series.Pattern, series.Interval, []byte(`[]`), series.MonthDay, series.MonthOfYear,
		series.EndDate, series.MaxOccurrences, series.CurrentOccurrence, series.LastGeneratedDate, series.IsActive,
		template.ID, template.ProjectID, template.Title, template.Description, template.Priority, template.DueDate, template.Tags,
	)
}

func TestRecurrenceService_GenerateNextOccurrence_Due(t *testing.T) {
	now := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	svc, mock := setupRecurrenceService(t, now)
	ctx := context.Background()
	seriesID := uuid.New()
	projectID := uuid.New()
	templateID := uuid.New()
	newTaskID := uuid.New()

	lastGen := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	next := lastGen.AddDate(0, 0, 1)
	template := models.Task{ID: templateID, ProjectID: projectID, Title: "Standup", Priority: models.PriorityMedium, Tags: []byte(`[]`)}
	series := models.RecurringTask{Pattern: models.PatternDaily, Interval: 1, CurrentOccurrence: 2, LastGeneratedDate: &lastGen, IsActive: true}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT r.id, r.pattern`).
		WithArgs(seriesID).
		WillReturnRows(seriesRow(seriesID, template, series))
	mock.ExpectExec(`UPDATE recurring_tasks`).
		WithArgs(3, next, seriesID, 2).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`INSERT INTO tasks`).
		WithArgs(projectID, "Standup", (*string)(nil), models.TaskStatusTodo, models.PriorityMedium, next, json.RawMessage(`[]`), seriesID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "project_id", "note_id", "title", "description", "status", "priority",
			"assignee_id", "due_date", "tags", "series_id", "created_at", "updated_at",
		}).AddRow(newTaskID, projectID, nil, "Standup", nil, models.TaskStatusTodo, models.PriorityMedium,
			nil, &next, []byte(`[]`), &seriesID, now, now))
	mock.ExpectCommit()

	task, err := svc.GenerateNextOccurrence(ctx, seriesID)

	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, newTaskID, task.ID)
	assert.Equal(t, &seriesID, task.SeriesID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecurrenceService_GenerateNextOccurrence_NotDueYet(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	svc, mock := setupRecurrenceService(t, now)
	ctx := context.Background()
	seriesID := uuid.New()

	lastGen := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	template := models.Task{ID: uuid.New(), ProjectID: uuid.New(), Title: "Standup", Priority: models.PriorityMedium, Tags: []byte(`[]`)}
	series := models.RecurringTask{Pattern: models.PatternDaily, Interval: 1, CurrentOccurrence: 1, LastGeneratedDate: &lastGen, IsActive: true}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT r.id, r.pattern`).
		WithArgs(seriesID).
		WillReturnRows(seriesRow(seriesID, template, series))
	mock.ExpectRollback()

	task, err := svc.GenerateNextOccurrence(ctx, seriesID)

	require.NoError(t, err)
	assert.Nil(t, task)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecurrenceService_GenerateNextOccurrence_MaxReachedDeactivates(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	svc, mock := setupRecurrenceService(t, now)
	ctx := context.Background()
	seriesID := uuid.New()

	lastGen := time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC)
	template := models.Task{ID: uuid.New(), ProjectID: uuid.New(), Title: "Standup", Priority: models.PriorityMedium, Tags: []byte(`[]`)}
	series := models.RecurringTask{
		Pattern: models.PatternDaily, Interval: 1,
		MaxOccurrences: intPtr(3), CurrentOccurrence: 3,
		LastGeneratedDate: &lastGen, IsActive: true,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT r.id, r.pattern`).
		WithArgs(seriesID).
		WillReturnRows(seriesRow(seriesID, template, series))
	mock.ExpectExec(`UPDATE recurring_tasks SET is_active = FALSE`).
		WithArgs(seriesID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	task, err := svc.GenerateNextOccurrence(ctx, seriesID)

	require.NoError(t, err)
	assert.Nil(t, task)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecurrenceService_GenerateNextOccurrence_LostClaimIsNoop(t *testing.T) {
	now := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	svc, mock := setupRecurrenceService(t, now)
	ctx := context.Background()
	seriesID := uuid.New()

	lastGen := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	next := lastGen.AddDate(0, 0, 1)
	template := models.Task{ID: uuid.New(), ProjectID: uuid.New(), Title: "Standup", Priority: models.PriorityMedium, Tags: []byte(`[]`)}
	series := models.RecurringTask{Pattern: models.PatternDaily, Interval: 1, CurrentOccurrence: 2, LastGeneratedDate: &lastGen, IsActive: true}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT r.id, r.pattern`).
		WithArgs(seriesID).
		WillReturnRows(seriesRow(seriesID, template, series))
	// Someone else advanced current_occurrence between the read and the claim.
	mock.ExpectExec(`UPDATE recurring_tasks`).
		WithArgs(3, next, seriesID, 2).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	task, err := svc.GenerateNextOccurrence(ctx, seriesID)

	require.NoError(t, err)
	assert.Nil(t, task)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecurrenceService_Cancel_NotFound(t *testing.T) {
	now := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	svc, mock := setupRecurrenceService(t, now)
	ctx := context.Background()
	seriesID := uuid.New()

	mock.ExpectExec(`UPDATE recurring_tasks SET is_active = FALSE`).
		WithArgs(seriesID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := svc.Cancel(ctx, seriesID)

	assert.ErrorIs(t, err, ErrSeriesNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecurrenceService_CreateSeries_InvalidRule(t *testing.T) {
	now := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	svc, _ := setupRecurrenceService(t, now)

	_, err := svc.CreateSeries(context.Background(), uuid.New(), RecurrenceRule{Pattern: "sometimes", Interval: 1})

	assert.ErrorIs(t, err, ErrInvalidRecurrence)
}

func TestRecurrenceService_GetSeries_NotFound(t *testing.T) {
	now := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	svc, mock := setupRecurrenceService(t, now)
	seriesID := uuid.New()

	mock.ExpectQuery(`SELECT id, template_task_id`).
		WithArgs(seriesID).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetSeries(context.Background(), seriesID)

	assert.ErrorIs(t, err, ErrSeriesNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
