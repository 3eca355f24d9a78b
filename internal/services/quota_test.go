package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lukab/flowtrack-api/internal/database"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupQuotaService(t *testing.T, now time.Time) (*QuotaService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	svc := NewQuotaService(&database.DB{Pool: mock})
	svc.now = func() time.Time { return now }
	return svc, mock
}

func TestQuotaService_Consume(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, mock := setupQuotaService(t, now)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectExec(`UPDATE users SET daily_extraction_count = 0`).
		WithArgs(now, userID, now.Add(-24*time.Hour)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	mock.ExpectQuery(`SELECT plan FROM users`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"plan"}).AddRow("free"))

	mock.ExpectExec(`UPDATE users SET daily_extraction_count = daily_extraction_count \+ 1`).
		WithArgs(userID, 5).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.Consume(ctx, userID)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotaService_Consume_Exceeded(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, mock := setupQuotaService(t, now)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectExec(`UPDATE users SET daily_extraction_count = 0`).
		WithArgs(now, userID, now.Add(-24*time.Hour)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	mock.ExpectQuery(`SELECT plan FROM users`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"plan"}).AddRow("free"))

	// Conditional increment finds the counter already at the limit.
	mock.ExpectExec(`UPDATE users SET daily_extraction_count = daily_extraction_count \+ 1`).
		WithArgs(userID, 5).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := svc.Consume(ctx, userID)

	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotaService_Consume_StaleWindowResets(t *testing.T) {
	now := time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC)
	svc, mock := setupQuotaService(t, now)
	ctx := context.Background()
	userID := uuid.New()

	// The lazy reset matches because last_extraction_reset is 25h old, so the
	// follow-up increment succeeds even though the old count was at the limit.
	mock.ExpectExec(`UPDATE users SET daily_extraction_count = 0`).
		WithArgs(now, userID, now.Add(-24*time.Hour)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	mock.ExpectQuery(`SELECT plan FROM users`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"plan"}).AddRow("free"))

	mock.ExpectExec(`UPDATE users SET daily_extraction_count = daily_extraction_count \+ 1`).
		WithArgs(userID, 5).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.Consume(ctx, userID)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotaService_Consume_UnknownUser(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, mock := setupQuotaService(t, now)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectExec(`UPDATE users SET daily_extraction_count = 0`).
		WithArgs(now, userID, now.Add(-24*time.Hour)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	mock.ExpectQuery(`SELECT plan FROM users`).
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)

	err := svc.Consume(ctx, userID)

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotaService_Consume_UnknownPlanFallsBackToFree(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, mock := setupQuotaService(t, now)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectExec(`UPDATE users SET daily_extraction_count = 0`).
		WithArgs(now, userID, now.Add(-24*time.Hour)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	mock.ExpectQuery(`SELECT plan FROM users`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"plan"}).AddRow("platinum"))

	mock.ExpectExec(`UPDATE users SET daily_extraction_count = daily_extraction_count \+ 1`).
		WithArgs(userID, 5).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.Consume(ctx, userID)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotaService_Refund(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, mock := setupQuotaService(t, now)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectExec(`UPDATE users SET daily_extraction_count = GREATEST`).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.Refund(ctx, userID)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotaService_Remaining(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, mock := setupQuotaService(t, now)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT plan, daily_extraction_count, last_extraction_reset`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"plan", "daily_extraction_count", "last_extraction_reset"}).
			AddRow("pro", 10, now.Add(-1*time.Hour)))

	remaining, err := svc.Remaining(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, 40, remaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotaService_Remaining_StaleWindowCountsAsFull(t *testing.T) {
	now := time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC)
	svc, mock := setupQuotaService(t, now)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT plan, daily_extraction_count, last_extraction_reset`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"plan", "daily_extraction_count", "last_extraction_reset"}).
			AddRow("free", 5, now.Add(-25*time.Hour)))

	remaining, err := svc.Remaining(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, 5, remaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotaService_ResetStale(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, mock := setupQuotaService(t, now)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE users SET daily_extraction_count = 0`).
		WithArgs(now, now.Add(-24*time.Hour)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := svc.ResetStale(ctx)

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
