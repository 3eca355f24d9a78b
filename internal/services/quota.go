package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lukab/flowtrack-api/internal/database"
)

var (
	ErrQuotaExceeded = errors.New("daily extraction limit reached")
	ErrUserNotFound  = errors.New("user not found")
)

const quotaWindow = 24 * time.Hour

// planLimits maps a subscription plan to its daily extraction allowance.
// Unknown plans fall back to the free tier.
var planLimits = map[string]int{
	"free":       5,
	"pro":        50,
	"enterprise": 1000,
}

// QuotaService meters the AI extraction capability per user and day. All
// state transitions are single-row conditional updates, so the lazy reset on
// the request path and the scheduled sweep can run concurrently against the
// same user without stepping on each other.
type QuotaService struct {
	db  *database.DB
	now func() time.Time
}

func NewQuotaService(db *database.DB) *QuotaService {
	return &QuotaService{db: db, now: time.Now}
}

func limitForPlan(plan string) int {
	if limit, ok := planLimits[plan]; ok {
		return limit
	}
	return planLimits["free"]
}

// Consume takes one unit of today's allowance. A stale window is reset
// in place before the limit is evaluated, so the first request after 24
// hours restores capacity without waiting for the scheduled sweep.
func (s *QuotaService) Consume(ctx context.Context, userID uuid.UUID) error {
	now := s.now().UTC()

	// Lazy reset: a no-op when the window is still fresh or another
	// instance reset it already.
	_, err := s.db.Pool.Exec(ctx, `
		UPDATE users SET daily_extraction_count = 0, last_extraction_reset = $1
		WHERE id = $2 AND last_extraction_reset < $3
	`, now, userID, now.Add(-quotaWindow))
	if err != nil {
		return fmt.Errorf("failed to reset quota window: %w", err)
	}

	var plan string
	err = s.db.Pool.QueryRow(ctx, `
		SELECT plan FROM users WHERE id = $1
	`, userID).Scan(&plan)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load user plan: %w", err)
	}

	limit := limitForPlan(plan)

	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE users SET daily_extraction_count = daily_extraction_count + 1, updated_at = NOW()
		WHERE id = $1 AND daily_extraction_count < $2
	`, userID, limit)
	if err != nil {
		return fmt.Errorf("failed to consume quota: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrQuotaExceeded
	}
	return nil
}

// Refund returns one unit, floored at zero. Used when the metered call ends
// inconclusively so a transient upstream failure never burns quota.
func (s *QuotaService) Refund(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `
		UPDATE users SET daily_extraction_count = GREATEST(daily_extraction_count - 1, 0)
		WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to refund quota: %w", err)
	}
	return nil
}

// Remaining reports how much of today's allowance is left, without mutating
// anything. A stale window counts as a full allowance.
func (s *QuotaService) Remaining(ctx context.Context, userID uuid.UUID) (int, error) {
	var plan string
	var count int
	var lastReset time.Time
	err := s.db.Pool.QueryRow(ctx, `
		SELECT plan, daily_extraction_count, last_extraction_reset FROM users WHERE id = $1
	`, userID).Scan(&plan, &count, &lastReset)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}

	limit := limitForPlan(plan)
	if lastReset.Before(s.now().UTC().Add(-quotaWindow)) {
		return limit, nil
	}
	if count >= limit {
		return 0, nil
	}
	return limit - count, nil
}

// ResetStale is the scheduled counterpart of the lazy reset: one bulk
// conditional update over every user whose window has aged out. Running it
// while requests perform lazy resets is safe because both are conditional on
// the stored reset timestamp.
func (s *QuotaService) ResetStale(ctx context.Context) (int, error) {
	now := s.now().UTC()
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE users SET daily_extraction_count = 0, last_extraction_reset = $1
		WHERE last_extraction_reset < $2
	`, now, now.Add(-quotaWindow))
	if err != nil {
		return 0, fmt.Errorf("failed to reset stale quotas: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
