package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lukab/flowtrack-api/internal/cache"
	"github.com/lukab/flowtrack-api/internal/database"
	"github.com/lukab/flowtrack-api/internal/models"
)

const flagTTL = 30 * time.Second

// FlagService evaluates feature flags with a short-lived cache in front of
// the database. Flags gate cosmetics and rollouts, never authorization, so a
// stale read is acceptable.
type FlagService struct {
	db    *database.DB
	cache *cache.Cache
}

func NewFlagService(db *database.DB, c *cache.Cache) *FlagService {
	return &FlagService{db: db, cache: c}
}

func flagKey(scopeType string, scopeID uuid.UUID, key string) string {
	return "flag:" + scopeType + ":" + scopeID.String() + ":" + key
}

// IsEnabled returns the flag value, or false when the flag was never set.
func (s *FlagService) IsEnabled(ctx context.Context, scopeType string, scopeID uuid.UUID, key string) (bool, error) {
	value, err := s.cache.GetOrLoad(flagKey(scopeType, scopeID, key), flagTTL, func() (any, error) {
		var v bool
		err := s.db.Pool.QueryRow(ctx, `
			SELECT value FROM feature_flags
			WHERE scope_type = $1 AND scope_id = $2 AND key = $3
		`, scopeType, scopeID, key).Scan(&v)
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to load flag: %w", err)
		}
		return v, nil
	})
	if err != nil {
		return false, err
	}
	return value.(bool), nil
}

// Set upserts the flag and invalidates its cache entry so the next read sees
// the new value.
func (s *FlagService) Set(ctx context.Context, scopeType string, scopeID uuid.UUID, key string, value bool) (*models.FeatureFlag, error) {
	var f models.FeatureFlag
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO feature_flags (scope_type, scope_id, key, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (scope_type, scope_id, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING id, scope_type, scope_id, key, value, created_at, updated_at
	`, scopeType, scopeID, key, value).Scan(
		&f.ID, &f.ScopeType, &f.ScopeID, &f.Key, &f.Value, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set flag: %w", err)
	}

	s.cache.Invalidate(flagKey(scopeType, scopeID, key))
	return &f, nil
}

func (s *FlagService) ListForScope(ctx context.Context, scopeType string, scopeID uuid.UUID) ([]models.FeatureFlag, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, scope_type, scope_id, key, value, created_at, updated_at
		FROM feature_flags WHERE scope_type = $1 AND scope_id = $2
		ORDER BY key
	`, scopeType, scopeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flags []models.FeatureFlag
	for rows.Next() {
		var f models.FeatureFlag
		if err := rows.Scan(&f.ID, &f.ScopeType, &f.ScopeID, &f.Key, &f.Value, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}
