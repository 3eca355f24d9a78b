package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lukab/flowtrack-api/internal/database"
	"github.com/lukab/flowtrack-api/internal/models"
	"github.com/lukab/flowtrack-api/internal/oauth"
)

var ErrInvalidPlan = errors.New("invalid plan")

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type UserService struct {
	db *database.DB
}

func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db}
}

// FindOrCreateFromOAuth resolves an OAuth identity to a local user, creating
// the user and their personal space on first login. Both inserts share one
// transaction so a new user never exists without a space to own.
func (s *UserService) FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, email, name, avatar_url, provider, provider_id, plan, daily_extraction_count, last_extraction_reset, created_at, updated_at
		FROM users WHERE provider = $1 AND provider_id = $2
	`, info.Provider, info.ID).Scan(
		&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.Provider, &user.ProviderID,
		&user.Plan, &user.DailyExtractionCount, &user.LastExtractionReset, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO users (email, name, avatar_url, provider, provider_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, name, avatar_url, provider, provider_id, plan, daily_extraction_count, last_extraction_reset, created_at, updated_at
	`, info.Email, info.Name, nullableString(info.AvatarURL), info.Provider, info.ID).Scan(
		&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.Provider, &user.ProviderID,
		&user.Plan, &user.DailyExtractionCount, &user.LastExtractionReset, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO spaces (owner_id, type) VALUES ($1, $2)
	`, user.ID, models.SpaceTypePersonal)
	if err != nil {
		return nil, fmt.Errorf("failed to create personal space: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, email, name, avatar_url, provider, provider_id, plan, daily_extraction_count, last_extraction_reset, created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.Provider, &user.ProviderID,
		&user.Plan, &user.DailyExtractionCount, &user.LastExtractionReset, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdatePlan switches a user's subscription tier. The new allowance takes
// effect on the next quota evaluation; the current window's count is kept.
func (s *UserService) UpdatePlan(ctx context.Context, id uuid.UUID, plan string) error {
	if _, ok := planLimits[plan]; !ok {
		return ErrInvalidPlan
	}
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE users SET plan = $1, updated_at = NOW() WHERE id = $2
	`, plan, id)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, name string, avatarURL *string) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE users SET name = $1, avatar_url = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING id, email, name, avatar_url, provider, provider_id, plan, daily_extraction_count, last_extraction_reset, created_at, updated_at
	`, name, avatarURL, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.Provider, &user.ProviderID,
		&user.Plan, &user.DailyExtractionCount, &user.LastExtractionReset, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &user, nil
}
