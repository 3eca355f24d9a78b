package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lukab/flowtrack-api/internal/models"
	"github.com/lukab/flowtrack-api/internal/oauth"
	"github.com/lukab/flowtrack-api/internal/services"
)

// Service interfaces consumed by the handlers. Defined here so handler tests
// can substitute mocks without touching the services package.

type UserServiceInterface interface {
	FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name string, avatarURL *string) (*models.User, error)
	UpdatePlan(ctx context.Context, id uuid.UUID, plan string) error
}

type TokenServiceInterface interface {
	Store(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	Validate(ctx context.Context, token string) (uuid.UUID, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}

type AccessServiceInterface interface {
	CanAccess(ctx context.Context, userID uuid.UUID, kind string, entityID uuid.UUID) bool
}

type TimerServiceInterface interface {
	Start(ctx context.Context, taskID uuid.UUID) (*models.ActiveTimer, error)
	Stop(ctx context.Context, taskID uuid.UUID) (*models.TimeEntry, error)
	RecordManualEntry(ctx context.Context, taskID uuid.UUID, start time.Time, end *time.Time, duration int, description *string) (*models.TimeEntry, error)
	ActiveForUser(ctx context.Context, userID uuid.UUID) (*models.ActiveTimer, error)
	EntriesForTask(ctx context.Context, taskID uuid.UUID) ([]models.TimeEntry, error)
}

type ExtractionServiceInterface interface {
	ExtractTasks(ctx context.Context, userID uuid.UUID, content string) ([]services.ExtractedTask, error)
}
