package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lukab/flowtrack-api/internal/models"
	"github.com/lukab/flowtrack-api/internal/oauth"
	"github.com/lukab/flowtrack-api/internal/services"
	"github.com/stretchr/testify/mock"
)

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error) {
	args := m.Called(ctx, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id uuid.UUID, name string, avatarURL *string) (*models.User, error) {
	args := m.Called(ctx, id, name, avatarURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdatePlan(ctx context.Context, id uuid.UUID, plan string) error {
	args := m.Called(ctx, id, plan)
	return args.Error(0)
}

// MockTokenService mocks the TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Store(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, token, expiresAt)
	return args.Error(0)
}

func (m *MockTokenService) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenService) Revoke(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockAccessService mocks the AccessService
type MockAccessService struct {
	mock.Mock
}

func (m *MockAccessService) CanAccess(ctx context.Context, userID uuid.UUID, kind string, entityID uuid.UUID) bool {
	args := m.Called(ctx, userID, kind, entityID)
	return args.Bool(0)
}

// MockTimerService mocks the TimerService
type MockTimerService struct {
	mock.Mock
}

func (m *MockTimerService) Start(ctx context.Context, taskID uuid.UUID) (*models.ActiveTimer, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActiveTimer), args.Error(1)
}

func (m *MockTimerService) Stop(ctx context.Context, taskID uuid.UUID) (*models.TimeEntry, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TimeEntry), args.Error(1)
}

func (m *MockTimerService) RecordManualEntry(ctx context.Context, taskID uuid.UUID, start time.Time, end *time.Time, duration int, description *string) (*models.TimeEntry, error) {
	args := m.Called(ctx, taskID, start, end, duration, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TimeEntry), args.Error(1)
}

func (m *MockTimerService) ActiveForUser(ctx context.Context, userID uuid.UUID) (*models.ActiveTimer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActiveTimer), args.Error(1)
}

func (m *MockTimerService) EntriesForTask(ctx context.Context, taskID uuid.UUID) ([]models.TimeEntry, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TimeEntry), args.Error(1)
}

// MockExtractionService mocks the ExtractionService
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) ExtractTasks(ctx context.Context, userID uuid.UUID, content string) ([]services.ExtractedTask, error) {
	args := m.Called(ctx, userID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.ExtractedTask), args.Error(1)
}
