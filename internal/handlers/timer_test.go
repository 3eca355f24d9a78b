package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lukab/flowtrack-api/internal/middleware"
	"github.com/lukab/flowtrack-api/internal/models"
	"github.com/lukab/flowtrack-api/internal/services"
	"github.com/lukab/flowtrack-api/tests/testutil"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupTimerTest(t *testing.T) (*testutil.MockTimerService, *testutil.MockAccessService, *drift.Engine) {
	t.Helper()
	mockTimer := new(testutil.MockTimerService)
	mockAccess := new(testutil.MockAccessService)
	handler := NewTimerHandler(mockTimer, mockAccess)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(testutil.TestJWTService()))
	app.Post("/tasks/:id/timer/start", handler.Start)
	app.Post("/tasks/:id/timer/stop", handler.Stop)
	app.Get("/timers/active", handler.Active)

	return mockTimer, mockAccess, app
}

func timerRequest(t *testing.T, app *drift.Engine, method, path string, userID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	token := testutil.GenerateTestToken(t, userID, "test@example.com")
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", testutil.AuthHeader(token))
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func TestTimerHandler_Start(t *testing.T) {
	mockTimer, mockAccess, app := setupTimerTest(t)
	userID := uuid.New()
	taskID := uuid.New()
	timer := &models.ActiveTimer{ID: uuid.New(), TaskID: taskID, StartTime: time.Now()}

	mockAccess.On("CanAccess", mock.Anything, userID, services.KindTask, taskID).Return(true)
	mockTimer.On("Start", mock.Anything, taskID).Return(timer, nil)

	rec := timerRequest(t, app, http.MethodPost, "/tasks/"+taskID.String()+"/timer/start", userID)

	assert.Equal(t, http.StatusCreated, rec.Code)
	mockTimer.AssertExpectations(t)
	mockAccess.AssertExpectations(t)
}

func TestTimerHandler_Start_AlreadyRunning(t *testing.T) {
	mockTimer, mockAccess, app := setupTimerTest(t)
	userID := uuid.New()
	taskID := uuid.New()

	mockAccess.On("CanAccess", mock.Anything, userID, services.KindTask, taskID).Return(true)
	mockTimer.On("Start", mock.Anything, taskID).Return(nil, services.ErrTimerAlreadyRunning)

	rec := timerRequest(t, app, http.MethodPost, "/tasks/"+taskID.String()+"/timer/start", userID)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockTimer.AssertExpectations(t)
}

func TestTimerHandler_Start_InaccessibleTaskIs404(t *testing.T) {
	mockTimer, mockAccess, app := setupTimerTest(t)
	userID := uuid.New()
	taskID := uuid.New()

	mockAccess.On("CanAccess", mock.Anything, userID, services.KindTask, taskID).Return(false)

	rec := timerRequest(t, app, http.MethodPost, "/tasks/"+taskID.String()+"/timer/start", userID)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	mockTimer.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
	mockAccess.AssertExpectations(t)
}

func TestTimerHandler_Stop(t *testing.T) {
	mockTimer, mockAccess, app := setupTimerTest(t)
	userID := uuid.New()
	taskID := uuid.New()
	end := time.Now()
	entry := &models.TimeEntry{ID: uuid.New(), TaskID: taskID, StartTime: end.Add(-125 * time.Second), EndTime: &end, Duration: 125}

	mockAccess.On("CanAccess", mock.Anything, userID, services.KindTask, taskID).Return(true)
	mockTimer.On("Stop", mock.Anything, taskID).Return(entry, nil)

	rec := timerRequest(t, app, http.MethodPost, "/tasks/"+taskID.String()+"/timer/stop", userID)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockTimer.AssertExpectations(t)
}

func TestTimerHandler_Stop_NoActiveTimer(t *testing.T) {
	mockTimer, mockAccess, app := setupTimerTest(t)
	userID := uuid.New()
	taskID := uuid.New()

	mockAccess.On("CanAccess", mock.Anything, userID, services.KindTask, taskID).Return(true)
	mockTimer.On("Stop", mock.Anything, taskID).Return(nil, services.ErrNoActiveTimer)

	rec := timerRequest(t, app, http.MethodPost, "/tasks/"+taskID.String()+"/timer/stop", userID)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockTimer.AssertExpectations(t)
}

func TestTimerHandler_Active_Unauthenticated(t *testing.T) {
	_, _, app := setupTimerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/timers/active", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
