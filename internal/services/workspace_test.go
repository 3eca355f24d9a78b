package services

import (
	"context"
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

func setupWorkspaceService(t *testing.T) (*WorkspaceService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewWorkspaceService(&database.DB{Pool: mock}), mock
}

func TestWorkspaceService_Create(t *testing.T) {
	svc, mock := setupWorkspaceService(t)
	ctx := context.Background()
	ownerID := uuid.New()
	spaceID := uuid.New()
	workspaceID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO spaces`).
		WithArgs(ownerID, models.SpaceTypeOrganization).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(spaceID))
	mock.ExpectQuery(`INSERT INTO workspaces`).
		WithArgs(spaceID, "Design Team").
		WillReturnRows(pgxmock.NewRows([]string{"id", "space_id", "name", "manager_note_access", "created_at", "updated_at"}).
			AddRow(workspaceID, spaceID, "Design Team", false, now, now))
	mock.ExpectExec(`INSERT INTO memberships`).
		WithArgs(workspaceID, ownerID, models.RoleAdmin).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	ws, err := svc.Create(ctx, ownerID, "Design Team")

	require.NoError(t, err)
	assert.Equal(t, workspaceID, ws.ID)
	assert.Equal(t, spaceID, ws.SpaceID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceService_Create_RollsBackOnMembershipFailure(t *testing.T) {
	svc, mock := setupWorkspaceService(t)
	ctx := context.Background()
	ownerID := uuid.New()
	spaceID := uuid.New()
	workspaceID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO spaces`).
		WithArgs(ownerID, models.SpaceTypeOrganization).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(spaceID))
	mock.ExpectQuery(`INSERT INTO workspaces`).
		WithArgs(spaceID, "Design Team").
		WillReturnRows(pgxmock.NewRows([]string{"id", "space_id", "name", "manager_note_access", "created_at", "updated_at"}).
			AddRow(workspaceID, spaceID, "Design Team", false, now, now))
	mock.ExpectExec(`INSERT INTO memberships`).
		WithArgs(workspaceID, ownerID, models.RoleAdmin).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := svc.Create(ctx, ownerID, "Design Team")

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceService_AddMember_Duplicate(t *testing.T) {
	svc, mock := setupWorkspaceService(t)
	ctx := context.Background()
	workspaceID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery(`INSERT INTO memberships`).
		WithArgs(workspaceID, userID, models.RoleMember).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.AddMember(ctx, workspaceID, userID, models.RoleMember)

	assert.ErrorIs(t, err, ErrAlreadyMember)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceService_RemoveMember_Missing(t *testing.T) {
	svc, mock := setupWorkspaceService(t)
	ctx := context.Background()
	workspaceID := uuid.New()
	userID := uuid.New()

	mock.ExpectExec(`DELETE FROM memberships`).
		WithArgs(workspaceID, userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := svc.RemoveMember(ctx, workspaceID, userID)

	assert.ErrorIs(t, err, ErrMembershipMissing)
	assert.NoError(t, mock.ExpectationsWereMet())
}
