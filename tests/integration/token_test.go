package integration

import (
	"context"
	"testing"
	"time"

	"github.com/lukab/flowtrack-api/internal/services"
	"github.com/lukab/flowtrack-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_Integration_StoreAndValidate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewTokenService(tdb.DB)
	ctx := context.Background()

	user := fixtures.CreateUser(t)
	expiresAt := time.Now().Add(24 * time.Hour)

	err := svc.Store(ctx, user.ID, "my-refresh-token", expiresAt)
	require.NoError(t, err)

	userID, err := svc.Validate(ctx, "my-refresh-token")
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestTokenService_Integration_ValidateExpired(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewTokenService(tdb.DB)
	ctx := context.Background()

	user := fixtures.CreateUser(t)

	err := svc.Store(ctx, user.ID, "expired-token", time.Now().Add(-1*time.Hour))
	require.NoError(t, err)

	_, err = svc.Validate(ctx, "expired-token")
	assert.ErrorIs(t, err, services.ErrTokenNotFound)
}

func TestTokenService_Integration_Revoke(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewTokenService(tdb.DB)
	ctx := context.Background()

	user := fixtures.CreateUser(t)

	err := svc.Store(ctx, user.ID, "to-be-revoked", time.Now().Add(24*time.Hour))
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, "to-be-revoked"))

	_, err = svc.Validate(ctx, "to-be-revoked")
	assert.ErrorIs(t, err, services.ErrTokenNotFound)
}

func TestTokenService_Integration_RevokeAllForUser(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewTokenService(tdb.DB)
	ctx := context.Background()

	user := fixtures.CreateUser(t)
	other := fixtures.CreateUser(t)
	expiresAt := time.Now().Add(24 * time.Hour)

	require.NoError(t, svc.Store(ctx, user.ID, "token-1", expiresAt))
	require.NoError(t, svc.Store(ctx, user.ID, "token-2", expiresAt))
	require.NoError(t, svc.Store(ctx, other.ID, "other-token", expiresAt))

	require.NoError(t, svc.RevokeAllForUser(ctx, user.ID))

	_, err := svc.Validate(ctx, "token-1")
	assert.ErrorIs(t, err, services.ErrTokenNotFound)
	_, err = svc.Validate(ctx, "token-2")
	assert.ErrorIs(t, err, services.ErrTokenNotFound)

	// Other users keep their sessions
	userID, err := svc.Validate(ctx, "other-token")
	require.NoError(t, err)
	assert.Equal(t, other.ID, userID)
}

func TestTokenService_Integration_CleanupExpired(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewTokenService(tdb.DB)
	ctx := context.Background()

	user := fixtures.CreateUser(t)

	require.NoError(t, svc.Store(ctx, user.ID, "expired", time.Now().Add(-1*time.Hour)))
	require.NoError(t, svc.Store(ctx, user.ID, "valid", time.Now().Add(24*time.Hour)))

	removed, err := svc.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	userID, err := svc.Validate(ctx, "valid")
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}
