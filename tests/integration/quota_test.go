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

func TestQuotaService_Integration_FreePlanExhaustion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewQuotaService(tdb.DB)
	ctx := context.Background()

	user := fixtures.CreateUser(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Consume(ctx, user.ID))
	}

	err := svc.Consume(ctx, user.ID)
	assert.ErrorIs(t, err, services.ErrQuotaExceeded)

	remaining, err := svc.Remaining(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestQuotaService_Integration_StaleWindowResetsOnConsume(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewQuotaService(tdb.DB)
	ctx := context.Background()

	user := fixtures.CreateUser(t)
	fixtures.SetQuotaState(t, user.ID, 5, time.Now().Add(-25*time.Hour))

	// The stale window resets lazily, so an exhausted counter from
	// yesterday does not block today's first consume.
	err := svc.Consume(ctx, user.ID)
	require.NoError(t, err)

	remaining, err := svc.Remaining(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, remaining)
}

func TestQuotaService_Integration_RefundRestoresUnit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewQuotaService(tdb.DB)
	ctx := context.Background()

	user := fixtures.CreateUser(t, testutil.WithPlan("pro"))

	require.NoError(t, svc.Consume(ctx, user.ID))
	require.NoError(t, svc.Consume(ctx, user.ID))
	require.NoError(t, svc.Refund(ctx, user.ID))

	remaining, err := svc.Remaining(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 49, remaining)
}

func TestQuotaService_Integration_ResetStale(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewQuotaService(tdb.DB)
	ctx := context.Background()

	stale := fixtures.CreateUser(t)
	fresh := fixtures.CreateUser(t)
	fixtures.SetQuotaState(t, stale.ID, 5, time.Now().Add(-26*time.Hour))
	fixtures.SetQuotaState(t, fresh.ID, 3, time.Now().Add(-1*time.Hour))

	reset, err := svc.ResetStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, reset)

	remaining, err := svc.Remaining(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)

	remaining, err = svc.Remaining(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
}
