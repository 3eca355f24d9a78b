package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetOrLoad_CachesValue(t *testing.T) {
	c := New()
	calls := 0
	loader := func() (any, error) {
		calls++
		return "value", nil
	}

	v, err := c.GetOrLoad("k", time.Minute, loader)
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	v, err = c.GetOrLoad("k", time.Minute, loader)
	require.NoError(t, err)
	assert.Equal(t, "value", v)
	assert.Equal(t, 1, calls)
}

func TestCache_GetOrLoad_ExpiredEntryReloads(t *testing.T) {
	c := New()
	current := time.Now()
	c.now = func() time.Time { return current }

	calls := 0
	loader := func() (any, error) {
		calls++
		return calls, nil
	}

	v, err := c.GetOrLoad("k", time.Minute, loader)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	current = current.Add(2 * time.Minute)

	v, err = c.GetOrLoad("k", time.Minute, loader)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestCache_GetOrLoad_LoaderErrorNotCached(t *testing.T) {
	c := New()
	calls := 0
	loader := func() (any, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("boom")
		}
		return "ok", nil
	}

	_, err := c.GetOrLoad("k", time.Minute, loader)
	assert.Error(t, err)

	v, err := c.GetOrLoad("k", time.Minute, loader)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestCache_Invalidate(t *testing.T) {
	c := New()
	calls := 0
	loader := func() (any, error) {
		calls++
		return calls, nil
	}

	_, err := c.GetOrLoad("k", time.Minute, loader)
	require.NoError(t, err)

	c.Invalidate("k")

	v, err := c.GetOrLoad("k", time.Minute, loader)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}
