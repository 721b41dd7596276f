package cache_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matijaslevang/spotminify/cache"
)

func TestFetch(t *testing.T) {
	t.Parallel()

	c := cache.New[[]string](10)
	t.Cleanup(c.Stop)

	var calls int
	fetch := func() ([]string, error) {
		calls++
		return []string{"rock", "jazz"}, nil
	}

	v, err := c.Fetch("genres", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"rock", "jazz"}, v)

	v, err = c.Fetch("genres", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"rock", "jazz"}, v)
	assert.Equal(t, 1, calls)
}

func TestFetchExpired(t *testing.T) {
	t.Parallel()

	c := cache.New[int](10)
	t.Cleanup(c.Stop)

	var calls int
	fetch := func() (int, error) {
		calls++
		return calls, nil
	}

	v, err := c.Fetch("k", time.Millisecond, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	time.Sleep(10 * time.Millisecond)

	v, err = c.Fetch("k", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestFetchError(t *testing.T) {
	t.Parallel()

	c := cache.New[int](10)
	t.Cleanup(c.Stop)

	errBoom := errors.New("boom")
	_, err := c.Fetch("k", time.Minute, func() (int, error) { return 0, errBoom })
	require.ErrorIs(t, err, errBoom)

	v, err := c.Fetch("k", time.Minute, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}
