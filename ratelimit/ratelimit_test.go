package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matijaslevang/spotminify/ratelimit"
)

func TestDisabledLimiterNeverBlocks(t *testing.T) {
	t.Parallel()

	l := ratelimit.New(0, 10)
	assert.Nil(t, l)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, l.Wait(ctx))
}

func TestBurstIsAdmittedImmediately(t *testing.T) {
	t.Parallel()

	l := ratelimit.New(1, 3)
	start := time.Now()
	for range 3 {
		require.NoError(t, l.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestWaitHonorsContext(t *testing.T) {
	t.Parallel()

	l := ratelimit.New(0.001, 1)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.Error(t, l.Wait(ctx))
}
