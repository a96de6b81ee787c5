package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-13f-indexer/internal/ratelimit"
)

func TestLimiter_Paces(t *testing.T) {
	l := ratelimit.NewLimiter(20, 1)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 4; i++ {
		require.NoError(t, l.Wait(ctx))
	}

	// the first token is immediate, the next three arrive every 50ms
	assert.GreaterOrEqual(t, time.Since(start), 140*time.Millisecond)
}

func TestLimiter_Burst(t *testing.T) {
	l := ratelimit.NewLimiter(1, 5)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Wait(ctx))
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestLimiter_Cancelled(t *testing.T) {
	l := ratelimit.NewLimiter(0.1, 1)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	assert.Error(t, err)
}

func TestNewLimiter_Disabled(t *testing.T) {
	l := ratelimit.NewLimiter(0, 0)
	assert.IsType(t, ratelimit.Unlimited{}, l)

	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.Canceled)
}
