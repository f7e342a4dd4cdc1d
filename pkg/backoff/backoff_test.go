package backoff

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
)

func fastPolicy(attempts int) Policy {
	return Policy{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	attempts, err := Retry(context.Background(), fastPolicy(5), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errorutil.Transient("flaky")
		}
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnTerminalError(t *testing.T) {
	calls := 0
	attempts, err := Retry(context.Background(), fastPolicy(5), func(ctx context.Context) error {
		calls++
		return errorutil.Authorization("bad token")
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
	assert.Equal(t, errorutil.KindAuthorization, errorutil.KindOf(err))
}

func TestRetryExhaustsAttempts(t *testing.T) {
	retried := 0
	attempts, err := Retry(context.Background(), fastPolicy(3), func(ctx context.Context) error {
		return errorutil.RateLimit("throttled")
	}, func(attempt int, err error, delay time.Duration) {
		retried++
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2, retried)
	assert.Equal(t, errorutil.KindRateLimit, errorutil.KindOf(err))
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts, err := Retry(ctx, fastPolicy(3), func(ctx context.Context) error {
		t.Fatal("fn should not run after cancellation")
		return nil
	}, nil)

	assert.Equal(t, 0, attempts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDelayGrowsAndCaps(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, p.Delay(1))
	assert.Equal(t, 200*time.Millisecond, p.Delay(2))
	assert.Equal(t, 300*time.Millisecond, p.Delay(3))
	assert.Equal(t, 300*time.Millisecond, p.Delay(10))
}
