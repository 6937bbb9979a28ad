package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSession = uint32(1)

func TestWaitNNilLimitersIsNoop(t *testing.T) {
	var l *Limiters
	require.NoError(t, l.WaitN(context.Background(), testSession, 1<<30))
}

func TestWaitNNoLimitsConfiguredIsNoop(t *testing.T) {
	l := New(0, 0)
	assert.Nil(t, l.Global)
	assert.Nil(t, l.perSession)
	require.NoError(t, l.WaitN(context.Background(), testSession, 1<<30))
}

func TestWaitNGlobalOnlyConsumesBucket(t *testing.T) {
	l := New(1000, 0)
	require.NotNil(t, l.Global)
	assert.Nil(t, l.perSession)
	require.NoError(t, l.WaitN(context.Background(), testSession, 100))
}

func TestWaitNPerSessionOnlyConsumesBucket(t *testing.T) {
	l := New(0, 1000)
	assert.Nil(t, l.Global)
	require.NotNil(t, l.perSession)
	require.NoError(t, l.WaitN(context.Background(), testSession, 100))
}

func TestWaitNBothConfiguredGatesOnEach(t *testing.T) {
	l := New(1000, 1000)
	require.NoError(t, l.WaitN(context.Background(), testSession, 100))
}

func TestWaitNReturnsErrOnCanceledContext(t *testing.T) {
	l := New(1, 0) // 1 byte/sec, burst floored to minBurst but rate stays tiny
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// Drain the burst first so the next wait actually has to sit in the
	// rate-limited queue long enough for the context to expire.
	require.NoError(t, l.WaitN(context.Background(), testSession, minBurst))
	err := l.WaitN(ctx, testSession, minBurst)
	assert.Error(t, err)
}

func TestBurstFloorsSmallRatesToMinBurst(t *testing.T) {
	l := New(10, 0)
	assert.Equal(t, float64(10), float64(l.Global.Limit()))
	assert.Equal(t, minBurst, l.Global.Burst())
}

func TestBurstUsesRateWhenAboveFloor(t *testing.T) {
	big := minBurst * 4
	l := New(big, 0)
	assert.Equal(t, big, l.Global.Burst())
}

// TestSessionLimiterIsIndependentPerSession proves two sessions get their
// own bucket instead of sharing one: draining session A's burst must not
// affect session B's.
func TestSessionLimiterIsIndependentPerSession(t *testing.T) {
	l := New(0, 100) // 100 bytes/sec, burst floored to minBurst

	a := l.sessionLimiter(1)
	b := l.sessionLimiter(2)
	assert.NotSame(t, a, b)

	now := time.Now()
	require.True(t, a.AllowN(now, minBurst), "session 1 should be able to spend its own full burst")
	assert.False(t, a.AllowN(now, 1), "session 1's bucket should now be empty")
	assert.True(t, b.AllowN(now, minBurst), "session 2's bucket must be untouched by session 1's spend")
}

// TestSessionLimiterByteRateBoundUnderFakeClock drives a per-session limiter
// with synthetic, monotonically advancing timestamps instead of real sleeps,
// proving the configured byte-rate bound holds over a simulated window.
func TestSessionLimiterByteRateBoundUnderFakeClock(t *testing.T) {
	const bps = 1000
	l := New(0, bps)
	lim := l.sessionLimiter(testSession)

	now := time.Now()
	// Burst is floored to minBurst, so the first reservation for exactly
	// that many bytes must be immediately allowed with no wait.
	r := lim.ReserveN(now, minBurst)
	require.True(t, r.OK())
	assert.Zero(t, r.DelayFrom(now))

	// A further reservation for one second's worth of budget, made at the
	// same instant, must report needing to wait roughly one second — the
	// bucket is already empty, so the next bps bytes cost a full second at
	// this rate, regardless of wall-clock time.
	r2 := lim.ReserveN(now, bps)
	require.True(t, r2.OK())
	delay := r2.DelayFrom(now)
	assert.InDelta(t, time.Second, delay, float64(50*time.Millisecond))

	// Advancing the fake clock a further full second past that point must
	// make another bps-sized spend available, with no real waiting involved
	// anywhere in this test.
	later := now.Add(delay).Add(time.Second)
	assert.True(t, lim.AllowN(later, bps))
}
