// Package ratelimit caps the byte rate of file-retrieval sub-range sends,
// optionally per-session and/or globally across the whole server. Disabled
// by default — nothing in the protocol requires it.
package ratelimit

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// Limiters composes an optional per-session limiter with an optional
// global one, the way the reference relay's makeRateLimitFunc combines a
// session bucket with a shared bucket: whichever of the two are configured
// gate every send, so a single fast session can't starve the rest of the
// server even when its own per-session cap would allow it to.
type Limiters struct {
	Global *rate.Limiter

	perSessionBPS int
	perSession    *lru.Cache[uint32, *rate.Limiter]
}

// minBurst floors every limiter's burst size well above typical sub-range
// reply sizes, so a single large file-retrieval send doesn't itself exceed
// the bucket capacity and fail outright — the limit is the sustained rate,
// not a cap on any one write.
const minBurst = 1 << 20 // 1 MiB

// sessionLimiterCacheSize bounds how many distinct sessions' buckets are
// held onto at once; older sessions' limiters are evicted LRU-style once a
// server has served more than this many sessions since the last eviction,
// which only resets their budget early and never lets one session borrow
// another's.
const sessionLimiterCacheSize = 4096

// New constructs limiters from bytes-per-second budgets; a zero budget
// disables that limiter. A global and a per-session limit are independent —
// either, both, or neither may be set. The per-session budget is applied
// per distinct session ID: every session gets its own bucket, created lazily
// on first use, so concurrent sessions never throttle one another.
func New(globalBPS, perSessionBPS int) *Limiters {
	l := &Limiters{perSessionBPS: perSessionBPS}
	if globalBPS > 0 {
		l.Global = rate.NewLimiter(rate.Limit(globalBPS), burst(globalBPS))
	}
	if perSessionBPS > 0 {
		c, err := lru.New[uint32, *rate.Limiter](sessionLimiterCacheSize)
		if err != nil {
			// Only returned by golang-lru when size <= 0, which
			// sessionLimiterCacheSize never is.
			panic(err)
		}
		l.perSession = c
	}
	return l
}

func burst(bps int) int {
	if bps > minBurst {
		return bps
	}
	return minBurst
}

// sessionLimiter returns sessionID's own byte-rate bucket, creating and
// caching it on first use.
func (l *Limiters) sessionLimiter(sessionID uint32) *rate.Limiter {
	if lim, ok := l.perSession.Get(sessionID); ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Limit(l.perSessionBPS), burst(l.perSessionBPS))
	l.perSession.Add(sessionID, lim)
	return lim
}

// WaitN blocks until n bytes may be sent under every limiter configured for
// sessionID, or ctx is done. With no limiter configured it returns
// immediately.
func (l *Limiters) WaitN(ctx context.Context, sessionID uint32, n int) error {
	if l == nil {
		return nil
	}
	if l.Global != nil {
		if err := l.Global.WaitN(ctx, n); err != nil {
			return err
		}
	}
	if l.perSession != nil {
		if err := l.sessionLimiter(sessionID).WaitN(ctx, n); err != nil {
			return err
		}
	}
	return nil
}
