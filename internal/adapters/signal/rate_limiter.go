package signal

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter *rate.Limiter
	seen    time.Time
}

// JoinLimiter throttles create and join attempts per client address.
// An address idle for a full refill period is forgotten; a fresh bucket
// would be just as full.
type JoinLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewJoinLimiter allows perMinute attempts per address, with bursts of
// the same size. perMinute <= 0 disables limiting.
func NewJoinLimiter(perMinute int) *JoinLimiter {
	if perMinute <= 0 {
		return &JoinLimiter{limit: rate.Inf}
	}
	return &JoinLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		idle:     time.Minute,
		now:      time.Now,
	}
}

func (jl *JoinLimiter) Allow(addr string) bool {
	if jl.limit == rate.Inf {
		return true
	}
	jl.mu.Lock()
	defer jl.mu.Unlock()

	now := jl.now()
	if now.Sub(jl.lastSweep) >= jl.idle {
		jl.sweepLocked(now)
	}
	v, ok := jl.visitors[addr]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(jl.limit, jl.burst)}
		jl.visitors[addr] = v
	}
	v.seen = now
	return v.limiter.AllowN(now, 1)
}

func (jl *JoinLimiter) sweepLocked(now time.Time) {
	for addr, v := range jl.visitors {
		if now.Sub(v.seen) >= jl.idle {
			delete(jl.visitors, addr)
		}
	}
	jl.lastSweep = now
}

// Len is the number of addresses currently tracked.
func (jl *JoinLimiter) Len() int {
	jl.mu.Lock()
	defer jl.mu.Unlock()
	return len(jl.visitors)
}
