package api

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute
	maxTrackedClients    = 10000
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client. Buckets idle for longer
// than the TTL are dropped on the next sweep, and the table never holds more
// than maxClients entries.
type RateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*clientLimiter
	rate       rate.Limit
	burst      int
	idleTTL    time.Duration
	maxClients int
	lastSweep  time.Time
	now        func() time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second per
// client with a burst of twice that.
func NewRateLimiter(rps int) *RateLimiter {
	return &RateLimiter{
		clients:    make(map[string]*clientLimiter),
		rate:       rate.Limit(rps),
		burst:      rps * 2,
		idleTTL:    limiterIdleTTL,
		maxClients: maxTrackedClients,
		now:        time.Now,
	}
}

// Allow reports whether the client may make a request now.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= limiterSweepInterval || len(rl.clients) >= rl.maxClients {
		rl.sweep(now)
	}

	cl, ok := rl.clients[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.clients[client] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// sweep drops idle clients. If every tracked client is still active and the
// table is full, it is reset.
func (rl *RateLimiter) sweep(now time.Time) {
	rl.lastSweep = now
	for client, cl := range rl.clients {
		if now.Sub(cl.lastSeen) > rl.idleTTL {
			delete(rl.clients, client)
		}
	}
	if len(rl.clients) >= rl.maxClients {
		rl.clients = make(map[string]*clientLimiter)
	}
}

// Len returns the number of clients currently tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// RateLimitMiddleware implements per-client token bucket rate limiting
func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.Allow(ip) {
			abortWithError(c, ErrRateLimited.Wrapf("client %s", ip))
			return
		}
		c.Next()
	}
}
