package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	sweepEvery = 5 * time.Minute
	staleAfter = 10 * time.Minute
)

// rateLimitExempt lists paths the limiter waves through. Probes and metric
// scrapers poll these on a tight schedule and must not burn a visitor's
// budget.
var rateLimitExempt = map[string]struct{}{
	"/healthz": {},
	"/metrics": {},
}

// limiterPool holds one token bucket per client IP. A background sweep drops
// buckets idle for longer than staleAfter; Stop ends the sweep.
type limiterPool struct {
	rps   rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*bucket
	stop    chan struct{}
	once    sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterPool(rps, burst int) *limiterPool {
	p := &limiterPool{
		rps:     rate.Limit(rps),
		burst:   burst,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	go p.sweep()
	return p
}

func (p *limiterPool) get(ip string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.buckets[ip]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(p.rps, p.burst)}
		p.buckets[ip] = b
	}
	b.lastSeen = time.Now()
	return b.limiter
}

func (p *limiterPool) sweep() {
	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.mu.Lock()
			for ip, b := range p.buckets {
				if time.Since(b.lastSeen) > staleAfter {
					delete(p.buckets, ip)
				}
			}
			p.mu.Unlock()
		}
	}
}

func (p *limiterPool) Stop() {
	p.once.Do(func() { close(p.stop) })
}

// RateLimiter returns a Gin middleware enforcing per-IP token-bucket rate
// limiting, and a stop function releasing its background sweep. rps is the
// steady-state requests per second; burst the maximum burst.
func RateLimiter(rps, burst int) (gin.HandlerFunc, func()) {
	pool := newLimiterPool(rps, burst)

	mw := func(c *gin.Context) {
		if _, exempt := rateLimitExempt[c.Request.URL.Path]; exempt {
			c.Next()
			return
		}
		if !pool.get(c.ClientIP()).Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
	return mw, pool.Stop
}
