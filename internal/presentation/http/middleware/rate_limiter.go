package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/sangkips/receipt-print-api/internal/presentation/http/dto/response"
)

// RateLimiterConfig sets the token bucket each client gets
type RateLimiterConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	CleanupInterval   time.Duration // how often idle buckets are swept
	EntryTTL          time.Duration // idle time after which a bucket is dropped
}

// DefaultRateLimiterConfig returns sensible defaults
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 10,
		BurstSize:         20,
		CleanupInterval:   5 * time.Minute,
		EntryTTL:          10 * time.Minute,
	}
}

// RateLimiterConfigFrom converts "requests per duration seconds" into a limiter config
func RateLimiterConfigFrom(requests, durationSeconds int) RateLimiterConfig {
	cfg := DefaultRateLimiterConfig()
	if requests > 0 && durationSeconds > 0 {
		cfg.RequestsPerSecond = float64(requests) / float64(durationSeconds)
		cfg.BurstSize = requests
	}
	return cfg
}

// TerminalRateLimiter gives each paired terminal, or each client IP before
// pairing, its own bucket so one misbehaving till cannot flood the printer.
type TerminalRateLimiter struct {
	cfg RateLimiterConfig

	mu      sync.Mutex
	buckets map[string]*bucket

	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewTerminalRateLimiter starts a limiter and its idle-bucket sweeper
func NewTerminalRateLimiter(cfg RateLimiterConfig) *TerminalRateLimiter {
	def := DefaultRateLimiterConfig()
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	if cfg.EntryTTL <= 0 {
		cfg.EntryTTL = def.EntryTTL
	}
	rl := &TerminalRateLimiter{
		cfg:     cfg,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Stop ends the background sweep
func (rl *TerminalRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// take spends one token for key. When the bucket is empty it returns how long
// the client should wait.
func (rl *TerminalRateLimiter) take(key string, now time.Time) (remaining int, wait time.Duration) {
	rl.mu.Lock()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.BurstSize)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	rl.mu.Unlock()

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return 0, time.Second
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return 0, d
	}
	return int(b.limiter.TokensAt(now)), 0
}

func (rl *TerminalRateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			rl.sweep(now)
		case <-rl.stop:
			return
		}
	}
}

func (rl *TerminalRateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.cfg.EntryTTL)
	for key, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

func clientKey(c *gin.Context) string {
	if terminalID := c.GetString("terminal_id"); terminalID != "" {
		return "terminal:" + terminalID
	}
	return "ip:" + c.ClientIP()
}

// Middleware rejects requests over budget with 429 and a Retry-After in whole seconds
func (rl *TerminalRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		remaining, wait := rl.take(clientKey(c), time.Now())
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.cfg.BurstSize))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if wait > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			response.TooManyRequests(c, "Rate limit exceeded. Please try again later.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Stats is reported on /health
func (rl *TerminalRateLimiter) Stats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]interface{}{
		"active_clients":  len(rl.buckets),
		"rate_per_second": rl.cfg.RequestsPerSecond,
		"burst_size":      rl.cfg.BurstSize,
	}
}
