// Package ratelimit provides a client-side token bucket limiter for
// outbound list API requests. Buckets refill continuously at the sustained
// rate and allow bursts up to their capacity; with per-host mode each
// upstream host gets its own bucket.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limiting.
var (
	rateLimitWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "listpager_ratelimit_waits_total",
		Help: "Total number of requests that had to wait for a token",
	})

	rateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "listpager_ratelimit_wait_seconds",
		Help:    "Time spent waiting for a rate limit token",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	})

	rateLimitCancelsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "listpager_ratelimit_cancels_total",
		Help: "Total number of token waits abandoned by context cancellation",
	})
)

const globalBucket = "global"

type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter is a token bucket rate limiter.
type Limiter struct {
	rate    float64
	burst   float64
	perHost bool
	logger  zerolog.Logger

	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// NewLimiter creates a limiter sustaining requestsPerSecond with bursts up
// to burstCapacity. Non-positive arguments fall back to defaults (5 req/s,
// burst of twice the rate).
func NewLimiter(requestsPerSecond float64, burstCapacity int, perHost bool, logger zerolog.Logger) *Limiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5.0
	}
	if burstCapacity <= 0 {
		burstCapacity = int(requestsPerSecond * 2)
		if burstCapacity < 1 {
			burstCapacity = 1
		}
	}

	return &Limiter{
		rate:    requestsPerSecond,
		burst:   float64(burstCapacity),
		perHost: perHost,
		logger:  logger.With().Str("component", "ratelimit").Logger(),
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Acquire blocks until a token is available for the request's bucket or the
// context is done.
func (l *Limiter) Acquire(ctx context.Context, rawURL string) error {
	key := l.bucketKey(rawURL)
	start := l.now()
	waited := false

	for {
		l.mu.Lock()
		ok, wait := l.take(key)
		l.mu.Unlock()

		if ok {
			if waited {
				rateLimitWaitSeconds.Observe(l.now().Sub(start).Seconds())
			}
			return nil
		}

		if !waited {
			waited = true
			rateLimitWaitsTotal.Inc()
			l.logger.Debug().
				Str("bucket", key).
				Dur("wait", wait).
				Msg("Rate limit reached, waiting for token")
		}

		select {
		case <-ctx.Done():
			rateLimitCancelsTotal.Inc()
			return fmt.Errorf("rate limit wait cancelled: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
}

// TryAcquire takes a token without waiting. It reports whether a token was
// available.
func (l *Limiter) TryAcquire(rawURL string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	ok, _ := l.take(l.bucketKey(rawURL))
	return ok
}

// take refills the bucket and attempts to remove one token. When no token
// is available it returns the duration until one will be. Callers hold mu.
func (l *Limiter) take(key string) (bool, time.Duration) {
	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, last: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	b.tokens = math.Min(l.burst, b.tokens+elapsed*l.rate)
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}

	wait := time.Duration((1 - b.tokens) / l.rate * float64(time.Second))
	return false, wait
}

func (l *Limiter) bucketKey(rawURL string) string {
	if !l.perHost {
		return globalBucket
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return globalBucket
	}
	return u.Host
}
