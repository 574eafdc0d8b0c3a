package ratelimit

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces calls per key (usually a host) with a token bucket, and can
// add a longer pause after every N processed items.
type Limiter struct {
	mu    sync.Mutex
	m     map[string]*rate.Limiter
	every time.Duration
	burst int

	breakEvery int
	breakDelay time.Duration
	items      int
	sleep      func(ctx context.Context, d time.Duration) error
}

type Option func(*Limiter)

// WithBreak pauses for d after every n items; n <= 0 disables it.
func WithBreak(n int, d time.Duration) Option {
	return func(l *Limiter) {
		l.breakEvery = n
		l.breakDelay = d
	}
}

// WithSleep replaces the pause implementation.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Limiter) { l.sleep = fn }
}

// New allows one call per key every `every` on average, with bursts up to burst.
// A zero interval disables pacing.
func New(every time.Duration, burst int, opts ...Option) *Limiter {
	if burst < 1 {
		burst = 1
	}
	l := &Limiter{
		m:     make(map[string]*rate.Limiter),
		every: every,
		burst: burst,
		sleep: sleepCtx,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.m[key]
	if !ok {
		r := rate.Inf
		if l.every > 0 {
			r = rate.Every(l.every)
		}
		lim = rate.NewLimiter(r, l.burst)
		l.m[key] = lim
	}
	return lim
}

// Wait blocks until a call for key is allowed or ctx is done.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.get(key).Wait(ctx)
}

// Allow returns true if one token can be consumed for key now.
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// ItemDone counts a finished item and takes the long pause when one is due.
func (l *Limiter) ItemDone(ctx context.Context) error {
	l.mu.Lock()
	l.items++
	due := l.breakEvery > 0 && l.items%l.breakEvery == 0
	l.mu.Unlock()

	if !due || l.breakDelay <= 0 {
		return nil
	}
	return l.sleep(ctx, l.breakDelay)
}

// HostKey returns the host of rawURL, or rawURL itself if it does not parse.
func HostKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
