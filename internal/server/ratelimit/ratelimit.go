// Package ratelimit provides per-client token bucket rate limiting for the HTTP server.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per client and endpoint. It is safe for concurrent use.
type Limiter struct {
	mu            sync.Mutex
	entries       map[string]*entry
	config        *Config
	now           func() time.Time
	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config, opts ...Option) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:           true,
			RequestsPerSecond: 20,
			Burst:             40,
			CleanupInterval:   5 * time.Minute,
			IdleTTL:           time.Hour,
		}
	}

	l := &Limiter{
		entries: make(map[string]*entry),
		config:  config,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupTicker = time.NewTicker(config.CleanupInterval)
		l.cleanupStop = make(chan struct{})
		go l.cleanup()
	}

	return l
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
// Returns true if allowed, false if rate limited, along with rate limit information.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	limit, burst, key := l.resolve(endpoint, method)
	if limit <= 0 || burst <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	lim := l.get(clientID+":"+key+":"+method, limit, burst, now)

	allowed := lim.AllowN(now, 1)
	tokens := lim.TokensAt(now)
	perSecond := float64(limit)

	info := Info{
		Allowed:   allowed,
		Limit:     burst,
		Remaining: max(0, int(math.Floor(tokens))),
		ResetTime: now,
	}
	if tokens < float64(burst) {
		info.ResetTime = now.Add(seconds((float64(burst) - tokens) / perSecond))
	}
	if !allowed {
		info.RetryAfter = seconds((1 - tokens) / perSecond)
	}
	return allowed, info
}

// resolve picks the rate, burst and bucket key for a request. A zero rate means unlimited.
func (l *Limiter) resolve(endpoint, method string) (rate.Limit, int, string) {
	ep := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if ep == nil {
		return rate.Limit(l.config.RequestsPerSecond), l.config.Burst, "*"
	}
	if ep.Limit <= 0 || ep.Window <= 0 {
		return 0, 0, ep.Path
	}
	burst := ep.Burst
	if burst <= 0 {
		burst = ep.Limit
	}
	return rate.Limit(float64(ep.Limit) / ep.Window.Seconds()), burst, ep.Path
}

func (l *Limiter) get(key string, limit rate.Limit, burst int, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(limit, burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// cleanup removes idle limiters until Stop is called.
func (l *Limiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.cleanupIdle()
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupIdle drops limiters not used within IdleTTL.
func (l *Limiter) cleanupIdle() {
	ttl := l.config.IdleTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	cutoff := l.now().Add(-ttl)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}

// Len returns the number of tracked limiters.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupTicker != nil {
			l.cleanupTicker.Stop()
		}
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}

func seconds(s float64) time.Duration {
	if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
