package ratelimit

import (
	"net"
	"sync"
	"time"
)

// Config bounds how many connections one host may open per window.
type Config struct {
	MaxRequests int
	WindowSize  time.Duration
}

// DefaultConfig allows a well-behaved node plenty of headroom: a peer
// exchanges or registers once every few seconds at most.
func DefaultConfig() Config {
	return Config{
		MaxRequests: 30,
		WindowSize:  10 * time.Second,
	}
}

// Limiter implements sliding window rate limiting keyed by remote host.
type Limiter struct {
	config   Config
	requests map[string][]time.Time
	mu       sync.Mutex
	now      func() time.Time
}

func New(config Config) *Limiter {
	if config.MaxRequests <= 0 || config.WindowSize <= 0 {
		config = DefaultConfig()
	}
	return &Limiter{
		config:   config,
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Allow records a request for key and reports whether it is within the
// limit. Rejected requests are not recorded.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	kept := trim(l.requests[key], now.Add(-l.config.WindowSize))
	if len(kept) >= l.config.MaxRequests {
		l.requests[key] = kept
		return false
	}
	l.requests[key] = append(kept, now)
	return true
}

// AllowAddr keys on the host part of addr so that every port of one machine
// shares a budget.
func (l *Limiter) AllowAddr(addr net.Addr) bool {
	return l.Allow(HostOf(addr))
}

// Count returns how many requests key has in the current window.
func (l *Limiter) Count(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(trim(l.requests[key], l.now().Add(-l.config.WindowSize)))
}

// Sweep drops hosts with no requests in the current window and returns how
// many were dropped.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.config.WindowSize)
	dropped := 0
	for key, times := range l.requests {
		if kept := trim(times, cutoff); len(kept) == 0 {
			delete(l.requests, key)
			dropped++
		} else {
			l.requests[key] = kept
		}
	}
	return dropped
}

func trim(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	return times[i:]
}

func HostOf(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
