package ratelimit

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(max int, window time.Duration) (*Limiter, *time.Time) {
	clock := time.Unix(1000, 0)
	l := New(Config{MaxRequests: max, WindowSize: window})
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestAllowWithinWindow(t *testing.T) {
	l, clock := newTestLimiter(2, time.Second)

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "keys have separate budgets")
	assert.Equal(t, 2, l.Count("a"))

	*clock = clock.Add(1500 * time.Millisecond)
	assert.True(t, l.Allow("a"))
	assert.Equal(t, 1, l.Count("a"))
}

func TestSweepDropsIdleHosts(t *testing.T) {
	l, clock := newTestLimiter(5, time.Second)
	l.Allow("a")
	*clock = clock.Add(600 * time.Millisecond)
	l.Allow("b")
	*clock = clock.Add(600 * time.Millisecond)

	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 0, l.Count("a"))
	assert.Equal(t, 1, l.Count("b"))
}

func TestAllowAddrSharesBudgetAcrossPorts(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	first := &net.TCPAddr{IP: net.ParseIP("::1"), Port: 4000}
	second := &net.TCPAddr{IP: net.ParseIP("::1"), Port: 4001}

	assert.True(t, l.AllowAddr(first))
	assert.False(t, l.AllowAddr(second))
	assert.Equal(t, "::1", HostOf(second))
}

func TestInvalidConfigFallsBackToDefault(t *testing.T) {
	l := New(Config{})
	assert.Equal(t, DefaultConfig(), l.config)
}
