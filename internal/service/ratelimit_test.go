package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterCapsWithinWindow(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	assert.True(t, l.TryConsume(1, "book"))
	assert.True(t, l.TryConsume(1, "book"))
	assert.False(t, l.TryConsume(1, "book"), "third press within the window is rejected")

	// Other keys are independent.
	assert.True(t, l.TryConsume(1, "my_bookings"))
	assert.True(t, l.TryConsume(2, "book"))
}

func TestRateLimiterWindowSlides(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	assert.True(t, l.TryConsume(1, "book"))
	now = now.Add(40 * time.Second)
	assert.True(t, l.TryConsume(1, "book"))
	assert.False(t, l.TryConsume(1, "book"))

	// The first consumption ages out; one slot frees up.
	now = now.Add(30 * time.Second)
	assert.True(t, l.TryConsume(1, "book"))
	assert.False(t, l.TryConsume(1, "book"))
}
