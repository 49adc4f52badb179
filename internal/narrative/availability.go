package narrative

import (
	"sync"
	"time"
)

// Availability tracks whether the provider is worth calling. After a
// failure the provider sits out a cooldown window so every operation does
// not pay the timeout again. State is explicit (not a package global) and
// the clock is injectable so tests control time.
type Availability struct {
	mu               sync.Mutex
	unavailableUntil time.Time
	cooldown         time.Duration
	now              func() time.Time
}

// NewAvailability creates an availability tracker with the given cooldown.
func NewAvailability(cooldown time.Duration) *Availability {
	return &Availability{cooldown: cooldown, now: time.Now}
}

// WithClock replaces the clock. Test hook.
func (a *Availability) WithClock(now func() time.Time) *Availability {
	a.now = now
	return a
}

// Available reports whether the provider may be called right now.
func (a *Availability) Available() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.now().Before(a.unavailableUntil)
}

// MarkFailure starts (or extends) the cooldown window.
func (a *Availability) MarkFailure() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.unavailableUntil = a.now().Add(a.cooldown)
}

// MarkSuccess clears any active cooldown.
func (a *Availability) MarkSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.unavailableUntil = time.Time{}
}
