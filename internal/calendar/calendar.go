// Package calendar converts wall-clock time into the integer day numbers the
// vocabulary is keyed on, counted from a fixed epoch date.
package calendar

import (
	"fmt"
	"sync"
	"time"
)

// DateLayout is the ISO date format used for the stored epoch.
const DateLayout = "2006-01-02"

// DefaultEpoch is the epoch used when none has been configured or stored.
const DefaultEpoch = "2025-10-10"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a Clock whose time only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock returns a ManualClock set to t.
func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// AdvanceDays moves the clock forward by whole days.
func (c *ManualClock) AdvanceDays(days int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, days)
}

// ParseEpoch parses an ISO date into the epoch instant (midnight UTC).
func ParseEpoch(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch %q: %w", s, err)
	}
	return t, nil
}

// DayNumber returns the number of whole calendar days between the epoch date
// and the calendar date of t in t's own location. It is negative before the epoch.
func DayNumber(epoch, t time.Time) int {
	ey, em, ed := epoch.Date()
	ty, tm, td := t.Date()
	start := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start) / (24 * time.Hour))
}

// Calendar answers "what day is it" relative to an epoch.
type Calendar struct {
	epoch time.Time
	clock Clock
}

// New creates a Calendar. A nil clock uses the system clock.
func New(epoch time.Time, clock Clock) *Calendar {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Calendar{epoch: epoch, clock: clock}
}

// Today returns the current day number.
func (c *Calendar) Today() int {
	return DayNumber(c.epoch, c.clock.Now())
}

// Now returns the current instant in UTC.
func (c *Calendar) Now() time.Time {
	return c.clock.Now().UTC()
}

// Epoch returns the epoch date.
func (c *Calendar) Epoch() time.Time {
	return c.epoch
}
