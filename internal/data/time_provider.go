package data

import "time"

// TimeProvider supplies the current time to repositories so tests can pin timestamps.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider returns the system clock in UTC.
type RealTimeProvider struct{}

// Now returns the current UTC time.
func (RealTimeProvider) Now() time.Time { return time.Now().UTC() }

// FixedTimeProvider always returns the same instant until advanced.
type FixedTimeProvider struct {
	t time.Time
}

// NewFixedTimeProvider creates a FixedTimeProvider pinned to t.
func NewFixedTimeProvider(t time.Time) *FixedTimeProvider {
	return &FixedTimeProvider{t: t.UTC()}
}

// Now returns the pinned time.
func (f *FixedTimeProvider) Now() time.Time { return f.t }

// Advance moves the pinned time forward by d.
func (f *FixedTimeProvider) Advance(d time.Duration) { f.t = f.t.Add(d) }
