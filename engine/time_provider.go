package engine

import "time"

// Clock supplies frame timestamps; tests swap in MockTimeProvider
type Clock interface {
	Now() time.Time
}

// TimeProvider reads the system clock with its monotonic component
type TimeProvider struct{}

// NewTimeProvider creates a system clock
func NewTimeProvider() *TimeProvider {
	return &TimeProvider{}
}

func (p *TimeProvider) Now() time.Time {
	return time.Now()
}
