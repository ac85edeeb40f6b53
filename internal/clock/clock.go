package clock

import "time"

type Clock interface {
	Now() time.Time
}

type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

// Mock is a Clock pinned to a fixed instant.
type Mock struct {
	FixedNow time.Time
}

func (m *Mock) Now() time.Time {
	return m.FixedNow
}

func (m *Mock) SetNow(now time.Time) {
	m.FixedNow = now
}
