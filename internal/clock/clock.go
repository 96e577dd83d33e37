// Package clock abstracts time for components that persist timestamps.
package clock

import "time"

// Clock returns the current time. Stores and the crawler take it as a
// dependency so tests can pin timestamps.
type Clock interface {
	Now() time.Time
}

// System is the real clock. All persisted timestamps are UTC.
type System struct{}

// Now returns the current UTC time.
func (System) Now() time.Time {
	return time.Now().UTC()
}
