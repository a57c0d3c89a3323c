package types

import "time"

// Clock abstracts time for testability. Services that compare against
// expiration timestamps or stamp rows with "now" take a Clock instead of
// calling time.Now directly.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system time (always UTC).
type RealClock struct{}

// Now returns the current UTC time.
func (RealClock) Now() time.Time { return time.Now().UTC() }
