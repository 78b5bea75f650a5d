package domain

import "errors"

// Domain errors represent error conditions in the livemount domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrInvalidLocator is returned when the source is not of the form HOST:DATABASE.
	ErrInvalidLocator = errors.New("livemount: invalid source locator")

	// ErrInvalidTimestamp is returned when a point in time is not ISO 8601.
	ErrInvalidTimestamp = errors.New("livemount: invalid timestamp")

	// ErrInvalidTarget is returned when the target host is empty or not a host name.
	ErrInvalidTarget = errors.New("livemount: invalid target host")

	// ErrNotFound is returned when a cluster lookup has no match.
	ErrNotFound = errors.New("livemount: not found")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("livemount: invalid configuration")
)

// IsUsageError reports whether err was caused by malformed user input.
// Usage errors are detected before any call to the cluster is made.
func IsUsageError(err error) bool {
	return errors.Is(err, ErrInvalidLocator) ||
		errors.Is(err, ErrInvalidTimestamp) ||
		errors.Is(err, ErrInvalidTarget)
}
