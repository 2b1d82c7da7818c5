package types

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderUnavailable marks an unreachable or timed-out external
	// provider (embedding service or judge model).
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrUnparsableVerdict marks a judge reply that could not be parsed
	// into the expected structured form.
	ErrUnparsableVerdict = errors.New("unparsable judge verdict")
)

// InputSizeError is returned when text exceeds the configured size cap.
// Oversized input always fails validation; it is never truncated, since
// truncation could hide an attack in the discarded tail.
type InputSizeError struct {
	Size  int
	Limit int
}

func (e *InputSizeError) Error() string {
	return fmt.Sprintf("input size %d exceeds limit %d", e.Size, e.Limit)
}

// ConfigurationError is raised at construction time for invalid thresholds
// or weights, never at call time.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.Field, e.Reason)
}
