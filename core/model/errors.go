package model

import "fmt"

// ValidationError reports malformed or empty caller input. Surfaced
// immediately, never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidationError formats a ValidationError.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown warehouse or truck id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// NoCapacityError reports that no idle truck is available. It carries a
// recommendation for the caller, which may retry later; it is not fatal.
type NoCapacityError struct {
	Recommendation string
}

func (e *NoCapacityError) Error() string {
	return "no available trucks for dispatch"
}

// UnknownRegionError reports a forecast request for a region with no
// seeded demand history.
type UnknownRegionError struct {
	Region string
}

func (e *UnknownRegionError) Error() string {
	return fmt.Sprintf("no historical data for region: %s", e.Region)
}
