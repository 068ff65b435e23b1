package model

import (
	"errors"
	"fmt"
)

// ErrInvalidProfile marks a profile that cannot be turned into a request or schema.
var ErrInvalidProfile = errors.New("invalid profile")

// InvalidProfileError is a construction-time error for a misconfigured profile.
// The two built-in profiles never produce one.
type InvalidProfileError struct {
	Profile string
	Reason  string
}

func (e *InvalidProfileError) Error() string {
	return fmt.Sprintf("invalid profile %q: %s", e.Profile, e.Reason)
}

func (e *InvalidProfileError) Unwrap() error { return ErrInvalidProfile }

// NewInvalidProfileError creates an InvalidProfileError.
func NewInvalidProfileError(profile, format string, args ...any) *InvalidProfileError {
	return &InvalidProfileError{Profile: profile, Reason: fmt.Sprintf(format, args...)}
}
