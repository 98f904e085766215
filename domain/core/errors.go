package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Model evaluation errors
	ErrDomain             = errors.New("parameter outside model domain")
	ErrZeroDrift          = fmt.Errorf("%w: drift rate is zero", ErrDomain)
	ErrNonFiniteParameter = fmt.Errorf("%w: non-finite parameter", ErrDomain)

	// Caller errors
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidSampleSize = fmt.Errorf("%w: sample size must be >= 1", ErrInvalidInput)
	ErrInvalidRange      = fmt.Errorf("%w: interval bounds", ErrInvalidInput)

	// Recovery errors (never fatal, the trial is dropped)
	ErrUnrecoverable = errors.New("parameters unrecoverable from observed statistics")
)

// Error constructors with context
func NewDomainError(field string, value float64) error {
	return fmt.Errorf("%w: %s=%g", ErrDomain, field, value)
}

func NewSampleSizeError(n int) error {
	return fmt.Errorf("%w (got %d)", ErrInvalidSampleSize, n)
}

func NewRangeError(name string, min, max float64) error {
	return fmt.Errorf("%w for %s: [%g, %g]", ErrInvalidRange, name, min, max)
}

func NewUnrecoverableError(reason string) error {
	return fmt.Errorf("%w: %s", ErrUnrecoverable, reason)
}

// Error checking helpers
func IsDomainError(err error) bool {
	return errors.Is(err, ErrDomain)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsUnrecoverable(err error) bool {
	return errors.Is(err, ErrUnrecoverable)
}

// IsFatal reports whether err must abort an experiment run.
func IsFatal(err error) bool {
	return IsDomainError(err) || IsInputError(err)
}
