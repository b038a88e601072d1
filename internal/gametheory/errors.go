package gametheory

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a precondition violation: a parameter is
	// outside its documented range or a structural requirement (payoff
	// ordering, coalition shape) is not met.
	ErrInvalidInput = errors.New("invalid input")

	// ErrComputationFailure marks an input that passed the cheap
	// validation checks but on which the algorithm cannot proceed,
	// e.g. a correlation matrix that is not positive-definite.
	ErrComputationFailure = errors.New("computation failure")
)

// invalidf wraps ErrInvalidInput with a formatted message naming the
// offending field, its constraint, and the actual value.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
