package appointments

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAppointmentNotFound is returned when no record matches the given ID.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrDuplicateNumber is returned by stores when an insert collides with an
	// existing appointment number.
	ErrDuplicateNumber = errors.New("appointment number already exists")

	// ErrAllocationConflict is returned when number allocation keeps colliding
	// after the bounded retry loop is exhausted.
	ErrAllocationConflict = errors.New("appointment number allocation exhausted retries")
)

// ValidationError carries every business rule a booking request violated.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid booking request: %s", strings.Join(e.Violations, "; "))
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
