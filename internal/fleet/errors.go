package fleet

import (
	"errors"
	"fmt"
)

// ErrUnknownRole is returned when a principal carries a role the access
// rules do not cover.
var ErrUnknownRole = errors.New("unknown role")

// ValidationError reports an intake field that violates its constraint.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
