// internal/market/errors.go
package market

import (
	"errors"
	"fmt"
)

// Error kinds returned by the lifecycle services. Handlers map these to
// HTTP status codes with errors.Is; services never panic or swallow a
// rejected transition.
var (
	// ErrValidation marks missing or malformed input the caller can fix.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a state-machine precondition violation, e.g. a
	// stall that is already taken or a license that is already requested.
	ErrConflict = errors.New("conflict")
	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock marks an order quantity above the product stock.
	ErrInsufficientStock = errors.New("insufficient stock")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
