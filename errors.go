package folio

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound         = errors.New("folio: not found")
	ErrInvalidInput     = errors.New("folio: invalid input")
	ErrInvalidID        = errors.New("folio: invalid record id")
	ErrUnknownOperation = errors.New("folio: unknown operation")

	// Invoice errors
	ErrInvoiceNotFound = errors.New("folio: invoice not found")

	// Store errors
	ErrCorruptRecord = errors.New("folio: corrupt record")
	ErrStoreClosed   = errors.New("folio: store is closed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("folio: validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e ValidationError) Unwrap() error { return ErrInvalidInput }

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvoiceNotFound)
}

// IsCorrupt returns true if a record could not be parsed.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorruptRecord)
}
