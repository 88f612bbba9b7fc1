package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount     = errors.New("amount must be a positive decimal with at most two fractional digits")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSameAccount       = errors.New("source and destination are the same account")
	ErrDuplicateID       = errors.New("duplicate account id")
	ErrInvalidField      = errors.New("invalid field")
	ErrNotFound          = errors.New("account not found")
)

// ValidationError reports malformed or out-of-range input. It is returned
// before any mutation takes place.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IndexError reports a removal position outside the collection.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Len)
}

// NotFoundError reports an account id that is not in the store.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("account %q not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}
