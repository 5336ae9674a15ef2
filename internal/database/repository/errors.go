package repository

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when an operation references a missing row.
	ErrNotFound = errors.New("not found")
	// ErrConstraint is returned for uniqueness or check violations not covered by an upsert.
	ErrConstraint = errors.New("constraint violation")
	// ErrValidation is returned when input is rejected before reaching the store.
	ErrValidation = errors.New("validation error")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// asConstraint maps sqlite constraint failures to ErrConstraint; other errors pass through.
func asConstraint(err error, op string) error {
	if err == nil {
		return nil
	}
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%s: %w: %v", op, ErrConstraint, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}
