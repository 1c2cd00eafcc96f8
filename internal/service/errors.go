package service

import (
	"errors"
	"fmt"

	"github.com/splitledger/splitledger/internal/storage"
)

// ValidationError reports caller-fixable input problems: bad split
// totals, unknown members, non-positive amounts, overpayment and the
// like. The message always names the precondition that failed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationErr(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// RepositoryError reports a storage or transaction failure. These are
// transient and retryable by the caller; the fact stream is unchanged.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository failure in %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// storeErr classifies an error returned by the store: not-found
// becomes a NotFoundError for the named entity, anything else a
// RepositoryError for the named operation.
func storeErr(op, entity, id string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return &RepositoryError{Op: op, Err: err}
}
