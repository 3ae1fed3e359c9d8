package service

import (
	"errors"
	"fmt"

	"film-catalog-service/internal/metrics"
	"film-catalog-service/internal/repository"
	"film-catalog-service/internal/validation"
)

// ErrInvalidArgument marks requests rejected before any store access.
var ErrInvalidArgument = errors.New("invalid argument")

// NotFoundError reports a missing film, director, genre, mpa or user.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Entity, e.ID)
}

// StoreError wraps a failure from a storage backend. The core never retries.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err carries a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsInvalidArgument reports whether err was a rejected argument.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsStoreFailure reports whether err came from a storage backend.
func IsStoreFailure(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func invalidStruct(v interface{}) error {
	if err := validation.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return nil
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// lookupErr converts a single-row lookup failure.
func lookupErr(entity string, id int, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return storeErr("get "+entity, err)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case IsNotFound(err):
		return metrics.OutcomeNotFound
	case IsInvalidArgument(err):
		return metrics.OutcomeInvalidArgument
	default:
		return metrics.OutcomeStoreFailure
	}
}
