package gamestats

import (
	"go.dedis.ch/matchgame/core/execution"
	"golang.org/x/xerrors"
)

var (
	// ErrCounterOverflow is returned when a game cannot be recorded because a
	// counter reached its maximum value.
	ErrCounterOverflow = xerrors.New("counter overflow")

	// ErrStateNotFound is returned by a state store when no record has been
	// persisted yet.
	ErrStateNotFound = xerrors.New("state not found")
)

// DecodeError is returned when an input does not match any known variant. The
// state is never modified when it happens.
type DecodeError struct {
	err error
}

// NewDecodeError wraps the error into a decode error.
func NewDecodeError(err error) *DecodeError {
	return &DecodeError{err: err}
}

func (e *DecodeError) Error() string {
	return "decode error: " + e.err.Error()
}

// Unwrap returns the cause.
func (e *DecodeError) Unwrap() error {
	return e.err
}

// StorageError is returned when the state cannot be persisted.
type StorageError struct {
	err error
}

// NewStorageError wraps the error into a storage error.
func NewStorageError(err error) *StorageError {
	return &StorageError{err: err}
}

func (e *StorageError) Error() string {
	return "storage unavailable: " + e.err.Error()
}

// Unwrap returns the cause.
func (e *StorageError) Unwrap() error {
	return e.err
}

// Is returns true for execution.ErrStorage so that the execution service aborts
// the transaction instead of refusing it.
func (e *StorageError) Is(target error) bool {
	return target == execution.ErrStorage
}

// IsDecodeError returns true if the error is or wraps a decode error.
func IsDecodeError(err error) bool {
	var target *DecodeError
	return xerrors.As(err, &target)
}

// IsStorageError returns true if the error is or wraps a storage error.
func IsStorageError(err error) bool {
	var target *StorageError
	return xerrors.As(err, &target)
}
