package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the cartkeeper domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrNotInitialized is returned when the cart is used before Open() completed or after Close().
	ErrNotInitialized = errors.New("cartkeeper: cart not initialized")

	// ErrAlreadyOpen is returned when Open() is called on a cart that is loading or active.
	ErrAlreadyOpen = errors.New("cartkeeper: cart already open")

	// ErrNotFound is returned when a mutation references a product id that is not in the cart.
	ErrNotFound = errors.New("cartkeeper: item not found")

	// ErrInvalidItem is returned when an item descriptor fails validation.
	ErrInvalidItem = errors.New("cartkeeper: invalid item")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("cartkeeper: invalid configuration")

	// ErrCorruptState is matched by every CorruptStateError.
	ErrCorruptState = errors.New("cartkeeper: corrupt snapshot")

	// ErrPersistenceWrite is matched by every PersistenceWriteError.
	ErrPersistenceWrite = errors.New("cartkeeper: persistence write failed")
)

// CorruptStateError reports a stored snapshot that could not be accepted.
// The cart falls back to an empty state when it is returned from a load.
type CorruptStateError struct {
	Key    string
	Reason string
	Err    error
}

func (e *CorruptStateError) Error() string {
	msg := fmt.Sprintf("corrupt snapshot under %q: %s", e.Key, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CorruptStateError) Unwrap() error { return e.Err }

// Is reports ErrCorruptState as a match.
func (e *CorruptStateError) Is(target error) bool { return target == ErrCorruptState }

// PersistenceWriteError reports a snapshot write that failed on every attempt.
// The in-memory cart keeps the mutation that triggered the write.
type PersistenceWriteError struct {
	Key      string
	Attempts int
	Err      error
}

func (e *PersistenceWriteError) Error() string {
	return fmt.Sprintf("write snapshot %q failed after %d attempt(s): %v", e.Key, e.Attempts, e.Err)
}

func (e *PersistenceWriteError) Unwrap() error { return e.Err }

// Is reports ErrPersistenceWrite as a match.
func (e *PersistenceWriteError) Is(target error) bool { return target == ErrPersistenceWrite }
