package retry

import (
	"errors"
	"fmt"
)

// TransientError marks a failure the operation considers safe to try again,
// e.g. a timeout, a refused connection or a 5xx from a remote service.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err so that Retry will try the operation again. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err wraps a *TransientError. An exhausted retry budget
// is never transient, so nested Retry calls do not multiply attempts.
func IsTransient(err error) bool {
	if IsPersistentFailure(err) {
		return false
	}
	var transient *TransientError
	return errors.As(err, &transient)
}

// PersistentFailure is returned once the retry budget is exhausted.
type PersistentFailure struct {
	Attempts int
	Err      error
}

func (e *PersistentFailure) Error() string {
	return fmt.Sprintf("operation failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *PersistentFailure) Unwrap() error {
	return e.Err
}

// IsPersistentFailure reports whether err is or wraps a *PersistentFailure.
func IsPersistentFailure(err error) bool {
	var failure *PersistentFailure
	return errors.As(err, &failure)
}
