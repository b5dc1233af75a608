package errs

import (
	"errors"
	"fmt"
)

var (
	ErrTransportFailure = errors.New("transport failure")
	ErrCorrupt          = errors.New("corrupt entry")
)

// TransportFailureError wraps a network or upload error. It is always
// recoverable: the proof pipeline reacts by queueing the submission.
type TransportFailureError struct {
	Operation string
	Cause     error
}

func NewTransportFailureError(operation string, cause error) *TransportFailureError {
	return &TransportFailureError{
		Operation: operation,
		Cause:     cause,
	}
}

func (e *TransportFailureError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrTransportFailure, e.Operation, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrTransportFailure, e.Operation)
}

func (e *TransportFailureError) Unwrap() error {
	return ErrTransportFailure
}

// CorruptError marks a pending entry that can never be sent, e.g. one without
// an image payload. Such entries are dropped, never retried.
type CorruptError struct {
	ID     any
	Reason string
}

func NewCorruptError(id any, reason string) *CorruptError {
	return &CorruptError{
		ID:     id,
		Reason: reason,
	}
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("%s: %v: %s", ErrCorrupt, e.ID, e.Reason)
}

func (e *CorruptError) Unwrap() error {
	return ErrCorrupt
}

// IsRecoverable reports whether err is a transport failure that may succeed on
// a later attempt.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrTransportFailure)
}
