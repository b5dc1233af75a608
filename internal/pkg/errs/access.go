package errs

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnauthorized    = errors.New("unauthorized")
)

// UnauthenticatedError is returned when no valid caller identity is present:
// the token is missing, malformed or expired.
type UnauthenticatedError struct {
	Reason string
	Cause  error
}

func NewUnauthenticatedError(reason string) *UnauthenticatedError {
	return &UnauthenticatedError{Reason: reason}
}

func NewUnauthenticatedErrorWithCause(reason string, cause error) *UnauthenticatedError {
	return &UnauthenticatedError{
		Reason: reason,
		Cause:  cause,
	}
}

func (e *UnauthenticatedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrUnauthenticated, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrUnauthenticated, e.Reason)
}

func (e *UnauthenticatedError) Unwrap() error {
	return ErrUnauthenticated
}

// UnauthorizedError is returned when the caller is known but its role does not
// allow the requested action.
type UnauthorizedError struct {
	Role   string
	Action string
}

func NewUnauthorizedError(role, action string) *UnauthorizedError {
	return &UnauthorizedError{
		Role:   role,
		Action: action,
	}
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("%s: role %s cannot %s", ErrUnauthorized, e.Role, e.Action)
}

func (e *UnauthorizedError) Unwrap() error {
	return ErrUnauthorized
}
