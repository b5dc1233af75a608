package errs

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrAlreadyTerminal   = errors.New("already in terminal state")
)

// InvalidTransitionError reports a status change the lifecycle does not allow,
// for example reassigning a delivered item.
type InvalidTransitionError struct {
	Entity string
	ID     any
	From   string
	Action string
	Cause  error
}

func NewInvalidTransitionError(entity string, id any, from, action string) *InvalidTransitionError {
	return &InvalidTransitionError{
		Entity: entity,
		ID:     id,
		From:   from,
		Action: action,
	}
}

func NewInvalidTransitionErrorWithCause(
	entity string,
	id any,
	from, action string,
	cause error,
) *InvalidTransitionError {
	return &InvalidTransitionError{
		Entity: entity,
		ID:     id,
		From:   from,
		Action: action,
		Cause:  cause,
	}
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("%s: cannot %s %s %v in status %s",
		ErrInvalidTransition, e.Action, e.Entity, e.ID, e.From)
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// AlreadyTerminalError reports an operation that does not apply because the
// entity already reached a final state.
type AlreadyTerminalError struct {
	Entity string
	ID     any
	Status string
	Action string
}

func NewAlreadyTerminalError(entity string, id any, status, action string) *AlreadyTerminalError {
	return &AlreadyTerminalError{
		Entity: entity,
		ID:     id,
		Status: status,
		Action: action,
	}
}

func (e *AlreadyTerminalError) Error() string {
	return fmt.Sprintf("%s: cannot %s %s %v, it is %s",
		ErrAlreadyTerminal, e.Action, e.Entity, e.ID, e.Status)
}

func (e *AlreadyTerminalError) Unwrap() error {
	return ErrAlreadyTerminal
}
