package delivery

import (
	"fmt"
	"strings"

	"deliverytracker/internal/pkg/errs"
)

// Status is the lifecycle state of a delivery.
//
// State transitions:
//
//	Pending ──complete──> Delivered
//	 │  ^                    │
//	 │  └────revert proof────┘
//	 └──cancel──> Cancelled
//
// Assigning a courier is only possible in Pending and keeps it there.
//
// Delivered and Cancelled are terminal. The only way out of Delivered is the
// administrative proof revert; nothing leaves Cancelled.
type Status int

const (
	// Unknown (0) catches uninitialized values.
	Unknown Status = iota

	// Pending is the state of a freshly ingested invoice and of every delivery that
	// was (re)assigned. It is the only state in which work can happen.
	Pending

	// Delivered means a proof of delivery was accepted. deliveredAt is always set.
	Delivered

	// Cancelled means the delivery will not happen.
	Cancelled
)

const entityName = "delivery"

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "Unknown",
		Pending:   "Pending",
		Delivered: "Delivered",
		Cancelled: "Cancelled",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:   "Pending",
		Delivered: "Delivered",
		Cancelled: "Cancelled",
	}
}

// Validate checks that s is one of Pending, Delivered or Cancelled.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the status name, or "Unknown" for invalid values.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// ParseStatus is the inverse of String, case-insensitive. It is used for query
// filters and persisted rows.
func ParseStatus(value string) (Status, error) {
	for status, name := range getValidStatusStrings() {
		if strings.EqualFold(name, strings.TrimSpace(value)) {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", value))
}

// IsTerminal reports Delivered and Cancelled.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// Assign returns the status after a courier (re)assignment of delivery id.
//
// Any assignment re-opens the delivery as Pending, a cancelled one included. A
// delivered delivery cannot be reassigned (*errs.InvalidTransitionError).
func (s Status) Assign(id any) (Status, error) {
	switch s {
	case Pending, Cancelled:
		return Pending, nil
	default:
		return Unknown, errs.NewInvalidTransitionError(entityName, id, s.String(), "assign")
	}
}

// Complete returns Delivered, or *errs.AlreadyTerminalError when the delivery is
// already Delivered or Cancelled.
func (s Status) Complete(id any) (Status, error) {
	if s.IsTerminal() {
		return Unknown, errs.NewAlreadyTerminalError(entityName, id, s.String(), "complete")
	}
	if s != Pending {
		return Unknown, errs.NewInvalidTransitionError(entityName, id, s.String(), "complete")
	}
	return Delivered, nil
}

// RevertProof returns Pending. It is only valid from Delivered.
func (s Status) RevertProof(id any) (Status, error) {
	if s != Delivered {
		return Unknown, errs.NewInvalidTransitionError(entityName, id, s.String(), "revert proof of")
	}
	return Pending, nil
}

// Cancel returns Cancelled. Cancelling a cancelled delivery is accepted as a
// no-op; cancelling a delivered one fails with *errs.AlreadyTerminalError.
func (s Status) Cancel(id any) (Status, error) {
	switch s {
	case Pending, Cancelled:
		return Cancelled, nil
	case Delivered:
		return Unknown, errs.NewAlreadyTerminalError(entityName, id, s.String(), "cancel")
	default:
		return Unknown, errs.NewInvalidTransitionError(entityName, id, s.String(), "cancel")
	}
}
