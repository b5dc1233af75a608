package delivery

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/pkg/errs"
)

var (
	// ErrDeliveryIsNotConstructed is returned when a Delivery instance was not created
	// through NewDelivery or RestoreDelivery.
	ErrDeliveryIsNotConstructed = errors.New("Delivery must be created via NewDelivery constructor")
)

// Delivery is the aggregate root of the lifecycle engine: one invoice-linked
// shipment, the courier it is assigned to and the proof that closed it.
//
// Delivery follows these invariants:
//   - status is Delivered if and only if deliveredAt is set
//   - a delivery without a courier is never Delivered
//   - once Delivered, courier and status only change through RevertProof
//   - Cancelled is final
//
// Fields are private; every mutation goes through a method that checks the
// transition against Status before touching anything.
type Delivery struct {
	// id is immutable for the life of the record
	id kernel.UUID

	// invoice carries the fiscal data the delivery was ingested from
	invoice Invoice

	// status is the current lifecycle state
	status Status

	// courierID is the assigned courier (nil when unassigned)
	courierID *kernel.UUID

	// courierName is denormalized from the user directory at assignment time
	courierName string

	// proofImagePath is where the proof of delivery was stored, empty if none
	proofImagePath string

	// deliveredAt is set exactly when status is Delivered
	deliveredAt *time.Time

	// observation is a free-text note, e.g. a cancellation reason
	observation string

	isConstructed bool
}

// NewDelivery creates a Pending delivery with no courier for an ingested invoice.
//
// Example:
//
//	inv, _ := delivery.NewInvoice("123", "ACME", taxID, issued, total, "")
//	d, err := delivery.NewDelivery(kernel.NewUUID(), inv)
func NewDelivery(id kernel.UUID, invoice Invoice) (*Delivery, error) {
	d := &Delivery{
		status:        Pending,
		isConstructed: true,
	}

	if err := errors.Join(
		d.setID(id),
		d.setInvoice(invoice),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// RestoreDelivery rebuilds a delivery from persisted state. Unlike NewDelivery it
// accepts any status but still enforces every invariant, so a corrupted row is
// reported instead of loaded.
func RestoreDelivery(
	id kernel.UUID,
	invoice Invoice,
	status Status,
	courierID *kernel.UUID,
	courierName string,
	proofImagePath string,
	deliveredAt *time.Time,
	observation string,
) (*Delivery, error) {
	d := &Delivery{
		courierName:    strings.TrimSpace(courierName),
		proofImagePath: proofImagePath,
		deliveredAt:    deliveredAt,
		observation:    observation,
		isConstructed:  true,
	}

	if err := errors.Join(
		d.setID(id),
		d.setInvoice(invoice),
		d.setStatus(status),
		d.setCourierID(courierID),
	); err != nil {
		return nil, err
	}

	if err := d.checkInvariants(); err != nil {
		return nil, err
	}

	return d, nil
}

// Validate ensures the Delivery was created through a constructor.
func (d *Delivery) Validate() error {
	if d == nil || !d.isConstructed {
		return ErrDeliveryIsNotConstructed
	}
	return nil
}

func (d *Delivery) IsEqual(other *Delivery) bool {
	return other != nil && d.id.IsEqual(other.id)
}

func (d *Delivery) ID() kernel.UUID {
	return d.id
}

func (d *Delivery) Invoice() Invoice {
	return d.invoice
}

func (d *Delivery) Status() Status {
	return d.status
}

// CourierID returns the assigned courier, or nil.
func (d *Delivery) CourierID() *kernel.UUID {
	if d.courierID == nil {
		return nil
	}
	id := *d.courierID
	return &id
}

func (d *Delivery) CourierName() string {
	return d.courierName
}

func (d *Delivery) ProofImagePath() string {
	return d.proofImagePath
}

// DeliveredAt returns the completion time, or nil unless Delivered.
func (d *Delivery) DeliveredAt() *time.Time {
	if d.deliveredAt == nil {
		return nil
	}
	at := *d.deliveredAt
	return &at
}

func (d *Delivery) Observation() string {
	return d.observation
}

// IsAssignedTo reports whether courierID is the delivery's current courier.
func (d *Delivery) IsAssignedTo(courierID kernel.UUID) bool {
	return d.courierID != nil && d.courierID.IsEqual(courierID)
}

// AssignCourier sets (or, with a nil courierID, clears) the courier and re-opens the
// delivery as Pending, also when it was Cancelled. A Delivered delivery is
// rejected with *errs.InvalidTransitionError.
//
// Example:
//
//	if err := d.AssignCourier(&courierID, "Maria"); err != nil {
//	    // errors.Is(err, errs.ErrInvalidTransition) when already delivered
//	}
func (d *Delivery) AssignCourier(courierID *kernel.UUID, courierName string) error {
	newStatus, err := d.status.Assign(d.id)
	if err != nil {
		return err
	}

	if courierID == nil {
		d.courierID = nil
		d.courierName = ""
		d.status = newStatus
		return nil
	}

	if err = courierID.Validate(); err != nil {
		return err
	}
	courierName = strings.TrimSpace(courierName)
	if courierName == "" {
		return errs.NewValueIsRequiredError("courier name")
	}

	id := *courierID
	d.courierID = &id
	d.courierName = courierName
	d.status = newStatus
	return nil
}

// CompleteWithProof marks the delivery Delivered at the given time.
//
// proofImagePath may be empty: completing without a proof is an explicit choice
// made by the caller, not an error. Terminal deliveries fail with
// *errs.AlreadyTerminalError; an unassigned one with *errs.InvalidTransitionError.
func (d *Delivery) CompleteWithProof(proofImagePath string, at time.Time) error {
	newStatus, err := d.status.Complete(d.id)
	if err != nil {
		return err
	}

	if d.courierID == nil {
		return errs.NewInvalidTransitionErrorWithCause(
			entityName, d.id, d.status.String(), "complete",
			errors.New("no courier assigned"),
		)
	}

	if at.IsZero() {
		return errs.NewValueIsRequiredError("delivered at")
	}

	completedAt := at.UTC()
	d.status = newStatus
	d.deliveredAt = &completedAt
	d.proofImagePath = strings.TrimSpace(proofImagePath)
	return nil
}

// RevertProof undoes a completion: proof path and deliveredAt are cleared and the
// delivery is Pending again with the same courier. It returns the removed proof
// path so the caller can discard the stored image.
func (d *Delivery) RevertProof() (string, error) {
	newStatus, err := d.status.RevertProof(d.id)
	if err != nil {
		return "", err
	}

	removed := d.proofImagePath
	d.status = newStatus
	d.deliveredAt = nil
	d.proofImagePath = ""
	return removed, nil
}

// Cancel moves the delivery to Cancelled, recording reason as the observation when
// given. Cancelling twice is a no-op; cancelling a delivered delivery fails with
// *errs.AlreadyTerminalError.
func (d *Delivery) Cancel(reason string) error {
	newStatus, err := d.status.Cancel(d.id)
	if err != nil {
		return err
	}

	if reason = strings.TrimSpace(reason); reason != "" {
		d.observation = reason
	}
	d.status = newStatus
	return nil
}

// RefreshInvoice replaces the fiscal data after a re-ingestion of the same invoice
// number. Lifecycle fields are left as they are.
func (d *Delivery) RefreshInvoice(invoice Invoice) error {
	if invoice.Number() != d.invoice.Number() {
		return errs.NewValueIsInvalidErrorWithCause(
			"invoice",
			fmt.Errorf("number %s does not match %s", invoice.Number(), d.invoice.Number()),
		)
	}
	return d.setInvoice(invoice)
}

func (d *Delivery) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Delivery) setInvoice(invoice Invoice) error {
	if err := invoice.Validate(); err != nil {
		return err
	}
	d.invoice = invoice
	return nil
}

func (d *Delivery) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	d.status = status
	return nil
}

func (d *Delivery) setCourierID(courierID *kernel.UUID) error {
	if courierID == nil {
		d.courierID = nil
		return nil
	}
	if err := courierID.Validate(); err != nil {
		return err
	}
	id := *courierID
	d.courierID = &id
	return nil
}

func (d *Delivery) checkInvariants() error {
	delivered := d.status == Delivered
	if delivered != (d.deliveredAt != nil) {
		return errs.NewValueIsInvalidErrorWithCause(
			"delivery",
			fmt.Errorf("status %s is inconsistent with delivered at %v", d.status, d.deliveredAt),
		)
	}
	if delivered && d.courierID == nil {
		return errs.NewValueIsInvalidErrorWithCause(
			"delivery",
			errors.New("a delivered delivery must have a courier"),
		)
	}
	return nil
}
