package commands

import (
	"errors"
	"strings"

	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/pkg/guard"
)

var ErrCancelDeliveryCommandIsNotConstructed = errors.New(
	"CancelDeliveryCommand must be created via NewCancelDeliveryCommand constructor",
)

// CancelDeliveryCommand moves a delivery to Cancelled. The optional reason is
// kept as the delivery's observation.
type CancelDeliveryCommand struct {
	actor      kernel.Actor
	deliveryID kernel.UUID
	reason     string
	guard      guard.ConstructorGuard
}

func NewCancelDeliveryCommand(actor kernel.Actor, deliveryID kernel.UUID, reason string) (CancelDeliveryCommand, error) {
	if err := deliveryID.Validate(); err != nil {
		return CancelDeliveryCommand{}, err
	}

	return CancelDeliveryCommand{
		actor:      actor,
		deliveryID: deliveryID,
		reason:     strings.TrimSpace(reason),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c CancelDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCancelDeliveryCommandIsNotConstructed)
}

func (c CancelDeliveryCommand) Actor() kernel.Actor {
	return c.actor
}

func (c CancelDeliveryCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

func (c CancelDeliveryCommand) Reason() string {
	return c.reason
}
