package commands

import (
	"errors"

	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/pkg/guard"
)

var ErrAssignCourierCommandIsNotConstructed = errors.New(
	"AssignCourierCommand must be created via NewAssignCourierCommand constructor",
)

// AssignCourierCommand assigns one delivery to a courier, or unassigns it when
// courierID is nil. Only administrators may run it.
//
// Example:
//
//	cmd, err := NewAssignCourierCommand(actor, deliveryID, &courierID)
//	d, err := handler.Handle(ctx, cmd)
type AssignCourierCommand struct {
	actor      kernel.Actor
	deliveryID kernel.UUID
	courierID  *kernel.UUID
	guard      guard.ConstructorGuard
}

func NewAssignCourierCommand(actor kernel.Actor, deliveryID kernel.UUID, courierID *kernel.UUID) (AssignCourierCommand, error) {
	if err := deliveryID.Validate(); err != nil {
		return AssignCourierCommand{}, err
	}

	var courier *kernel.UUID
	if courierID != nil {
		if err := courierID.Validate(); err != nil {
			return AssignCourierCommand{}, err
		}
		id := *courierID
		courier = &id
	}

	return AssignCourierCommand{
		actor:      actor,
		deliveryID: deliveryID,
		courierID:  courier,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c AssignCourierCommand) Validate() error {
	return c.guard.Validate(ErrAssignCourierCommandIsNotConstructed)
}

func (c AssignCourierCommand) Actor() kernel.Actor {
	return c.actor
}

func (c AssignCourierCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

func (c AssignCourierCommand) CourierID() *kernel.UUID {
	return c.courierID
}
