package commands

import (
	"errors"

	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/pkg/guard"
)

var ErrRevertProofCommandIsNotConstructed = errors.New(
	"RevertProofCommand must be created via NewRevertProofCommand constructor",
)

// RevertProofCommand reopens a delivered delivery and discards its proof.
type RevertProofCommand struct {
	actor      kernel.Actor
	deliveryID kernel.UUID
	guard      guard.ConstructorGuard
}

func NewRevertProofCommand(actor kernel.Actor, deliveryID kernel.UUID) (RevertProofCommand, error) {
	if err := deliveryID.Validate(); err != nil {
		return RevertProofCommand{}, err
	}

	return RevertProofCommand{
		actor:      actor,
		deliveryID: deliveryID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c RevertProofCommand) Validate() error {
	return c.guard.Validate(ErrRevertProofCommandIsNotConstructed)
}

func (c RevertProofCommand) Actor() kernel.Actor {
	return c.actor
}

func (c RevertProofCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}
