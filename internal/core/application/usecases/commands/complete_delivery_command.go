package commands

import (
	"errors"
	"strings"

	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/pkg/guard"
)

var ErrCompleteDeliveryCommandIsNotConstructed = errors.New(
	"CompleteDeliveryCommand must be created via NewCompleteDeliveryCommand constructor",
)

// CompleteDeliveryCommand closes a delivery with the path of an already stored
// proof image. An empty path completes the delivery without a proof.
type CompleteDeliveryCommand struct {
	actor          kernel.Actor
	deliveryID     kernel.UUID
	proofImagePath string
	guard          guard.ConstructorGuard
}

func NewCompleteDeliveryCommand(actor kernel.Actor, deliveryID kernel.UUID, proofImagePath string) (CompleteDeliveryCommand, error) {
	if err := deliveryID.Validate(); err != nil {
		return CompleteDeliveryCommand{}, err
	}

	return CompleteDeliveryCommand{
		actor:          actor,
		deliveryID:     deliveryID,
		proofImagePath: strings.TrimSpace(proofImagePath),
		guard:          guard.NewConstructorGuard(),
	}, nil
}

func (c CompleteDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCompleteDeliveryCommandIsNotConstructed)
}

func (c CompleteDeliveryCommand) Actor() kernel.Actor {
	return c.actor
}

func (c CompleteDeliveryCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

func (c CompleteDeliveryCommand) ProofImagePath() string {
	return c.proofImagePath
}
