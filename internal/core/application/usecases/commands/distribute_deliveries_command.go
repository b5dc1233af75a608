package commands

import (
	"errors"

	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/pkg/errs"
	"deliverytracker/internal/pkg/guard"
)

// MaxDistributionBatch is the largest number of deliveries one distribution
// may carry.
const MaxDistributionBatch = 500

var ErrDistributeDeliveriesCommandIsNotConstructed = errors.New(
	"DistributeDeliveriesCommand must be created via NewDistributeDeliveriesCommand constructor",
)

// DistributeDeliveriesCommand assigns a batch of deliveries to one courier.
// Duplicate ids are collapsed keeping the first occurrence.
type DistributeDeliveriesCommand struct {
	actor       kernel.Actor
	deliveryIDs []kernel.UUID
	courierID   kernel.UUID
	guard       guard.ConstructorGuard
}

func NewDistributeDeliveriesCommand(
	actor kernel.Actor,
	deliveryIDs []kernel.UUID,
	courierID kernel.UUID,
) (DistributeDeliveriesCommand, error) {
	if err := courierID.Validate(); err != nil {
		return DistributeDeliveriesCommand{}, errs.NewValueIsRequiredErrorWithCause("courier id", err)
	}

	unique := make([]kernel.UUID, 0, len(deliveryIDs))
	seen := make(map[kernel.UUID]struct{}, len(deliveryIDs))
	for _, id := range deliveryIDs {
		if err := id.Validate(); err != nil {
			return DistributeDeliveriesCommand{}, errs.NewValueIsInvalidErrorWithCause("delivery ids", err)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	if len(unique) == 0 {
		return DistributeDeliveriesCommand{}, errs.NewValueIsRequiredError("delivery ids")
	}
	if len(unique) > MaxDistributionBatch {
		return DistributeDeliveriesCommand{}, errs.NewValueIsOutOfRangeError(
			"delivery ids", len(unique), 1, MaxDistributionBatch,
		)
	}

	return DistributeDeliveriesCommand{
		actor:       actor,
		deliveryIDs: unique,
		courierID:   courierID,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c DistributeDeliveriesCommand) Validate() error {
	return c.guard.Validate(ErrDistributeDeliveriesCommandIsNotConstructed)
}

func (c DistributeDeliveriesCommand) Actor() kernel.Actor {
	return c.actor
}

// DeliveryIDs returns the deduplicated ids in request order.
func (c DistributeDeliveriesCommand) DeliveryIDs() []kernel.UUID {
	ids := make([]kernel.UUID, len(c.deliveryIDs))
	copy(ids, c.deliveryIDs)
	return ids
}

func (c DistributeDeliveriesCommand) CourierID() kernel.UUID {
	return c.courierID
}
