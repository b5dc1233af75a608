package commands

import (
	"context"

	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/ports"
	"deliverytracker/internal/pkg/errs"
	"deliverytracker/internal/pkg/metrics"
)

const actionComplete = "complete"

// CompleteDeliveryCommandHandler marks a delivery Delivered at the current
// clock time. Administrators may complete any delivery, couriers only their own.
type CompleteDeliveryCommandHandler struct {
	mutator deliveryMutator
	clock   ports.Clock
}

func NewCompleteDeliveryCommandHandler(
	uowFactory UoWFactory,
	locker ports.DeliveryLocker,
	clock ports.Clock,
	lifecycleMetrics *metrics.LifecycleMetrics,
) CompleteDeliveryCommandHandler {
	if clock == nil {
		clock = ports.SystemClock
	}
	return CompleteDeliveryCommandHandler{
		mutator: deliveryMutator{uowFactory: uowFactory, locker: locker, metrics: lifecycleMetrics},
		clock:   clock,
	}
}

func (h CompleteDeliveryCommandHandler) Handle(ctx context.Context, command CompleteDeliveryCommand) (*delivery.Delivery, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	actor := command.Actor()
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	return h.mutator.mutate(ctx, actionComplete, command.DeliveryID(), func(_ UoW, d *delivery.Delivery) error {
		if !actor.IsAdmin() && !d.IsAssignedTo(actor.UserID()) {
			return errs.NewUnauthorizedError(actor.Role().String(), "complete a delivery assigned to someone else")
		}
		return d.CompleteWithProof(command.ProofImagePath(), h.clock.Now())
	})
}
