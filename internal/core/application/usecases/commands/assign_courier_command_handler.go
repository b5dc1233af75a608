package commands

import (
	"context"

	"deliverytracker/internal/core/domain/model/courier"
	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/core/ports"
	"deliverytracker/internal/pkg/metrics"
)

const actionAssign = "assign"

// AssignCourierCommandHandler assigns a single delivery. Lifecycle errors are
// returned unchanged: *errs.InvalidTransitionError for delivered or cancelled
// deliveries, *errs.ObjectNotFoundError for unknown deliveries or couriers.
//
// Example:
//
//	handler := NewAssignCourierCommandHandler(uowFactory, locker, lifecycleMetrics)
//	d, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrInvalidTransition) {
//	    // already delivered
//	}
type AssignCourierCommandHandler struct {
	mutator deliveryMutator
}

func NewAssignCourierCommandHandler(
	uowFactory UoWFactory,
	locker ports.DeliveryLocker,
	lifecycleMetrics *metrics.LifecycleMetrics,
) AssignCourierCommandHandler {
	return AssignCourierCommandHandler{
		mutator: deliveryMutator{uowFactory: uowFactory, locker: locker, metrics: lifecycleMetrics},
	}
}

// Handle checks the caller, resolves the courier and applies the assignment.
func (h AssignCourierCommandHandler) Handle(ctx context.Context, command AssignCourierCommand) (*delivery.Delivery, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	if err := command.Actor().RequireAdmin("assign deliveries"); err != nil {
		return nil, err
	}

	return h.mutator.mutate(ctx, actionAssign, command.DeliveryID(), func(uow UoW, d *delivery.Delivery) error {
		if command.CourierID() == nil {
			return d.AssignCourier(nil, "")
		}

		c, err := findAssignableCourier(ctx, uow, *command.CourierID())
		if err != nil {
			return err
		}

		id := c.ID()
		return d.AssignCourier(&id, c.Name())
	})
}

// findAssignableCourier loads a courier from the directory and checks its role.
func findAssignableCourier(ctx context.Context, repos CourierRepoFactory, courierID kernel.UUID) (*courier.Courier, error) {
	c, err := repos.CourierRepository().Get(ctx, courierID)
	if err != nil {
		return nil, err
	}

	if err = c.EnsureCanReceiveDeliveries(); err != nil {
		return nil, err
	}

	return c, nil
}
