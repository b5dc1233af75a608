package commands

import (
	"context"

	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/ports"
	"deliverytracker/internal/pkg/metrics"
)

const actionCancel = "cancel"

// CancelDeliveryCommandHandler cancels a delivery. Cancelling a cancelled
// delivery succeeds without changes; a delivered one is rejected with
// *errs.AlreadyTerminalError.
type CancelDeliveryCommandHandler struct {
	mutator deliveryMutator
}

func NewCancelDeliveryCommandHandler(
	uowFactory UoWFactory,
	locker ports.DeliveryLocker,
	lifecycleMetrics *metrics.LifecycleMetrics,
) CancelDeliveryCommandHandler {
	return CancelDeliveryCommandHandler{
		mutator: deliveryMutator{uowFactory: uowFactory, locker: locker, metrics: lifecycleMetrics},
	}
}

func (h CancelDeliveryCommandHandler) Handle(ctx context.Context, command CancelDeliveryCommand) (*delivery.Delivery, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	if err := command.Actor().RequireAdmin("cancel deliveries"); err != nil {
		return nil, err
	}

	return h.mutator.mutate(ctx, actionCancel, command.DeliveryID(), func(_ UoW, d *delivery.Delivery) error {
		return d.Cancel(command.Reason())
	})
}
