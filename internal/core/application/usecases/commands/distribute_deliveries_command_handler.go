package commands

import (
	"context"

	"deliverytracker/internal/core/domain/model/courier"
	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/core/ports"
	"deliverytracker/internal/pkg/metrics"
)

// DistributionFailure is one delivery the distribution could not assign.
type DistributionFailure struct {
	ID     kernel.UUID
	Reason error
}

// DistributionReport lists the outcome of every delivery of a distribution, in
// request order.
type DistributionReport struct {
	Succeeded []kernel.UUID
	Failed    []DistributionFailure
}

// DistributeDeliveriesCommandHandler assigns many deliveries to one courier on
// a best effort basis. Each delivery goes through the same locked unit of work
// as a single assignment; an item that fails is reported and the rest go on.
//
// Only a bad command, a caller without access or an unknown courier abort the
// whole batch.
type DistributeDeliveriesCommandHandler struct {
	uowFactory UoWFactory
	mutator    deliveryMutator
	metrics    *metrics.LifecycleMetrics
}

func NewDistributeDeliveriesCommandHandler(
	uowFactory UoWFactory,
	locker ports.DeliveryLocker,
	lifecycleMetrics *metrics.LifecycleMetrics,
) DistributeDeliveriesCommandHandler {
	return DistributeDeliveriesCommandHandler{
		uowFactory: uowFactory,
		mutator:    deliveryMutator{uowFactory: uowFactory, locker: locker, metrics: lifecycleMetrics},
		metrics:    lifecycleMetrics,
	}
}

func (h DistributeDeliveriesCommandHandler) Handle(
	ctx context.Context,
	command DistributeDeliveriesCommand,
) (DistributionReport, error) {
	if err := command.Validate(); err != nil {
		return DistributionReport{}, err
	}

	if err := command.Actor().RequireAdmin("distribute deliveries"); err != nil {
		return DistributionReport{}, err
	}

	c, err := h.loadCourier(ctx, command.CourierID())
	if err != nil {
		return DistributionReport{}, err
	}
	courierID := c.ID()

	report := DistributionReport{
		Succeeded: make([]kernel.UUID, 0, len(command.DeliveryIDs())),
	}
	for _, id := range command.DeliveryIDs() {
		if ctx.Err() != nil {
			report.Failed = append(report.Failed, DistributionFailure{ID: id, Reason: ctx.Err()})
			continue
		}

		_, err := h.mutator.mutate(ctx, actionAssign, id, func(_ UoW, d *delivery.Delivery) error {
			return d.AssignCourier(&courierID, c.Name())
		})
		if err != nil {
			report.Failed = append(report.Failed, DistributionFailure{ID: id, Reason: err})
			continue
		}
		report.Succeeded = append(report.Succeeded, id)
	}

	h.metrics.ObserveDistribution(len(report.Succeeded), len(report.Failed))
	return report, nil
}

func (h DistributeDeliveriesCommandHandler) loadCourier(ctx context.Context, courierID kernel.UUID) (*courier.Courier, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return findAssignableCourier(ctx, uow, courierID)
}
