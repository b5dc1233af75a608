package commands

import (
	"context"
	"errors"

	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/core/ports"
	"deliverytracker/internal/pkg/errs"
	"deliverytracker/internal/pkg/metrics"
)

// deliveryMutator runs one state change of one delivery under its lock and inside
// a unit of work. All lifecycle handlers share it, so every mutation is
// serialized per delivery and either fully persisted or not at all.
type deliveryMutator struct {
	uowFactory UoWFactory
	locker     ports.DeliveryLocker
	metrics    *metrics.LifecycleMetrics
}

// mutate loads the delivery, applies change, writes the result and commits.
// change receives the open unit of work so it can read other aggregates in the
// same transaction.
func (m deliveryMutator) mutate(
	ctx context.Context,
	action string,
	deliveryID kernel.UUID,
	change func(uow UoW, d *delivery.Delivery) error,
) (result *delivery.Delivery, err error) {
	defer func() {
		m.metrics.ObserveTransition(action, outcomeOf(err))
	}()

	unlock, err := m.locker.Lock(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	uow := m.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.DeliveryRepository()

	d, err := repo.Get(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	if err = change(uow, d); err != nil {
		return nil, err
	}

	if err = repo.Update(ctx, d); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return d, nil
}

// outcomeOf classifies an error for the lifecycle metrics: business rejections
// are counted apart from infrastructure failures.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case IsRejection(err):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}

// IsRejection reports errors caused by the request rather than by the system:
// unknown ids, illegal transitions, access and validation failures.
func IsRejection(err error) bool {
	for _, target := range []error{
		errs.ErrObjectNotFound,
		errs.ErrInvalidTransition,
		errs.ErrAlreadyTerminal,
		errs.ErrUnauthenticated,
		errs.ErrUnauthorized,
		errs.ErrValueIsInvalid,
		errs.ErrValueIsRequired,
		errs.ErrValueIsOutOfRange,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
