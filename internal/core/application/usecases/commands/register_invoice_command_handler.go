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

const actionRegister = "register_invoice"

// RegisterInvoiceResult is the delivery an invoice landed on and whether it was
// created by this call.
type RegisterInvoiceResult struct {
	Delivery *delivery.Delivery
	Created  bool
}

// RegisterInvoiceCommandHandler upserts a delivery by invoice number. A new
// number becomes a Pending delivery without a courier. A known number has its
// fiscal fields refreshed and keeps its lifecycle state.
type RegisterInvoiceCommandHandler struct {
	uowFactory UoWFactory
	mutator    deliveryMutator
	metrics    *metrics.LifecycleMetrics
	newID      func() kernel.UUID
}

func NewRegisterInvoiceCommandHandler(
	uowFactory UoWFactory,
	locker ports.DeliveryLocker,
	lifecycleMetrics *metrics.LifecycleMetrics,
) RegisterInvoiceCommandHandler {
	return RegisterInvoiceCommandHandler{
		uowFactory: uowFactory,
		mutator:    deliveryMutator{uowFactory: uowFactory, locker: locker, metrics: lifecycleMetrics},
		metrics:    lifecycleMetrics,
		newID:      kernel.NewUUID,
	}
}

func (h RegisterInvoiceCommandHandler) Handle(ctx context.Context, command RegisterInvoiceCommand) (RegisterInvoiceResult, error) {
	if err := command.Validate(); err != nil {
		return RegisterInvoiceResult{}, err
	}

	if err := command.Actor().RequireAdmin("register invoices"); err != nil {
		return RegisterInvoiceResult{}, err
	}

	invoice := command.Invoice()

	existingID, err := h.findByNumber(ctx, invoice.Number())
	switch {
	case err == nil:
		d, err := h.mutator.mutate(ctx, actionRegister, existingID, func(_ UoW, d *delivery.Delivery) error {
			return d.RefreshInvoice(invoice)
		})
		if err != nil {
			return RegisterInvoiceResult{}, err
		}
		return RegisterInvoiceResult{Delivery: d}, nil
	case errors.Is(err, errs.ErrObjectNotFound):
		d, err := h.create(ctx, invoice)
		h.metrics.ObserveTransition(actionRegister, outcomeOf(err))
		if err != nil {
			return RegisterInvoiceResult{}, err
		}
		return RegisterInvoiceResult{Delivery: d, Created: true}, nil
	default:
		return RegisterInvoiceResult{}, err
	}
}

func (h RegisterInvoiceCommandHandler) findByNumber(ctx context.Context, number string) (kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	d, err := uow.DeliveryRepository().GetByInvoiceNumber(ctx, number)
	if err != nil {
		return kernel.UUID{}, err
	}
	return d.ID(), nil
}

func (h RegisterInvoiceCommandHandler) create(ctx context.Context, invoice delivery.Invoice) (*delivery.Delivery, error) {
	d, err := delivery.NewDelivery(h.newID(), invoice)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.DeliveryRepository().Add(ctx, d); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return d, nil
}
