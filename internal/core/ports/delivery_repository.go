package ports

import (
	"context"

	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/model/kernel"
)

// DeliveryRepository defines the persistence contract for delivery aggregates.
// Deliveries are never deleted, only transitioned.
type DeliveryRepository interface {
	// Add persists a newly ingested delivery.
	Add(ctx context.Context, aggregate *delivery.Delivery) error

	// Update writes the whole aggregate. Writing the same state twice leaves the
	// row unchanged, which makes retries safe.
	Update(ctx context.Context, aggregate *delivery.Delivery) error

	// Get returns *errs.ObjectNotFoundError when no delivery has the id.
	Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error)

	// GetByInvoiceNumber looks up a delivery by its normalized invoice number.
	// Returns *errs.ObjectNotFoundError when there is none.
	GetByInvoiceNumber(ctx context.Context, number string) (*delivery.Delivery, error)
}
