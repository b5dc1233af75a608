package ports

import (
	"context"

	"deliverytracker/internal/core/domain/model/kernel"
)

// DeliveryLocker serializes mutations of a single delivery. Lock blocks until the
// delivery is free or ctx is done and returns the function that releases it.
type DeliveryLocker interface {
	Lock(ctx context.Context, deliveryID kernel.UUID) (unlock func(), err error)
}
