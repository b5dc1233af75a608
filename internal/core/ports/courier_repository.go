// Package ports defines the interfaces between the core of the delivery tracker and
// its adapters: repositories, locks, blob storage, and the collaborators of the
// courier-side proof submission pipeline.
package ports

import (
	"context"

	"deliverytracker/internal/core/domain/model/courier"
	"deliverytracker/internal/core/domain/model/kernel"
)

// CourierRepository reads the user directory. Users are managed elsewhere; Add
// exists for seeding and tests.
type CourierRepository interface {
	Add(ctx context.Context, aggregate *courier.Courier) error

	// Get returns *errs.ObjectNotFoundError when no user has the id.
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)
}
