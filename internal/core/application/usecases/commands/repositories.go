// Package commands contains the operations that change delivery state.
// Every command is built by a constructor that validates its input, and every
// handler follows the same steps: check the caller, take the per-delivery lock,
// open a unit of work, load, mutate, persist and commit.
package commands

import (
	"context"

	"deliverytracker/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// DeliveryRepoFactory provides access to the delivery repository within a transaction.
	DeliveryRepoFactory interface {
		DeliveryRepository() ports.DeliveryRepository
	}

	// CourierRepoFactory provides access to the user directory within a transaction.
	CourierRepoFactory interface {
		CourierRepository() ports.CourierRepository
	}

	// UoW manages transactions across deliveries and the courier directory.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   d, err := uow.DeliveryRepository().Get(ctx, id)
	//   // ... mutate d
	//   err = uow.DeliveryRepository().Update(ctx, d)
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		DeliveryRepoFactory
		CourierRepoFactory
	}

	// UoWFactory creates new unit of work instances.
	UoWFactory interface {
		Create() UoW
	}
)
