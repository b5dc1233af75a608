package commands

import (
	"context"

	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/ports"
	"deliverytracker/internal/pkg/logger"
	"deliverytracker/internal/pkg/metrics"
)

const actionRevertProof = "revert_proof"

// RevertProofCommandHandler takes a delivery back from Delivered to Pending.
// The stored image is deleted after the commit; a failed delete is logged and
// does not undo the revert.
type RevertProofCommandHandler struct {
	mutator deliveryMutator
	blobs   ports.BlobStorage
	log     *logger.Logger
}

func NewRevertProofCommandHandler(
	uowFactory UoWFactory,
	locker ports.DeliveryLocker,
	blobs ports.BlobStorage,
	log *logger.Logger,
	lifecycleMetrics *metrics.LifecycleMetrics,
) RevertProofCommandHandler {
	if log == nil {
		log = logger.Nop()
	}
	return RevertProofCommandHandler{
		mutator: deliveryMutator{uowFactory: uowFactory, locker: locker, metrics: lifecycleMetrics},
		blobs:   blobs,
		log:     log,
	}
}

func (h RevertProofCommandHandler) Handle(ctx context.Context, command RevertProofCommand) (*delivery.Delivery, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	if err := command.Actor().RequireAdmin("revert proofs"); err != nil {
		return nil, err
	}

	var removed string
	d, err := h.mutator.mutate(ctx, actionRevertProof, command.DeliveryID(), func(_ UoW, d *delivery.Delivery) error {
		path, err := d.RevertProof()
		removed = path
		return err
	})
	if err != nil {
		return nil, err
	}

	if removed != "" && h.blobs != nil {
		if err := h.blobs.Delete(ctx, removed); err != nil {
			ctx = h.log.WithFields(ctx, map[string]any{
				"delivery_id": command.DeliveryID().String(),
				"path":        removed,
			})
			h.log.Warn(ctx, "proof image was not deleted", err)
		}
	}

	return d, nil
}
