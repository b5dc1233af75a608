package ports

import (
	"context"

	"deliverytracker/internal/core/domain/model/kernel"
)

// BlobStorage keeps proof of delivery images on the server side.
type BlobStorage interface {
	// Put stores data for deliveryID and returns the path recorded on the delivery.
	// Content that is not an image is rejected with *errs.ValueIsInvalidError.
	Put(ctx context.Context, deliveryID kernel.UUID, data []byte, fileName string) (string, error)

	// Delete removes a stored blob. A missing blob is not an error.
	Delete(ctx context.Context, path string) error
}
