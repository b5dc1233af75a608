package ports

import (
	"context"

	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/core/domain/model/proof"
)

// ProofStore is the durable local list of pending proof submissions on the
// courier agent. Load returns entries in enqueue order.
type ProofStore interface {
	Load(ctx context.Context) ([]*proof.Submission, error)

	// Save atomically replaces the whole list. A crash mid-save leaves the
	// previous list intact.
	Save(ctx context.Context, entries []*proof.Submission) error

	// Append adds one entry at the end of the list.
	Append(ctx context.Context, entry *proof.Submission) error

	// Remove deletes one entry. Removing an absent entry is not an error.
	Remove(ctx context.Context, id kernel.UUID) error
}

// ProofUploader sends a proof image to the server and returns the stored path.
// Network errors, timeouts and server-side failures are reported as
// *errs.TransportFailureError.
type ProofUploader interface {
	Upload(ctx context.Context, deliveryID kernel.UUID, image proof.Image) (string, error)
}

// ProofCompleter asks the delivery lifecycle to complete a delivery with an
// uploaded proof.
type ProofCompleter interface {
	CompleteWithProof(ctx context.Context, deliveryID kernel.UUID, proofImagePath string) error
}

// ProofSubmitter stores a proof image and completes the delivery with it in a
// single server call. The server discards the image when the completion is
// rejected, so a refused proof leaves nothing behind.
type ProofSubmitter interface {
	SubmitProof(ctx context.Context, deliveryID kernel.UUID, image proof.Image) (string, error)
}

// DeliveryStatusReader returns the current status of a delivery.
type DeliveryStatusReader interface {
	DeliveryStatus(ctx context.Context, deliveryID kernel.UUID) (delivery.Status, error)
}

// ConnectivityOracle reports whether the server is reachable right now.
type ConnectivityOracle interface {
	IsConnected(ctx context.Context) bool
}
