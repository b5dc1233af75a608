package proofs_test

import (
	"context"
	"sync"
	"sync/atomic"

	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/core/domain/model/proof"
	"deliverytracker/internal/pkg/errs"
)

// memoryStore is a ProofStore kept in a slice.
type memoryStore struct {
	mu      sync.Mutex
	entries []*proof.Submission
	saves   int
}

func (s *memoryStore) Load(context.Context) ([]*proof.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*proof.Submission(nil), s.entries...), nil
}

func (s *memoryStore) Save(_ context.Context, entries []*proof.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]*proof.Submission(nil), entries...)
	s.saves++
	return nil
}

func (s *memoryStore) Append(_ context.Context, entry *proof.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memoryStore) Remove(_ context.Context, id kernel.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, entry := range s.entries {
		if entry.ID().IsEqual(id) {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *memoryStore) deliveryIDs() []kernel.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]kernel.UUID, 0, len(s.entries))
	for _, entry := range s.entries {
		ids = append(ids, entry.DeliveryID())
	}
	return ids
}

func (s *memoryStore) entryIDs() []kernel.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]kernel.UUID, 0, len(s.entries))
	for _, entry := range s.entries {
		ids = append(ids, entry.ID())
	}
	return ids
}

// fakeServer plays uploader, completer and status reader at once.
type fakeServer struct {
	mu       sync.Mutex
	statuses map[kernel.UUID]delivery.Status
	proofs   map[kernel.UUID]string
	uploads  []kernel.UUID
	stored   map[string]kernel.UUID
	down     bool

	// onUpload runs after an upload is recorded, without the server lock.
	onUpload func(ctx context.Context, deliveryID kernel.UUID) error
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		statuses: make(map[kernel.UUID]delivery.Status),
		proofs:   make(map[kernel.UUID]string),
		stored:   make(map[string]kernel.UUID),
	}
}

func (s *fakeServer) add(status delivery.Status) kernel.UUID {
	id := kernel.NewUUID()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[id] = status
	return id
}

func (s *fakeServer) setDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

func (s *fakeServer) status(id kernel.UUID) delivery.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses[id]
}

func (s *fakeServer) uploaded() []kernel.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]kernel.UUID(nil), s.uploads...)
}

func (s *fakeServer) Upload(ctx context.Context, deliveryID kernel.UUID, _ proof.Image) (string, error) {
	s.mu.Lock()
	if s.down {
		s.mu.Unlock()
		return "", errs.NewTransportFailureError("upload", context.DeadlineExceeded)
	}
	s.uploads = append(s.uploads, deliveryID)
	hook := s.onUpload
	s.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, deliveryID); err != nil {
			return "", err
		}
	}
	return "proofs/" + deliveryID.String() + ".jpg", nil
}

func (s *fakeServer) CompleteWithProof(_ context.Context, deliveryID kernel.UUID, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return errs.NewTransportFailureError("complete", context.DeadlineExceeded)
	}
	status, ok := s.statuses[deliveryID]
	if !ok {
		return errs.NewObjectNotFoundError("deliveryID", deliveryID)
	}
	if status.IsTerminal() {
		return errs.NewAlreadyTerminalError("delivery", deliveryID, status.String(), "complete")
	}
	s.statuses[deliveryID] = delivery.Delivered
	s.proofs[deliveryID] = path
	return nil
}

// SubmitProof stores the image and completes the delivery like the server's
// proof endpoint: the stored image is discarded when completion is refused.
func (s *fakeServer) SubmitProof(ctx context.Context, deliveryID kernel.UUID, image proof.Image) (string, error) {
	path, err := s.Upload(ctx, deliveryID, image)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.stored[path] = deliveryID
	s.mu.Unlock()

	if err = s.CompleteWithProof(ctx, deliveryID, path); err != nil {
		s.mu.Lock()
		delete(s.stored, path)
		s.mu.Unlock()
		return "", err
	}
	return path, nil
}

func (s *fakeServer) storedImages() map[string]kernel.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]kernel.UUID, len(s.stored))
	for path, id := range s.stored {
		out[path] = id
	}
	return out
}

func (s *fakeServer) DeliveryStatus(_ context.Context, deliveryID kernel.UUID) (delivery.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return delivery.Unknown, errs.NewTransportFailureError("read delivery", context.DeadlineExceeded)
	}
	status, ok := s.statuses[deliveryID]
	if !ok {
		return delivery.Unknown, errs.NewObjectNotFoundError("deliveryID", deliveryID)
	}
	return status, nil
}

type fakeConnectivity struct {
	connected atomic.Bool
}

func (c *fakeConnectivity) IsConnected(context.Context) bool {
	return c.connected.Load()
}

func testImage() proof.Image {
	return proof.Image{Data: []byte{0xFF, 0xD8, 0xFF, 0xE0}, MimeType: "image/jpeg", FileName: "proof.jpg"}
}
