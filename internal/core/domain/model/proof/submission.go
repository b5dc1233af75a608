package proof

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/pkg/errs"
)

// CurrentSchemaVersion is written into every new entry. Entries with any other
// version were produced by an incompatible build and are treated as corrupt.
const CurrentSchemaVersion = 1

var ErrSubmissionIsNotConstructed = errors.New("Submission must be created via NewSubmission constructor")

// Image is a captured proof of delivery before it is queued or uploaded.
type Image struct {
	Data     []byte
	MimeType string
	FileName string
}

// Validate requires a non-empty payload.
func (i Image) Validate() error {
	if len(i.Data) == 0 {
		return errs.NewValueIsRequiredError("image data")
	}
	return nil
}

// Submission is one pending proof of delivery waiting in the local proof store.
//
// The image travels inside the entry as base64 text, so the entry stays usable
// after the process that captured it is gone.
type Submission struct {
	id            kernel.UUID
	deliveryID    kernel.UUID
	payload       string
	mimeType      string
	fileName      string
	enqueuedAt    time.Time
	schemaVersion int

	isConstructed bool
}

// NewSubmission copies image into a self-contained entry for deliveryID.
func NewSubmission(deliveryID kernel.UUID, image Image, enqueuedAt time.Time) (*Submission, error) {
	if err := errors.Join(deliveryID.Validate(), image.Validate()); err != nil {
		return nil, err
	}

	fileName := strings.TrimSpace(image.FileName)
	if fileName == "" {
		fileName = "proof-" + deliveryID.String()
	}

	return &Submission{
		id:            kernel.NewUUID(),
		deliveryID:    deliveryID,
		payload:       base64.StdEncoding.EncodeToString(image.Data),
		mimeType:      strings.TrimSpace(image.MimeType),
		fileName:      fileName,
		enqueuedAt:    enqueuedAt.UTC(),
		schemaVersion: CurrentSchemaVersion,
		isConstructed: true,
	}, nil
}

// RestoreSubmission rebuilds an entry read from the store. It does not reject
// corrupt content: a damaged entry must still be loadable so that a sweep can
// find it, report it and drop it. Use CheckIntegrity for that.
func RestoreSubmission(
	id kernel.UUID,
	deliveryID kernel.UUID,
	payload string,
	mimeType string,
	fileName string,
	enqueuedAt time.Time,
	schemaVersion int,
) (*Submission, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	return &Submission{
		id:            id,
		deliveryID:    deliveryID,
		payload:       payload,
		mimeType:      mimeType,
		fileName:      fileName,
		enqueuedAt:    enqueuedAt,
		schemaVersion: schemaVersion,
		isConstructed: true,
	}, nil
}

func (s *Submission) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrSubmissionIsNotConstructed
	}
	return nil
}

func (s *Submission) ID() kernel.UUID {
	return s.id
}

func (s *Submission) DeliveryID() kernel.UUID {
	return s.deliveryID
}

// Payload is the base64 encoded image.
func (s *Submission) Payload() string {
	return s.payload
}

func (s *Submission) MimeType() string {
	return s.mimeType
}

func (s *Submission) FileName() string {
	return s.fileName
}

func (s *Submission) EnqueuedAt() time.Time {
	return s.enqueuedAt
}

func (s *Submission) SchemaVersion() int {
	return s.schemaVersion
}

// CheckIntegrity returns *errs.CorruptError when the entry can never be sent:
// no delivery id, no payload, a payload that is not base64, or an unknown schema
// version. Such entries are dropped by the sweep instead of retried.
func (s *Submission) CheckIntegrity() error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.schemaVersion != CurrentSchemaVersion {
		return errs.NewCorruptError(s.id, fmt.Sprintf("unsupported schema version %d", s.schemaVersion))
	}
	if s.deliveryID.Validate() != nil {
		return errs.NewCorruptError(s.id, "missing delivery id")
	}
	if strings.TrimSpace(s.payload) == "" {
		return errs.NewCorruptError(s.id, "missing image payload")
	}
	if _, err := base64.StdEncoding.DecodeString(s.payload); err != nil {
		return errs.NewCorruptError(s.id, "image payload is not valid base64")
	}
	return nil
}

// Image decodes the payload back into bytes.
func (s *Submission) Image() (Image, error) {
	if err := s.CheckIntegrity(); err != nil {
		return Image{}, err
	}
	data, err := base64.StdEncoding.DecodeString(s.payload)
	if err != nil {
		return Image{}, errs.NewCorruptError(s.id, "image payload is not valid base64")
	}
	if len(data) == 0 {
		return Image{}, errs.NewCorruptError(s.id, "missing image payload")
	}
	return Image{Data: data, MimeType: s.mimeType, FileName: s.fileName}, nil
}
