package proofstore

import (
	"strconv"
	"time"

	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/core/domain/model/proof"

	"github.com/google/uuid"
)

// SubmissionDTO is one row of the local proof store. Seq keeps enqueue order.
// Ids are kept as plain text so that a damaged value never fails the scan.
type SubmissionDTO struct {
	Seq           int64  `gorm:"primaryKey;autoIncrement"`
	ID            string `gorm:"type:text;uniqueIndex;not null"`
	DeliveryID    string `gorm:"type:text"`
	Payload       string
	MimeType      string
	FileName      string
	EnqueuedAt    time.Time
	SchemaVersion int `gorm:"not null;default:0"`
}

func (SubmissionDTO) TableName() string {
	return "proof_submissions"
}

// rowIDSpace derives stable ids for rows whose own id cannot be read.
var rowIDSpace = uuid.MustParse("6f1f6c2e-2d0b-4b61-9a53-6a3c1c7d9e10")

func fromDomain(entry *proof.Submission) SubmissionDTO {
	dto := SubmissionDTO{
		ID:            entry.ID().String(),
		Payload:       entry.Payload(),
		MimeType:      entry.MimeType(),
		FileName:      entry.FileName(),
		EnqueuedAt:    entry.EnqueuedAt(),
		SchemaVersion: entry.SchemaVersion(),
	}
	if entry.DeliveryID().Validate() == nil {
		dto.DeliveryID = entry.DeliveryID().String()
	}
	return dto
}

// toDomain never rejects a row. A row with a damaged delivery id loads with
// an empty one, and a row with a damaged id gets one derived from its Seq, so
// CheckIntegrity reports the entry as corrupt and the sweep drops it by id.
func toDomain(dto SubmissionDTO) (*proof.Submission, error) {
	id, ok := parseID(dto.ID)
	if !ok {
		id, _ = kernel.UUIDFromGoogle(uuid.NewSHA1(rowIDSpace, []byte(strconv.FormatInt(dto.Seq, 10))))
		// The payload is not trusted either.
		dto.DeliveryID = ""
	}

	deliveryID, _ := parseID(dto.DeliveryID)

	return proof.RestoreSubmission(
		id,
		deliveryID,
		dto.Payload,
		dto.MimeType,
		dto.FileName,
		dto.EnqueuedAt.UTC(),
		dto.SchemaVersion,
	)
}

func parseID(value string) (kernel.UUID, bool) {
	parsed, err := uuid.Parse(value)
	if err != nil {
		return kernel.UUID{}, false
	}
	id, err := kernel.UUIDFromGoogle(parsed)
	if err != nil {
		return kernel.UUID{}, false
	}
	return id, true
}
