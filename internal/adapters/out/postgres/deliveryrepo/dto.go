// Package deliveryrepo persists delivery aggregates with GORM. Rows are mapped
// through DeliveryDTO; the aggregate is rebuilt with delivery.RestoreDelivery so
// a row that breaks a lifecycle invariant is reported instead of loaded.
package deliveryrepo

import (
	"strings"
	"time"

	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryDTO is the row of the deliveries table.
type DeliveryDTO struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceNumber  string          `gorm:"size:32;not null;uniqueIndex"`
	ClientName     string          `gorm:"size:255;not null"`
	ClientTaxID    string          `gorm:"size:14;index"`
	IssueDate      time.Time       `gorm:"type:date;not null;index"`
	TotalValue     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Sender         string          `gorm:"size:255"`
	Status         string          `gorm:"size:16;not null;index"`
	CourierID      *uuid.UUID      `gorm:"type:uuid;index"`
	CourierName    *string         `gorm:"size:255"`
	ProofImagePath *string         `gorm:"size:512"`
	DeliveredAt    *time.Time
	Observation    *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (DeliveryDTO) TableName() string {
	return "deliveries"
}

// StatusValue is the persisted form of a status.
func StatusValue(s delivery.Status) string {
	return strings.ToLower(s.String())
}

func fromDomain(d *delivery.Delivery) DeliveryDTO {
	var courierID *uuid.UUID
	if id := d.CourierID(); id != nil {
		raw := id.Bytes()
		courierID = &raw
	}

	inv := d.Invoice()
	return DeliveryDTO{
		ID:             d.ID().Bytes(),
		InvoiceNumber:  inv.Number(),
		ClientName:     inv.ClientName(),
		ClientTaxID:    inv.ClientTaxID().String(),
		IssueDate:      inv.IssueDate(),
		TotalValue:     inv.TotalValue(),
		Sender:         inv.Sender(),
		Status:         StatusValue(d.Status()),
		CourierID:      courierID,
		CourierName:    nullable(d.CourierName()),
		ProofImagePath: nullable(d.ProofImagePath()),
		DeliveredAt:    d.DeliveredAt(),
		Observation:    nullable(d.Observation()),
	}
}

func toDomain(dto DeliveryDTO) (*delivery.Delivery, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		cID, courierErr := kernel.UUIDFromBytes((*dto.CourierID)[:])
		if courierErr != nil {
			return nil, courierErr
		}
		courierID = &cID
	}

	taxID, err := kernel.NewTaxID(dto.ClientTaxID)
	if err != nil {
		return nil, err
	}

	inv, err := delivery.NewInvoice(
		dto.InvoiceNumber, dto.ClientName, taxID, dto.IssueDate, dto.TotalValue, dto.Sender,
	)
	if err != nil {
		return nil, err
	}

	status, err := delivery.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	var deliveredAt *time.Time
	if dto.DeliveredAt != nil {
		at := dto.DeliveredAt.UTC()
		deliveredAt = &at
	}

	return delivery.RestoreDelivery(
		id,
		inv,
		status,
		courierID,
		value(dto.CourierName),
		value(dto.ProofImagePath),
		deliveredAt,
		value(dto.Observation),
	)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
