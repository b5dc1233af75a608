// Package queries contains read operations over deliveries and the courier
// directory. Handlers run SQL directly against the database and return flat
// read models; they never load aggregates.
package queries

import (
	"database/sql"
	"time"

	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryView is the read model of one delivery.
type DeliveryView struct {
	ID             kernel.UUID
	InvoiceNumber  string
	ClientName     string
	ClientTaxID    string
	IssueDate      time.Time
	TotalValue     decimal.Decimal
	Sender         string
	Status         delivery.Status
	CourierID      *kernel.UUID
	CourierName    string
	ProofImagePath string
	DeliveredAt    *time.Time
	Observation    string
}

const deliveryColumns = `
	id,
	invoice_number,
	client_name,
	client_tax_id,
	issue_date,
	total_value,
	sender,
	status,
	courier_id,
	courier_name,
	proof_image_path,
	delivered_at,
	observation`

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanDeliveries(rows rowScanner) ([]DeliveryView, error) {
	views := make([]DeliveryView, 0)
	for rows.Next() {
		view, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return views, nil
}

func scanDelivery(rows rowScanner) (DeliveryView, error) {
	var (
		view           DeliveryView
		id             uuid.UUID
		status         string
		courierID      uuid.NullUUID
		courierName    sql.NullString
		proofImagePath sql.NullString
		deliveredAt    sql.NullTime
		observation    sql.NullString
	)

	err := rows.Scan(
		&id,
		&view.InvoiceNumber,
		&view.ClientName,
		&view.ClientTaxID,
		&view.IssueDate,
		&view.TotalValue,
		&view.Sender,
		&status,
		&courierID,
		&courierName,
		&proofImagePath,
		&deliveredAt,
		&observation,
	)
	if err != nil {
		return DeliveryView{}, err
	}

	if view.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return DeliveryView{}, err
	}

	if view.Status, err = delivery.ParseStatus(status); err != nil {
		return DeliveryView{}, err
	}

	if courierID.Valid {
		cID, idErr := kernel.UUIDFromBytes(courierID.UUID[:])
		if idErr != nil {
			return DeliveryView{}, idErr
		}
		view.CourierID = &cID
	}

	if deliveredAt.Valid {
		at := deliveredAt.Time.UTC()
		view.DeliveredAt = &at
	}

	view.IssueDate = view.IssueDate.UTC()
	view.CourierName = courierName.String
	view.ProofImagePath = proofImagePath.String
	view.Observation = observation.String

	return view, nil
}
