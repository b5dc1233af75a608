package http

import (
	"strings"
	"time"

	"deliverytracker/internal/core/application/usecases/commands"
	"deliverytracker/internal/core/application/usecases/queries"
	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

type NewInvoiceRequest struct {
	InvoiceNumber string `json:"invoice_number" validate:"required,number,max=20"`
	ClientName    string `json:"client_name" validate:"required,max=200"`
	ClientTaxID   string `json:"client_tax_id" validate:"max=20"`
	IssueDate     string `json:"issue_date" validate:"required,datetime=2006-01-02"`
	TotalValue    string `json:"total_value" validate:"required,numeric"`
	Sender        string `json:"sender" validate:"max=200"`
}

type AssignmentRequest struct {
	CourierID *uuid.UUID `json:"courier_id"`
}

type DistributionRequest struct {
	DeliveryIDs []uuid.UUID `json:"delivery_ids" validate:"required,min=1,max=500"`
	CourierID   uuid.UUID   `json:"courier_id" validate:"required"`
}

type CompletionRequest struct {
	ProofImagePath string `json:"proof_image_path" validate:"max=500"`
}

type CancellationRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// ListDeliveriesParams are the query parameters of ListDeliveries.
type ListDeliveriesParams struct {
	Status         *string             `form:"status" json:"status,omitempty"`
	CourierID      *openapi_types.UUID `form:"courier_id" json:"courier_id,omitempty"`
	WithoutCourier *bool               `form:"without_courier" json:"without_courier,omitempty"`
	IssuedFrom     *openapi_types.Date `form:"issued_from" json:"issued_from,omitempty"`
	IssuedTo       *openapi_types.Date `form:"issued_to" json:"issued_to,omitempty"`
	Search         *string             `form:"search" json:"search,omitempty"`
	Limit          *int                `form:"limit" json:"limit,omitempty"`
	Offset         *int                `form:"offset" json:"offset,omitempty"`
}

type DeliveryResponse struct {
	ID             uuid.UUID          `json:"id"`
	InvoiceNumber  string             `json:"invoice_number"`
	ClientName     string             `json:"client_name"`
	ClientTaxID    string             `json:"client_tax_id,omitempty"`
	IssueDate      openapi_types.Date `json:"issue_date"`
	TotalValue     string             `json:"total_value"`
	Sender         string             `json:"sender,omitempty"`
	Status         string             `json:"status"`
	CourierID      *uuid.UUID         `json:"courier_id"`
	CourierName    string             `json:"courier_name,omitempty"`
	ProofImagePath string             `json:"proof_image_path,omitempty"`
	DeliveredAt    *time.Time         `json:"delivered_at"`
	Observation    string             `json:"observation,omitempty"`
}

type DistributionFailureResponse struct {
	ID     uuid.UUID `json:"id"`
	Reason string    `json:"reason"`
}

type DistributionReportResponse struct {
	Succeeded []uuid.UUID                  `json:"succeeded"`
	Failed    []DistributionFailureResponse `json:"failed"`
}

type StoredProofResponse struct {
	Path string `json:"path"`
}

type CourierResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func statusName(s delivery.Status) string {
	return strings.ToLower(s.String())
}

func optionalID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func fromAggregate(d *delivery.Delivery) DeliveryResponse {
	inv := d.Invoice()
	return DeliveryResponse{
		ID:             d.ID().Bytes(),
		InvoiceNumber:  inv.Number(),
		ClientName:     inv.ClientName(),
		ClientTaxID:    inv.ClientTaxID().String(),
		IssueDate:      openapi_types.Date{Time: inv.IssueDate()},
		TotalValue:     inv.TotalValue().StringFixed(2),
		Sender:         inv.Sender(),
		Status:         statusName(d.Status()),
		CourierID:      optionalID(d.CourierID()),
		CourierName:    d.CourierName(),
		ProofImagePath: d.ProofImagePath(),
		DeliveredAt:    d.DeliveredAt(),
		Observation:    d.Observation(),
	}
}

func fromView(v queries.DeliveryView) DeliveryResponse {
	return DeliveryResponse{
		ID:             v.ID.Bytes(),
		InvoiceNumber:  v.InvoiceNumber,
		ClientName:     v.ClientName,
		ClientTaxID:    v.ClientTaxID,
		IssueDate:      openapi_types.Date{Time: v.IssueDate},
		TotalValue:     v.TotalValue.StringFixed(2),
		Sender:         v.Sender,
		Status:         statusName(v.Status),
		CourierID:      optionalID(v.CourierID),
		CourierName:    v.CourierName,
		ProofImagePath: v.ProofImagePath,
		DeliveredAt:    v.DeliveredAt,
		Observation:    v.Observation,
	}
}

func fromViews(views []queries.DeliveryView) []DeliveryResponse {
	out := make([]DeliveryResponse, len(views))
	for i, v := range views {
		out[i] = fromView(v)
	}
	return out
}

func fromReport(report commands.DistributionReport) DistributionReportResponse {
	out := DistributionReportResponse{
		Succeeded: make([]uuid.UUID, len(report.Succeeded)),
		Failed:    make([]DistributionFailureResponse, len(report.Failed)),
	}
	for i, id := range report.Succeeded {
		out.Succeeded[i] = id.Bytes()
	}
	for i, f := range report.Failed {
		out.Failed[i] = DistributionFailureResponse{ID: f.ID.Bytes(), Reason: f.Reason.Error()}
	}
	return out
}
