package http

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"deliverytracker/internal/core/application/usecases/commands"
	"deliverytracker/internal/core/application/usecases/queries"
	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/core/ports"
	"deliverytracker/internal/pkg/errs"
	"deliverytracker/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

const DefaultMaxImageBytes = 10 << 20

// Handlers are the use cases the HTTP API exposes.
type Handlers struct {
	RegisterInvoice       commands.RegisterInvoiceCommandHandler
	AssignCourier         commands.AssignCourierCommandHandler
	DistributeDeliveries  commands.DistributeDeliveriesCommandHandler
	CompleteDelivery      commands.CompleteDeliveryCommandHandler
	RevertProof           commands.RevertProofCommandHandler
	CancelDelivery        commands.CancelDeliveryCommandHandler
	ListDeliveries        queries.ListDeliveriesQueryHandler
	GetDelivery           queries.GetDeliveryQueryHandler
	ListCourierDeliveries queries.ListCourierDeliveriesQueryHandler
	ListCouriers          queries.ListCouriersQueryHandler
}

// Server implements the delivery API. It translates requests into commands
// and queries and their results into response bodies.
type Server struct {
	handlers      Handlers
	blobs         ports.BlobStorage
	clock         ports.Clock
	log           *logger.Logger
	maxImageBytes int64
}

func NewServer(handlers Handlers, blobs ports.BlobStorage, clock ports.Clock, log *logger.Logger, maxImageBytes int64) *Server {
	if clock == nil {
		clock = ports.SystemClock
	}
	if log == nil {
		log = logger.Nop()
	}
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &Server{
		handlers:      handlers,
		blobs:         blobs,
		clock:         clock,
		log:           log,
		maxImageBytes: maxImageBytes,
	}
}

// RegisterInvoice handles POST /api/v1/invoices.
func (s *Server) RegisterInvoice(c echo.Context) error {
	var req NewInvoiceRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	issueDate, err := time.Parse(time.DateOnly, req.IssueDate)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("issue_date", err)
	}
	total, err := decimal.NewFromString(req.TotalValue)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("total_value", err)
	}

	cmd, err := commands.NewRegisterInvoiceCommand(
		actorFrom(c), req.InvoiceNumber, req.ClientName, req.ClientTaxID, issueDate, total, req.Sender,
	)
	if err != nil {
		return err
	}

	result, err := s.handlers.RegisterInvoice.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	return c.JSON(status, fromAggregate(result.Delivery))
}

// ListDeliveries handles GET /api/v1/deliveries.
func (s *Server) ListDeliveries(c echo.Context, params ListDeliveriesParams) error {
	if err := actorFrom(c).Validate(); err != nil {
		return err
	}

	filter := queries.DeliveryFilter{}
	if params.Status != nil {
		status, err := delivery.ParseStatus(*params.Status)
		if err != nil {
			return err
		}
		filter.Status = &status
	}
	if params.CourierID != nil {
		id, err := kernel.UUIDFromGoogle(*params.CourierID)
		if err != nil {
			return errs.NewValueIsInvalidErrorWithCause("courier_id", err)
		}
		filter.CourierID = &id
	}
	if params.WithoutCourier != nil {
		filter.WithoutCourier = *params.WithoutCourier
	}
	if params.IssuedFrom != nil {
		from := params.IssuedFrom.Time
		filter.IssuedFrom = &from
	}
	if params.IssuedTo != nil {
		to := params.IssuedTo.Time
		filter.IssuedTo = &to
	}
	if params.Search != nil {
		filter.Search = *params.Search
	}
	if params.Limit != nil {
		filter.Limit = *params.Limit
	}
	if params.Offset != nil {
		filter.Offset = *params.Offset
	}

	query, err := queries.NewListDeliveriesQuery(filter)
	if err != nil {
		return err
	}

	views, err := s.handlers.ListDeliveries.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fromViews(views))
}

// GetDelivery handles GET /api/v1/deliveries/{id}.
func (s *Server) GetDelivery(c echo.Context, id openapi_types.UUID) error {
	if err := actorFrom(c).Validate(); err != nil {
		return err
	}
	deliveryID, err := pathID(id)
	if err != nil {
		return err
	}

	query, err := queries.NewGetDeliveryQuery(deliveryID)
	if err != nil {
		return err
	}

	view, err := s.handlers.GetDelivery.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fromView(view))
}

// ListMyDeliveries handles GET /api/v1/me/deliveries.
func (s *Server) ListMyDeliveries(c echo.Context) error {
	query, err := queries.NewListCourierDeliveriesQuery(actorFrom(c), s.clock.Now())
	if err != nil {
		return err
	}

	views, err := s.handlers.ListCourierDeliveries.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fromViews(views))
}

// AssignCourier handles PUT /api/v1/deliveries/{id}/courier. A null courier_id
// unassigns the delivery.
func (s *Server) AssignCourier(c echo.Context, id openapi_types.UUID) error {
	deliveryID, err := pathID(id)
	if err != nil {
		return err
	}

	var req AssignmentRequest
	if err = bindBody(c, &req); err != nil {
		return err
	}

	var courierID *kernel.UUID
	if req.CourierID != nil {
		parsed, err := kernel.UUIDFromGoogle(*req.CourierID)
		if err != nil {
			return errs.NewValueIsInvalidErrorWithCause("courier_id", err)
		}
		courierID = &parsed
	}

	cmd, err := commands.NewAssignCourierCommand(actorFrom(c), deliveryID, courierID)
	if err != nil {
		return err
	}

	d, err := s.handlers.AssignCourier.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fromAggregate(d))
}

// DistributeDeliveries handles POST /api/v1/deliveries/distribute. Items that
// fail are part of the 200 response.
func (s *Server) DistributeDeliveries(c echo.Context) error {
	var req DistributionRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	courierID, err := kernel.UUIDFromGoogle(req.CourierID)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("courier_id", err)
	}
	ids := make([]kernel.UUID, 0, len(req.DeliveryIDs))
	for _, raw := range req.DeliveryIDs {
		id, err := kernel.UUIDFromGoogle(raw)
		if err != nil {
			return errs.NewValueIsInvalidErrorWithCause("delivery_ids", err)
		}
		ids = append(ids, id)
	}

	cmd, err := commands.NewDistributeDeliveriesCommand(actorFrom(c), ids, courierID)
	if err != nil {
		return err
	}

	report, err := s.handlers.DistributeDeliveries.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fromReport(report))
}

// CompleteDelivery handles PUT /api/v1/deliveries/{id}/complete with a proof
// that was uploaded before, or none.
func (s *Server) CompleteDelivery(c echo.Context, id openapi_types.UUID) error {
	deliveryID, err := pathID(id)
	if err != nil {
		return err
	}

	var req CompletionRequest
	if err = bindBody(c, &req); err != nil {
		return err
	}

	return s.complete(c, deliveryID, req.ProofImagePath)
}

// SubmitProof handles POST /api/v1/deliveries/{id}/proof: the image is stored
// and the delivery completed with it. The image is discarded when the
// completion is rejected.
func (s *Server) SubmitProof(c echo.Context, id openapi_types.UUID) error {
	deliveryID, err := pathID(id)
	if err != nil {
		return err
	}
	if err = actorFrom(c).Validate(); err != nil {
		return err
	}

	data, fileName, err := s.readImage(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	path, err := s.blobs.Put(ctx, deliveryID, data, fileName)
	if err != nil {
		return err
	}

	if err = s.complete(c, deliveryID, path); err != nil {
		if delErr := s.blobs.Delete(ctx, path); delErr != nil {
			s.log.Warn(s.log.WithField(ctx, "path", path), "orphan proof image was not deleted", delErr)
		}
		return err
	}
	return nil
}

func (s *Server) complete(c echo.Context, deliveryID kernel.UUID, path string) error {
	cmd, err := commands.NewCompleteDeliveryCommand(actorFrom(c), deliveryID, path)
	if err != nil {
		return err
	}

	d, err := s.handlers.CompleteDelivery.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fromAggregate(d))
}

// RevertProof handles DELETE /api/v1/deliveries/{id}/proof.
func (s *Server) RevertProof(c echo.Context, id openapi_types.UUID) error {
	deliveryID, err := pathID(id)
	if err != nil {
		return err
	}

	cmd, err := commands.NewRevertProofCommand(actorFrom(c), deliveryID)
	if err != nil {
		return err
	}

	d, err := s.handlers.RevertProof.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fromAggregate(d))
}

// CancelDelivery handles PUT /api/v1/deliveries/{id}/cancel.
func (s *Server) CancelDelivery(c echo.Context, id openapi_types.UUID) error {
	deliveryID, err := pathID(id)
	if err != nil {
		return err
	}

	var req CancellationRequest
	if err = bindBody(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewCancelDeliveryCommand(actorFrom(c), deliveryID, req.Reason)
	if err != nil {
		return err
	}

	d, err := s.handlers.CancelDelivery.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fromAggregate(d))
}

// UploadProof handles POST /api/v1/proofs. It only stores the image; the
// returned path is then passed to CompleteDelivery.
func (s *Server) UploadProof(c echo.Context) error {
	if err := actorFrom(c).Validate(); err != nil {
		return err
	}

	rawID := strings.TrimSpace(c.FormValue("delivery_id"))
	if rawID == "" {
		return errs.NewValueIsRequiredError("delivery_id")
	}
	deliveryID, err := kernel.UUIDFromString(rawID)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("delivery_id", err)
	}

	data, fileName, err := s.readImage(c)
	if err != nil {
		return err
	}

	path, err := s.blobs.Put(c.Request().Context(), deliveryID, data, fileName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, StoredProofResponse{Path: path})
}

// ListCouriers handles GET /api/v1/couriers.
func (s *Server) ListCouriers(c echo.Context) error {
	if err := actorFrom(c).Validate(); err != nil {
		return err
	}

	couriers, err := s.handlers.ListCouriers.Handle(c.Request().Context(), queries.NewListCouriersQuery())
	if err != nil {
		return err
	}

	response := make([]CourierResponse, len(couriers))
	for i, courier := range couriers {
		response[i] = CourierResponse{ID: courier.ID.Bytes(), Name: courier.Name}
	}
	return c.JSON(http.StatusOK, response)
}

func (s *Server) readImage(c echo.Context) ([]byte, string, error) {
	header, err := c.FormFile("image")
	if err != nil {
		return nil, "", errs.NewValueIsRequiredErrorWithCause("image", err)
	}

	file, err := header.Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxImageBytes+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(data)) > s.maxImageBytes {
		return nil, "", errs.NewValueIsOutOfRangeError("image size", fmt.Sprintf("> %d", s.maxImageBytes), 1, s.maxImageBytes)
	}
	return data, header.Filename, nil
}

func bindBody(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("request body", err)
	}
	return c.Validate(dst)
}

func pathID(id openapi_types.UUID) (kernel.UUID, error) {
	deliveryID, err := kernel.UUIDFromGoogle(id)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("id", err)
	}
	return deliveryID, nil
}
