// Package agentapi is the local HTTP surface of the courier agent. The
// capture app on the courier's device talks to it on the loopback interface;
// it never faces the internet and has no authentication of its own.
package agentapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	httpadapter "deliverytracker/internal/adapters/in/http"
	"deliverytracker/internal/core/application/proofs"
	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/core/domain/model/proof"
	"deliverytracker/internal/pkg/errs"
	"deliverytracker/internal/pkg/logger"
	"deliverytracker/internal/pkg/optimistic"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const DefaultMaxImageBytes = 10 << 20

type board interface {
	Cards() []optimistic.View[proofs.Card]
	Submit(ctx context.Context, deliveryID kernel.UUID, image proof.Image) (proofs.SubmitResult, error)
}

type queue interface {
	Pending(ctx context.Context) ([]*proof.Submission, error)
	Sweep(ctx context.Context) (proofs.SweepReport, error)
}

type CardResponse struct {
	ID            string `json:"id"`
	InvoiceNumber string `json:"invoice_number"`
	ClientName    string `json:"client_name"`
	Status        string `json:"status"`
	ProofQueued   bool   `json:"proof_queued"`
	Confirmed     bool   `json:"confirmed"`
}

type SubmitResponse struct {
	Outcome string `json:"outcome"`
	Path    string `json:"path,omitempty"`
}

type PendingResponse struct {
	ID         string    `json:"id"`
	DeliveryID string    `json:"delivery_id"`
	FileName   string    `json:"file_name"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

type SweepResponse struct {
	Sent    int  `json:"sent"`
	Failed  int  `json:"failed"`
	Dropped int  `json:"dropped"`
	Skipped bool `json:"skipped"`
}

type server struct {
	board         board
	queue         queue
	maxImageBytes int64
}

// NewRouter builds the agent's echo instance.
func NewRouter(b board, q queue, log *logger.Logger, maxImageBytes int64) *echo.Echo {
	if log == nil {
		log = logger.Nop()
	}
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	s := &server{board: b, queue: q, maxImageBytes: maxImageBytes}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httpadapter.ErrorHandler(log)
	e.Use(middleware.Recover())
	e.Use(httpadapter.RequestID(log))
	e.Use(httpadapter.RequestLogger(log))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/board", s.listCards)
	e.POST("/deliveries/:id/proof", s.submitProof)
	e.GET("/pending", s.listPending)
	e.POST("/sweep", s.sweep)
	return e
}

func (s *server) listCards(c echo.Context) error {
	views := s.board.Cards()
	out := make([]CardResponse, len(views))
	for i, v := range views {
		out[i] = CardResponse{
			ID:            v.Value.ID.String(),
			InvoiceNumber: v.Value.InvoiceNumber,
			ClientName:    v.Value.ClientName,
			Status:        strings.ToLower(v.Value.Status.String()),
			ProofQueued:   v.Value.ProofQueued,
			Confirmed:     v.Fresh,
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *server) submitProof(c echo.Context) error {
	deliveryID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("id", err)
	}

	image, err := s.readImage(c)
	if err != nil {
		return err
	}

	result, err := s.board.Submit(c.Request().Context(), deliveryID, image)
	if err != nil {
		return err
	}

	status := http.StatusOK
	if result.Outcome == proofs.OutcomeQueued {
		status = http.StatusAccepted
	}
	return c.JSON(status, SubmitResponse{Outcome: result.Outcome.String(), Path: result.Path})
}

func (s *server) listPending(c echo.Context) error {
	entries, err := s.queue.Pending(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]PendingResponse, len(entries))
	for i, entry := range entries {
		out[i] = PendingResponse{
			ID:         entry.ID().String(),
			DeliveryID: entry.DeliveryID().String(),
			FileName:   entry.FileName(),
			EnqueuedAt: entry.EnqueuedAt(),
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *server) sweep(c echo.Context) error {
	report, err := s.queue.Sweep(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SweepResponse{
		Sent:    report.Sent,
		Failed:  report.Failed,
		Dropped: report.Dropped,
		Skipped: report.Skipped,
	})
}

func (s *server) readImage(c echo.Context) (proof.Image, error) {
	header, err := c.FormFile("image")
	if err != nil {
		return proof.Image{}, errs.NewValueIsRequiredErrorWithCause("image", err)
	}
	file, err := header.Open()
	if err != nil {
		return proof.Image{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxImageBytes+1))
	if err != nil {
		return proof.Image{}, err
	}
	if int64(len(data)) > s.maxImageBytes {
		return proof.Image{}, errs.NewValueIsOutOfRangeError("image size", fmt.Sprintf("> %d", s.maxImageBytes), 1, s.maxImageBytes)
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return proof.Image{}, errs.NewValueIsInvalidErrorWithCause("image", fmt.Errorf("content type %s is not an image", detected.String()))
	}
	return proof.Image{Data: data, MimeType: detected.String(), FileName: header.Filename}, nil
}
