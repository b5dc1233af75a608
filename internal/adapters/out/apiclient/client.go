// Package apiclient is the courier agent's view of the delivery API. It
// implements the ports the proof pipeline and the board depend on.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"deliverytracker/internal/core/application/proofs"
	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/core/domain/model/proof"
	"deliverytracker/internal/pkg/errs"

	"github.com/gabriel-vasile/mimetype"
)

const (
	apiPrefix                  = "/api/v1"
	errorBodyReadLimit   int64 = 4096
	defaultClientTimeout       = 30 * time.Second
	defaultProbeTimeout        = 3 * time.Second
)

var (
	errBaseURLRequired = errors.New("api base url is required")
	errTokenRequired   = errors.New("api token is required")
)

// Client calls the delivery API with the courier's bearer token.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	token        string
	probeTimeout time.Duration
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithProbeTimeout bounds the health request made by IsConnected.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.probeTimeout = timeout
		}
	}
}

func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errTokenRequired
	}

	client := &Client{
		httpClient:   &http.Client{Timeout: defaultClientTimeout},
		baseURL:      baseURL,
		token:        token,
		probeTimeout: defaultProbeTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type storedProof struct {
	Path string `json:"path"`
}

type deliveryBody struct {
	ID             string `json:"id"`
	InvoiceNumber  string `json:"invoice_number"`
	ClientName     string `json:"client_name"`
	Status         string `json:"status"`
	ProofImagePath string `json:"proof_image_path"`
}

type errorBody struct {
	Message string `json:"message"`
}

// Upload sends the image as multipart form data and returns the stored path.
func (c *Client) Upload(ctx context.Context, deliveryID kernel.UUID, image proof.Image) (string, error) {
	const op = "upload proof"

	body, contentType, err := imageForm(deliveryID, image, true)
	if err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, apiPrefix+"/proofs", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	var stored storedProof
	if err = c.do(req, op, deliveryID, &stored); err != nil {
		return "", err
	}
	if stored.Path == "" {
		return "", errs.NewTransportFailureError(op, errors.New("server returned no path"))
	}
	return stored.Path, nil
}

// SubmitProof uploads the image and completes the delivery in one request.
// The server deletes the image when it refuses the completion.
func (c *Client) SubmitProof(ctx context.Context, deliveryID kernel.UUID, image proof.Image) (string, error) {
	const op = "submit proof"

	body, contentType, err := imageForm(deliveryID, image, false)
	if err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, deliveryPath(deliveryID)+"/proof", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	var completed deliveryBody
	if err = c.do(req, op, deliveryID, &completed); err != nil {
		return "", err
	}
	if completed.ProofImagePath == "" {
		return "", errs.NewTransportFailureError(op, errors.New("server returned no proof path"))
	}
	return completed.ProofImagePath, nil
}

func imageForm(deliveryID kernel.UUID, image proof.Image, withDeliveryID bool) (*bytes.Buffer, string, error) {
	contentType := strings.TrimSpace(image.MimeType)
	if contentType == "" {
		contentType = mimetype.Detect(image.Data).String()
	}
	fileName := strings.TrimSpace(image.FileName)
	if fileName == "" {
		fileName = "proof-" + deliveryID.String() + mimetype.Detect(image.Data).Extension()
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if withDeliveryID {
		if err := form.WriteField("delivery_id", deliveryID.String()); err != nil {
			return nil, "", err
		}
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, fileName))
	header.Set("Content-Type", contentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err = part.Write(image.Data); err != nil {
		return nil, "", err
	}
	if err = form.Close(); err != nil {
		return nil, "", err
	}
	return &body, form.FormDataContentType(), nil
}

// CompleteWithProof completes the delivery with a path returned by Upload.
func (c *Client) CompleteWithProof(ctx context.Context, deliveryID kernel.UUID, proofImagePath string) error {
	payload, err := json.Marshal(map[string]string{"proof_image_path": proofImagePath})
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPut, deliveryPath(deliveryID)+"/complete", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, "complete delivery", deliveryID, nil)
}

// DeliveryStatus reads the delivery's current status.
func (c *Client) DeliveryStatus(ctx context.Context, deliveryID kernel.UUID) (delivery.Status, error) {
	req, err := c.newRequest(ctx, http.MethodGet, deliveryPath(deliveryID), nil)
	if err != nil {
		return delivery.Unknown, err
	}

	var body deliveryBody
	if err = c.do(req, "read delivery", deliveryID, &body); err != nil {
		return delivery.Unknown, err
	}

	status, err := delivery.ParseStatus(body.Status)
	if err != nil {
		return delivery.Unknown, errs.NewTransportFailureError("read delivery", err)
	}
	return status, nil
}

// CourierCards lists the caller's deliveries as board cards.
func (c *Client) CourierCards(ctx context.Context) ([]proofs.Card, error) {
	const op = "list courier deliveries"

	req, err := c.newRequest(ctx, http.MethodGet, apiPrefix+"/me/deliveries", nil)
	if err != nil {
		return nil, err
	}

	var bodies []deliveryBody
	if err = c.do(req, op, nil, &bodies); err != nil {
		return nil, err
	}

	cards := make([]proofs.Card, 0, len(bodies))
	for _, b := range bodies {
		id, err := kernel.UUIDFromString(b.ID)
		if err != nil {
			return nil, errs.NewTransportFailureError(op, err)
		}
		status, err := delivery.ParseStatus(b.Status)
		if err != nil {
			return nil, errs.NewTransportFailureError(op, err)
		}
		cards = append(cards, proofs.Card{
			ID:            id,
			InvoiceNumber: b.InvoiceNumber,
			ClientName:    b.ClientName,
			Status:        status,
		})
	}
	return cards, nil
}

// IsConnected reports whether GET /health answers 200 within the probe timeout.
func (c *Client) IsConnected(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, errorBodyReadLimit))

	return resp.StatusCode == http.StatusOK
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do executes req and decodes a 2xx body into out. Failures of the network or
// the server become *errs.TransportFailureError; answers the server gave on
// purpose become the matching domain error.
func (c *Client) do(req *http.Request, op string, id any, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.NewTransportFailureError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(op, id, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.NewTransportFailureError(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func responseError(op string, id any, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
	message := strings.TrimSpace(string(raw))
	var body errorBody
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		message = body.Message
	}
	cause := fmt.Errorf("status %d: %s", resp.StatusCode, message)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return errs.NewUnauthenticatedErrorWithCause(op, cause)
	case resp.StatusCode == http.StatusForbidden:
		return errs.NewUnauthorizedError("courier", op)
	case resp.StatusCode == http.StatusNotFound:
		return errs.NewObjectNotFoundErrorWithCause("delivery", fmt.Sprint(id), cause)
	case resp.StatusCode == http.StatusConflict:
		return errs.NewInvalidTransitionErrorWithCause("delivery", id, "unknown", op, cause)
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return errs.NewTransportFailureError(op, cause)
	default:
		return errs.NewValueIsInvalidErrorWithCause(op, cause)
	}
}

func deliveryPath(id kernel.UUID) string {
	return apiPrefix + "/deliveries/" + url.PathEscape(id.String())
}
