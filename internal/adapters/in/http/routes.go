package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// EchoRouter is satisfied by *echo.Echo and *echo.Group.
type EchoRouter interface {
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// serverWrapper binds path and query parameters before calling the Server.
type serverWrapper struct {
	handler *Server
}

// RegisterHandlers mounts the API under router. Paths are relative to
// /api/v1, so router is normally the /api/v1 group.
func RegisterHandlers(router EchoRouter, server *Server) {
	w := serverWrapper{handler: server}

	router.POST("/invoices", server.RegisterInvoice)
	router.GET("/deliveries", w.ListDeliveries)
	router.POST("/deliveries/distribute", server.DistributeDeliveries)
	router.GET("/deliveries/:id", w.withID(server.GetDelivery))
	router.PUT("/deliveries/:id/courier", w.withID(server.AssignCourier))
	router.PUT("/deliveries/:id/complete", w.withID(server.CompleteDelivery))
	router.POST("/deliveries/:id/proof", w.withID(server.SubmitProof))
	router.DELETE("/deliveries/:id/proof", w.withID(server.RevertProof))
	router.PUT("/deliveries/:id/cancel", w.withID(server.CancelDelivery))
	router.GET("/me/deliveries", server.ListMyDeliveries)
	router.POST("/proofs", server.UploadProof)
	router.GET("/couriers", server.ListCouriers)
}

func (w serverWrapper) withID(next func(echo.Context, openapi_types.UUID) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var id openapi_types.UUID
		err := runtime.BindStyledParameterWithOptions("simple", "id", ctx.Param("id"), &id,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter id: %s", err))
		}
		return next(ctx, id)
	}
}

func (w serverWrapper) ListDeliveries(ctx echo.Context) error {
	var params ListDeliveriesParams
	query := ctx.QueryParams()

	bindings := []struct {
		name string
		dest any
	}{
		{"status", &params.Status},
		{"courier_id", &params.CourierID},
		{"without_courier", &params.WithoutCourier},
		{"issued_from", &params.IssuedFrom},
		{"issued_to", &params.IssuedTo},
		{"search", &params.Search},
		{"limit", &params.Limit},
		{"offset", &params.Offset},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, query, b.dest); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", b.name, err))
		}
	}

	return w.handler.ListDeliveries(ctx, params)
}
