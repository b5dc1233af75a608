package http

import (
	"context"
	"net/http"

	"deliverytracker/internal/pkg/auth"
	"deliverytracker/internal/pkg/logger"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RouterOptions configure NewRouter. Doc and SpecYAML describe the same API:
// Doc drives request validation and SpecYAML is what the swagger UI loads.
type RouterOptions struct {
	Auth     auth.Config
	Log      *logger.Logger
	Doc      *openapi3.T
	SpecYAML []byte
	Gatherer prometheus.Gatherer
	// Health reports whether the service can serve requests. Nil means always.
	Health    func(ctx context.Context) error
	BodyLimit string
}

// NewRouter builds the echo instance: /health, /metrics, the swagger UI and
// the authenticated /api/v1 group.
func NewRouter(server *Server, opts RouterOptions) (*echo.Echo, error) {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	if opts.BodyLimit == "" {
		opts.BodyLimit = "12M"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewRequestValidator()
	e.HTTPErrorHandler = ErrorHandler(log)

	e.Use(middleware.Recover())
	e.Use(RequestID(log))
	e.Use(RequestLogger(log))
	e.Use(middleware.BodyLimit(opts.BodyLimit))

	e.GET("/health", func(c echo.Context) error {
		if opts.Health != nil {
			if err := opts.Health(c.Request().Context()); err != nil {
				log.Warn(c.Request().Context(), "health check failed", err)
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	if len(opts.SpecYAML) > 0 {
		e.GET("/openapi.yaml", func(c echo.Context) error {
			return c.Blob(http.StatusOK, "application/yaml", opts.SpecYAML)
		})
		e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.URL("/openapi.yaml")))
	}

	middlewares := []echo.MiddlewareFunc{Authenticate(opts.Auth, log)}
	if opts.Doc != nil {
		validate, err := ValidateRequest(opts.Doc)
		if err != nil {
			return nil, err
		}
		middlewares = append(middlewares, validate)
	}

	RegisterHandlers(e.Group("/api/v1", middlewares...), server)
	return e, nil
}
