package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/pkg/auth"
	"deliverytracker/internal/pkg/errs"
	"deliverytracker/internal/pkg/logger"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	requestIDHeader = "X-Request-Id"
	actorKey        = "actor"
)

// RequestID propagates or creates the request id and puts it on the logger.
func RequestID(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqID := c.Request().Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			c.Response().Header().Set(requestIDHeader, reqID)

			ctx := log.WithRequestID(c.Request().Context(), reqID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequestLogger logs one line per request with its status and duration.
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			ctx := log.WithFields(c.Request().Context(), map[string]any{
				"method": c.Request().Method,
				"path":   c.Path(),
			})
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			log.Info(log.WithFields(c.Request().Context(), map[string]any{
				"status":      c.Response().Status,
				"duration_ms": time.Since(start).Milliseconds(),
			}), "request.complete")
			return nil
		}
	}
}

// Authenticate requires a valid bearer token and stores the caller as a
// kernel.Actor on the echo context.
func Authenticate(cfg auth.Config, log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := auth.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return errs.NewUnauthenticatedError("missing bearer token")
			}

			claims, err := auth.ParseAccessToken(cfg, token)
			if err != nil {
				return errs.NewUnauthenticatedErrorWithCause("invalid token", err)
			}

			role, err := kernel.ParseRole(claims.Role)
			if err != nil {
				return errs.NewUnauthenticatedErrorWithCause("invalid token", err)
			}
			userID, err := kernel.UUIDFromGoogle(claims.UserID)
			if err != nil {
				return errs.NewUnauthenticatedErrorWithCause("invalid token", err)
			}
			actor, err := kernel.NewActor(userID, role)
			if err != nil {
				return errs.NewUnauthenticatedErrorWithCause("invalid token", err)
			}

			c.Set(actorKey, actor)
			ctx := log.WithActor(c.Request().Context(), userID.String(), role.String())
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// actorFrom returns the authenticated caller, or the zero Actor that every
// command rejects as unauthenticated.
func actorFrom(c echo.Context) kernel.Actor {
	actor, _ := c.Get(actorKey).(kernel.Actor)
	return actor
}

// ValidateRequest checks parameters and JSON bodies against the OpenAPI
// document. Requests for paths the document does not describe pass through.
// Multipart bodies are left to the handlers.
func ValidateRequest(doc *openapi3.T) (echo.MiddlewareFunc, error) {
	// Server URLs would make the router match on host names.
	doc.Servers = nil
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, err
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route, pathParams, err := router.FindRoute(req)
			var routeErr *routers.RouteError
			if errors.As(err, &routeErr) {
				return next(c)
			}
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
				Options: &openapi3filter.Options{
					AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
					ExcludeRequestBody: strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm),
				},
			}
			if err = openapi3filter.ValidateRequest(req.Context(), input); err != nil {
				return errs.NewValueIsInvalidErrorWithCause("request", validationCause(err))
			}
			return next(c)
		}
	}, nil
}

// validationCause drops the schema dump kin-openapi appends to errors.
func validationCause(err error) error {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		var schemaErr *openapi3.SchemaError
		if errors.As(reqErr.Err, &schemaErr) {
			field := strings.Join(schemaErr.JSONPointer(), ".")
			if reqErr.Parameter != nil {
				field = reqErr.Parameter.Name
			}
			return errors.New(strings.TrimSpace(field + " " + schemaErr.Reason))
		}
		return errors.New(reqErr.Error())
	}
	return err
}
