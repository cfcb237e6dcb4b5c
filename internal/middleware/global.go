package middleware

import (
	"net/http"

	"github.com/deppfellow/tat-relay/internal/errs"
	"github.com/deppfellow/tat-relay/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// CORS header values. The relay is called cross-origin from a browser
// dashboard, so any origin is allowed.
const (
	CORSAllowOrigin  = "*"
	CORSAllowMethods = "POST, OPTIONS"
	CORSAllowHeaders = "Content-Type, Authorization"
)

// GlobalMiddlewares groups "global" middleware and the global error handler.
type GlobalMiddlewares struct {
	server *server.Server
}

// NewGlobalMiddlewares constructs the middleware bundle.
func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// CORS stamps Access-Control-Allow-Origin on every response, errors
// included. The header is set before the handler runs so whatever writes
// the response (handler, error handler, recover) carries it.
//
// Echo's CORS middleware is not used: it answers preflights with 204 and
// only emits headers when the request carries an allowed Origin.
// Preflights are answered by handler.Preflight.
func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(echo.HeaderAccessControlAllowOrigin, CORSAllowOrigin)
			return next(c)
		}
	}
}

// RequestLogger returns Echo's request logger middleware with a zerolog sink.
//
// It produces one "API" log line per request, with severity based on status.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := v.Status

			// When a handler returns an error, the response is written later
			// by GlobalErrorHandler, so v.Status may still read 200.
			// Reference: https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
			if v.Error != nil {
				statusCode = toHTTPError(v.Error).Status
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

// Recover turns handler panics into errors, which GlobalErrorHandler
// answers with a 500 INTERNAL_ERROR.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisablePrintStack: true,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			GetLogger(c).Error().
				Err(err).
				Bytes("stack", stack).
				Msg("recovered from panic")
			return err
		},
	})
}

// Secure returns Echo's secure headers middleware.
func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// GlobalErrorHandler is the final error funnel for the entire HTTP server.
//
// Every error ends up here as an *errs.HTTPError and is written as
// {"error": ..., "details"?: ...}. The original error is logged with the
// request-scoped logger; it never reaches the client.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	httpErr := toHTTPError(err)

	logger := GetLogger(c)

	var e *zerolog.Event
	if httpErr.Status >= http.StatusInternalServerError {
		e = logger.Error().Stack()
	} else {
		e = logger.Warn()
	}

	e.Err(err).
		Int("status", httpErr.Status).
		Str("error_code", string(httpErr.Kind)).
		Msg(httpErr.Message)

	if c.Response().Committed {
		return
	}

	if writeErr := c.JSON(httpErr.Status, httpErr); writeErr != nil {
		logger.Error().Err(writeErr).Msg("failed to write error response")
	}
}

// toHTTPError classifies any error into the taxonomy.
//
// Echo's own errors come from routing (405, 404) or from its middleware;
// anything unrecognized is an internal error.
func toHTTPError(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var echoErr *echo.HTTPError
	if !errors.As(err, &echoErr) {
		return errs.NewInternalServerError(err)
	}

	switch {
	case echoErr.Code == http.StatusMethodNotAllowed:
		return errs.NewMethodNotAllowedError()
	case echoErr.Code == http.StatusNotFound:
		return errs.NewNotFoundError()
	case echoErr.Code >= http.StatusInternalServerError:
		return errs.NewInternalServerError(err)
	}

	message, ok := echoErr.Message.(string)
	if !ok {
		message = http.StatusText(echoErr.Code)
	}

	return &errs.HTTPError{
		Kind:    errs.Kind(errs.MakeUpperCaseWithUnderscores(http.StatusText(echoErr.Code))),
		Message: message,
		Status:  echoErr.Code,
		Err:     err,
	}
}
