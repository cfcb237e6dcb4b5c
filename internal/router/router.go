// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the routes,
// mapping them to their corresponding handlers
package router

import (
	"github.com/deppfellow/tat-relay/internal/handler"
	"github.com/deppfellow/tat-relay/internal/middleware"
	"github.com/deppfellow/tat-relay/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the Echo instance serving the relay.
//
// Middleware order matters:
//   - RequestID first so every later log line carries it.
//   - New Relic next, so EnhanceContext can read the transaction.
//   - RequestLogger wraps Recover so recovered panics are logged as 500s.
//   - CORS stamps every response, the 405 and error responses included.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.Secure(),
		middlewares.Global.CORS(),
	)

	registerSystemRoutes(router, s, h)
	registerTaskRoutes(router, h)

	return router
}
