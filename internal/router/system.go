package router

import (
	"github.com/deppfellow/tat-relay/internal/handler"
	"github.com/deppfellow/tat-relay/internal/server"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers endpoints that are not part of the relay
// itself. The health endpoint is opt-in: while it is off, GET is a 405
// like every other method besides POST and OPTIONS.
func registerSystemRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers) {
	if !s.Config.Observability.HealthChecks.Enabled {
		return
	}

	r.GET("/status", h.Health.CheckHealth)
}
