package router

import (
	"github.com/deppfellow/tat-relay/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerTaskRoutes mounts the relay on every path. Methods other than
// POST and OPTIONS fall through to Echo's 405 handler.
func registerTaskRoutes(r *echo.Echo, h *handler.Handlers) {
	r.POST("/*", h.Task.UpdateStatus())
	r.OPTIONS("/*", h.Task.Preflight)
}
