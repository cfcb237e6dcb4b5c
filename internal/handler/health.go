package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/tat-relay/internal/errs"
	"github.com/deppfellow/tat-relay/internal/middleware"
	"github.com/deppfellow/tat-relay/internal/server"
	"github.com/labstack/echo/v4"
)

// HealthHandler reports whether the relay can reach its dependencies.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth runs the configured checks and returns 200 when all pass,
// 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	healthCfg := h.server.Config.Observability.HealthChecks

	checks := make(map[string]any, len(healthCfg.Checks))
	isHealthy := true

	for _, name := range healthCfg.Checks {
		check, ok := h.checkFor(name)
		if !ok {
			continue
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), healthCfg.Timeout)
		checkStart := time.Now()
		err := check(ctx)
		cancel()

		if err != nil {
			isHealthy = false
			checks[name] = map[string]any{
				"status":        "unhealthy",
				"response_time": time.Since(checkStart).String(),
				"error":         err.Error(),
			}

			logger.Error().
				Err(err).
				Str("check", name).
				Dur("response_time", time.Since(checkStart)).
				Msg("health check failed")

			if app := h.server.LoggerService.GetApplication(); app != nil {
				app.RecordCustomEvent("HealthCheckError", map[string]any{
					"check_type":       name,
					"operation":        "health_check",
					"response_time_ms": time.Since(checkStart).Milliseconds(),
					"error_message":    err.Error(),
				})
			}
			continue
		}

		checks[name] = map[string]any{
			"status":        "healthy",
			"response_time": time.Since(checkStart).String(),
		}
	}

	response := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) checkFor(name string) (func(ctx context.Context) error, bool) {
	switch name {
	case "airtable":
		return func(ctx context.Context) error {
			if !h.server.Config.Airtable.HasAPIKey() {
				return errs.NewConfigError()
			}
			return h.server.Airtable.Ping(ctx)
		}, true
	default:
		return nil, false
	}
}
