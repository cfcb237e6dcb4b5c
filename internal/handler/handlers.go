package handler

import (
	"github.com/deppfellow/tat-relay/internal/server"
	"github.com/deppfellow/tat-relay/internal/service"
)

// Handlers groups all HTTP handlers so the router receives one value.
type Handlers struct {
	Task   *TaskHandler   // Task relays status updates and answers preflights.
	Health *HealthHandler // Health serves GET /status when enabled.
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Task:   NewTaskHandler(s, services.Task),
		Health: NewHealthHandler(s),
	}
}
