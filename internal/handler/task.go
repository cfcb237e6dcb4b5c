package handler

import (
	"net/http"

	"github.com/deppfellow/tat-relay/internal/middleware"
	"github.com/deppfellow/tat-relay/internal/model"
	"github.com/deppfellow/tat-relay/internal/server"
	"github.com/deppfellow/tat-relay/internal/service"
	"github.com/labstack/echo/v4"
)

// TaskHandler serves task status updates.
type TaskHandler struct {
	Handler
	taskService *service.TaskService
}

func NewTaskHandler(s *server.Server, taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{
		Handler:     NewHandler(s),
		taskService: taskService,
	}
}

// UpdateStatus decodes {taskId, status}, validates it and relays the new
// status to the record store. The path is ignored.
func (h *TaskHandler) UpdateStatus() echo.HandlerFunc {
	return Handle(
		h.Handler,
		func(c echo.Context, req *model.UpdateTaskStatusRequest) (*model.UpdateTaskStatusResponse, error) {
			return h.taskService.UpdateStatus(c.Request().Context(), req)
		},
		http.StatusOK,
		func() *model.UpdateTaskStatusRequest { return &model.UpdateTaskStatusRequest{} },
	)
}

// Preflight answers CORS preflight requests with 200 and an empty body.
// Access-Control-Allow-Origin is already set by the CORS middleware.
func (h *TaskHandler) Preflight(c echo.Context) error {
	header := c.Response().Header()
	header.Set(echo.HeaderAccessControlAllowMethods, middleware.CORSAllowMethods)
	header.Set(echo.HeaderAccessControlAllowHeaders, middleware.CORSAllowHeaders)

	return c.NoContent(http.StatusOK)
}
