package service

import (
	"context"
	"encoding/json"

	"github.com/deppfellow/tat-relay/internal/config"
	"github.com/deppfellow/tat-relay/internal/errs"
	"github.com/deppfellow/tat-relay/internal/lib/airtable"
	"github.com/deppfellow/tat-relay/internal/model"
	"github.com/pkg/errors"
)

// TaskStore is what TaskService needs from the repository layer.
type TaskStore interface {
	UpdateStatus(ctx context.Context, taskID string, status model.TaskStatus) (json.RawMessage, error)
}

// TaskService relays status updates to the record store.
//
// It holds no mutable state: the result depends only on the request, the
// config it was built with and the store's answer.
type TaskService struct {
	cfg   config.AirtableConfig
	tasks TaskStore
}

func NewTaskService(cfg config.AirtableConfig, tasks TaskStore) *TaskService {
	return &TaskService{
		cfg:   cfg,
		tasks: tasks,
	}
}

// UpdateStatus writes req.Status onto the task req.TaskID.
//
// req must already be validated. The credential is checked here, after
// validation and before any outbound call.
func (s *TaskService) UpdateStatus(ctx context.Context, req *model.UpdateTaskStatusRequest) (*model.UpdateTaskStatusResponse, error) {
	if !s.cfg.HasAPIKey() {
		return nil, errs.NewConfigError()
	}

	record, err := s.tasks.UpdateStatus(ctx, req.TaskID, req.Status)
	if err != nil {
		return nil, storeError(err)
	}

	return model.NewUpdateTaskStatusResponse(req.TaskID, req.Status, record), nil
}

// storeError maps a record store failure onto the error taxonomy.
func storeError(err error) error {
	var apiErr *airtable.APIError
	var reqErr *airtable.RequestError

	switch {
	case errors.As(err, &apiErr):
		return errs.NewRemoteError(apiErr.Body, err)
	case errors.Is(err, airtable.ErrMalformedResponse):
		return errs.NewRemoteParseError(err)
	case errors.As(err, &reqErr):
		return errs.NewNetworkError(err)
	default:
		return errs.NewInternalServerError(err)
	}
}
