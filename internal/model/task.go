// Package model holds the request and response payloads of the API.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/deppfellow/tat-relay/internal/errs"
	"github.com/deppfellow/tat-relay/internal/validation"
	"github.com/pkg/errors"
)

// TaskStatus is the value of a task record's Status field.
type TaskStatus string

const (
	StatusNotStarted TaskStatus = "Not Started"
	StatusInProgress TaskStatus = "In Progress"
	StatusBlocked    TaskStatus = "Blocked"
	StatusComplete   TaskStatus = "Complete"
)

// UpdateTaskStatusRequest is the inbound body: {"taskId": "...", "status": "..."}.
type UpdateTaskStatusRequest struct {
	TaskID string     `json:"taskId" validate:"required"`
	Status TaskStatus `json:"status" validate:"required,oneof='Not Started' 'In Progress' Blocked Complete"`
}

// UnmarshalJSON reads the body leniently so a well-formed body of the wrong
// shape is a validation failure, not a decode failure:
//   - a body that is not an object leaves both fields empty;
//   - null, false, 0 and "" count as absent;
//   - a non-string status keeps its JSON text, which never matches a
//     known status;
//   - a numeric taskId keeps its JSON text, any other non-string
//     taskId counts as absent.
func (r *UpdateTaskStatusRequest) UnmarshalJSON(data []byte) error {
	*r = UpdateTaskStatusRequest{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil
		}
		return err
	}

	if raw := bytes.TrimSpace(fields["taskId"]); isPresent(raw) {
		switch raw[0] {
		case '"':
			if err := json.Unmarshal(raw, &r.TaskID); err != nil {
				return err
			}
		case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			r.TaskID = string(raw)
		}
	}

	if raw := bytes.TrimSpace(fields["status"]); isPresent(raw) {
		if raw[0] == '"' {
			if err := json.Unmarshal(raw, &r.Status); err != nil {
				return err
			}
		} else {
			r.Status = TaskStatus(raw)
		}
	}

	return nil
}

// isPresent reports whether raw holds a value other than null, false, 0
// or the empty string.
func isPresent(raw []byte) bool {
	if len(raw) == 0 {
		return false
	}

	switch raw[0] {
	case 'n', 'f':
		return false
	case '"':
		return len(raw) > 2
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		n, err := strconv.ParseFloat(string(raw), 64)
		return err != nil || n != 0
	default:
		return true
	}
}

// Validate reports a missing field before an invalid status, whatever
// order the validator visits the fields in.
func (r *UpdateTaskStatusRequest) Validate() error {
	err := validation.Struct(r)
	if err == nil {
		return nil
	}

	if validation.HasTag(err, "required") {
		return errs.NewValidationError(errs.MsgMissingFields).WithCause(err)
	}
	return errs.NewValidationError(errs.MsgInvalidStatus).WithCause(err)
}

// UpdateTaskStatusResponse is returned once the record store accepted the write.
type UpdateTaskStatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`

	// Task is the updated record exactly as the record store returned it.
	Task json.RawMessage `json:"task"`
}

// NewUpdateTaskStatusResponse builds the success body for an updated record.
func NewUpdateTaskStatusResponse(taskID string, status TaskStatus, record json.RawMessage) *UpdateTaskStatusResponse {
	return &UpdateTaskStatusResponse{
		Success: true,
		Message: fmt.Sprintf("Task %s updated to %s", taskID, status),
		Task:    record,
	}
}
