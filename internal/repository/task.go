package repository

import (
	"context"
	"encoding/json"

	"github.com/deppfellow/tat-relay/internal/lib/airtable"
	"github.com/deppfellow/tat-relay/internal/model"
)

// statusField is the Airtable column holding a task's status.
const statusField = "Status"

// RecordUpdater is the slice of the Airtable client the task repository needs.
type RecordUpdater interface {
	UpdateRecord(ctx context.Context, recordID string, fields airtable.Fields) (json.RawMessage, error)
}

// TaskRepository reads and writes task records.
type TaskRepository struct {
	records RecordUpdater
}

func NewTaskRepository(records RecordUpdater) *TaskRepository {
	return &TaskRepository{records: records}
}

// UpdateStatus writes status into the task's Status field and returns the
// updated record as the store returned it. Errors come from the Airtable
// client unchanged.
func (r *TaskRepository) UpdateStatus(ctx context.Context, taskID string, status model.TaskStatus) (json.RawMessage, error) {
	return r.records.UpdateRecord(ctx, taskID, airtable.Fields{
		statusField: string(status),
	})
}
