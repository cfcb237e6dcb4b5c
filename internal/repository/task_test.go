package repository_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/deppfellow/tat-relay/internal/lib/airtable"
	"github.com/deppfellow/tat-relay/internal/model"
	"github.com/deppfellow/tat-relay/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecords struct {
	recordID string
	fields   airtable.Fields
	err      error
}

func (f *fakeRecords) UpdateRecord(_ context.Context, recordID string, fields airtable.Fields) (json.RawMessage, error) {
	f.recordID = recordID
	f.fields = fields
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{"id":"` + recordID + `"}`), nil
}

func TestUpdateStatusWritesStatusField(t *testing.T) {
	records := &fakeRecords{}
	repo := repository.NewTaskRepository(records)

	record, err := repo.UpdateStatus(context.Background(), "rec9", model.StatusInProgress)
	require.NoError(t, err)

	assert.Equal(t, "rec9", records.recordID)
	assert.Equal(t, airtable.Fields{"Status": "In Progress"}, records.fields)
	assert.JSONEq(t, `{"id":"rec9"}`, string(record))
}

func TestUpdateStatusPassesErrorsThrough(t *testing.T) {
	apiErr := &airtable.APIError{StatusCode: 422, Body: `{}`}
	repo := repository.NewTaskRepository(&fakeRecords{err: apiErr})

	_, err := repo.UpdateStatus(context.Background(), "rec9", model.StatusBlocked)
	assert.True(t, errors.Is(err, apiErr))
}
