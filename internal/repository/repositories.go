package repository

import (
	"github.com/deppfellow/tat-relay/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Task *TaskRepository
}

// NewRepositories constructs the repository container from the shared
// Airtable client on s.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Task: NewTaskRepository(s.Airtable),
	}
}
