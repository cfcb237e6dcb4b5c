package service

import (
	"github.com/deppfellow/tat-relay/internal/repository"
	"github.com/deppfellow/tat-relay/internal/server"
)

type Services struct {
	Task *TaskService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Task: NewTaskService(s.Config.Airtable, repos.Task),
	}, nil
}
