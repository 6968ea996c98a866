package jsonplaceholder

import (
	"context"
	"strconv"

	"github.com/fastygo/regioncheck/domain"
	"github.com/fastygo/regioncheck/repository"
)

type taskRepository struct {
	client *Client
}

// NewTaskRepository returns an upstream-backed implementation of TaskRepository.
func NewTaskRepository(client *Client) repository.TaskRepository {
	return &taskRepository{client: client}
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	uri := r.client.baseURL + "/" + ResourceTodos
	if id, ok := filter.ByUser(); ok {
		uri += "?userId=" + strconv.Itoa(id)
	}

	var tasks []domain.Task
	err := r.client.fetch(ctx, ResourceTodos, uri, func(body []byte) error {
		var err error
		tasks, err = ParseTasks(body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
