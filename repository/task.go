package repository

import (
	"context"

	"github.com/fastygo/regioncheck/domain"
)

// TaskFilter narrows a task listing. A nil UserID lists all tasks; any
// non-nil UserID, zero included, lists only that user's tasks.
type TaskFilter struct {
	UserID *int
}

// ForUser builds a filter selecting the tasks of a single user.
func ForUser(id int) TaskFilter {
	return TaskFilter{UserID: &id}
}

// ByUser returns the selected user id, if any.
func (f TaskFilter) ByUser() (int, bool) {
	if f.UserID == nil {
		return 0, false
	}
	return *f.UserID, true
}

// TaskRepository lists tasks. A user with no tasks, including an unknown
// user, yields an empty slice rather than an error.
type TaskRepository interface {
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
}
