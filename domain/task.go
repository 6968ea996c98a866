package domain

// Task is a todo item owned by a user.
type Task struct {
	ID        int    `json:"id"`
	UserID    int    `json:"user_id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Completed
}

// CountCompleted returns how many of the tasks are completed.
func CountCompleted(tasks []Task) int {
	completed := 0
	for i := range tasks {
		if tasks[i].Completed {
			completed++
		}
	}
	return completed
}

// CompletionPercentage returns 100 * completed / total, computed from the
// integer counts. An empty slice yields exactly 0.
func CompletionPercentage(tasks []Task) float64 {
	if len(tasks) == 0 {
		return 0
	}
	return float64(CountCompleted(tasks)) / float64(len(tasks)) * 100
}
