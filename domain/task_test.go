package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func todos(flags ...bool) []Task {
	tasks := make([]Task, len(flags))
	for i, done := range flags {
		tasks[i] = Task{ID: i + 1, UserID: 1, Title: "task", Completed: done}
	}
	return tasks
}

func TestCompletionPercentage(t *testing.T) {
	t.Parallel()

	t.Run("empty is exactly zero", func(t *testing.T) {
		assert.Equal(t, 0.0, CompletionPercentage(nil))
		assert.Equal(t, 0.0, CompletionPercentage([]Task{}))
	})

	t.Run("none completed is exactly zero", func(t *testing.T) {
		assert.Equal(t, 0.0, CompletionPercentage(todos(false, false)))
	})

	t.Run("all completed is exactly one hundred", func(t *testing.T) {
		assert.Equal(t, 100.0, CompletionPercentage(todos(true, true, true, true)))
	})

	t.Run("two of three", func(t *testing.T) {
		assert.InDelta(t, 66.667, CompletionPercentage(todos(true, false, true)), 0.01)
	})

	t.Run("one of three", func(t *testing.T) {
		assert.InDelta(t, 100.0/3, CompletionPercentage(todos(true, false, false)), 1e-12)
	})

	t.Run("half is exactly fifty", func(t *testing.T) {
		assert.Equal(t, 50.0, CompletionPercentage(todos(true, false, true, false)))
	})
}

func TestCompletionPercentage_NoDriftOverManyTasks(t *testing.T) {
	t.Parallel()
	flags := make([]bool, 0, 300)
	for i := 0; i < 300; i++ {
		flags = append(flags, i%3 == 0)
	}
	assert.Equal(t, float64(100)/float64(300)*100, CompletionPercentage(todos(flags...)))
}

func TestCountCompleted(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, CountCompleted(nil))
	assert.Equal(t, 2, CountCompleted(todos(true, false, true)))
}

func TestTaskIsCompleted(t *testing.T) {
	t.Parallel()
	var nilTask *Task
	assert.False(t, nilTask.IsCompleted())
	assert.True(t, (&Task{Completed: true}).IsCompleted())
	assert.False(t, (&Task{}).IsCompleted())
}
