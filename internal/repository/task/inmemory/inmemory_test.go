package inmemory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"taskManager/internal/models/task"
	"taskManager/internal/repository"
	"taskManager/internal/repository/task/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask(owner, title string) *task.Task {
	return &task.Task{
		Title:       title,
		Description: "Описание " + title,
		Status:      task.StatusPending,
		Priority:    task.PriorityLow,
		DueDate:     "2030-01-01",
		Owner:       owner,
	}
}

func TestTaskStorage_HealthCheck(t *testing.T) {
	storage := inmemory.NewTaskStorage()
	assert.NoError(t, storage.HealthCheck(context.Background()))
}

func TestTaskStorage_Create(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	taskToCreate := newTask("owner-1", "Test Task")
	require.NoError(t, storage.Create(ctx, taskToCreate))

	assert.NotEmpty(t, taskToCreate.ID)
	assert.False(t, taskToCreate.CreatedAt.IsZero())
	assert.Equal(t, taskToCreate.CreatedAt, taskToCreate.UpdatedAt)

	retrieved, err := storage.GetByID(ctx, taskToCreate.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test Task", retrieved.Title)
	assert.Equal(t, "owner-1", retrieved.Owner)
}

func TestTaskStorage_Create_DuplicateID(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	first := newTask("owner-1", "first")
	first.ID = "fixed"
	require.NoError(t, storage.Create(ctx, first))

	second := newTask("owner-1", "second")
	second.ID = "fixed"
	assert.ErrorIs(t, storage.Create(ctx, second), repository.ErrAlreadyExists)
}

func TestTaskStorage_GetByID_NotFound(t *testing.T) {
	_, err := inmemory.NewTaskStorage().GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTaskStorage_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	created := newTask("owner-1", "original")
	require.NoError(t, storage.Create(ctx, created))
	created.Title = "changed outside"

	got, err := storage.GetByID(ctx, created.ID)
	require.NoError(t, err)
	got.Title = "changed again"

	again, err := storage.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", again.Title)
}

func TestTaskStorage_Update(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	created := newTask("owner-1", "before")
	require.NoError(t, storage.Create(ctx, created))

	update := *created
	update.Title = "after"
	update.Status = task.StatusCompleted
	update.Owner = "someone-else"
	require.NoError(t, storage.Update(ctx, &update))

	got, err := storage.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)
	assert.Equal(t, task.StatusCompleted, got.Status)
	assert.Equal(t, "owner-1", got.Owner)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
	assert.False(t, got.UpdatedAt.Before(created.UpdatedAt))

	missing := newTask("owner-1", "ghost")
	missing.ID = "missing"
	assert.ErrorIs(t, storage.Update(ctx, missing), repository.ErrNotFound)
}

func TestTaskStorage_ListByOwner(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	for i := 0; i < 3; i++ {
		require.NoError(t, storage.Create(ctx, newTask("owner-1", fmt.Sprintf("mine-%d", i))))
	}
	require.NoError(t, storage.Create(ctx, newTask("owner-2", "theirs")))

	mine, err := storage.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, mine, 3)
	for i, got := range mine {
		assert.Equal(t, fmt.Sprintf("mine-%d", i), got.Title)
	}

	none, err := storage.ListByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestTaskStorage_Delete(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	keep := newTask("owner-1", "keep")
	drop := newTask("owner-1", "drop")
	require.NoError(t, storage.Create(ctx, keep))
	require.NoError(t, storage.Create(ctx, drop))

	require.NoError(t, storage.Delete(ctx, drop.ID))
	assert.ErrorIs(t, storage.Delete(ctx, drop.ID), repository.ErrNotFound)

	_, err := storage.GetByID(ctx, drop.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	left, err := storage.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, keep.ID, left[0].ID)
}

func TestTaskStorage_Concurrent(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tk := newTask("owner-1", fmt.Sprintf("task-%d", i))
			if err := storage.Create(ctx, tk); err == nil {
				_, _ = storage.ListByOwner(ctx, "owner-1")
			}
		}(i)
	}
	wg.Wait()

	all, err := storage.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, all, 50)
}
