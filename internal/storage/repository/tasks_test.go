package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/task-reporter/internal/models"
)

func TestStorage_CreateAndReadTask(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userID := factory.CreateUser(t, "testuser")

	task := GetTestTask(userID)
	id, err := storage.CreateTask(context.Background(), task)
	require.NoError(t, err)
	require.Greater(t, id, 0)

	got, err := storage.ReadTask(context.Background(), id, userID)
	require.NoError(t, err)
	assert.Equal(t, task.Title, got.Title)
	assert.Equal(t, task.Description, got.Description)
	assert.Equal(t, task.Status, got.Status)
	assert.Equal(t, userID, got.UserID)
	assert.Nil(t, got.CompletionDate)

	// Чужая задача недоступна.
	otherID := factory.CreateUser(t, "otheruser")
	_, err = storage.ReadTask(context.Background(), id, otherID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStorage_UpdateTask(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userID := factory.CreateUser(t, "testuser")
	id, err := storage.CreateTask(context.Background(), GetTestTask(userID))
	require.NoError(t, err)

	newTitle := "Updated title"
	count, err := storage.UpdateTask(context.Background(), id, userID, &newTitle, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := storage.ReadTask(context.Background(), id, userID)
	require.NoError(t, err)
	assert.Equal(t, "Updated title", got.Title)
	// Описание не передавалось и должно остаться прежним.
	assert.Equal(t, "Quarterly summary", got.Description)

	count, err = storage.UpdateTask(context.Background(), 9999, userID, &newTitle, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStorage_RemoveTask(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userID := factory.CreateUser(t, "testuser")
	id, err := storage.CreateTask(context.Background(), GetTestTask(userID))
	require.NoError(t, err)

	count, err := storage.RemoveTask(context.Background(), id, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = storage.RemoveTask(context.Background(), id, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStorage_ListTasks(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userID := factory.CreateUser(t, "testuser")
	otherID := factory.CreateUser(t, "otheruser")

	june1 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	june10 := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	july1 := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	july10 := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)

	factory.CreateTask(t, userID, "june pending", june1, june10, models.StatusPending)
	factory.CreateTask(t, userID, "june completed", june1, june10, models.StatusCompleted)
	factory.CreateTask(t, userID, "july pending", july1, july10, models.StatusPending)
	factory.CreateTask(t, otherID, "foreign task", june1, june10, models.StatusCompleted)

	t.Run("without filters returns all own tasks", func(t *testing.T) {
		tasks, err := storage.ListTasks(context.Background(), models.TaskFilter{UserID: userID})
		require.NoError(t, err)
		assert.Len(t, tasks, 3)
	})

	t.Run("status filter excludes other statuses and other users", func(t *testing.T) {
		status := models.StatusCompleted
		tasks, err := storage.ListTasks(context.Background(),
			models.TaskFilter{UserID: userID, Status: &status})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "june completed", tasks[0].Title)
	})

	t.Run("date range filter", func(t *testing.T) {
		start := june1
		end := june10
		tasks, err := storage.ListTasks(context.Background(),
			models.TaskFilter{UserID: userID, StartDate: &start, EndDate: &end})
		require.NoError(t, err)
		assert.Len(t, tasks, 2)
	})
}

func TestStorage_ListTasksDueBetween(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userID := factory.CreateUser(t, "testuser")

	june1 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	factory.CreateTask(t, userID, "due june 9", june1, time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC), models.StatusPending)
	factory.CreateTask(t, userID, "due june 10", june1, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), models.StatusPending)
	factory.CreateTask(t, userID, "due june 11", june1, time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC), models.StatusPending)

	// Границы окна включительные с обеих сторон.
	tasks, err := storage.ListTasksDueBetween(context.Background(), userID,
		time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "due june 9", tasks[0].Title)
	assert.Equal(t, "due june 10", tasks[1].Title)
}

func TestStorage_RemoveTasksInRange(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userID := factory.CreateUser(t, "testuser")
	otherID := factory.CreateUser(t, "otheruser")

	june1 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	june10 := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	july1 := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	july10 := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)

	first := factory.CreateTask(t, userID, "first", june1, june10, models.StatusPending)
	second := factory.CreateTask(t, userID, "second", june1, june10, models.StatusPending)
	kept := factory.CreateTask(t, userID, "outside range", july1, july10, models.StatusPending)
	foreign := factory.CreateTask(t, otherID, "foreign", june1, june10, models.StatusPending)

	removed, err := storage.RemoveTasksInRange(context.Background(), userID, june1, june10)
	require.NoError(t, err)
	require.Len(t, removed, 2)
	// Записи возвращаются по возрастанию ID, последняя — с наибольшим.
	assert.Equal(t, first, removed[0].ID)
	assert.Equal(t, second, removed[1].ID)

	_, err = storage.ReadTask(context.Background(), kept, userID)
	assert.NoError(t, err)
	_, err = storage.ReadTask(context.Background(), foreign, otherID)
	assert.NoError(t, err)

	removed, err = storage.RemoveTasksInRange(context.Background(), userID, june1, june10)
	require.NoError(t, err)
	assert.Empty(t, removed)
}
