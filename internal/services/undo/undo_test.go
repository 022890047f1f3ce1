package undo

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/task-reporter/internal/models"
)

func TestStore_PutGetClear(t *testing.T) {
	store := New()

	_, ok := store.Get(1)
	assert.False(t, ok)

	store.Put(1, models.Task{ID: 10, Title: "first", UserID: 1})
	got, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, "first", got.Title)

	// новая запись вытесняет предыдущую
	store.Put(1, models.Task{ID: 11, Title: "second", UserID: 1})
	got, ok = store.Get(1)
	require.True(t, ok)
	assert.Equal(t, "second", got.Title)

	store.Clear(1)
	_, ok = store.Get(1)
	assert.False(t, ok)
}

func TestStore_SlotsAreKeyedByUser(t *testing.T) {
	store := New()

	store.Put(1, models.Task{ID: 10, Title: "mine", UserID: 1})
	store.Put(2, models.Task{ID: 20, Title: "theirs", UserID: 2})

	got, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, "mine", got.Title)

	got, ok = store.Get(2)
	require.True(t, ok)
	assert.Equal(t, "theirs", got.Title)

	store.Clear(1)
	_, ok = store.Get(1)
	assert.False(t, ok)
	_, ok = store.Get(2)
	assert.True(t, ok)
}

func TestStore_ConcurrentUsersKeepOwnSlots(t *testing.T) {
	store := New()

	const users = 50
	var wg sync.WaitGroup
	for i := 1; i <= users; i++ {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()
			store.Put(userID, models.Task{
				ID:     userID * 100,
				Title:  fmt.Sprintf("task-%d", userID),
				UserID: userID,
			})
		}(i)
	}
	wg.Wait()

	for i := 1; i <= users; i++ {
		got, ok := store.Get(i)
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("task-%d", i), got.Title)
		assert.Equal(t, i, got.UserID)
	}
}
