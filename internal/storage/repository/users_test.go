package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/task-reporter/internal/models"
)

func TestStorage_RegisterAndGetUser(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	user := models.User{
		Username:     "reporter",
		Email:        "reporter@example.com",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
	}
	id, err := storage.RegisterUser(context.Background(), user)
	require.NoError(t, err)
	require.Greater(t, id, 0)

	byEmail, err := storage.GetUserByEmail(context.Background(), "reporter@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)
	assert.Equal(t, "reporter", byEmail.Username)
	assert.Equal(t, user.PasswordHash, byEmail.PasswordHash)

	byID, err := storage.GetUser(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, byEmail.Email, byID.Email)
	assert.Equal(t, byEmail.Username, byID.Username)
}

func TestStorage_RegisterUser_DuplicateEmail(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	user := models.User{
		Username:     "reporter",
		Email:        "dup@example.com",
		PasswordHash: "hash",
	}
	_, err := storage.RegisterUser(context.Background(), user)
	require.NoError(t, err)

	_, err = storage.RegisterUser(context.Background(), user)
	assert.Error(t, err)
}

func TestStorage_GetUser_NotFound(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	_, err := storage.GetUser(context.Background(), 9999)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = storage.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
