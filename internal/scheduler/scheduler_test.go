package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/task-reporter/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type StoreMock struct{ mock.Mock }

func (m *StoreMock) UpsertJob(ctx context.Context, jobID string, fireHour int, nextRun time.Time) error {
	return m.Called(ctx, jobID, fireHour, nextRun).Error(0)
}

func (m *StoreMock) RemoveJob(ctx context.Context, jobID string) error {
	return m.Called(ctx, jobID).Error(0)
}

type RunnerMock struct{ mock.Mock }

func (m *RunnerMock) Run(ctx context.Context, sub models.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func subAt(id, hour int) models.Subscription {
	return models.Subscription{
		ID:         id,
		UserID:     id,
		StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Frequency:  models.FrequencyDaily,
		ReportTime: time.Date(0, 1, 1, hour, 0, 0, 0, time.UTC),
	}
}

func TestJobID(t *testing.T) {
	assert.Equal(t, "subscription_7", JobID(7))
}

func TestScheduler_Reconcile(t *testing.T) {
	t.Run("installs job and persists record", func(t *testing.T) {
		store := new(StoreMock)
		runner := new(RunnerMock)
		s := New(store, runner, newNoopLogger())

		store.On("UpsertJob", mock.Anything, "subscription_1", 9,
			mock.MatchedBy(func(next time.Time) bool {
				return next.After(time.Now()) && next.Hour() == 9 && next.Minute() == 0
			})).Return(nil).Once()

		err := s.Reconcile(context.Background(), subAt(1, 9))
		assert.NoError(t, err)

		jobs := s.List()
		assert.Len(t, jobs, 1)
		assert.Equal(t, "subscription_1", jobs[0].ID)

		store.AssertExpectations(t)
	})

	t.Run("reinstall replaces the existing job", func(t *testing.T) {
		store := new(StoreMock)
		runner := new(RunnerMock)
		s := New(store, runner, newNoopLogger())

		store.On("UpsertJob", mock.Anything, "subscription_1", 9, mock.Anything).Return(nil).Once()
		store.On("UpsertJob", mock.Anything, "subscription_1", 17, mock.Anything).Return(nil).Once()

		assert.NoError(t, s.Reconcile(context.Background(), subAt(1, 9)))
		assert.NoError(t, s.Reconcile(context.Background(), subAt(1, 17)))

		jobs := s.List()
		assert.Len(t, jobs, 1)

		store.AssertExpectations(t)
	})

	t.Run("store failure does not prevent installation", func(t *testing.T) {
		store := new(StoreMock)
		runner := new(RunnerMock)
		s := New(store, runner, newNoopLogger())

		store.On("UpsertJob", mock.Anything, "subscription_1", 9, mock.Anything).
			Return(errors.New("db error")).Once()

		assert.NoError(t, s.Reconcile(context.Background(), subAt(1, 9)))
		assert.Len(t, s.List(), 1)
	})
}

func TestScheduler_Remove(t *testing.T) {
	store := new(StoreMock)
	runner := new(RunnerMock)
	s := New(store, runner, newNoopLogger())

	store.On("UpsertJob", mock.Anything, "subscription_1", 9, mock.Anything).Return(nil).Once()
	store.On("RemoveJob", mock.Anything, "subscription_1").Return(nil).Twice()

	assert.NoError(t, s.Reconcile(context.Background(), subAt(1, 9)))
	assert.NoError(t, s.Remove(context.Background(), 1))
	assert.Empty(t, s.List())

	// Повторное снятие того же задания безвредно.
	assert.NoError(t, s.Remove(context.Background(), 1))

	store.AssertExpectations(t)
}

func TestScheduler_List_SortedBySubscription(t *testing.T) {
	store := new(StoreMock)
	runner := new(RunnerMock)
	s := New(store, runner, newNoopLogger())

	store.On("UpsertJob", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	assert.NoError(t, s.Reconcile(context.Background(), subAt(3, 9)))
	assert.NoError(t, s.Reconcile(context.Background(), subAt(1, 10)))
	assert.NoError(t, s.Reconcile(context.Background(), subAt(2, 11)))

	jobs := s.List()
	assert.Equal(t, []string{"subscription_1", "subscription_2", "subscription_3"},
		[]string{jobs[0].ID, jobs[1].ID, jobs[2].ID})
}

func TestScheduler_JobRunsRunner(t *testing.T) {
	store := new(StoreMock)
	runner := new(RunnerMock)
	s := New(store, runner, newNoopLogger())

	sub := subAt(1, 9)
	store.On("UpsertJob", mock.Anything, "subscription_1", 9, mock.Anything).Return(nil).Once()
	assert.NoError(t, s.Reconcile(context.Background(), sub))

	done := make(chan struct{})
	runner.On("Run", mock.Anything, sub).Run(func(mock.Arguments) {
		close(done)
	}).Return(nil).Once()

	// Задание дергается напрямую, не дожидаясь срабатывания по расписанию.
	s.mu.Lock()
	entry := s.cron.Entry(s.entries[sub.ID])
	s.mu.Unlock()
	go entry.WrappedJob.Run()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not invoke the runner")
	}
	runner.AssertExpectations(t)
}
