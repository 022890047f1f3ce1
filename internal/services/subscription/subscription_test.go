package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/task-reporter/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	args := m.Called(ctx, sub)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) GetSubscriptionByUser(ctx context.Context, userID int) (*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}
func (m *RepoMock) RemoveSubscriptionByUser(ctx context.Context, userID int) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) ListAllSubscriptions(ctx context.Context) ([]*models.Subscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

type SchedMock struct{ mock.Mock }

func (m *SchedMock) Reconcile(ctx context.Context, sub models.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}
func (m *SchedMock) Remove(ctx context.Context, subscriptionID int) error {
	return m.Called(ctx, subscriptionID).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSubscriptionService_Subscribe(t *testing.T) {
	validReq := models.DummySubscription{
		StartDate:  "2024-06-01",
		Frequency:  models.FrequencyDaily,
		ReportTime: "10:00:00",
	}

	tests := []struct {
		name       string
		req        models.DummySubscription
		setupMocks func(r *RepoMock, s *SchedMock)
		wantID     int
		wantErr    error
	}{
		{
			name: "successful subscription",
			req:  validReq,
			setupMocks: func(r *RepoMock, s *SchedMock) {
				r.On("GetSubscriptionByUser", mock.Anything, 42).
					Return(nil, sql.ErrNoRows).Once()
				r.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
					return sub.UserID == 42 &&
						sub.Frequency == models.FrequencyDaily &&
						sub.ReportTime.Hour() == 10 &&
						sub.StartDate.Format("2006-01-02") == "2024-06-01"
				})).Return(5, nil).Once()
				s.On("Reconcile", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
					return sub.ID == 5 && sub.UserID == 42
				})).Return(nil).Once()
			},
			wantID: 5,
		},
		{
			name: "already subscribed",
			req:  validReq,
			setupMocks: func(r *RepoMock, _ *SchedMock) {
				r.On("GetSubscriptionByUser", mock.Anything, 42).
					Return(&models.Subscription{ID: 5, UserID: 42}, nil).Once()
			},
			wantErr: ErrAlreadySubscribed,
		},
		{
			name: "invalid start date",
			req: models.DummySubscription{
				StartDate:  "01.06.2024",
				Frequency:  models.FrequencyDaily,
				ReportTime: "10:00:00",
			},
			setupMocks: func(_ *RepoMock, _ *SchedMock) {},
			wantErr:    ErrInvalidStartDate,
		},
		{
			name: "unknown frequency",
			req: models.DummySubscription{
				StartDate:  "2024-06-01",
				Frequency:  "hourly",
				ReportTime: "10:00:00",
			},
			setupMocks: func(_ *RepoMock, _ *SchedMock) {},
			wantErr:    ErrInvalidFrequency,
		},
		{
			name: "report time with minutes",
			req: models.DummySubscription{
				StartDate:  "2024-06-01",
				Frequency:  models.FrequencyDaily,
				ReportTime: "10:30:00",
			},
			setupMocks: func(_ *RepoMock, _ *SchedMock) {},
			wantErr:    ErrInvalidReportTime,
		},
		{
			name: "malformed report time",
			req: models.DummySubscription{
				StartDate:  "2024-06-01",
				Frequency:  models.FrequencyDaily,
				ReportTime: "10am",
			},
			setupMocks: func(_ *RepoMock, _ *SchedMock) {},
			wantErr:    ErrInvalidReportTime,
		},
		{
			name: "scheduler failure does not fail subscription",
			req:  validReq,
			setupMocks: func(r *RepoMock, s *SchedMock) {
				r.On("GetSubscriptionByUser", mock.Anything, 42).
					Return(nil, sql.ErrNoRows).Once()
				r.On("CreateSubscription", mock.Anything, mock.Anything).Return(5, nil).Once()
				s.On("Reconcile", mock.Anything, mock.Anything).
					Return(errors.New("cron error")).Once()
			},
			wantID: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			sched := new(SchedMock)
			svc := NewSubscriptionService(repo, sched, newNoopLogger())

			tt.setupMocks(repo, sched)

			id, err := svc.Subscribe(context.Background(), 42, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}

			repo.AssertExpectations(t)
			sched.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_Unsubscribe(t *testing.T) {
	t.Run("removes subscription and its job", func(t *testing.T) {
		repo := new(RepoMock)
		sched := new(SchedMock)
		svc := NewSubscriptionService(repo, sched, newNoopLogger())

		repo.On("RemoveSubscriptionByUser", mock.Anything, 42).Return(5, nil).Once()
		sched.On("Remove", mock.Anything, 5).Return(nil).Once()

		assert.NoError(t, svc.Unsubscribe(context.Background(), 42))
		repo.AssertExpectations(t)
		sched.AssertExpectations(t)
	})

	t.Run("not subscribed", func(t *testing.T) {
		repo := new(RepoMock)
		sched := new(SchedMock)
		svc := NewSubscriptionService(repo, sched, newNoopLogger())

		repo.On("RemoveSubscriptionByUser", mock.Anything, 42).
			Return(0, sql.ErrNoRows).Once()

		assert.ErrorIs(t, svc.Unsubscribe(context.Background(), 42), ErrNotSubscribed)
		sched.AssertNotCalled(t, "Remove")
	})

	t.Run("job removal failure is swallowed", func(t *testing.T) {
		repo := new(RepoMock)
		sched := new(SchedMock)
		svc := NewSubscriptionService(repo, sched, newNoopLogger())

		repo.On("RemoveSubscriptionByUser", mock.Anything, 42).Return(5, nil).Once()
		sched.On("Remove", mock.Anything, 5).Return(errors.New("cron error")).Once()

		assert.NoError(t, svc.Unsubscribe(context.Background(), 42))
	})
}

func TestSubscriptionService_ReconcileJobs(t *testing.T) {
	subs := []*models.Subscription{
		{ID: 1, UserID: 10, Frequency: models.FrequencyDaily, ReportTime: time.Date(0, 1, 1, 9, 0, 0, 0, time.UTC)},
		{ID: 2, UserID: 20, Frequency: models.FrequencyWeekly, ReportTime: time.Date(0, 1, 1, 17, 0, 0, 0, time.UTC)},
	}

	t.Run("installs a job per subscription", func(t *testing.T) {
		repo := new(RepoMock)
		sched := new(SchedMock)
		svc := NewSubscriptionService(repo, sched, newNoopLogger())

		repo.On("ListAllSubscriptions", mock.Anything).Return(subs, nil).Once()
		sched.On("Reconcile", mock.Anything, *subs[0]).Return(nil).Once()
		sched.On("Reconcile", mock.Anything, *subs[1]).Return(nil).Once()

		assert.NoError(t, svc.ReconcileJobs(context.Background()))
		sched.AssertExpectations(t)
	})

	t.Run("one failing job does not stop the rest", func(t *testing.T) {
		repo := new(RepoMock)
		sched := new(SchedMock)
		svc := NewSubscriptionService(repo, sched, newNoopLogger())

		repo.On("ListAllSubscriptions", mock.Anything).Return(subs, nil).Once()
		sched.On("Reconcile", mock.Anything, *subs[0]).Return(errors.New("cron error")).Once()
		sched.On("Reconcile", mock.Anything, *subs[1]).Return(nil).Once()

		assert.NoError(t, svc.ReconcileJobs(context.Background()))
		sched.AssertExpectations(t)
	})

	t.Run("listing failure is returned", func(t *testing.T) {
		repo := new(RepoMock)
		sched := new(SchedMock)
		svc := NewSubscriptionService(repo, sched, newNoopLogger())

		repo.On("ListAllSubscriptions", mock.Anything).
			Return(nil, errors.New("db error")).Once()

		assert.Error(t, svc.ReconcileJobs(context.Background()))
	})
}
