// Package services содержит бизнес-логику подписок на периодические отчёты
// и согласование заданий планировщика с их текущим составом.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/task-reporter/internal/lib/sl"
	"github.com/magabrotheeeer/task-reporter/internal/models"
)

// Ошибки уровня бизнес-логики подписок.
var (
	// ErrAlreadySubscribed возвращается при попытке оформить вторую подписку.
	ErrAlreadySubscribed = errors.New("user already has an active subscription")
	// ErrNotSubscribed возвращается при отписке без активной подписки.
	ErrNotSubscribed = errors.New("user has no active subscription")
	// ErrInvalidFrequency возвращается при неизвестной частоте отчётов.
	ErrInvalidFrequency = errors.New("frequency must be one of: daily, weekly, monthly")
	// ErrInvalidStartDate возвращается при неверном формате даты начала.
	ErrInvalidStartDate = errors.New("start_date must be in format 2006-01-02")
	// ErrInvalidReportTime возвращается, когда время отчёта не является целым часом.
	ErrInvalidReportTime = errors.New("report_time must have zero minutes and seconds, e.g. 10:00:00")
)

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// CreateSubscription добавляет подписку и возвращает её ID.
	CreateSubscription(ctx context.Context, sub models.Subscription) (int, error)
	// GetSubscriptionByUser возвращает подписку пользователя.
	GetSubscriptionByUser(ctx context.Context, userID int) (*models.Subscription, error)
	// RemoveSubscriptionByUser удаляет подписку пользователя и возвращает её ID.
	RemoveSubscriptionByUser(ctx context.Context, userID int) (int, error)
	// ListAllSubscriptions возвращает все подписки.
	ListAllSubscriptions(ctx context.Context) ([]*models.Subscription, error)
}

// JobScheduler управляет cron-заданиями рассылки отчётов.
type JobScheduler interface {
	// Reconcile устанавливает или заменяет задание подписки.
	Reconcile(ctx context.Context, sub models.Subscription) error
	// Remove снимает задание подписки.
	Remove(ctx context.Context, subscriptionID int) error
}

// SubscriptionService реализует оформление и отмену подписок на отчёты.
type SubscriptionService struct {
	repo  SubscriptionRepository
	sched JobScheduler
	log   *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, sched JobScheduler, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:  repo,
		sched: sched,
		log:   log,
	}
}

// Subscribe оформляет подписку пользователя на отчёты и устанавливает
// задание планировщика. У пользователя может быть не более одной подписки.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID int, req models.DummySubscription) (int, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return 0, ErrInvalidStartDate
	}

	switch req.Frequency {
	case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyMonthly:
	default:
		return 0, ErrInvalidFrequency
	}

	reportTime, err := time.Parse("15:04:05", req.ReportTime)
	if err != nil {
		return 0, ErrInvalidReportTime
	}
	if reportTime.Minute() != 0 || reportTime.Second() != 0 {
		return 0, ErrInvalidReportTime
	}

	existing, err := s.repo.GetSubscriptionByUser(ctx, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	if existing != nil {
		return 0, ErrAlreadySubscribed
	}

	sub := models.Subscription{
		UserID:     userID,
		StartDate:  startDate,
		Frequency:  req.Frequency,
		ReportTime: reportTime,
	}
	id, err := s.repo.CreateSubscription(ctx, sub)
	if err != nil {
		return 0, err
	}
	sub.ID = id

	if err := s.sched.Reconcile(ctx, sub); err != nil {
		// Подписка уже сохранена; задание восстановит полная сверка при старте.
		s.log.Error("failed to install report job", slog.Int("subscription_id", id), sl.Err(err))
	}

	s.log.Info("user subscribed",
		slog.Int("user_id", userID),
		slog.Int("subscription_id", id),
		slog.String("frequency", sub.Frequency))

	return id, nil
}

// Unsubscribe отменяет подписку пользователя и снимает её задание.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID int) error {
	id, err := s.repo.RemoveSubscriptionByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotSubscribed
		}
		return err
	}

	if err := s.sched.Remove(ctx, id); err != nil {
		s.log.Error("failed to remove report job", slog.Int("subscription_id", id), sl.Err(err))
	}

	s.log.Info("user unsubscribed", slog.Int("user_id", userID), slog.Int("subscription_id", id))
	return nil
}

// ReconcileJobs приводит набор заданий планировщика в соответствие
// с подписками в хранилище. Вызывается при старте приложения.
func (s *SubscriptionService) ReconcileJobs(ctx context.Context) error {
	const op = "services.subscription.ReconcileJobs"

	subs, err := s.repo.ListAllSubscriptions(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, sub := range subs {
		if err := s.sched.Reconcile(ctx, *sub); err != nil {
			s.log.Error("failed to reconcile report job",
				slog.Int("subscription_id", sub.ID), sl.Err(err))
		}
	}

	s.log.Info("report jobs reconciled", slog.Int("count", len(subs)))
	return nil
}
