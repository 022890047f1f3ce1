package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/task-reporter/internal/models"
)

// CreateSubscription вставляет новую запись подписки и возвращает её ID.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_id, start_date, frequency, report_time)
			  VALUES ($1, $2, $3, $4::time)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		sub.UserID, sub.StartDate, sub.Frequency,
		sub.ReportTime.Format("15:04:05")).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetSubscriptionByUser возвращает подписку пользователя.
func (s *Storage) GetSubscriptionByUser(ctx context.Context, userID int) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, start_date, frequency, report_time::text
			  FROM subscriptions
			  WHERE user_id = $1`
	row := s.DB.QueryRowContext(ctx, query, userID)

	var result models.Subscription
	var reportTime string
	if err := row.Scan(&result.ID, &result.UserID, &result.StartDate,
		&result.Frequency, &reportTime); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	parsed, err := parseReportTime(reportTime)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result.ReportTime = parsed
	return &result, nil
}

// RemoveSubscriptionByUser удаляет подписку пользователя и возвращает её ID.
func (s *Storage) RemoveSubscriptionByUser(ctx context.Context, userID int) (int, error) {
	const op = "storage.RemoveSubscriptionByUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM subscriptions WHERE user_id = $1 RETURNING id`
	var removedID int
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&removedID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return removedID, nil
}

// ListAllSubscriptions возвращает список всех подписок.
func (s *Storage) ListAllSubscriptions(ctx context.Context) ([]*models.Subscription, error) {
	const op = "storage.ListAllSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, start_date, frequency, report_time::text
			  FROM subscriptions
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		var item models.Subscription
		var reportTime string
		if err := rows.Scan(&item.ID, &item.UserID, &item.StartDate,
			&item.Frequency, &reportTime); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		parsed, err := parseReportTime(reportTime)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		item.ReportTime = parsed
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func parseReportTime(raw string) (time.Time, error) {
	return time.Parse("15:04:05", raw)
}
