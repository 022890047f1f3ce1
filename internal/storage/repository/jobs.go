package repository

import (
	"context"
	"fmt"
	"time"
)

// JobRecord описывает персистентное состояние задания планировщика.
// Это служебная запись, а не доменная сущность: источником истины для
// набора заданий остаются подписки, таблица нужна для переживания рестартов.
type JobRecord struct {
	JobID       string    // Идентификатор задания, subscription_{id}
	FireHour    int       // Час срабатывания
	NextRunTime time.Time // Расчётное время следующего срабатывания
}

// UpsertJob сохраняет или заменяет запись задания планировщика.
func (s *Storage) UpsertJob(ctx context.Context, jobID string, fireHour int, nextRun time.Time) error {
	const op = "storage.UpsertJob"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO scheduler_jobs (job_id, fire_hour, next_run_time, updated_at)
			  VALUES ($1, $2, $3, now())
			  ON CONFLICT (job_id) DO UPDATE
			  SET fire_hour = EXCLUDED.fire_hour,
			      next_run_time = EXCLUDED.next_run_time,
			      updated_at = now()`
	_, err := s.DB.ExecContext(ctx, query, jobID, fireHour, nextRun)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveJob удаляет запись задания планировщика.
func (s *Storage) RemoveJob(ctx context.Context, jobID string) error {
	const op = "storage.RemoveJob"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM scheduler_jobs WHERE job_id = $1`
	_, err := s.DB.ExecContext(ctx, query, jobID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListJobRecords возвращает все записи заданий планировщика.
func (s *Storage) ListJobRecords(ctx context.Context) ([]*JobRecord, error) {
	const op = "storage.ListJobRecords"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT job_id, fire_hour, next_run_time
			  FROM scheduler_jobs
			  ORDER BY job_id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*JobRecord
	for rows.Next() {
		var item JobRecord
		if err := rows.Scan(&item.JobID, &item.FireHour, &item.NextRunTime); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
