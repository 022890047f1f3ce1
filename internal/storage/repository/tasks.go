package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/task-reporter/internal/models"
)

// CreateTask вставляет новую задачу и возвращает её ID.
func (s *Storage) CreateTask(ctx context.Context, task models.Task) (int, error) {
	const op = "storage.CreateTask"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO tasks (title, description, start_date, due_date,
			      completion_date, status, user_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		task.Title, task.Description, task.StartDate, task.DueDate,
		task.CompletionDate, task.Status, task.UserID).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadTask возвращает задачу пользователя по её ID.
func (s *Storage) ReadTask(ctx context.Context, id, userID int) (*models.Task, error) {
	const op = "storage.ReadTask"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, description, start_date, due_date, completion_date, status, user_id
			  FROM tasks
			  WHERE id = $1 AND user_id = $2`
	row := s.DB.QueryRowContext(ctx, query, id, userID)

	task, err := scanTask(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return task, nil
}

// UpdateTask обновляет заголовок и описание задачи, отсутствующие поля
// сохраняют прежние значения. Возвращает количество изменённых строк.
func (s *Storage) UpdateTask(ctx context.Context, id, userID int, title, description *string) (int, error) {
	const op = "storage.UpdateTask"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE tasks
			  SET title = COALESCE($1, title),
			      description = COALESCE($2, description)
			  WHERE id = $3 AND user_id = $4`
	result, err := s.DB.ExecContext(ctx, query, title, description, id, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveTask удаляет задачу пользователя по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveTask(ctx context.Context, id, userID int) (int, error) {
	const op = "storage.RemoveTask"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	result, err := s.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListTasks возвращает список задач пользователя с учётом фильтров по статусу и датам.
func (s *Storage) ListTasks(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error) {
	const op = "storage.ListTasks"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, description, start_date, due_date, completion_date, status, user_id
			  FROM tasks
			  WHERE user_id = $1
			    AND ($2::text IS NULL OR status = $2)
			    AND ($3::date IS NULL OR start_date >= $3)
			    AND ($4::date IS NULL OR due_date <= $4)
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, filter.UserID, filter.Status, filter.StartDate, filter.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Task
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, task)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListTasksDueBetween возвращает задачи пользователя со сроком исполнения
// в диапазоне [start, end] включительно. Используется при построении отчётов.
func (s *Storage) ListTasksDueBetween(ctx context.Context, userID int, start, end time.Time) ([]*models.Task, error) {
	const op = "storage.ListTasksDueBetween"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, description, start_date, due_date, completion_date, status, user_id
			  FROM tasks
			  WHERE user_id = $1
			    AND due_date >= $2
			    AND due_date <= $3
			  ORDER BY due_date, id`
	rows, err := s.DB.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Task
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, task)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveTasksInRange удаляет задачи пользователя, у которых start_date >= start
// и due_date <= end, и возвращает удалённые записи в порядке возрастания ID.
func (s *Storage) RemoveTasksInRange(ctx context.Context, userID int, start, end time.Time) ([]*models.Task, error) {
	const op = "storage.RemoveTasksInRange"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `WITH removed AS (
			      DELETE FROM tasks
			      WHERE user_id = $1
			        AND start_date >= $2
			        AND due_date <= $3
			      RETURNING id, title, description, start_date, due_date, completion_date, status, user_id
			  )
			  SELECT id, title, description, start_date, due_date, completion_date, status, user_id
			  FROM removed
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Task
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, task)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanTask(scan func(dest ...any) error) (*models.Task, error) {
	var task models.Task
	var completionDate sql.NullTime
	if err := scan(&task.ID, &task.Title, &task.Description, &task.StartDate,
		&task.DueDate, &completionDate, &task.Status, &task.UserID); err != nil {
		return nil, err
	}
	if completionDate.Valid {
		task.CompletionDate = &completionDate.Time
	}
	return &task, nil
}
