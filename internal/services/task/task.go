// Package services содержит бизнес-логику для управления задачами,
// включая кеширование, пакетное удаление и восстановление последней удалённой задачи.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/task-reporter/internal/models"
	"github.com/magabrotheeeer/task-reporter/internal/services/undo"
)

// Ошибки уровня бизнес-логики задач.
var (
	// ErrTaskNotFound возвращается, когда задача не существует или принадлежит другому пользователю.
	ErrTaskNotFound = errors.New("task not found")
	// ErrNoTasksInRange возвращается, когда в диапазоне пакетного удаления нет ни одной задачи.
	ErrNoTasksInRange = errors.New("no tasks found in the given date range")
	// ErrNothingToRestore возвращается, когда у пользователя нет сохранённой удалённой задачи.
	ErrNothingToRestore = errors.New("no recently deleted task to restore")
	// ErrInvalidDate возвращается при неверном формате даты в параметрах запроса.
	ErrInvalidDate = errors.New("invalid date, expected format 2006-01-02")
	// ErrIncompleteRange возвращается, когда передана только одна граница диапазона дат.
	ErrIncompleteRange = errors.New("both start_date and end_date are required")
)

// TaskRepository определяет методы для работы с задачами в хранилище.
type TaskRepository interface {
	// CreateTask добавляет новую задачу и возвращает её ID.
	CreateTask(ctx context.Context, task models.Task) (int, error)
	// ReadTask возвращает задачу по ID в рамках пользователя.
	ReadTask(ctx context.Context, id, userID int) (*models.Task, error)
	// UpdateTask обновляет заголовок и описание задачи, возвращает количество затронутых строк.
	UpdateTask(ctx context.Context, id, userID int, title, description *string) (int, error)
	// RemoveTask удаляет задачу по ID, возвращает количество удалённых строк.
	RemoveTask(ctx context.Context, id, userID int) (int, error)
	// ListTasks возвращает задачи пользователя с учётом фильтров.
	ListTasks(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error)
	// RemoveTasksInRange удаляет задачи в диапазоне дат и возвращает удалённые записи.
	RemoveTasksInRange(ctx context.Context, userID int, start, end time.Time) ([]*models.Task, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// TaskService реализует бизнес-логику работы с задачами.
type TaskService struct {
	repo  TaskRepository
	cache Cache
	undo  *undo.Store
	log   *slog.Logger
}

// NewTaskService создает новый экземпляр TaskService.
func NewTaskService(repo TaskRepository, cache Cache, undoStore *undo.Store, log *slog.Logger) *TaskService {
	return &TaskService{
		repo:  repo,
		cache: cache,
		undo:  undoStore,
		log:   log,
	}
}

// Create создает новую задачу пользователя и возвращает её ID.
func (s *TaskService) Create(ctx context.Context, userID int, req models.DummyTask) (int, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return 0, fmt.Errorf("invalid start date: %w", ErrInvalidDate)
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return 0, fmt.Errorf("invalid due date: %w", ErrInvalidDate)
	}

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   startDate,
		DueDate:     dueDate,
		Status:      req.Status,
		UserID:      userID,
	}
	if req.CompletionDate != "" {
		completionDate, err := time.Parse("2006-01-02", req.CompletionDate)
		if err != nil {
			return 0, fmt.Errorf("invalid completion date: %w", ErrInvalidDate)
		}
		task.CompletionDate = &completionDate
	}

	id, err := s.repo.CreateTask(ctx, task)
	if err != nil {
		return 0, err
	}

	s.log.Info("created new task", slog.Int("id", id), slog.Int("user_id", userID))

	task.ID = id
	cacheKey := fmt.Sprintf("task:%d:%d", userID, id)
	if err := s.cache.Set(cacheKey, task, time.Hour); err != nil {
		s.log.Warn("failed to cache task", slog.String("key", cacheKey), slog.Any("err", err))
	}

	return id, nil
}

// Read возвращает задачу по ID, используя кеш или репозиторий.
func (s *TaskService) Read(ctx context.Context, id, userID int) (*models.Task, error) {
	var result *models.Task
	cacheKey := fmt.Sprintf("task:%d:%d", userID, id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		return nil, err
	}
	if found {
		return result, nil
	}

	result, err = s.repo.ReadTask(ctx, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return result, nil
}

// Update обновляет заголовок и описание задачи и инвалидирует кеш.
func (s *TaskService) Update(ctx context.Context, id, userID int, req models.DummyTaskUpdate) error {
	count, err := s.repo.UpdateTask(ctx, id, userID, req.Title, req.Description)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrTaskNotFound
	}

	cacheKey := fmt.Sprintf("task:%d:%d", userID, id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return nil
}

// Remove удаляет задачу по ID и инвалидирует кеш.
func (s *TaskService) Remove(ctx context.Context, id, userID int) error {
	count, err := s.repo.RemoveTask(ctx, id, userID)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrTaskNotFound
	}

	cacheKey := fmt.Sprintf("task:%d:%d", userID, id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return nil
}

// List возвращает задачи пользователя с необязательными фильтрами по статусу и диапазону дат.
// Даты задают окно по планируемым срокам: start_date >= from, due_date <= to.
// Границы диапазона передаются только парой.
func (s *TaskService) List(ctx context.Context, userID int, status, startDate, endDate string) ([]*models.Task, error) {
	filter := models.TaskFilter{UserID: userID}
	if status != "" {
		filter.Status = &status
	}
	if (startDate == "") != (endDate == "") {
		return nil, ErrIncompleteRange
	}
	if startDate != "" {
		start, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start date: %w", ErrInvalidDate)
		}
		end, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end date: %w", ErrInvalidDate)
		}
		filter.StartDate = &start
		filter.EndDate = &end
	}

	return s.repo.ListTasks(ctx, filter)
}

// BatchRemove удаляет все задачи пользователя, попадающие в диапазон дат,
// и запоминает последнюю удалённую задачу для возможного восстановления.
// Возвращает количество удалённых задач.
func (s *TaskService) BatchRemove(ctx context.Context, userID int, startDate, endDate string) (int, error) {
	if startDate == "" || endDate == "" {
		return 0, ErrIncompleteRange
	}
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return 0, fmt.Errorf("invalid start date: %w", ErrInvalidDate)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return 0, fmt.Errorf("invalid end date: %w", ErrInvalidDate)
	}

	removed, err := s.repo.RemoveTasksInRange(ctx, userID, start, end)
	if err != nil {
		return 0, err
	}
	if len(removed) == 0 {
		return 0, ErrNoTasksInRange
	}

	// Запоминается только одна задача; повторное пакетное удаление затирает прежнюю.
	last := removed[len(removed)-1]
	s.undo.Put(userID, *last)

	for _, task := range removed {
		cacheKey := fmt.Sprintf("task:%d:%d", userID, task.ID)
		if err := s.cache.Invalidate(cacheKey); err != nil {
			s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), slog.Any("err", err))
		}
	}

	s.log.Info("batch removed tasks",
		slog.Int("user_id", userID),
		slog.Int("count", len(removed)),
		slog.Int("last_task_id", last.ID))

	return len(removed), nil
}

// UndoRemove восстанавливает последнюю удалённую пакетным удалением задачу.
// Задача вставляется заново и получает новый ID, после успеха слот очищается.
func (s *TaskService) UndoRemove(ctx context.Context, userID int) (*models.Task, error) {
	task, ok := s.undo.Get(userID)
	if !ok {
		return nil, ErrNothingToRestore
	}

	task.ID = 0
	id, err := s.repo.CreateTask(ctx, task)
	if err != nil {
		return nil, err
	}
	task.ID = id

	s.undo.Clear(userID)
	s.log.Info("restored deleted task", slog.Int("user_id", userID), slog.Int("new_id", id))

	return &task, nil
}
