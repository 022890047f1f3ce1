// Package models содержит доменные структуры, описывающие задачи пользователя,
// а также вспомогательные типы для работы с данными из внешних источников (например, JSON-запросы).
package models

import "time"

// Статусы задачи. В хранилище статус не ограничен перечислением,
// значения ниже — те, что понимает фильтрация и отчёты.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
	StatusOverdue   = "Overdue"
)

// Task представляет собой основную модель задачи,
// используемую в бизнес-логике и хранилище.
// Все даты хранятся в формате time.Time, поле CompletionDate может быть nil —
// это означает, что задача ещё не завершена.
type Task struct {
	ID             int        // Идентификатор задачи
	Title          string     // Заголовок задачи
	Description    string     // Описание (опционально)
	StartDate      time.Time  // Дата начала
	DueDate        time.Time  // Дата завершения по плану
	CompletionDate *time.Time // Фактическая дата завершения, nil если не завершена
	Status         string     // Статус: Pending, Completed, Overdue
	UserID         int        // Идентификатор владельца
}

// DummyTask используется для приёма данных из JSON-запроса,
// прежде чем конвертировать их в Task.
// Даты приходят в виде строк, чтобы их можно было валидировать и парсить вручную.
type DummyTask struct {
	Title          string `json:"title" validate:"required"`                                     // Заголовок
	Description    string `json:"description,omitempty" validate:"omitempty"`                    // Описание (опционально)
	StartDate      string `json:"start_date" validate:"required,datetime=2006-01-02"`            // Дата начала в формате 2006-01-02
	DueDate        string `json:"due_date" validate:"required,datetime=2006-01-02"`              // Дата завершения в формате 2006-01-02
	CompletionDate string `json:"completion_date,omitempty" validate:"omitempty,datetime=2006-01-02"` // Дата фактического завершения (опционально)
	Status         string `json:"status" validate:"required"`                                    // Статус задачи
}

// DummyTaskUpdate используется для приёма данных запроса на обновление задачи.
// Обновляются только заголовок и описание, отсутствующие поля сохраняют значения.
type DummyTaskUpdate struct {
	Title       *string `json:"title,omitempty"`       // Новый заголовок (опционально)
	Description *string `json:"description,omitempty"` // Новое описание (опционально)
}

// TaskFilter представляет параметры фильтрации, которые передаются в слой доступа к данным
// при выборке задач пользователя.
type TaskFilter struct {
	UserID    int        // Идентификатор владельца
	Status    *string    // Статус (nil, если фильтра по статусу нет)
	StartDate *time.Time // Нижняя граница start_date (применяется только вместе с EndDate)
	EndDate   *time.Time // Верхняя граница due_date
}
