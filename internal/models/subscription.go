// Package models содержит доменную модель подписки на отчёты по задачам.
package models

import "time"

// Частоты отчётов. "monthly" считается фиксированным окном в 30 дней,
// без привязки к календарной длине месяца.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// Subscription представляет подписку пользователя на периодический отчёт.
// У пользователя может быть не более одной подписки.
// ReportTime хранит время суток, минуты и секунды всегда нулевые.
type Subscription struct {
	ID         int       // Идентификатор подписки
	UserID     int       // Идентификатор владельца
	StartDate  time.Time // Дата начала подписки
	Frequency  string    // daily, weekly, monthly
	ReportTime time.Time // Время отправки отчёта (только час)
}

// DummySubscription используется для приёма данных из JSON-запроса,
// прежде чем конвертировать их в Subscription.
// Даты и время приходят строками, чтобы их можно было валидировать и парсить вручную.
type DummySubscription struct {
	StartDate  string `json:"start_date" validate:"required"`  // Дата начала в формате 2006-01-02
	Frequency  string `json:"frequency" validate:"required"`   // daily, weekly, monthly
	ReportTime string `json:"report_time" validate:"required"` // Время отчёта в формате 15:04:05, только целый час
}

// JobInfo описывает установленное задание планировщика для выдачи наружу.
type JobInfo struct {
	ID          string    `json:"id"`            // Идентификатор задания, subscription_{id}
	NextRunTime time.Time `json:"next_run_time"` // Время следующего срабатывания
}
