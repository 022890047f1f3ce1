// Package window содержит расчёт отчётного окна для подписки.
package window

import (
	"time"

	"github.com/magabrotheeeer/task-reporter/internal/models"
)

// Compute возвращает границы отчётного окна [start, end] для подписки
// с заданной частотой. Конец окна — дата исполнения now, начало зависит
// от частоты: сутки, неделя или 30 дней назад ("monthly" — фиксированные
// 30 дней, без учёта календарной длины месяца). Начало окна никогда
// не раньше даты начала подписки subStart. Неизвестная частота даёт
// окно от subStart.
func Compute(frequency string, subStart, now time.Time) (start, end time.Time) {
	end = truncateToDay(now)

	switch frequency {
	case models.FrequencyDaily:
		start = end.AddDate(0, 0, -1)
	case models.FrequencyWeekly:
		start = end.AddDate(0, 0, -7)
	case models.FrequencyMonthly:
		start = end.AddDate(0, 0, -30)
	default:
		start = truncateToDay(subStart)
	}

	if start.Before(truncateToDay(subStart)) {
		start = truncateToDay(subStart)
	}
	return start, end
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
