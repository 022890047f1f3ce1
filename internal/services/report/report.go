// Package services содержит построение и доставку отчётов по задачам за период подписки.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/magabrotheeeer/task-reporter/internal/lib/sl"
	"github.com/magabrotheeeer/task-reporter/internal/lib/window"
	"github.com/magabrotheeeer/task-reporter/internal/models"
)

var (
	reportsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reports_sent_total",
		Help: "Total number of task reports delivered by email.",
	})
	reportsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reports_failed_total",
		Help: "Total number of task report deliveries that failed.",
	})
)

// UserRepository определяет чтение данных пользователя для отчёта.
type UserRepository interface {
	GetUser(ctx context.Context, userID int) (*models.User, error)
}

// TaskRepository определяет выборку задач, попадающих в отчётный период.
type TaskRepository interface {
	ListTasksDueBetween(ctx context.Context, userID int, start, end time.Time) ([]*models.Task, error)
}

// Notifier отправляет готовый отчёт по электронной почте.
type Notifier interface {
	SendReport(to, subject, body string) error
}

// ReportService собирает отчёт по задачам пользователя за период,
// определяемый частотой подписки, и отправляет его по почте.
type ReportService struct {
	users    UserRepository
	tasks    TaskRepository
	notifier Notifier
	log      *slog.Logger

	now func() time.Time
}

// NewReportService создает новый экземпляр ReportService.
func NewReportService(users UserRepository, tasks TaskRepository, notifier Notifier, log *slog.Logger) *ReportService {
	return &ReportService{
		users:    users,
		tasks:    tasks,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Run строит и отправляет отчёт для одной подписки.
// Ошибка доставки логируется и возвращается, но не должна останавливать планировщик.
func (s *ReportService) Run(ctx context.Context, sub models.Subscription) error {
	const op = "services.report.Run"

	user, err := s.users.GetUser(ctx, sub.UserID)
	if err != nil {
		reportsFailed.Inc()
		return fmt.Errorf("%s: %w", op, err)
	}

	start, end := window.Compute(sub.Frequency, sub.StartDate, s.now())
	tasks, err := s.tasks.ListTasksDueBetween(ctx, sub.UserID, start, end)
	if err != nil {
		reportsFailed.Inc()
		return fmt.Errorf("%s: %w", op, err)
	}

	subject := fmt.Sprintf("Task Report for %s", user.Username)
	body := buildBody(user.Username, tasks)

	if err := s.notifier.SendReport(user.Email, subject, body); err != nil {
		reportsFailed.Inc()
		s.log.Error("failed to deliver report",
			slog.Int("user_id", sub.UserID),
			slog.Int("subscription_id", sub.ID),
			sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	reportsSent.Inc()
	s.log.Info("report delivered",
		slog.Int("user_id", sub.UserID),
		slog.String("window_start", start.Format("2006-01-02")),
		slog.String("window_end", end.Format("2006-01-02")),
		slog.Int("task_count", len(tasks)))

	return nil
}

func buildBody(username string, tasks []*models.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task Report for %s\n\n", username)

	if len(tasks) == 0 {
		b.WriteString("No tasks due in this period.\n")
		return b.String()
	}

	for _, task := range tasks {
		fmt.Fprintf(&b, "%s: %s - Status: %s\n", task.Title, task.Description, task.Status)
	}
	return b.String()
}
