// Package scheduler управляет cron-заданиями рассылки отчётов: по одному
// заданию на подписку, срабатывающему ежедневно в выбранный час.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/magabrotheeeer/task-reporter/internal/lib/sl"
	"github.com/magabrotheeeer/task-reporter/internal/models"
)

// JobStore сохраняет установленные задания, чтобы их состав
// можно было проверить и восстановить после перезапуска.
type JobStore interface {
	UpsertJob(ctx context.Context, jobID string, fireHour int, nextRun time.Time) error
	RemoveJob(ctx context.Context, jobID string) error
}

// Runner выполняет полезную работу задания: построение и доставку отчёта.
type Runner interface {
	Run(ctx context.Context, sub models.Subscription) error
}

// Scheduler держит в памяти набор cron-заданий, по одному на подписку.
// Идентификатор задания детерминирован: subscription_{id}, поэтому
// повторная установка для той же подписки заменяет прежнее задание.
type Scheduler struct {
	cron   *cron.Cron
	store  JobStore
	runner Runner
	log    *slog.Logger

	mu      sync.Mutex
	entries map[int]cron.EntryID
}

// New создает планировщик. Паника внутри задания не роняет процесс,
// а затянувшийся запуск не накладывается на следующий.
func New(store JobStore, runner Runner, log *slog.Logger) *Scheduler {
	cl := cronLogger{log: log}
	c := cron.New(cron.WithChain(
		cron.Recover(cl),
		cron.SkipIfStillRunning(cl),
	))
	return &Scheduler{
		cron:    c,
		store:   store,
		runner:  runner,
		log:     log,
		entries: make(map[int]cron.EntryID),
	}
}

// JobID возвращает детерминированный идентификатор задания подписки.
func JobID(subscriptionID int) string {
	return fmt.Sprintf("subscription_%d", subscriptionID)
}

// Reconcile устанавливает или заменяет задание для подписки.
// Ошибка выполнения отчёта логируется и не затрагивает остальные задания.
func (s *Scheduler) Reconcile(ctx context.Context, sub models.Subscription) error {
	const op = "scheduler.Reconcile"

	hour := sub.ReportTime.Hour()
	spec := fmt.Sprintf("0 %d * * *", hour)
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[sub.ID]; ok {
		s.cron.Remove(old)
	}

	entryID, err := s.cron.AddFunc(spec, func() {
		if err := s.runner.Run(context.Background(), sub); err != nil {
			s.log.Error("report job failed",
				slog.String("job_id", JobID(sub.ID)),
				sl.Err(err))
		}
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.entries[sub.ID] = entryID

	jobID := JobID(sub.ID)
	if err := s.store.UpsertJob(ctx, jobID, hour, schedule.Next(time.Now())); err != nil {
		s.log.Warn("failed to persist job record", slog.String("job_id", jobID), sl.Err(err))
	}

	s.log.Info("job installed",
		slog.String("job_id", jobID),
		slog.Int("fire_hour", hour))
	return nil
}

// Remove снимает задание подписки. Отсутствие задания не считается ошибкой.
func (s *Scheduler) Remove(ctx context.Context, subscriptionID int) error {
	s.mu.Lock()
	if entryID, ok := s.entries[subscriptionID]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, subscriptionID)
	}
	s.mu.Unlock()

	jobID := JobID(subscriptionID)
	if err := s.store.RemoveJob(ctx, jobID); err != nil {
		s.log.Warn("failed to remove job record", slog.String("job_id", jobID), sl.Err(err))
	}

	s.log.Info("job removed", slog.String("job_id", jobID))
	return nil
}

// List возвращает установленные задания, отсортированные по идентификатору подписки.
func (s *Scheduler) List() []models.JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	jobs := make([]models.JobInfo, 0, len(ids))
	for _, id := range ids {
		entry := s.cron.Entry(s.entries[id])
		jobs = append(jobs, models.JobInfo{
			ID:          JobID(id),
			NextRunTime: entry.Next,
		})
	}
	return jobs
}

// Start запускает цикл планировщика.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop останавливает планировщик и дожидается завершения выполняющихся заданий.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// cronLogger адаптирует slog под интерфейс cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]interface{}{"error", err}, keysAndValues...)
	l.log.Error(msg, args...)
}
