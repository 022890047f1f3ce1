// Package taskreporter собирает приложение: хранилище, кеш, сервисы,
// планировщик отчётов и HTTP-сервер.
package taskreporter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/task-reporter/internal/cache"
	"github.com/magabrotheeeer/task-reporter/internal/config"
	"github.com/magabrotheeeer/task-reporter/internal/lib/jwt"
	"github.com/magabrotheeeer/task-reporter/internal/lib/sl"
	"github.com/magabrotheeeer/task-reporter/internal/lib/smtp"
	"github.com/magabrotheeeer/task-reporter/internal/migrations"
	"github.com/magabrotheeeer/task-reporter/internal/scheduler"
	authservice "github.com/magabrotheeeer/task-reporter/internal/services/auth"
	reportservice "github.com/magabrotheeeer/task-reporter/internal/services/report"
	senderservice "github.com/magabrotheeeer/task-reporter/internal/services/sender"
	subservice "github.com/magabrotheeeer/task-reporter/internal/services/subscription"
	taskservice "github.com/magabrotheeeer/task-reporter/internal/services/task"
	"github.com/magabrotheeeer/task-reporter/internal/services/undo"
	"github.com/magabrotheeeer/task-reporter/internal/storage/repository"
)

// App держит собранные зависимости приложения.
type App struct {
	server *http.Server
	sched  *scheduler.Scheduler
	logger *slog.Logger
	db     *repository.Storage
}

// New собирает приложение: подключает PostgreSQL и Redis, накатывает миграции,
// строит сервисы и маршруты, восстанавливает задания планировщика из подписок.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.NewAuthService(db, jwtMaker)

	undoStore := undo.New()
	taskService := taskservice.NewTaskService(db, cacheRedis, undoStore, logger)

	transport := smtp.NewTransport(cfg, logger)
	senderService := senderservice.NewSenderService(logger, transport)
	reportService := reportservice.NewReportService(db, db, senderService, logger)

	sched := scheduler.New(db, reportService, logger)
	subscriptionService := subservice.NewSubscriptionService(db, sched, logger)

	// Состав заданий восстанавливается из подписок, а не из таблицы заданий:
	// подписки — источник истины, расхождения после сбоя устраняются здесь.
	if err := subscriptionService.ReconcileJobs(ctx); err != nil {
		return nil, err
	}
	pruneStaleJobRecords(ctx, db, logger)
	sched.Start()

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg,
		authService, taskService, subscriptionService, senderService, sched)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		sched:  sched,
		logger: logger,
		db:     db,
	}, nil
}

// pruneStaleJobRecords удаляет записи заданий, для которых больше нет подписки.
// Такие записи остаются после сбоя между удалением подписки и записью задания.
func pruneStaleJobRecords(ctx context.Context, db *repository.Storage, logger *slog.Logger) {
	subs, err := db.ListAllSubscriptions(ctx)
	if err != nil {
		logger.Error("failed to list subscriptions for job cleanup", sl.Err(err))
		return
	}
	alive := make(map[string]struct{}, len(subs))
	for _, sub := range subs {
		alive[scheduler.JobID(sub.ID)] = struct{}{}
	}

	records, err := db.ListJobRecords(ctx)
	if err != nil {
		logger.Error("failed to list scheduler job records", sl.Err(err))
		return
	}
	for _, record := range records {
		if _, ok := alive[record.JobID]; ok {
			continue
		}
		if err := db.RemoveJob(ctx, record.JobID); err != nil {
			logger.Error("failed to remove stale job record",
				slog.String("job_id", record.JobID), sl.Err(err))
			continue
		}
		logger.Info("removed stale scheduler job record", slog.String("job_id", record.JobID))
	}
}

// Run запускает HTTP-сервер и останавливает приложение по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.sched.Stop()
		a.db.DB.Close()
		return err
	}
}
