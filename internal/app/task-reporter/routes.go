// Package taskreporter предоставляет маршруты для основного приложения.
package taskreporter

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/magabrotheeeer/task-reporter/internal/config"
	emailtest "github.com/magabrotheeeer/task-reporter/internal/http/handlers/email/test"
	"github.com/magabrotheeeer/task-reporter/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/task-reporter/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/task-reporter/internal/http/handlers/health"
	joblist "github.com/magabrotheeeer/task-reporter/internal/http/handlers/job/list"
	"github.com/magabrotheeeer/task-reporter/internal/http/handlers/subscription/subscribe"
	"github.com/magabrotheeeer/task-reporter/internal/http/handlers/subscription/unsubscribe"
	"github.com/magabrotheeeer/task-reporter/internal/http/handlers/task/batchremove"
	"github.com/magabrotheeeer/task-reporter/internal/http/handlers/task/create"
	tasklist "github.com/magabrotheeeer/task-reporter/internal/http/handlers/task/list"
	"github.com/magabrotheeeer/task-reporter/internal/http/handlers/task/read"
	"github.com/magabrotheeeer/task-reporter/internal/http/handlers/task/remove"
	"github.com/magabrotheeeer/task-reporter/internal/http/handlers/task/undodelete"
	"github.com/magabrotheeeer/task-reporter/internal/http/handlers/task/update"
	"github.com/magabrotheeeer/task-reporter/internal/http/middlewarectx"
	"github.com/magabrotheeeer/task-reporter/internal/scheduler"
	authservice "github.com/magabrotheeeer/task-reporter/internal/services/auth"
	senderservice "github.com/magabrotheeeer/task-reporter/internal/services/sender"
	subservice "github.com/magabrotheeeer/task-reporter/internal/services/subscription"
	taskservice "github.com/magabrotheeeer/task-reporter/internal/services/task"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	authService *authservice.AuthService,
	taskService *taskservice.TaskService,
	subscriptionService *subservice.SubscriptionService,
	senderService *senderservice.SenderService,
	sched *scheduler.Scheduler,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	// Открытые конечные точки
	r.Post("/signup", register.New(logger, authService).ServeHTTP)
	r.Post("/signin", login.New(logger, authService).ServeHTTP)
	r.Get("/jobs", joblist.New(logger, sched).ServeHTTP)
	r.Get("/test-email", emailtest.New(logger, senderService, cfg.TestRecipient).ServeHTTP)
	r.Get("/health", health.New(logger).ServeHTTP)

	// Группа с JWT аутентификацией
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.JWTMiddleware(authService, logger))
		r.Use(middlewarectx.RateLimitMiddleware(logger))
		r.Post("/tasks", create.New(logger, taskService).ServeHTTP)
		r.Get("/tasks", tasklist.New(logger, taskService).ServeHTTP)
		// Статический маршрут должен стоять раньше параметрического {id}.
		r.Delete("/tasks/batch-delete", batchremove.New(logger, taskService).ServeHTTP)
		r.Post("/tasks/undo-delete", undodelete.New(logger, taskService).ServeHTTP)
		r.Get("/tasks/{id}", read.New(logger, taskService).ServeHTTP)
		r.Put("/tasks/{id}", update.New(logger, taskService).ServeHTTP)
		r.Delete("/tasks/{id}", remove.New(logger, taskService).ServeHTTP)
		r.Post("/subscribe", subscribe.New(logger, subscriptionService).ServeHTTP)
		r.Delete("/unsubscribe", unsubscribe.New(logger, subscriptionService).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
}
