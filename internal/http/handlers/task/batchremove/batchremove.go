// Package batchremove реализует HTTP-обработчик пакетного удаления задач
// по диапазону дат. Последняя удалённая задача сохраняется для восстановления.
package batchremove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/task-reporter/internal/http/middlewarectx"
	"github.com/magabrotheeeer/task-reporter/internal/http/response"
	"github.com/magabrotheeeer/task-reporter/internal/lib/sl"
	services "github.com/magabrotheeeer/task-reporter/internal/services/task"
)

// Handler управляет HTTP-запросами на пакетное удаление задач.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики пакетного удаления.
type Service interface {
	BatchRemove(ctx context.Context, userID int, startDate, endDate string) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.task.batchremove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := r.Context().Value(middlewarectx.UserID).(int)
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	query := r.URL.Query()
	count, err := h.service.BatchRemove(r.Context(), userID,
		query.Get("start_date"), query.Get("end_date"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrIncompleteRange), errors.Is(err, services.ErrInvalidDate):
			log.Error("invalid date range params", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, services.ErrNoTasksInRange):
			log.Error("no tasks in range")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("no tasks found in the given date range"))
		default:
			log.Error("failed to batch remove tasks", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not remove tasks"))
		}
		return
	}

	log.Info("tasks batch removed", slog.Int("count", count))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"deleted_count": count,
	}))
}
