// Package list реализует HTTP-обработчик для просмотра установленных
// заданий планировщика: идентификатор и время следующего срабатывания.
package list

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/task-reporter/internal/http/response"
	"github.com/magabrotheeeer/task-reporter/internal/models"
)

// Handler управляет HTTP-запросами на просмотр заданий планировщика.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс планировщика для выдачи списка заданий.
type Service interface {
	List() []models.JobInfo
}

// New создает новый Handler с переданными логгером и планировщиком.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.job.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	jobs := h.service.List()

	log.Info("jobs listed", slog.Int("count", len(jobs)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"jobs":  jobs,
		"count": len(jobs),
	}))
}
