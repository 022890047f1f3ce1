// Package test реализует HTTP-обработчик для отправки проверочного письма.
// Используется для диагностики SMTP-настроек без оформления подписки.
package test

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/task-reporter/internal/http/response"
	"github.com/magabrotheeeer/task-reporter/internal/lib/sl"
)

// Handler управляет HTTP-запросами на отправку проверочного письма.
type Handler struct {
	log       *slog.Logger
	service   Service
	recipient string
}

// Service описывает интерфейс отправки проверочного письма.
type Service interface {
	SendTestEmail(to string) error
}

// New создает новый Handler. recipient — адрес получателя проверочных писем.
func New(log *slog.Logger, service Service, recipient string) *Handler {
	return &Handler{
		log:       log,
		service:   service,
		recipient: recipient,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.email.test"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := h.service.SendTestEmail(h.recipient); err != nil {
		log.Error("failed to send test email", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to send test email: "+err.Error()))
		return
	}

	log.Info("test email sent", slog.String("to", h.recipient))
	render.JSON(w, r, response.OKWithMessage("test email sent"))
}
