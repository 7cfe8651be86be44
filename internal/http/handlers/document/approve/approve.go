// Package approve реализует HTTP-обработчик утверждения документа.
// Доступен только супер-администратору; решение терминально.
package approve

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/marketplace-backend/internal/http/response"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
	services "github.com/magabrotheeeer/marketplace-backend/internal/services/document"
	"github.com/magabrotheeeer/marketplace-backend/internal/storage/repository"
)

// Handler обрабатывает HTTP-запросы утверждения документов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс утверждения документа.
type Service interface {
	Approve(ctx context.Context, id int) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Утверждение документа
// @Description Утверждает документ, находящийся в статусе pending. Решение терминально.
// @Tags Documents
// @Produce  json
// @Param id path int true "ID документа"
// @Success 200 {object} response.Response "Документ утверждён"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Документ не найден"
// @Failure 409 {object} response.ErrorResponse "Решение уже принято"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /business-documents/{id}/approve [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.document.approve"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid document id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid document id"))
		return
	}

	if err := h.service.Approve(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			log.Error("document not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("document not found"))
		case errors.Is(err, services.ErrAlreadyDecided):
			log.Error("document already decided", slog.Int("id", id))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("document already approved or rejected"))
		default:
			log.Error("failed to approve document", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to approve document"))
		}
		return
	}

	log.Info("document approved", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":     id,
		"status": "approved",
	}))
}
