// Package reject реализует HTTP-обработчик отклонения документа.
// Доступен только супер-администратору; причина отклонения обязательна.
package reject

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/marketplace-backend/internal/http/response"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
	services "github.com/magabrotheeeer/marketplace-backend/internal/services/document"
	"github.com/magabrotheeeer/marketplace-backend/internal/storage/repository"
)

// Request — входные данные для отклонения документа.
type Request struct {
	Reason string `json:"reason" validate:"required"`
}

// Handler обрабатывает HTTP-запросы отклонения документов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс отклонения документа.
type Service interface {
	Reject(ctx context.Context, id int, reason string) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Отклонение документа
// @Description Отклоняет документ в статусе pending с обязательной причиной. Решение терминально.
// @Tags Documents
// @Accept  json
// @Produce  json
// @Param id path int true "ID документа"
// @Param request body Request true "Причина отклонения"
// @Success 200 {object} response.Response "Документ отклонён"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 404 {object} response.ErrorResponse "Документ не найден"
// @Failure 409 {object} response.ErrorResponse "Решение уже принято"
// @Failure 422 {object} response.ErrorResponse "Пустая причина"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /business-documents/{id}/reject [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.document.reject"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.Reject(r.Context(), id, req.Reason); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			log.Error("document not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("document not found"))
		case errors.Is(err, services.ErrAlreadyDecided):
			log.Error("document already decided", slog.Int("id", id))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("document already approved or rejected"))
		case errors.Is(err, services.ErrEmptyReason):
			log.Error("empty rejection reason", slog.Int("id", id))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("rejection reason must not be empty"))
		default:
			log.Error("failed to reject document", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to reject document"))
		}
		return
	}

	log.Info("document rejected", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":     id,
		"status": "rejected",
	}))
}
