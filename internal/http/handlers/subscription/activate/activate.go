// Package activate реализует HTTP-обработчик активации подписки.
//
// Запрос приходит как multipart/form-data: выбранный тариф и файл
// с подтверждением оплаты. Файл сохраняется в файловое хранилище,
// ключ попадает в запись подписки.
package activate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/marketplace-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/response"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
	services "github.com/magabrotheeeer/marketplace-backend/internal/services/subscription"
)

// maxProofSize ограничивает размер подтверждения оплаты.
const maxProofSize = 10 << 20

// Handler обрабатывает HTTP-запросы активации подписки.
type Handler struct {
	log     *slog.Logger
	service Service
	files   FileStore
}

// Service описывает интерфейс активации подписки.
type Service interface {
	Activate(ctx context.Context, userUID, planName, proofKey string) (*models.Subscription, error)
}

// FileStore описывает интерфейс сохранения файла подтверждения.
type FileStore interface {
	Save(r io.Reader, originalName string) (string, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, files FileStore) *Handler {
	return &Handler{
		log:     log,
		service: service,
		files:   files,
	}
}

// ServeHTTP godoc
// @Summary Активация подписки
// @Description Активирует подписку по выбранному тарифу с приложенным подтверждением оплаты.
// @Tags Subscription
// @Accept  multipart/form-data
// @Produce  json
// @Param plan formData string true "Название тарифа"
// @Param proof formData file true "Подтверждение оплаты"
// @Success 200 {object} response.Response "Подписка активирована"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 422 {object} response.ErrorResponse "Неизвестный тариф"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /subscriptions/activate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.activate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid is missing in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := r.ParseMultipartForm(maxProofSize); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	planName := r.FormValue("plan")
	if planName == "" {
		log.Error("plan is missing")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("field plan is a required field"))
		return
	}

	file, header, err := r.FormFile("proof")
	if err != nil {
		log.Error("payment proof is missing", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("field proof is a required field"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	proofKey, err := h.files.Save(file, header.Filename)
	if err != nil {
		log.Error("failed to save payment proof", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to save payment proof"))
		return
	}

	sub, err := h.service.Activate(r.Context(), userUID, planName, proofKey)
	if err != nil {
		if errors.Is(err, services.ErrUnknownPlan) {
			log.Error("unknown plan", slog.String("plan", planName))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("unknown plan"))
			return
		}
		log.Error("failed to activate subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to activate subscription"))
		return
	}

	log.Info("subscription activated", slog.String("plan", sub.PlanName))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"status":   sub.Status,
		"planName": sub.PlanName,
	}))
}
