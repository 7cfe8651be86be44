// Package stats реализует HTTP-обработчик статистики агента.
package stats

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/marketplace-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/response"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
	"github.com/magabrotheeeer/marketplace-backend/internal/storage/repository"
)

// Handler обрабатывает HTTP-запросы статистики агента.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс получения статистики агента.
type Service interface {
	Stats(ctx context.Context, userUID string) (*models.AgentStats, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Статистика агента
// @Description Возвращает реферальный код и агрегаты по приведённым регистрациям и начислениям.
// @Tags Agents
// @Produce  json
// @Success 200 {object} response.Response "Статистика агента"
// @Failure 404 {object} response.ErrorResponse "Профиль агента не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /agents/my-stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.agent.stats"

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

	stats, err := h.service.Stats(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Error("agent profile not found", slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("agent profile not found"))
			return
		}
		log.Error("failed to read agent stats", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read agent stats"))
		return
	}

	log.Info("agent stats returned", slog.String("referral_code", stats.ReferralCode))
	render.JSON(w, r, response.OKWithData(stats))
}
