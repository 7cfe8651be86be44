package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/marketplace-backend/internal/http/response"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
	subservice "github.com/magabrotheeeer/marketplace-backend/internal/services/subscription"
)

// Пути, на которые гейтинг отправляет администратора магазина.
const (
	PathActivation = "/subscription/activate"
	PathRenewal    = "/subscription/renew"
)

// SubscriptionStatusProvider возвращает запись подписки пользователя.
type SubscriptionStatusProvider interface {
	Status(ctx context.Context, userUID string) (*models.Subscription, error)
}

// SubscriptionGuard создает middleware подписочного гейтинга закрытого раздела.
// Гейтинг действует только для роли client_admin, остальные роли проходят
// без обращения к хранилищу. Отсутствие записи или статус inactive отправляют
// на активацию, suspended — на продление; trial и active открывают доступ.
// Сбой чтения статуса трактуется как отсутствие данных о подписке.
func SubscriptionGuard(log *slog.Logger, subService SubscriptionStatusProvider, area string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SubscriptionGuard"

			role, _ := r.Context().Value(Role).(string)
			if role != models.RoleClientAdmin {
				next.ServeHTTP(w, r)
				return
			}

			log := log.With(slog.String("op", op), slog.String("area", area))

			userUID, ok := r.Context().Value(UserUID).(string)
			if !ok || userUID == "" {
				log.Error("user identification missing")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			sub, err := subService.Status(r.Context(), userUID)
			if err != nil {
				if !errors.Is(err, subservice.ErrNoSubscription) {
					log.Error("failed to get subscription status", sl.Err(err))
				}
				http.Redirect(w, r, PathActivation, http.StatusSeeOther)
				return
			}

			switch sub.Status {
			case models.SubscriptionTrial, models.SubscriptionActive:
				next.ServeHTTP(w, r)
			case models.SubscriptionSuspended:
				http.Redirect(w, r, PathRenewal, http.StatusSeeOther)
			default:
				http.Redirect(w, r, PathActivation, http.StatusSeeOther)
			}
		})
	}
}
