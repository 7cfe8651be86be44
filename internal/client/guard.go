package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

// Пути, на которые перенаправляет подписочный гейт.
const (
	PathActivation = "/subscription/activate"
	PathRenewal    = "/subscription/renew"
)

// AccessDecision — решение подписочного гейта по защищённой области.
type AccessDecision struct {
	Allowed bool
	// RedirectPath заполнен, когда доступ запрещён:
	// PathActivation или PathRenewal.
	RedirectPath string
}

// subscriptionStatus — тело ответа GET /api/subscriptions/status.
type subscriptionStatus struct {
	Status string `json:"status"`
}

type statusEnvelope struct {
	Data subscriptionStatus `json:"data"`
}

// CheckAccess решает, доступна ли текущему пользователю защищённая область.
// Подписочный гейт действует только для client_admin: остальные роли
// проходят без запроса статуса. Отсутствие записи и ошибка запроса
// равнозначны отсутствию подписки и ведут на активацию; suspended — на
// продление; trial и active открывают доступ.
func (c *Client) CheckAccess(ctx context.Context) AccessDecision {
	session, ok := c.store.Current()
	if !ok {
		return AccessDecision{RedirectPath: PathActivation}
	}
	if session.User.Role != models.RoleClientAdmin {
		return AccessDecision{Allowed: true}
	}

	var envelope statusEnvelope
	err := c.do(ctx, &request{
		method: http.MethodGet,
		path:   "/api/subscriptions/status",
	}, &envelope)
	if err != nil {
		if !errors.Is(err, ErrSessionExpired) {
			c.log.Error("failed to fetch subscription status", sl.Err(err))
		}
		return AccessDecision{RedirectPath: PathActivation}
	}

	switch envelope.Data.Status {
	case models.SubscriptionTrial, models.SubscriptionActive:
		return AccessDecision{Allowed: true}
	case models.SubscriptionSuspended:
		return AccessDecision{RedirectPath: PathRenewal}
	default:
		return AccessDecision{RedirectPath: PathActivation}
	}
}
