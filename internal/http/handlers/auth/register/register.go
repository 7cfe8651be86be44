// Package register реализует HTTP-обработчик регистрации пользователей.
//
// Один и тот же обработчик обслуживает три конечные точки регистрации:
// клиента, администратора магазина и агента. Роль фиксируется при
// создании обработчика, а не берется из тела запроса.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/marketplace-backend/internal/http/response"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
	services "github.com/magabrotheeeer/marketplace-backend/internal/services/auth"
)

// Request — входные данные для регистрации.
//
// Phone обязателен для агентов. Геолокация магазина принимается для
// администратора, комиссия и платёжные реквизиты — для агента; отсутствующие
// необязательные поля не подставляются нулями.
type Request struct {
	Email          string   `json:"email" validate:"required,email"`
	Username       string   `json:"username" validate:"required,min=3,max=50"`
	Password       string   `json:"password" validate:"required,min=6"`
	Phone          string   `json:"phone,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	CommissionRate *float64 `json:"commissionRate,omitempty"`
	PayoutMethod   string   `json:"payoutMethod,omitempty"`
	PayoutNumber   string   `json:"payoutNumber,omitempty"`
}

// Handler обрабатывает HTTP-запросы регистрации для фиксированной роли.
type Handler struct {
	log      *slog.Logger
	service  Service
	role     string
	validate *validator.Validate
	tokenTTL time.Duration
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, req services.RegisterRequest) (*services.AuthResult, error)
}

// New создает Handler, регистрирующий пользователей с указанной ролью.
func New(log *slog.Logger, service Service, role string, tokenTTL time.Duration) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		role:     role,
		validate: validator.New(),
		tokenTTL: tokenTTL,
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Регистрирует пользователя с ролью конечной точки: client, client_admin или agent. Возвращает пользователя и JWT, как и вход.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные регистрации"
// @Success 200 {object} response.Response "Успешная регистрация"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/register/client [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("role", h.role),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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
	if h.role == models.RoleAgent && req.Phone == "" {
		log.Error("phone is required for agents")
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("field Phone is a required field"))
		return
	}

	result, err := h.service.Register(r.Context(), services.RegisterRequest{
		Email:          req.Email,
		Username:       req.Username,
		Password:       req.Password,
		Phone:          req.Phone,
		Role:           h.role,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		CommissionRate: req.CommissionRate,
		PayoutMethod:   req.PayoutMethod,
		PayoutNumber:   req.PayoutNumber,
	})
	if err != nil {
		if errors.Is(err, services.ErrRoleNotAllowed) {
			log.Error("registration refused", sl.Err(err))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("role is not available for registration"))
			return
		}
		log.Error("registration failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to register user"))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    result.Token,
		Path:     "/",
		Expires:  time.Now().Add(h.tokenTTL),
		HttpOnly: true,
	})

	log.Info("user registered", slog.String("username", result.User.Username))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": map[string]any{
			"id":           result.User.UID,
			"email":        result.User.Email,
			"username":     result.User.Username,
			"phone":        result.User.Phone,
			"role":         result.User.Role,
			"authProvider": result.User.AuthProvider,
		},
		"token": result.Token,
	}))
}
