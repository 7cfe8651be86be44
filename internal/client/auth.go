package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

// LoginParams — учётные данные входа. Username и Phone присылаются
// только в админском и агентском потоках.
type LoginParams struct {
	Email        string `json:"email,omitempty"`
	Password     string `json:"password"`
	AuthProvider string `json:"authProvider,omitempty"`
	Role         string `json:"role,omitempty"`
	Username     string `json:"username,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// RegisterParams — данные регистрации. Поля комиссии и выплат агента и
// геолокация магазина опциональны: отсутствующие значения не отправляются.
type RegisterParams struct {
	Email          string   `json:"email"`
	Username       string   `json:"username"`
	Password       string   `json:"password"`
	Phone          string   `json:"phone,omitempty"`
	Role           string   `json:"-"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	CommissionRate *float64 `json:"commissionRate,omitempty"`
	PayoutMethod   string   `json:"payoutMethod,omitempty"`
	PayoutNumber   string   `json:"payoutNumber,omitempty"`
}

// authPayload — тело успешного входа или регистрации: {user, token},
// плоское или завёрнутое в поле data.
type authPayload struct {
	User  *UserRecord `json:"user"`
	Token string      `json:"token"`
}

// authEnvelope принимает оба формата ответа: {data:{user,token}} и {user,token}.
type authEnvelope struct {
	Data *authPayload `json:"data"`
	authPayload
}

func (e *authEnvelope) payload() authPayload {
	if e.Data != nil {
		return *e.Data
	}
	return e.authPayload
}

// Login выполняет вход и сохраняет сессию. Успешный по коду ответ без
// пользователя или токена считается ошибкой и не меняет сохранённую сессию.
func (c *Client) Login(ctx context.Context, params LoginParams) (*Session, error) {
	return c.authenticate(ctx, "/api/auth/login", params)
}

// Register выполняет регистрацию с маршрутизацией по роли: клиентская,
// админская или агентская конечная точка. Успех сохраняет сессию так же,
// как вход.
func (c *Client) Register(ctx context.Context, params RegisterParams) (*Session, error) {
	path := "/api/auth/register/client"
	switch params.Role {
	case models.RoleClientAdmin:
		path = "/api/auth/register/client-admin"
		// Геолокация магазина по умолчанию — нулевая точка.
		if params.Latitude == nil {
			zero := 0.0
			params.Latitude = &zero
		}
		if params.Longitude == nil {
			zero := 0.0
			params.Longitude = &zero
		}
	case models.RoleAgent:
		path = "/api/agents/register-new"
	}
	return c.authenticate(ctx, path, params)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*Session, error) {
	const op = "client.authenticate"

	var raw json.RawMessage
	err := c.do(ctx, &request{
		method: http.MethodPost,
		path:   path,
		body:   body,
		noAuth: true,
	}, &raw)
	if err != nil {
		return nil, err
	}

	var envelope authEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrMalformedResponse)
	}
	payload := envelope.payload()
	if payload.User == nil || payload.Token == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMalformedResponse)
	}

	if err := c.store.Save(*payload.User, payload.Token); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Session{User: *payload.User, Token: payload.Token}, nil
}

// Logout отзывает токен на сервере и очищает сохранённую сессию.
// Локальная сессия очищается даже при сетевой ошибке.
func (c *Client) Logout(ctx context.Context) error {
	const op = "client.Logout"

	err := c.do(ctx, &request{
		method: http.MethodPost,
		path:   "/api/auth/logout",
	}, nil)

	if clearErr := c.store.Clear(); clearErr != nil {
		return fmt.Errorf("%s: %w", op, clearErr)
	}
	return err
}
