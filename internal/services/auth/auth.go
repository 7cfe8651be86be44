// Package services содержит логику бизнес-уровня для регистрации,
// входа и выхода пользователей маркетплейса.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/password"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

// Ошибки бизнес-уровня аутентификации.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRoleNotAllowed     = errors.New("role is not available for self-service registration")
	ErrTokenRevoked       = errors.New("token revoked")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его uid.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByUsername возвращает пользователя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// AgentRepository сохраняет профиль агента при регистрации с ролью agent.
type AgentRepository interface {
	CreateAgentProfile(ctx context.Context, profile models.AgentProfile) error
}

// SubscriptionRepository создает запись подписки для нового администратора магазина.
type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, sub models.Subscription) (int, error)
}

// TokenRevoker помечает токены отозванными и проверяет отзыв.
type TokenRevoker interface {
	RevokeToken(ctx context.Context, token string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, token string) (bool, error)
}

// RegisterRequest содержит данные регистрации после валидации на уровне хендлера.
// Геолокация магазина заполняется только для роли client_admin,
// CommissionRate и платёжные реквизиты — только для роли agent;
// не присланные поля остаются nil/пустыми.
type RegisterRequest struct {
	Email          string
	Username       string
	Password       string
	Phone          string
	Role           string
	Latitude       *float64
	Longitude      *float64
	CommissionRate *float64
	PayoutMethod   string
	PayoutNumber   string
}

// LoginRequest содержит учётные данные входа. Username и Phone
// присылаются только в админском и агентском потоках.
type LoginRequest struct {
	Email        string
	Password     string
	AuthProvider string
	Role         string
	Username     string
	Phone        string
}

// AuthResult — пользователь и выданный токен, возвращаемые login и register.
type AuthResult struct {
	User  *models.User
	Token string
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users         UserRepository
	agents        AgentRepository
	subscriptions SubscriptionRepository
	tokens        TokenRevoker
	jwtMaker      jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, agents AgentRepository,
	subscriptions SubscriptionRepository, tokens TokenRevoker, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:         users,
		agents:        agents,
		subscriptions: subscriptions,
		tokens:        tokens,
		jwtMaker:      jwtMaker,
	}
}

// Register создает нового пользователя по одной из трёх веток самостоятельной
// регистрации: client, client_admin или agent. Для client_admin создается
// пробная подписка магазина, для agent — профиль с реферальным кодом.
// Возвращает пользователя и токен, как и Login.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if !models.SelfServiceRole(req.Role) {
		return nil, ErrRoleNotAllowed
	}
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Email:        req.Email,
		Username:     req.Username,
		Phone:        req.Phone,
		PasswordHash: hashed,
		Role:         req.Role,
		AuthProvider: "local",
	}
	if req.Role == models.RoleClientAdmin {
		user.Latitude = req.Latitude
		user.Longitude = req.Longitude
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.UID = uid

	switch req.Role {
	case models.RoleClientAdmin:
		trialEnd := time.Now().UTC().AddDate(0, 0, 14)
		sub := models.Subscription{
			UserUID:     uid,
			Status:      models.SubscriptionTrial,
			TrialEndsAt: &trialEnd,
		}
		if _, err := s.subscriptions.CreateSubscription(ctx, sub); err != nil {
			return nil, fmt.Errorf("create trial subscription: %w", err)
		}
	case models.RoleAgent:
		rate := 0.1 // ставка по умолчанию, если не согласована индивидуально
		if req.CommissionRate != nil {
			rate = *req.CommissionRate
		}
		profile := models.AgentProfile{
			UserUID:        uid,
			ReferralCode:   newReferralCode(),
			CommissionRate: rate,
			PayoutMethod:   req.PayoutMethod,
			PayoutNumber:   req.PayoutNumber,
		}
		if err := s.agents.CreateAgentProfile(ctx, profile); err != nil {
			return nil, fmt.Errorf("create agent profile: %w", err)
		}
	}

	token, err := s.jwtMaker.GenerateToken(user.Username, user.Role, user.UID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: &user, Token: token}, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
// Клиенты входят по email; в админском и агентском потоках пользователь
// ищется по username, а присланный телефон сверяется с учётной записью.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	var user *models.User
	var err error
	if req.Username != "" {
		user, err = s.users.GetUserByUsername(ctx, req.Username)
	} else {
		user, err = s.users.GetUserByEmail(ctx, req.Email)
	}
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if req.Phone != "" && user.Phone != "" && req.Phone != user.Phone {
		return nil, ErrInvalidCredentials
	}
	token, err := s.jwtMaker.GenerateToken(user.Username, user.Role, user.UID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Logout отзывает токен до конца его срока жизни. Просроченный токен
// отзывать не нужно, выход считается успешным.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil
		}
		return err
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	return s.tokens.RevokeToken(ctx, token, ttl)
}

// ValidateToken проверяет JWT и отзыв токена и возвращает информацию
// о пользователе. Отозванный токен возвращает ErrTokenRevoked.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.tokens.IsTokenRevoked(ctx, token)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return &models.User{
		Username: claims.Username,
		Role:     claims.Role,
		UID:      claims.UserUID,
	}, nil
}

func newReferralCode() string {
	return "REF-" + strings.ToUpper(uuid.New().String()[:8])
}
