// Package services содержит бизнес-логику подписки магазина:
// чтение статуса, активацию тарифа и список тарифов.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/marketplace-backend/internal/models"
	"github.com/magabrotheeeer/marketplace-backend/internal/storage/repository"
)

// ErrNoSubscription возвращается, когда у пользователя нет записи подписки.
var ErrNoSubscription = errors.New("no subscription record")

// ErrUnknownPlan возвращается при активации несуществующего тарифа.
var ErrUnknownPlan = errors.New("unknown plan")

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// GetSubscriptionByUserUID возвращает подписку пользователя.
	GetSubscriptionByUserUID(ctx context.Context, userUID string) (*models.Subscription, error)
	// CreateSubscription добавляет запись подписки и возвращает её ID.
	CreateSubscription(ctx context.Context, sub models.Subscription) (int, error)
	// UpdateSubscriptionStatus обновляет запись и возвращает число изменённых строк.
	UpdateSubscriptionStatus(ctx context.Context, sub models.Subscription) (int, error)
}

// SubscriptionService реализует бизнес-логику подписки магазина.
// Статус намеренно не кешируется: каждая проверка доступа читает хранилище.
type SubscriptionService struct {
	repo SubscriptionRepository
	log  *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo: repo,
		log:  log,
	}
}

// Status возвращает запись подписки пользователя.
// Отсутствие записи возвращается как ErrNoSubscription, чтобы вызывающая
// сторона могла отличить его от сбоя хранилища.
func (s *SubscriptionService) Status(ctx context.Context, userUID string) (*models.Subscription, error) {
	sub, err := s.repo.GetSubscriptionByUserUID(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoSubscription
		}
		return nil, err
	}
	return sub, nil
}

// Activate переводит подписку в статус active по выбранному тарифу
// с приложенным подтверждением оплаты. Если записи ещё нет, она создается.
func (s *SubscriptionService) Activate(ctx context.Context, userUID, planName, proofKey string) (*models.Subscription, error) {
	plan, ok := findPlan(planName)
	if !ok {
		return nil, ErrUnknownPlan
	}

	sub := models.Subscription{
		UserUID:         userUID,
		Status:          models.SubscriptionActive,
		PlanName:        plan.Name,
		PlanPrice:       plan.Price,
		PaymentProofKey: proofKey,
	}

	count, err := s.repo.UpdateSubscriptionStatus(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("activate subscription: %w", err)
	}
	if count == 0 {
		if _, err := s.repo.CreateSubscription(ctx, sub); err != nil {
			return nil, fmt.Errorf("activate subscription: %w", err)
		}
	}

	s.log.Info("subscription activated",
		slog.String("user_uid", userUID), slog.String("plan", plan.Name))
	return &sub, nil
}

// Plans возвращает доступные тарифы подписки.
func (s *SubscriptionService) Plans() []models.Plan {
	return availablePlans()
}

func availablePlans() []models.Plan {
	return []models.Plan{
		{Name: "starter", Price: 4900, CounterMonths: 1},
		{Name: "growth", Price: 9900, CounterMonths: 1},
		{Name: "pro", Price: 19900, CounterMonths: 1},
	}
}

func findPlan(name string) (models.Plan, bool) {
	for _, p := range availablePlans() {
		if p.Name == name {
			return p, true
		}
	}
	return models.Plan{}, false
}
