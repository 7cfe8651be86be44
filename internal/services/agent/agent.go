// Package services содержит бизнес-логику агентского кабинета.
package services

import (
	"context"

	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

// AgentRepository определяет методы для работы с данными агентов в хранилище.
type AgentRepository interface {
	// GetAgentStats возвращает агрегированную статистику агента.
	GetAgentStats(ctx context.Context, userUID string) (*models.AgentStats, error)
}

// AgentService отдает статистику агента для дашборда.
type AgentService struct {
	repo AgentRepository
}

// NewAgentService создает новый экземпляр AgentService.
func NewAgentService(repo AgentRepository) *AgentService {
	return &AgentService{repo: repo}
}

// Stats возвращает статистику агента по его uid.
func (s *AgentService) Stats(ctx context.Context, userUID string) (*models.AgentStats, error) {
	return s.repo.GetAgentStats(ctx, userUID)
}
