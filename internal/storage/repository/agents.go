package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

// CreateAgentProfile сохраняет профиль агента с комиссией и реквизитами выплат.
func (s *Storage) CreateAgentProfile(ctx context.Context, profile models.AgentProfile) error {
	const op = "storage.CreateAgentProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO agent_profiles (user_uid, referral_code, commission_rate,
			      payout_method, payout_number)
			  VALUES ($1, $2, $3, $4, $5)`
	_, err := s.DB.ExecContext(ctx, query,
		profile.UserUID, profile.ReferralCode, profile.CommissionRate,
		nullString(profile.PayoutMethod), nullString(profile.PayoutNumber))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetAgentStats возвращает агрегированную статистику агента для дашборда.
func (s *Storage) GetAgentStats(ctx context.Context, userUID string) (*models.AgentStats, error) {
	const op = "storage.GetAgentStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.referral_code,
			      COUNT(r.id),
			      COUNT(r.id) FILTER (WHERE r.active),
			      COALESCE(SUM(r.commission_amount), 0),
			      COALESCE(SUM(r.commission_amount) FILTER (WHERE r.paid_out), 0)
			  FROM agent_profiles p
			  LEFT JOIN agent_referrals r ON r.agent_uid = p.user_uid
			  WHERE p.user_uid = $1
			  GROUP BY p.referral_code`
	row := s.DB.QueryRowContext(ctx, query, userUID)

	var stats models.AgentStats
	if err := row.Scan(&stats.ReferralCode, &stats.ReferralsTotal, &stats.SignupsActive,
		&stats.EarningsTotal, &stats.EarningsPaid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &stats, nil
}
