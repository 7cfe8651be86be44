package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

// GetSubscriptionByUserUID возвращает запись подписки администратора магазина.
// Отсутствие записи возвращается как ErrNotFound, чтобы гейт мог отличить
// "нет подписки" от ошибки хранилища.
func (s *Storage) GetSubscriptionByUserUID(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByUserUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, status, plan_name, plan_price, trial_ends_at,
			      payment_proof_key, updated_at
			  FROM shop_subscriptions
			  WHERE user_uid = $1`
	row := s.DB.QueryRowContext(ctx, query, userUID)

	var sub models.Subscription
	var planName, proofKey sql.NullString
	var planPrice sql.NullInt64
	var trialEndsAt sql.NullTime
	if err := row.Scan(&sub.ID, &sub.UserUID, &sub.Status, &planName, &planPrice,
		&trialEndsAt, &proofKey, &sub.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if planName.Valid {
		sub.PlanName = planName.String
	}
	if planPrice.Valid {
		sub.PlanPrice = int(planPrice.Int64)
	}
	if trialEndsAt.Valid {
		sub.TrialEndsAt = &trialEndsAt.Time
	}
	if proofKey.Valid {
		sub.PaymentProofKey = proofKey.String
	}
	return &sub, nil
}

// CreateSubscription вставляет новую запись подписки и возвращает её ID.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO shop_subscriptions (user_uid, status, plan_name, plan_price,
			      trial_ends_at, payment_proof_key)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		sub.UserUID, sub.Status, nullString(sub.PlanName), nullInt(sub.PlanPrice),
		sub.TrialEndsAt, nullString(sub.PaymentProofKey)).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateSubscriptionStatus обновляет статус, тариф и подтверждение оплаты
// подписки пользователя и возвращает количество изменённых строк.
func (s *Storage) UpdateSubscriptionStatus(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.UpdateSubscriptionStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE shop_subscriptions
			  SET status = $1, plan_name = $2, plan_price = $3,
			      payment_proof_key = $4, updated_at = NOW()
			  WHERE user_uid = $5`
	result, err := s.DB.ExecContext(ctx, query,
		sub.Status, nullString(sub.PlanName), nullInt(sub.PlanPrice),
		nullString(sub.PaymentProofKey), sub.UserUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(i int) any {
	if i == 0 {
		return nil
	}
	return i
}
