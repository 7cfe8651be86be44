package models

import "time"

// AgentProfile представляет профиль реферального агента.
// Комиссия и платёжные реквизиты задаются при регистрации агента.
type AgentProfile struct {
	UserUID        string    // UID пользователя с ролью agent
	ReferralCode   string    // Уникальный реферальный код
	CommissionRate float64   // Ставка комиссии, доля от суммы
	PayoutMethod   string    // Способ выплаты
	PayoutNumber   string    // Номер счёта или кошелька
	CreatedAt      time.Time // Дата создания профиля
}

// AgentStats агрегированная статистика агента для дашборда.
type AgentStats struct {
	ReferralCode   string  `json:"referral_code"`
	ReferralsTotal int     `json:"referrals_total"`
	SignupsActive  int     `json:"signups_active"`
	EarningsTotal  float64 `json:"earnings_total"`
	EarningsPaid   float64 `json:"earnings_paid"`
}
