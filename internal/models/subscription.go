// Package models содержит доменные структуры подписки магазина,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Статусы подписки магазина. Доступ к закрытым разделам открывают
// только StatusTrial и StatusActive.
const (
	SubscriptionInactive  = "inactive"
	SubscriptionTrial     = "trial"
	SubscriptionActive    = "active"
	SubscriptionSuspended = "suspended"
)

// SubscriptionGrantsAccess проверяет, открывает ли статус доступ
// к подписочным разделам.
func SubscriptionGrantsAccess(status string) bool {
	return status == SubscriptionTrial || status == SubscriptionActive
}

// Subscription представляет собой запись подписки администратора магазина.
// TrialEndsAt заполнен только для статуса trial, PlanName и PlanPrice —
// после оплаты тарифа.
type Subscription struct {
	ID              int        // Идентификатор записи
	UserUID         string     // Владелец подписки (client_admin)
	Status          string     // Один из статусов Subscription*
	PlanName        string     // Название тарифа
	PlanPrice       int        // Цена тарифа за месяц
	TrialEndsAt     *time.Time // Дата окончания пробного периода
	PaymentProofKey string     // Ключ файла с подтверждением оплаты
	UpdatedAt       time.Time  // Дата последнего изменения
}

// Plan описывает тариф подписки.
type Plan struct {
	Name          string `json:"name"`
	Price         int    `json:"price"`
	CounterMonths int    `json:"counter_months"`
}
