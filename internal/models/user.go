// Package models содержит доменную модель пользователя маркетплейса,
// включающую данные учётной записи, роль и хэш пароля.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Роли пользователей маркетплейса. Подписочный гейтинг действует
// только для RoleClientAdmin (администратор магазина).
const (
	RoleSuperAdmin           = "super_admin"
	RoleClientAdmin          = "client_admin"
	RoleClient               = "client"
	RoleAgent                = "agent"
	RoleDigitalMarketerAdmin = "digital_marketer_admin"
)

// SelfServiceRole сообщает, доступна ли роль при самостоятельной регистрации.
// super_admin и digital_marketer_admin заводятся только вручную.
func SelfServiceRole(role string) bool {
	switch role {
	case RoleClient, RoleClientAdmin, RoleAgent:
		return true
	}
	return false
}

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта
	Username     string    // Имя пользователя (уникальное)
	Phone        string    // Телефон, обязателен для агентов и админских логинов
	PasswordHash string    // Хэш пароля пользователя
	Role         string    // Одна из ролей Role*
	AuthProvider string    // Провайдер аутентификации, по умолчанию "local"
	Latitude     *float64  // Геолокация магазина, заполняется для client_admin
	Longitude    *float64
	CreatedAt    time.Time // Дата создания учётной записи
}
