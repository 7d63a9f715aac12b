package models

import (
	"time"

	"github.com/google/uuid"
)

// Роли пользователей. RoleCustomer назначается при регистрации;
// RoleAdmin выдаётся вне этого сервиса (напрямую в БД или админ-инструментом).
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User — учётная запись магазина.
//
// RefreshToken — единственный действующий refresh-токен пользователя
// (пустая строка, если сессии нет). Перезаписывается при каждом
// login/register, очищается при logout. Предъявленный refresh-токен,
// не совпадающий с этим значением, недействителен независимо от подписи.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	Address      string
	Role         string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
