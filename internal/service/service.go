// service содержит бизнес-логику auth-сервиса магазина:
// регистрацию/аутентификацию покупателей, выпуск/проверку токенов,
// смену пароля и операции профиля — через интерфейсы пакета storage.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при условии,
//     что переданное хранилище (storage.Storage) потокобезопасно.
//   - Ошибки возвращаются и далее маппятся
//     транспортом на HTTP-статусы (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"

	"github.com/pribylovaa/go-online-store/auth-service/internal/cache"
	"github.com/pribylovaa/go-online-store/auth-service/internal/config"
	"github.com/pribylovaa/go-online-store/auth-service/internal/storage"
)

var (
	// ErrInvalidCredentials — пара логин/пароль неверна или пользователь не найден.
	// Сообщение одно на оба случая — различимые ответы позволяют перечислять
	// зарегистрированные email. Транспорт: HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken — токен (access/refresh) некорректен по формату/подписи.
	// Транспорт: HTTP 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк. Отдельный от ErrInvalidToken
	// исход: клиенту по истёкшему access-токену стоит сходить в /auth/refresh,
	// а по битому — логиниться заново. Транспорт: HTTP 401 (+ флаг expired).
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenRevoked — refresh-токен не совпадает с сохранённым в записи
	// пользователя (перезаписан новым логином или очищен logout).
	// Транспорт: HTTP 401.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrEmailTaken — e-mail уже занят другим пользователем.
	// Транспорт: HTTP 400.
	ErrEmailTaken = errors.New("email already taken")

	// ErrInvalidEmail — e-mail имеет некорректный формат.
	// Транспорт: HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль короче минимальной длины.
	// Транспорт: HTTP 400.
	ErrWeakPassword = errors.New("password is too short")

	// ErrEmptyField — не заполнено обязательное поле.
	// Транспорт: HTTP 400.
	ErrEmptyField = errors.New("required field is empty")

	// ErrPasswordMismatch — пароль и подтверждение не совпадают.
	// Транспорт: HTTP 400.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrSamePassword — новый пароль совпадает с текущим.
	// Транспорт: HTTP 400.
	ErrSamePassword = errors.New("new password must differ from current")

	// ErrUserNotFound — пользователь исчез между выпуском токена и запросом.
	// Транспорт: HTTP 404.
	ErrUserNotFound = errors.New("user not found")
)

// Service описывает бизнес-логику auth-сервиса.
type Service struct {
	storage storage.Storage
	cfg     config.AuthConfig
	roles   cache.RoleCache // может быть nil, если кэш не сконфигурирован
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, cfg config.AuthConfig) *Service {
	return &Service{
		storage: storage,
		cfg:     cfg,
	}
}

// SetRoleCache устанавливает кэш ролей (опционально).
func (s *Service) SetRoleCache(c cache.RoleCache) {
	s.roles = c
}
