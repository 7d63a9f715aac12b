// response стандартизирует JSON-ответы HTTP-слоя.
// Ошибки отдаются в стабильной машиночитаемой форме
// {"success": false, "message": ...}; для просроченного access-токена
// добавляется дискриминатор {"expired": true} — по нему клиент понимает,
// что нужен /auth/refresh, а не повторный логин.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-online-store/auth-service/internal/service"
	"github.com/pribylovaa/go-online-store/auth-service/internal/storage"
)

// ErrorResponse — единый формат ошибки для фронта.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Expired bool   `json:"expired,omitempty"`
}

// WriteJSON — единый ответ JSON с нужным Content-Type.
func WriteJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// WriteError маппит ошибку сервисного слоя в HTTP-статус и унифицированное
// тело. Неизвестные ошибки становятся 500 без утечки деталей.
func WriteError(w http.ResponseWriter, err error) {
	status, resp := toHTTP(err)
	WriteJSON(w, status, resp)
}

// WriteMessage пишет произвольную ошибку транспортного уровня
// (например, «token not provided») с заданным статусом.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Success: false, Message: message})
}

func toHTTP(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, service.ErrEmptyField):
		return http.StatusBadRequest, fail("all required fields must be filled")
	case errors.Is(err, service.ErrInvalidEmail):
		return http.StatusBadRequest, fail("invalid email format")
	case errors.Is(err, service.ErrWeakPassword):
		return http.StatusBadRequest, fail("password is too short")
	case errors.Is(err, service.ErrPasswordMismatch):
		return http.StatusBadRequest, fail("passwords do not match")
	case errors.Is(err, service.ErrSamePassword):
		return http.StatusBadRequest, fail("new password must differ from current")
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusBadRequest, fail("email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, fail("invalid credentials")
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized, ErrorResponse{Success: false, Message: "token expired", Expired: true}
	case errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenRevoked):
		return http.StatusUnauthorized, fail("invalid token")
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, fail("user not found")
	default:
		return http.StatusInternalServerError, fail("internal error")
	}
}

func fail(message string) ErrorResponse {
	return ErrorResponse{Success: false, Message: message}
}
