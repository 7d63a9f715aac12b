// handlers содержит REST-обработчики auth-сервиса. Обработчики тонкие:
// декодируют вход, зовут сервисный слой, сериализуют ответ; вся логика
// и маппинг ошибок — в service и response.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pribylovaa/go-online-store/auth-service/internal/models"
	"github.com/pribylovaa/go-online-store/auth-service/internal/service"
	"github.com/pribylovaa/go-online-store/auth-service/internal/transport/http/response"
)

// Handlers агрегирует зависимости обработчиков.
type Handlers struct {
	svc *service.Service
}

func New(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// userView — сериализуемое представление учётной записи.
// Хэш пароля и refresh-токен не покидают сервис.
type userView struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	Role      string `json:"role"`
	CreatedAt int64  `json:"createdAt"`
}

func newUserView(u *models.User) userView {
	return userView{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Address:   u.Address,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.Unix(),
	}
}

// authView — ответ register/login: пользователь и пара токенов.
type authView struct {
	Success         bool     `json:"success"`
	User            userView `json:"user"`
	AccessToken     string   `json:"accessToken"`
	RefreshToken    string   `json:"refreshToken"`
	AccessExpiresAt int64    `json:"accessExpiresAt"`
}

func writeAuth(w http.ResponseWriter, status int, pair *models.TokenPair, user *models.User) {
	response.WriteJSON(w, status, authView{
		Success:         true,
		User:            newUserView(user),
		AccessToken:     pair.AccessToken,
		RefreshToken:    pair.RefreshToken,
		AccessExpiresAt: pair.AccessExpiresAt.Unix(),
	})
}

// okView — пустой успешный ответ.
type okView struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func writeOK(w http.ResponseWriter, message string) {
	response.WriteJSON(w, http.StatusOK, okView{Success: true, Message: message})
}

// accessView — ответ refresh: только новый access-токен.
type accessView struct {
	Success         bool   `json:"success"`
	AccessToken     string `json:"accessToken"`
	AccessExpiresAt int64  `json:"accessExpiresAt"`
}

func writeAccess(w http.ResponseWriter, token string, expiresAt time.Time) {
	response.WriteJSON(w, http.StatusOK, accessView{
		Success:         true,
		AccessToken:     token,
		AccessExpiresAt: expiresAt.Unix(),
	})
}
