package handlers

import (
	"net/http"

	"github.com/pribylovaa/go-online-store/auth-service/internal/service"
	"github.com/pribylovaa/go-online-store/auth-service/internal/transport/http/middleware"
	"github.com/pribylovaa/go-online-store/auth-service/internal/transport/http/response"
)

type registerRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Phone           string `json:"phone,omitempty"`
	Address         string `json:"address,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register — POST /auth/register. Успешная регистрация сразу логинит.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := decodeStrict(r, &in); err != nil {
		response.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, user, err := h.svc.RegisterUser(r.Context(), service.RegisterInput{
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Email:           in.Email,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
		Phone:           in.Phone,
		Address:         in.Address,
	})
	if err != nil {
		response.WriteError(w, err)
		return
	}

	writeAuth(w, http.StatusCreated, pair, user)
}

// Login — POST /auth/login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeStrict(r, &in); err != nil {
		response.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, user, err := h.svc.LoginUser(r.Context(), in.Email, in.Password)
	if err != nil {
		response.WriteError(w, err)
		return
	}

	writeAuth(w, http.StatusOK, pair, user)
}

// Refresh — POST /auth/refresh. Выпускает только новый access-токен;
// refresh-токен остаётся прежним до следующего логина или logout.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := decodeStrict(r, &in); err != nil || in.RefreshToken == "" {
		response.WriteMessage(w, http.StatusBadRequest, "refresh token is required")
		return
	}

	accessToken, expiresAt, err := h.svc.RefreshToken(r.Context(), in.RefreshToken)
	if err != nil {
		response.WriteError(w, err)
		return
	}

	writeAccess(w, accessToken, expiresAt)
}

// Logout — POST /auth/logout (за гейтом идентичности). Идемпотентен.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		response.WriteMessage(w, http.StatusUnauthorized, "token not provided")
		return
	}

	if err := h.svc.Logout(r.Context(), userID); err != nil {
		response.WriteError(w, err)
		return
	}

	writeOK(w, "logged out")
}
