package handlers

import (
	"net/http"

	"github.com/pribylovaa/go-online-store/auth-service/internal/service"
	"github.com/pribylovaa/go-online-store/auth-service/internal/transport/http/middleware"
	"github.com/pribylovaa/go-online-store/auth-service/internal/transport/http/response"
)

type profileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type profileView struct {
	Success bool     `json:"success"`
	User    userView `json:"user"`
}

// Profile — GET /profile.
func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		response.WriteMessage(w, http.StatusUnauthorized, "token not provided")
		return
	}

	user, err := h.svc.ProfileByID(r.Context(), userID)
	if err != nil {
		response.WriteError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, profileView{Success: true, User: newUserView(user)})
}

// UpdateProfile — PUT /profile.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		response.WriteMessage(w, http.StatusUnauthorized, "token not provided")
		return
	}

	var in profileRequest
	if err := decodeStrict(r, &in); err != nil {
		response.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), userID, service.ProfileInput{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
	})
	if err != nil {
		response.WriteError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, profileView{Success: true, User: newUserView(user)})
}

// ChangePassword — POST /change-password.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		response.WriteMessage(w, http.StatusUnauthorized, "token not provided")
		return
	}

	var in changePasswordRequest
	if err := decodeStrict(r, &in); err != nil {
		response.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.svc.ChangePassword(r.Context(), userID, in.CurrentPassword, in.NewPassword, in.ConfirmPassword)
	if err != nil {
		response.WriteError(w, err)
		return
	}

	writeOK(w, "password changed")
}
