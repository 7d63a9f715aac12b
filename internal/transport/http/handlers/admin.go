package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/go-online-store/auth-service/internal/transport/http/response"
)

type usersView struct {
	Success bool       `json:"success"`
	Users   []userView `json:"users"`
}

// ListUsers — GET /admin/users (за ролевым гейтом).
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		response.WriteError(w, err)
		return
	}

	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, newUserView(&users[i]))
	}

	response.WriteJSON(w, http.StatusOK, usersView{Success: true, Users: views})
}

// UserByID — GET /admin/users/{id} (за ролевым гейтом).
func (h *Handlers) UserByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteMessage(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.svc.AccountByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, profileView{Success: true, User: newUserView(user)})
}
