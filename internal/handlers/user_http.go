package handlers

import (
	"net/http"

	"bugtracker/internal/gateway"
)

// UserHTTP is read-only: accounts are managed by the identity provider.
type UserHTTP struct {
	gw gateway.Gateway
}

func NewUserHTTP(gw gateway.Gateway) *UserHTTP {
	return &UserHTTP{gw: gw}
}

// GET /api/users (admin)
func (h *UserHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := h.gw.ListUsers(r.Context())
		reply(w, http.StatusOK, users, err)
	}
}

// GET /api/users/me
func (h *UserHTTP) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := h.gw.GetUser(r.Context(), actorOf(r).UserID)
		reply(w, http.StatusOK, u, err)
	}
}

// GET /api/users/{id}
func (h *UserHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		u, err := h.gw.GetUser(r.Context(), id)
		reply(w, http.StatusOK, u, err)
	}
}
