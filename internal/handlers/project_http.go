package handlers

import (
	"context"
	"net/http"

	"bugtracker/internal/gateway"
	"bugtracker/internal/models"
	"bugtracker/internal/service"
)

type ProjectHTTP struct {
	svc *service.ProjectService
}

func NewProjectHTTP(svc *service.ProjectService) *ProjectHTTP {
	return &ProjectHTTP{svc: svc}
}

// GET /api/projects (admin)
func (h *ProjectHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.svc.ListAll(r.Context(), actorOf(r))
		reply(w, http.StatusOK, items, err)
	}
}

// GET /api/projects/user/{userId}
func (h *ProjectHTTP) ListForUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "userId")
		if !ok {
			return
		}
		items, err := h.svc.ListForUser(r.Context(), actorOf(r), id)
		reply(w, http.StatusOK, items, err)
	}
}

// GET /api/projects/{id}
func (h *ProjectHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		p, err := h.svc.Get(r.Context(), id)
		reply(w, http.StatusOK, p, err)
	}
}

// POST /api/projects
func (h *ProjectHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in gateway.ProjectInput
		if !decode(w, r, &in) {
			return
		}
		p, err := h.svc.Create(r.Context(), actorOf(r), in.Name, in.Description)
		reply(w, http.StatusCreated, p, err)
	}
}

// PUT /api/projects/{id}
func (h *ProjectHTTP) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var in gateway.ProjectInput
		if !decode(w, r, &in) {
			return
		}
		p, err := h.svc.Update(r.Context(), actorOf(r), id, in.Name, in.Description)
		reply(w, http.StatusOK, p, err)
	}
}

// DELETE /api/projects/{id} (admin)
func (h *ProjectHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		reply(w, http.StatusNoContent, nil, h.svc.Delete(r.Context(), actorOf(r), id))
	}
}

// POST /api/projects/{id}/members/{userId} (admin)
func (h *ProjectHTTP) AddMember() http.HandlerFunc {
	return h.member(h.svc.AddMember)
}

// DELETE /api/projects/{id}/members/{userId} (admin)
func (h *ProjectHTTP) RemoveMember() http.HandlerFunc {
	return h.member(h.svc.RemoveMember)
}

func (h *ProjectHTTP) member(op func(ctx context.Context, a models.Actor, projectID, userID int64) (*models.Project, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		uid, ok := pathID(w, r, "userId")
		if !ok {
			return
		}
		p, err := op(r.Context(), actorOf(r), id, uid)
		reply(w, http.StatusOK, p, err)
	}
}
