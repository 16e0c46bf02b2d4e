package handlers

import (
	"net/http"

	"bugtracker/internal/service"
)

type CommentHTTP struct {
	svc *service.CommentService
}

func NewCommentHTTP(svc *service.CommentService) *CommentHTTP {
	return &CommentHTTP{svc: svc}
}

type commentRequest struct {
	TicketID int64  `json:"ticketId"`
	Content  string `json:"content"`
}

// GET /api/comments/ticket/{ticketId}
func (h *CommentHTTP) ListForTicket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "ticketId")
		if !ok {
			return
		}
		items, err := h.svc.List(r.Context(), id)
		reply(w, http.StatusOK, items, err)
	}
}

// GET /api/comments/{id}
func (h *CommentHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		c, err := h.svc.Get(r.Context(), id)
		reply(w, http.StatusOK, c, err)
	}
}

// POST /api/comments
func (h *CommentHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req commentRequest
		if !decode(w, r, &req) {
			return
		}
		c, err := h.svc.Create(r.Context(), actorOf(r), req.TicketID, req.Content)
		reply(w, http.StatusCreated, c, err)
	}
}

// PUT /api/comments/{id}
func (h *CommentHTTP) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var req commentRequest
		if !decode(w, r, &req) {
			return
		}
		c, err := h.svc.Update(r.Context(), actorOf(r), id, req.Content)
		reply(w, http.StatusOK, c, err)
	}
}

// DELETE /api/comments/{id}
func (h *CommentHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		reply(w, http.StatusNoContent, nil, h.svc.Delete(r.Context(), actorOf(r), id))
	}
}
