package handlers

import (
	"context"
	"net/http"

	"bugtracker/internal/gateway"
	"bugtracker/internal/models"
	"bugtracker/internal/service"
)

// TicketHTTP wires ticket endpoints to the lifecycle engine.
type TicketHTTP struct {
	svc *service.TicketService
}

func NewTicketHTTP(svc *service.TicketService) *TicketHTTP {
	return &TicketHTTP{svc: svc}
}

// GET /api/tickets (admin)
func (h *TicketHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.svc.ListAll(r.Context(), actorOf(r))
		reply(w, http.StatusOK, items, err)
	}
}

// GET /api/tickets/project/{projectId}
func (h *TicketHTTP) ListForProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "projectId")
		if !ok {
			return
		}
		items, err := h.svc.ListForProject(r.Context(), id)
		reply(w, http.StatusOK, items, err)
	}
}

// GET /api/tickets/user/{userId}
func (h *TicketHTTP) ListForUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "userId")
		if !ok {
			return
		}
		items, err := h.svc.ListForUser(r.Context(), actorOf(r), id)
		reply(w, http.StatusOK, items, err)
	}
}

// GET /api/tickets/{id}
func (h *TicketHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		t, err := h.svc.GetTicket(r.Context(), id)
		reply(w, http.StatusOK, t, err)
	}
}

// POST /api/tickets
func (h *TicketHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in gateway.TicketInput
		if !decode(w, r, &in) {
			return
		}
		t, err := h.svc.CreateTicket(r.Context(), actorOf(r), service.NewTicket{
			ProjectID:    in.ProjectID,
			Title:        in.Title,
			Description:  in.Description,
			Type:         in.Type,
			Priority:     in.Priority,
			TimeEstimate: in.TimeEstimate,
		})
		reply(w, http.StatusCreated, t, err)
	}
}

// PUT|PATCH /api/tickets/{id}
func (h *TicketHTTP) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var p gateway.TicketPatch
		if !decode(w, r, &p) {
			return
		}
		t, err := h.svc.UpdateTicket(r.Context(), actorOf(r), id, p)
		reply(w, http.StatusOK, t, err)
	}
}

// DELETE /api/tickets/{id} (admin)
func (h *TicketHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		reply(w, http.StatusNoContent, nil, h.svc.DeleteTicket(r.Context(), actorOf(r), id))
	}
}

// -----------------------------------------------------------------------------
// Lifecycle actions
// -----------------------------------------------------------------------------

// POST /api/tickets/{id}/assign/{userId}
func (h *TicketHTTP) Assign() http.HandlerFunc {
	return h.assignment(h.svc.AssignDeveloper)
}

// DELETE /api/tickets/{id}/assign/{userId}
func (h *TicketHTTP) Unassign() http.HandlerFunc {
	return h.assignment(h.svc.UnassignDeveloper)
}

func (h *TicketHTTP) assignment(op func(ctx context.Context, a models.Actor, ticketID, userID int64) (*models.Ticket, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		uid, ok := pathID(w, r, "userId")
		if !ok {
			return
		}
		t, err := op(r.Context(), actorOf(r), id, uid)
		reply(w, http.StatusOK, t, err)
	}
}

// POST /api/tickets/{id}/close
func (h *TicketHTTP) Close() http.HandlerFunc {
	return h.status(h.svc.CloseTicket)
}

// POST /api/tickets/{id}/reopen
func (h *TicketHTTP) Reopen() http.HandlerFunc {
	return h.status(h.svc.ReopenTicket)
}

func (h *TicketHTTP) status(op func(ctx context.Context, a models.Actor, id int64) (*models.Ticket, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		t, err := op(r.Context(), actorOf(r), id)
		reply(w, http.StatusOK, t, err)
	}
}
