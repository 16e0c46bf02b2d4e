package handlers

import (
	"net/http"
	"time"

	"bugtracker/internal/aggregate"
	"bugtracker/internal/service"
	"bugtracker/internal/utils"
)

type ReportsHTTP struct {
	tickets *service.TicketService
	views   *service.Views
	now     func() time.Time
}

func NewReportsHTTP(tickets *service.TicketService, views *service.Views) *ReportsHTTP {
	return &ReportsHTTP{tickets: tickets, views: views, now: time.Now}
}

// GET /api/reports/summary
// Counts over the tickets the caller may see: all of them for an admin, the
// assigned ones otherwise.
func (h *ReportsHTTP) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.tickets.ListVisible(r.Context(), actorOf(r))
		if err != nil {
			reply(w, 0, nil, err)
			return
		}
		reply(w, http.StatusOK, aggregate.Summarize(items, h.now()), nil)
	}
}

// GET /api/reports/dashboard
func (h *ReportsHTTP) Dashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := h.views.Dashboard(r.Context(), actorOf(r))
		reply(w, http.StatusOK, d, err)
	}
}

// GET /api/reports/tickets?page=&pageSize=
// One page of the visible tickets plus the page selector.
func (h *ReportsHTTP) Tickets() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := h.views.TicketList(r.Context(), actorOf(r))
		if err != nil {
			reply(w, 0, nil, err)
			return
		}
		qv := r.URL.Query()
		page := l.Page(utils.QueryInt(qv, "page", 1), utils.QueryInt(qv, "pageSize", aggregate.DefaultPageSize))
		reply(w, http.StatusOK, page, nil)
	}
}
