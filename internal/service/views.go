package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"bugtracker/internal/aggregate"
	"bugtracker/internal/gateway"
	"bugtracker/internal/models"
	"bugtracker/internal/timeutil"
)

const recentCount = 5

// Views loads the read models behind each screen. Every loader fetches fresh
// from the gateway; nothing is cached between calls.
type Views struct {
	gw      gateway.Gateway
	tickets *TicketService
	now     func() time.Time
}

func NewViews(gw gateway.Gateway, tickets *TicketService) *Views {
	return &Views{gw: gw, tickets: tickets, now: time.Now}
}

// WithClock swaps the time source used for ages and day counts.
func (v *Views) WithClock(now func() time.Time) *Views {
	v.now = now
	return v
}

// -----------------------------------------------------------------------------
// Dashboard
// -----------------------------------------------------------------------------

type Dashboard struct {
	Projects       []models.Project  `json:"projects"`
	Tickets        []models.Ticket   `json:"tickets"`
	Summary        aggregate.Summary `json:"summary"`
	RecentProjects []models.Project  `json:"recentProjects"`
	RecentTickets  []models.Ticket   `json:"recentTickets"`
}

func (v *Views) Dashboard(ctx context.Context, actor models.Actor) (*Dashboard, error) {
	var (
		projects []models.Project
		tickets  []models.Ticket
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = v.gw.ListProjectsForUser(gctx, actor.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		tickets, err = v.tickets.ListVisible(gctx, actor)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Dashboard{
		Projects:       projects,
		Tickets:        tickets,
		Summary:        aggregate.Summarize(tickets, v.now()),
		RecentProjects: aggregate.Recent(projects, recentCount),
		RecentTickets:  aggregate.Recent(tickets, recentCount),
	}, nil
}

// -----------------------------------------------------------------------------
// Ticket list
// -----------------------------------------------------------------------------

// TicketList holds the whole visible collection. Paging re-slices it.
type TicketList struct {
	Tickets []models.Ticket   `json:"tickets"`
	Summary aggregate.Summary `json:"summary"`
}

// TicketPage is one page of a TicketList plus the selector around it.
type TicketPage struct {
	aggregate.Page[models.Ticket]
	Window aggregate.Window `json:"window"`
}

func (v *Views) TicketList(ctx context.Context, actor models.Actor) (*TicketList, error) {
	tickets, err := v.tickets.ListVisible(ctx, actor)
	if err != nil {
		return nil, err
	}
	return &TicketList{Tickets: tickets, Summary: aggregate.Summarize(tickets, v.now())}, nil
}

func (l *TicketList) Page(k, size int) TicketPage {
	p := aggregate.Paginate(l.Tickets, k, size)
	return TicketPage{Page: p, Window: aggregate.PageWindow(p.Page, p.TotalPages)}
}

// -----------------------------------------------------------------------------
// Details
// -----------------------------------------------------------------------------

type TicketDetails struct {
	Ticket          *models.Ticket   `json:"ticket"`
	Comments        []models.Comment `json:"comments"`
	DaysOutstanding int              `json:"daysOutstanding"`
	Age             string           `json:"age"`
}

func (v *Views) TicketDetails(ctx context.Context, ticketID int64) (*TicketDetails, error) {
	var (
		t        *models.Ticket
		comments []models.Comment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		t, err = v.gw.GetTicket(gctx, ticketID)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = v.gw.ListCommentsForTicket(gctx, ticketID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	now := v.now()
	return &TicketDetails{
		Ticket:          t,
		Comments:        comments,
		DaysOutstanding: aggregate.DaysOutstanding(*t, now),
		Age:             timeutil.TimeAgo(t.CreatedAt, now),
	}, nil
}

type ProjectDetails struct {
	Project *models.Project   `json:"project"`
	Tickets []models.Ticket   `json:"tickets"`
	Summary aggregate.Summary `json:"summary"`
}

func (v *Views) ProjectDetails(ctx context.Context, projectID int64) (*ProjectDetails, error) {
	var (
		p       *models.Project
		tickets []models.Ticket
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p, err = v.gw.GetProject(gctx, projectID)
		return err
	})
	g.Go(func() error {
		var err error
		tickets, err = v.gw.ListTicketsForProject(gctx, projectID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ProjectDetails{Project: p, Tickets: tickets, Summary: aggregate.Summarize(tickets, v.now())}, nil
}
