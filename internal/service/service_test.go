package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugtracker/internal/apperr"
	"bugtracker/internal/gateway"
	"bugtracker/internal/gateway/memgw"
	"bugtracker/internal/models"
)

var clock = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	gw       *memgw.Store
	tickets  *TicketService
	projects *ProjectService
	comments *CommentService
	views    *Views

	admin, dev, other models.Actor
	project           *models.Project
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gw := memgw.New().WithClock(func() time.Time { return clock })
	log := zerolog.New(io.Discard)

	admin := gw.AddUser(models.User{Email: "ada@example.com", FirstName: "Ada", LastName: "Admin", AuthorityLevel: models.RoleAdmin})
	dev := gw.AddUser(models.User{Email: "dan@example.com", FirstName: "Dan", LastName: "Dev", AuthorityLevel: models.RoleDeveloper})
	other := gw.AddUser(models.User{Email: "olga@example.com", FirstName: "Olga", LastName: "Other"})

	f := &fixture{
		gw:       gw,
		tickets:  NewTicketService(gw, log),
		projects: NewProjectService(gw, log),
		comments: NewCommentService(gw),
		admin:    models.Actor{UserID: admin.ID, Role: admin.AuthorityLevel},
		dev:      models.Actor{UserID: dev.ID, Role: dev.AuthorityLevel},
		other:    models.Actor{UserID: other.ID, Role: other.AuthorityLevel},
	}
	f.views = NewViews(gw, f.tickets).WithClock(func() time.Time { return clock })

	p, err := f.projects.Create(context.Background(), f.admin, "Tracker", nil)
	require.NoError(t, err)
	f.project = p
	return f
}

func (f *fixture) newTicket(t *testing.T, title string) *models.Ticket {
	t.Helper()
	tk, err := f.tickets.CreateTicket(context.Background(), f.admin, NewTicket{ProjectID: f.project.ID, Title: title})
	require.NoError(t, err)
	return tk
}

// ---------------------------------------------------------------------------
// Creation
// ---------------------------------------------------------------------------

func TestCreateTicketDefaults(t *testing.T) {
	f := setup(t)
	tk := f.newTicket(t, "  login button broken  ")

	assert.Equal(t, "login button broken", tk.Title)
	assert.Equal(t, models.StatusOpen, tk.Status)
	assert.Equal(t, models.TypeBug, tk.Type)
	assert.Equal(t, models.PriorityMedium, tk.Priority)
	assert.Empty(t, tk.AssignedDeveloperIDs)
	assert.Equal(t, "Tracker", tk.ProjectName)
	assert.Equal(t, "Ada Admin", tk.CreatedByName)
}

func TestCreateTicketValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	neg := -2

	cases := map[string]NewTicket{
		"empty title":  {ProjectID: f.project.ID, Title: "   "},
		"no project":   {Title: "x"},
		"bad type":     {ProjectID: f.project.ID, Title: "x", Type: "EPIC"},
		"bad priority": {ProjectID: f.project.ID, Title: "x", Priority: "URGENT"},
		"bad estimate": {ProjectID: f.project.ID, Title: "x", TimeEstimate: &neg},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.tickets.CreateTicket(ctx, f.admin, in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}

	_, err := f.tickets.CreateTicket(ctx, f.admin, NewTicket{ProjectID: 999, Title: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Assignment
// ---------------------------------------------------------------------------

func TestFirstAssignmentStartsWork(t *testing.T) {
	f := setup(t)
	tk := f.newTicket(t, "crash")

	got, err := f.tickets.AssignDeveloper(context.Background(), f.admin, tk.ID, f.dev.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.True(t, got.AssignedDeveloperIDs.Contains(f.dev.UserID))
}

func TestAssignIsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tk := f.newTicket(t, "crash")

	once, err := f.tickets.AssignDeveloper(ctx, f.admin, tk.ID, f.dev.UserID)
	require.NoError(t, err)
	twice, err := f.tickets.AssignDeveloper(ctx, f.admin, tk.ID, f.dev.UserID)
	require.NoError(t, err)
	assert.Equal(t, once.AssignedDeveloperIDs, twice.AssignedDeveloperIDs)
	assert.Equal(t, models.StatusInProgress, twice.Status)
}

func TestSecondAssigneeKeepsStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tk := f.newTicket(t, "crash")

	_, err := f.tickets.AssignDeveloper(ctx, f.admin, tk.ID, f.dev.UserID)
	require.NoError(t, err)
	got, err := f.tickets.AssignDeveloper(ctx, f.admin, tk.ID, f.other.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.IDSet{f.dev.UserID, f.other.UserID}, got.AssignedDeveloperIDs)
	assert.Equal(t, models.StatusInProgress, got.Status)
}

func TestReassignAfterManualStatusChange(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tk := f.newTicket(t, "crash")

	_, err := f.tickets.AssignDeveloper(ctx, f.admin, tk.ID, f.dev.UserID)
	require.NoError(t, err)
	got, err := f.tickets.UnassignDeveloper(ctx, f.admin, tk.ID, f.dev.UserID)
	require.NoError(t, err)
	assert.Empty(t, got.AssignedDeveloperIDs)
	assert.Equal(t, models.StatusInProgress, got.Status, "unassign leaves status alone")

	_, err = f.tickets.CloseTicket(ctx, f.admin, tk.ID)
	require.NoError(t, err)

	got, err = f.tickets.AssignDeveloper(ctx, f.admin, tk.ID, f.dev.UserID)
	require.NoError(t, err)
	assert.True(t, got.AssignedDeveloperIDs.Contains(f.dev.UserID))
	assert.Equal(t, models.StatusClosed, got.Status)
}

func TestUnassignMissingIsNoop(t *testing.T) {
	f := setup(t)
	tk := f.newTicket(t, "crash")

	got, err := f.tickets.UnassignDeveloper(context.Background(), f.admin, tk.ID, f.dev.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, got.Status)
	assert.NotContains(t, f.gw.Calls(), "UnassignDeveloper")
}

func TestAssignUnknownReferences(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tk := f.newTicket(t, "crash")

	_, err := f.tickets.AssignDeveloper(ctx, f.admin, tk.ID, 404)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.tickets.AssignDeveloper(ctx, f.admin, 404, f.dev.UserID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFailedStartUndoesAssignment(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tk := f.newTicket(t, "crash")

	f.gw.FailOn("UpdateTicket", errors.New("connection reset"))
	_, err := f.tickets.AssignDeveloper(ctx, f.admin, tk.ID, f.dev.UserID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrGateway)

	f.gw.FailOn("UpdateTicket", nil)
	after, err := f.tickets.GetTicket(ctx, tk.ID)
	require.NoError(t, err)
	assert.Empty(t, after.AssignedDeveloperIDs)
	assert.Equal(t, models.StatusOpen, after.Status)
	assert.Equal(t, tk.UpdatedAt, after.UpdatedAt)
}

func TestFailedUndoReportsBoth(t *testing.T) {
	f := setup(t)
	tk := f.newTicket(t, "crash")

	f.gw.FailOn("UpdateTicket", errors.New("boom"))
	f.gw.FailOn("UnassignDeveloper", errors.New("still down"))
	_, err := f.tickets.AssignDeveloper(context.Background(), f.admin, tk.ID, f.dev.UserID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UpdateTicket")
	assert.Contains(t, err.Error(), "UnassignDeveloper")
}

// atomicGateway records calls to the atomic path instead of doing the two
// steps separately.
type atomicGateway struct {
	*memgw.Store
	started []bool
}

func (a *atomicGateway) AssignDeveloperAndStart(ctx context.Context, ticketID, userID int64, start bool) error {
	a.started = append(a.started, start)
	if err := a.Store.AssignDeveloper(ctx, ticketID, userID); err != nil {
		return err
	}
	if start {
		s := models.StatusInProgress
		_, err := a.Store.UpdateTicket(ctx, ticketID, gateway.TicketPatch{Status: &s})
		return err
	}
	return nil
}

func TestAssignPrefersAtomicGateway(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tk := f.newTicket(t, "crash")

	ag := &atomicGateway{Store: f.gw}
	svc := NewTicketService(ag, zerolog.Nop())

	got, err := svc.AssignDeveloper(ctx, f.admin, tk.ID, f.dev.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)

	_, err = svc.AssignDeveloper(ctx, f.admin, tk.ID, f.other.UserID)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, ag.started)
}

// ---------------------------------------------------------------------------
// Status
// ---------------------------------------------------------------------------

func TestCloseThenReopenIsOpen(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tk := f.newTicket(t, "crash")
	_, err := f.tickets.AssignDeveloper(ctx, f.admin, tk.ID, f.dev.UserID)
	require.NoError(t, err)

	closed, err := f.tickets.CloseTicket(ctx, f.admin, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, closed.Status)

	reopened, err := f.tickets.ReopenTicket(ctx, f.admin, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, reopened.Status)
	assert.True(t, reopened.AssignedDeveloperIDs.Contains(f.dev.UserID))
}

func TestReopenOpenTicketIsNoop(t *testing.T) {
	f := setup(t)
	tk := f.newTicket(t, "crash")

	got, err := f.tickets.ReopenTicket(context.Background(), f.admin, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, got.Status)
	assert.NotContains(t, f.gw.Calls(), "UpdateTicket")
}

func TestReopenInProgressTicket(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tk := f.newTicket(t, "crash")
	started, err := f.tickets.AssignDeveloper(ctx, f.admin, tk.ID, f.dev.UserID)
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, started.Status)

	got, err := f.tickets.ReopenTicket(ctx, f.admin, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, got.Status)
	assert.True(t, got.AssignedDeveloperIDs.Contains(f.dev.UserID))
}

func TestCanTransition(t *testing.T) {
	for _, from := range models.Statuses {
		for _, to := range models.Statuses {
			assert.True(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
	assert.False(t, CanTransition(models.StatusOpen, models.Status("DONE")))
	assert.False(t, CanTransition(models.Status("DONE"), models.StatusOpen))
}

func TestUpdateTicketStatusRules(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tk := f.newTicket(t, "crash")
	closed := models.StatusClosed
	open := models.StatusOpen
	inProgress := models.StatusInProgress
	title := "crash on save"

	_, err := f.tickets.UpdateTicket(ctx, f.dev, tk.ID, gateway.TicketPatch{Status: &closed})
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	got, err := f.tickets.UpdateTicket(ctx, f.dev, tk.ID, gateway.TicketPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	assert.Equal(t, models.StatusOpen, got.Status)

	// every move between distinct statuses is open to an admin
	for _, to := range []*models.Status{&closed, &inProgress, &open, &inProgress, &closed, &open} {
		got, err = f.tickets.UpdateTicket(ctx, f.admin, tk.ID, gateway.TicketPatch{Status: to})
		require.NoError(t, err)
		assert.Equal(t, *to, got.Status)
	}

	bogus := models.Status("DONE")
	_, err = f.tickets.UpdateTicket(ctx, f.admin, tk.ID, gateway.TicketPatch{Status: &bogus})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateTicketEmptyPatchSkipsWrite(t *testing.T) {
	f := setup(t)
	tk := f.newTicket(t, "crash")
	open := models.StatusOpen

	got, err := f.tickets.UpdateTicket(context.Background(), f.dev, tk.ID, gateway.TicketPatch{Status: &open})
	require.NoError(t, err)
	assert.Equal(t, tk.ID, got.ID)
	assert.NotContains(t, f.gw.Calls(), "UpdateTicket")
}

func TestPrivilegedOperationsNeedAdmin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tk := f.newTicket(t, "crash")

	ops := map[string]func() error{
		"assign": func() error {
			_, err := f.tickets.AssignDeveloper(ctx, f.dev, tk.ID, f.dev.UserID)
			return err
		},
		"unassign": func() error {
			_, err := f.tickets.UnassignDeveloper(ctx, f.dev, tk.ID, f.dev.UserID)
			return err
		},
		"close": func() error {
			_, err := f.tickets.CloseTicket(ctx, f.dev, tk.ID)
			return err
		},
		"reopen": func() error {
			_, err := f.tickets.ReopenTicket(ctx, f.dev, tk.ID)
			return err
		},
		"delete": func() error { return f.tickets.DeleteTicket(ctx, f.dev, tk.ID) },
		"list all": func() error {
			_, err := f.tickets.ListAll(ctx, f.dev)
			return err
		},
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, op(), apperr.ErrAuthorization)
		})
	}

	after, err := f.tickets.GetTicket(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, after.Status)
	assert.Empty(t, after.AssignedDeveloperIDs)
}

func TestDeleteTicket(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tk := f.newTicket(t, "crash")

	require.NoError(t, f.tickets.DeleteTicket(ctx, f.admin, tk.ID))
	_, err := f.tickets.GetTicket(ctx, tk.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Visibility
// ---------------------------------------------------------------------------

func TestRoleBasedListing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	mine := f.newTicket(t, "mine")
	f.newTicket(t, "nobody's")
	_, err := f.tickets.AssignDeveloper(ctx, f.admin, mine.ID, f.dev.UserID)
	require.NoError(t, err)

	all, err := f.tickets.ListVisible(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	devs, err := f.tickets.ListVisible(ctx, f.dev)
	require.NoError(t, err)
	require.Len(t, devs, 1)
	for _, tk := range devs {
		assert.True(t, tk.AssignedDeveloperIDs.Contains(f.dev.UserID))
	}

	none, err := f.tickets.ListVisible(ctx, f.other)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.tickets.ListForUser(ctx, f.other, f.dev.UserID)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)
	got, err := f.tickets.ListForUser(ctx, f.admin, f.dev.UserID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

// ---------------------------------------------------------------------------
// Projects and comments
// ---------------------------------------------------------------------------

func TestProjectCreatorJoinsTeam(t *testing.T) {
	f := setup(t)
	desc := "  internal tools "
	p, err := f.projects.Create(context.Background(), f.dev, " Portal ", &desc)
	require.NoError(t, err)
	assert.Equal(t, "Portal", p.Name)
	assert.Equal(t, "internal tools", *p.Description)
	assert.Equal(t, models.IDSet{f.dev.UserID}, p.TeamMemberIDs)
	assert.Equal(t, "Dan Dev", p.CreatedByName)

	_, err = f.projects.Create(context.Background(), f.dev, "  ", nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestProjectTeamMembers(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.projects.AddMember(ctx, f.dev, f.project.ID, f.dev.UserID)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	p, err := f.projects.AddMember(ctx, f.admin, f.project.ID, f.dev.UserID)
	require.NoError(t, err)
	assert.True(t, p.TeamMemberIDs.Contains(f.dev.UserID))

	again, err := f.projects.AddMember(ctx, f.admin, f.project.ID, f.dev.UserID)
	require.NoError(t, err)
	assert.Equal(t, p.TeamMemberIDs, again.TeamMemberIDs)

	mine, err := f.projects.ListForUser(ctx, f.dev, f.dev.UserID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	p, err = f.projects.RemoveMember(ctx, f.admin, f.project.ID, f.dev.UserID)
	require.NoError(t, err)
	assert.False(t, p.TeamMemberIDs.Contains(f.dev.UserID))

	_, err = f.projects.AddMember(ctx, f.admin, f.project.ID, 404)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestProjectUpdateAndDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.projects.Update(ctx, f.dev, f.project.ID, "Renamed", nil)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	p, err := f.projects.Update(ctx, f.admin, f.project.ID, "Renamed", nil)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p.Name)

	tk := f.newTicket(t, "crash")
	assert.ErrorIs(t, f.projects.Delete(ctx, f.dev, f.project.ID), apperr.ErrAuthorization)
	require.NoError(t, f.projects.Delete(ctx, f.admin, f.project.ID))

	_, err = f.tickets.GetTicket(ctx, tk.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestComments(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tk := f.newTicket(t, "crash")

	_, err := f.comments.Create(ctx, f.dev, tk.ID, "   ")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.comments.Create(ctx, f.dev, 404, "hi")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	first, err := f.comments.Create(ctx, f.dev, tk.ID, "repro attached")
	require.NoError(t, err)
	assert.Equal(t, "Dan Dev", first.UserName)
	_, err = f.comments.Create(ctx, f.admin, tk.ID, "thanks")
	require.NoError(t, err)

	list, err := f.comments.List(ctx, tk.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "repro attached", list[0].Content)

	_, err = f.comments.Update(ctx, f.other, first.ID, "hijack")
	assert.ErrorIs(t, err, apperr.ErrAuthorization)
	edited, err := f.comments.Update(ctx, f.dev, first.ID, "repro v2")
	require.NoError(t, err)
	assert.Equal(t, "repro v2", edited.Content)

	require.NoError(t, f.comments.Delete(ctx, f.admin, first.ID))
	_, err = f.comments.Get(ctx, first.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Views
// ---------------------------------------------------------------------------

func TestDashboard(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c", "d", "e", "f"} {
		f.newTicket(t, title)
	}

	d, err := f.views.Dashboard(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, d.Projects, 1)
	assert.Len(t, d.Tickets, 6)
	assert.Len(t, d.RecentTickets, 5)
	assert.Equal(t, "f", d.RecentTickets[0].Title)
	assert.Equal(t, 6, d.Summary.Status.Open)
	assert.Equal(t, 6, d.Summary.Unassigned)

	d, err = f.views.Dashboard(ctx, f.dev)
	require.NoError(t, err)
	assert.Empty(t, d.Projects)
	assert.Empty(t, d.Tickets)
}

func TestDashboardFailsWhenEitherFetchFails(t *testing.T) {
	for _, op := range []string{"ListProjectsForUser", "ListAllTickets"} {
		t.Run(op, func(t *testing.T) {
			f := setup(t)
			f.gw.FailOn(op, errors.New("unavailable"))
			_, err := f.views.Dashboard(context.Background(), f.admin)
			assert.ErrorIs(t, err, apperr.ErrGateway)
		})
	}
}

func TestTicketListPaging(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for i := 0; i < 23; i++ {
		f.newTicket(t, "t")
	}

	l, err := f.views.TicketList(ctx, f.admin)
	require.NoError(t, err)
	calls := len(f.gw.Calls())

	p := l.Page(3, 10)
	assert.Len(t, p.Items, 3)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, []int{1, 2, 3}, p.Window.Pages)

	assert.Len(t, l.Page(1, 10).Items, 10)
	assert.Equal(t, 3, l.Page(4, 10).Page.Page)
	assert.Equal(t, calls, len(f.gw.Calls()), "paging must not fetch")
}

func TestTicketDetails(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tk := f.newTicket(t, "crash")
	_, err := f.comments.Create(ctx, f.dev, tk.ID, "seen it too")
	require.NoError(t, err)

	later := clock.Add(90000 * time.Second)
	v := NewViews(f.gw, f.tickets).WithClock(func() time.Time { return later })
	d, err := v.TicketDetails(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, d.DaysOutstanding)
	assert.Equal(t, "1 day ago", d.Age)
	assert.Len(t, d.Comments, 1)
	assert.Equal(t, 1, d.Ticket.CommentCount)

	f.gw.FailOn("ListCommentsForTicket", errors.New("timeout"))
	_, err = v.TicketDetails(ctx, tk.ID)
	assert.ErrorIs(t, err, apperr.ErrGateway)
}

func TestProjectDetails(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.newTicket(t, "one")
	f.newTicket(t, "two")

	d, err := f.views.ProjectDetails(ctx, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Project.TicketCount)
	assert.Equal(t, 2, d.Summary.Total)

	_, err = f.views.ProjectDetails(ctx, 404)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
