package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugtracker/internal/aggregate"
	"bugtracker/internal/apperr"
	"bugtracker/internal/config"
	"bugtracker/internal/gateway"
	"bugtracker/internal/gateway/memgw"
	"bugtracker/internal/models"
	"bugtracker/internal/router"
	"bugtracker/internal/utils"
)

const secret = "cli-secret"

type fixture struct {
	t   *testing.T
	gw  *memgw.Store
	url string

	admin, dev models.User
	project    *models.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gw := memgw.New()
	f := &fixture{
		t:     t,
		gw:    gw,
		admin: gw.AddUser(models.User{Email: "a@x.io", FirstName: "Ada", LastName: "Admin", AuthorityLevel: models.RoleAdmin}),
		dev:   gw.AddUser(models.User{Email: "d@x.io", FirstName: "Dan", LastName: "Dev", AuthorityLevel: models.RoleDeveloper}),
	}
	p, err := gw.CreateProject(context.Background(), f.admin.ID, gateway.ProjectInput{Name: "Tracker"})
	require.NoError(t, err)
	f.project = p

	cfg := config.Config{SessionSecret: secret}
	srv := httptest.NewServer(router.New(zerolog.New(io.Discard), cfg, gw, nil))
	t.Cleanup(srv.Close)
	f.url = srv.URL
	return f
}

func (f *fixture) ticket(title string) *models.Ticket {
	f.t.Helper()
	tk, err := f.gw.CreateTicket(context.Background(), f.admin.ID, gateway.TicketInput{
		ProjectID: f.project.ID,
		Title:     title,
		Type:      models.TypeBug,
		Priority:  models.PriorityMedium,
	})
	require.NoError(f.t, err)
	return tk
}

// run executes trackerctl as u (anonymous when u is nil) and returns stdout.
func (f *fixture) run(u *models.User, args ...string) (string, error) {
	f.t.Helper()
	full := []string{"--config", filepath.Join(f.t.TempDir(), "missing.yaml"), "--base-url", f.url}
	if u != nil {
		tok, err := utils.SignJWT(secret, u.ID, u.AuthorityLevel, time.Hour)
		require.NoError(f.t, err)
		full = append(full, "--token", tok)
	}
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(append(full, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"version"})
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "trackerctl 1.2.3\n", out.String())
}

func TestTokenRequired(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(nil, "tickets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token is required")
}

func TestTicketsPaging(t *testing.T) {
	f := newFixture(t)
	for i := 1; i <= 12; i++ {
		f.ticket(fmt.Sprintf("bug %02d", i))
	}

	out, err := f.run(&f.admin, "--page-size", "5", "tickets", "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Page 2 of 3 (12 tickets)")
	assert.Contains(t, out, "< 1 [2] 3 >")
	// newest first, so page two holds 07..03
	assert.Contains(t, out, "bug 07")
	assert.Contains(t, out, "bug 03")
	assert.NotContains(t, out, "bug 08")
	assert.NotContains(t, out, "bug 02")

	out, err = f.run(&f.admin, "--page-size", "5", "tickets", "--page", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "Page 3 of 3 (12 tickets)")
}

func TestTicketLifecycle(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(&f.admin, "ticket", "create", "--project", fmt.Sprint(f.project.ID), "--title", "Crash on save", "--priority", "high")
	require.NoError(t, err)
	assert.Contains(t, out, "(OPEN)")

	list, err := f.gw.ListTicketsForProject(context.Background(), f.project.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := fmt.Sprint(list[0].ID)
	assert.Equal(t, models.PriorityHigh, list[0].Priority)

	out, err = f.run(&f.admin, "ticket", "assign", id, fmt.Sprint(f.dev.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "IN PROGRESS")

	out, err = f.run(&f.admin, "ticket", "close", id)
	require.NoError(t, err)
	assert.Contains(t, out, "CLOSED")

	out, err = f.run(&f.admin, "ticket", "reopen", id)
	require.NoError(t, err)
	assert.Contains(t, out, "is OPEN")

	_, err = f.run(&f.dev, "ticket", "close", id)
	assert.True(t, errors.Is(err, apperr.ErrAuthorization), "got %v", err)
}

func TestTicketShowAndComments(t *testing.T) {
	f := newFixture(t)
	tk := f.ticket("Layout broken")
	id := fmt.Sprint(tk.ID)

	_, err := f.run(&f.admin, "comment", "add", id, "looking", "into", "it")
	require.NoError(t, err)

	out, err := f.run(&f.admin, "ticket", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Layout broken")
	assert.Contains(t, out, "Comments (1)")
	assert.Contains(t, out, "looking into it")
}

func TestBadArguments(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(&f.admin, "ticket", "show", "abc")
	assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)

	_, err = f.run(&f.admin, "ticket", "show", "999")
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "got %v", err)

	_, err = f.run(&f.admin, "ticket", "create", "--project", fmt.Sprint(f.project.ID), "--title", "x", "--type", "chore")
	assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)
}

func TestUsersAndProjects(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(&f.admin, "users")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Admin")
	assert.Contains(t, out, "d@x.io")

	_, err = f.run(&f.admin, "project", "add-member", fmt.Sprint(f.project.ID), fmt.Sprint(f.dev.ID))
	require.NoError(t, err)

	out, err = f.run(&f.dev, "projects")
	require.NoError(t, err)
	assert.Contains(t, out, "Tracker")
}

func TestPageLine(t *testing.T) {
	assert.Equal(t, "", pageLine(aggregate.PageWindow(1, 1), 1))
	assert.Equal(t, "[1] 2 3 >", pageLine(aggregate.PageWindow(1, 3), 3))
	assert.Equal(t, "< 1 ... 4 5 [6] 7 8 ... 20 >", pageLine(aggregate.PageWindow(6, 20), 20))
	assert.Equal(t, "< 1 ... 16 17 18 19 [20]", pageLine(aggregate.PageWindow(20, 20), 20))
}
