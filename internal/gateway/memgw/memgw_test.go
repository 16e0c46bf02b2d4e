package memgw

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugtracker/internal/apperr"
	"bugtracker/internal/gateway"
	"bugtracker/internal/models"
)

func TestCreateChecksReferences(t *testing.T) {
	s := New()
	ctx := context.Background()
	admin := s.AddUser(models.User{Email: "a@x.io", AuthorityLevel: models.RoleAdmin})

	_, err := s.CreateProject(ctx, 404, gateway.ProjectInput{Name: "Web"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	p, err := s.CreateProject(ctx, admin.ID, gateway.ProjectInput{Name: "Web"})
	require.NoError(t, err)

	in := gateway.TicketInput{ProjectID: p.ID, Title: "crash", Type: models.TypeBug, Priority: models.PriorityLow}
	_, err = s.CreateTicket(ctx, 404, in)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = s.CreateTicket(ctx, admin.ID, gateway.TicketInput{ProjectID: 404, Title: "crash"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	tk, err := s.CreateTicket(ctx, admin.ID, in)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, tk.CreatedByID)
	assert.Equal(t, models.StatusOpen, tk.Status)

	all, err := s.ListAllTickets(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = s.CreateComment(ctx, 404, tk.ID, "hi")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSeedUserUpsertsByEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.SeedUser(ctx, models.User{Email: "admin@localhost", FirstName: "Dev", AuthorityLevel: models.RoleAdmin})
	require.NoError(t, err)
	again, err := s.SeedUser(ctx, models.User{Email: "ADMIN@localhost", FirstName: "Ops", AuthorityLevel: models.RoleAdmin})
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID)
	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ops", users[0].FirstName)
}
