// Package memgw is an in-memory gateway.Gateway. The API server uses it for
// the "memory" store driver and the tests use it as a fake remote.
package memgw

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"bugtracker/internal/apperr"
	"bugtracker/internal/gateway"
	"bugtracker/internal/models"
)

type Store struct {
	mu sync.Mutex

	now    func() time.Time
	nextID int64

	users    map[int64]models.User
	projects map[int64]models.Project
	tickets  map[int64]models.Ticket
	comments map[int64]models.Comment

	failures map[string]error
	calls    []string
}

var _ gateway.Gateway = (*Store)(nil)

func New() *Store {
	return &Store{
		now:      time.Now,
		users:    map[int64]models.User{},
		projects: map[int64]models.Project{},
		tickets:  map[int64]models.Ticket{},
		comments: map[int64]models.Comment{},
		failures: map[string]error{},
	}
}

// WithClock replaces the timestamp source.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// FailOn makes every later call to op (a method name such as "UpdateTicket")
// return err. A nil err clears it.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// Calls returns the method names invoked so far, in order.
func (s *Store) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// enter records the call and returns any injected failure. Caller holds mu.
func (s *Store) enter(op string) error {
	s.calls = append(s.calls, op)
	if err, ok := s.failures[op]; ok {
		return apperr.Gateway(err, "%s", op)
	}
	return nil
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// -----------------------------------------------------------------------------
// Users
// -----------------------------------------------------------------------------

// AddUser seeds a user; a zero ID is assigned.
func (s *Store) AddUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.id()
	} else if u.ID > s.nextID {
		s.nextID = u.ID
	}
	if u.AuthorityLevel == "" {
		u.AuthorityLevel = models.RoleUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.users[u.ID] = u
	return u
}

// SeedUser is AddUser keyed on email: an existing user with the same email
// has its names and role refreshed.
func (s *Store) SeedUser(ctx context.Context, u models.User) (*models.User, error) {
	s.mu.Lock()
	for id, cur := range s.users {
		if strings.EqualFold(cur.Email, u.Email) {
			u.ID, u.CreatedAt = id, cur.CreatedAt
			break
		}
	}
	s.mu.Unlock()
	out := s.AddUser(u)
	return &out, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListUsers"); err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetUser"); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("user %d not found", id)
	}
	return &u, nil
}

// -----------------------------------------------------------------------------
// Projects
// -----------------------------------------------------------------------------

func (s *Store) project(p models.Project) models.Project {
	p.TeamMemberIDs = slices.Clone(p.TeamMemberIDs)
	p.TicketCount = 0
	for _, t := range s.tickets {
		if t.ProjectID == p.ID {
			p.TicketCount++
		}
	}
	if u, ok := s.users[p.CreatedByID]; ok {
		p.CreatedByName = u.FullName()
	}
	return p
}

func (s *Store) listProjects(keep func(models.Project) bool) []models.Project {
	out := []models.Project{}
	for _, p := range s.projects {
		if keep(p) {
			out = append(out, s.project(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) ListProjectsForUser(ctx context.Context, userID int64) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListProjectsForUser"); err != nil {
		return nil, err
	}
	return s.listProjects(func(p models.Project) bool { return p.TeamMemberIDs.Contains(userID) }), nil
}

func (s *Store) ListAllProjects(ctx context.Context) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListAllProjects"); err != nil {
		return nil, err
	}
	return s.listProjects(func(models.Project) bool { return true }), nil
}

func (s *Store) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetProject"); err != nil {
		return nil, err
	}
	p, ok := s.projects[id]
	if !ok {
		return nil, apperr.NotFound("project %d not found", id)
	}
	p = s.project(p)
	return &p, nil
}

func (s *Store) CreateProject(ctx context.Context, creatorID int64, in gateway.ProjectInput) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateProject"); err != nil {
		return nil, err
	}
	if _, ok := s.users[creatorID]; !ok {
		return nil, apperr.NotFound("user %d not found", creatorID)
	}
	now := s.now()
	p := models.Project{
		ID:            s.id(),
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		CreatedByID:   creatorID,
		TeamMemberIDs: models.NewIDSet(creatorID),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.projects[p.ID] = p
	p = s.project(p)
	return &p, nil
}

func (s *Store) UpdateProject(ctx context.Context, id int64, in gateway.ProjectInput) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateProject"); err != nil {
		return nil, err
	}
	p, ok := s.projects[id]
	if !ok {
		return nil, apperr.NotFound("project %d not found", id)
	}
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.UpdatedAt = s.now()
	s.projects[id] = p
	p = s.project(p)
	return &p, nil
}

func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteProject"); err != nil {
		return err
	}
	if _, ok := s.projects[id]; !ok {
		return apperr.NotFound("project %d not found", id)
	}
	delete(s.projects, id)
	for tid, t := range s.tickets {
		if t.ProjectID == id {
			s.deleteTicket(tid)
		}
	}
	return nil
}

func (s *Store) memberOp(op string, projectID, userID int64, apply func(models.IDSet) models.IDSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(op); err != nil {
		return err
	}
	p, ok := s.projects[projectID]
	if !ok {
		return apperr.NotFound("project %d not found", projectID)
	}
	if _, ok := s.users[userID]; !ok {
		return apperr.NotFound("user %d not found", userID)
	}
	p.TeamMemberIDs = apply(p.TeamMemberIDs)
	s.projects[projectID] = p
	return nil
}

func (s *Store) AddTeamMember(ctx context.Context, projectID, userID int64) error {
	return s.memberOp("AddTeamMember", projectID, userID, func(m models.IDSet) models.IDSet { return m.With(userID) })
}

func (s *Store) RemoveTeamMember(ctx context.Context, projectID, userID int64) error {
	return s.memberOp("RemoveTeamMember", projectID, userID, func(m models.IDSet) models.IDSet { return m.Without(userID) })
}

// -----------------------------------------------------------------------------
// Tickets
// -----------------------------------------------------------------------------

func (s *Store) ticket(t models.Ticket) models.Ticket {
	t.AssignedDeveloperIDs = slices.Clone(t.AssignedDeveloperIDs)
	if p, ok := s.projects[t.ProjectID]; ok {
		t.ProjectName = p.Name
	}
	if u, ok := s.users[t.CreatedByID]; ok {
		t.CreatedByName = u.FullName()
	}
	t.CommentCount = 0
	for _, c := range s.comments {
		if c.TicketID == t.ID {
			t.CommentCount++
		}
	}
	return t
}

func (s *Store) listTickets(keep func(models.Ticket) bool) []models.Ticket {
	out := []models.Ticket{}
	for _, t := range s.tickets {
		if keep(t) {
			out = append(out, s.ticket(t))
		}
	}
	// newest first, like the server
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *Store) ListTicketsForProject(ctx context.Context, projectID int64) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListTicketsForProject"); err != nil {
		return nil, err
	}
	return s.listTickets(func(t models.Ticket) bool { return t.ProjectID == projectID }), nil
}

func (s *Store) ListTicketsForUser(ctx context.Context, userID int64) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListTicketsForUser"); err != nil {
		return nil, err
	}
	return s.listTickets(func(t models.Ticket) bool { return t.AssignedDeveloperIDs.Contains(userID) }), nil
}

func (s *Store) ListAllTickets(ctx context.Context) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListAllTickets"); err != nil {
		return nil, err
	}
	return s.listTickets(func(models.Ticket) bool { return true }), nil
}

func (s *Store) GetTicket(ctx context.Context, id int64) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetTicket"); err != nil {
		return nil, err
	}
	t, ok := s.tickets[id]
	if !ok {
		return nil, apperr.NotFound("ticket %d not found", id)
	}
	t = s.ticket(t)
	return &t, nil
}

func (s *Store) CreateTicket(ctx context.Context, creatorID int64, in gateway.TicketInput) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateTicket"); err != nil {
		return nil, err
	}
	if _, ok := s.projects[in.ProjectID]; !ok {
		return nil, apperr.NotFound("project %d not found", in.ProjectID)
	}
	if _, ok := s.users[creatorID]; !ok {
		return nil, apperr.NotFound("user %d not found", creatorID)
	}
	now := s.now()
	t := models.Ticket{
		ID:           s.id(),
		ProjectID:    in.ProjectID,
		Title:        in.Title,
		Description:  in.Description,
		Type:         in.Type,
		Priority:     in.Priority,
		Status:       models.StatusOpen,
		CreatedByID:  creatorID,
		TimeEstimate: in.TimeEstimate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.tickets[t.ID] = t
	t = s.ticket(t)
	return &t, nil
}

func (s *Store) UpdateTicket(ctx context.Context, id int64, p gateway.TicketPatch) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateTicket"); err != nil {
		return nil, err
	}
	t, ok := s.tickets[id]
	if !ok {
		return nil, apperr.NotFound("ticket %d not found", id)
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = p.Description
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.TimeEstimate != nil {
		t.TimeEstimate = p.TimeEstimate
	}
	t.UpdatedAt = s.now()
	s.tickets[id] = t
	t = s.ticket(t)
	return &t, nil
}

func (s *Store) deleteTicket(id int64) {
	delete(s.tickets, id)
	for cid, c := range s.comments {
		if c.TicketID == id {
			delete(s.comments, cid)
		}
	}
}

func (s *Store) DeleteTicket(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteTicket"); err != nil {
		return err
	}
	if _, ok := s.tickets[id]; !ok {
		return apperr.NotFound("ticket %d not found", id)
	}
	s.deleteTicket(id)
	return nil
}

func (s *Store) assignment(op string, ticketID, userID int64, apply func(*models.Ticket)) error {
	if err := s.enter(op); err != nil {
		return err
	}
	t, ok := s.tickets[ticketID]
	if !ok {
		return apperr.NotFound("ticket %d not found", ticketID)
	}
	if _, ok := s.users[userID]; !ok {
		return apperr.NotFound("user %d not found", userID)
	}
	apply(&t)
	s.tickets[ticketID] = t
	return nil
}

func (s *Store) AssignDeveloper(ctx context.Context, ticketID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assignment("AssignDeveloper", ticketID, userID, func(t *models.Ticket) {
		t.AssignedDeveloperIDs = t.AssignedDeveloperIDs.With(userID)
	})
}

func (s *Store) UnassignDeveloper(ctx context.Context, ticketID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assignment("UnassignDeveloper", ticketID, userID, func(t *models.Ticket) {
		t.AssignedDeveloperIDs = t.AssignedDeveloperIDs.Without(userID)
	})
}

// -----------------------------------------------------------------------------
// Comments
// -----------------------------------------------------------------------------

func (s *Store) comment(c models.Comment) models.Comment {
	if u, ok := s.users[c.UserID]; ok {
		c.UserName = u.FullName()
	}
	return c
}

func (s *Store) ListCommentsForTicket(ctx context.Context, ticketID int64) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListCommentsForTicket"); err != nil {
		return nil, err
	}
	out := []models.Comment{}
	for _, c := range s.comments {
		if c.TicketID == ticketID {
			out = append(out, s.comment(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetComment(ctx context.Context, id int64) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetComment"); err != nil {
		return nil, err
	}
	c, ok := s.comments[id]
	if !ok {
		return nil, apperr.NotFound("comment %d not found", id)
	}
	c = s.comment(c)
	return &c, nil
}

func (s *Store) CreateComment(ctx context.Context, authorID, ticketID int64, content string) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateComment"); err != nil {
		return nil, err
	}
	if _, ok := s.tickets[ticketID]; !ok {
		return nil, apperr.NotFound("ticket %d not found", ticketID)
	}
	if _, ok := s.users[authorID]; !ok {
		return nil, apperr.NotFound("user %d not found", authorID)
	}
	now := s.now()
	c := models.Comment{ID: s.id(), TicketID: ticketID, UserID: authorID, Content: content, CreatedAt: now, UpdatedAt: now}
	s.comments[c.ID] = c
	c = s.comment(c)
	return &c, nil
}

func (s *Store) UpdateComment(ctx context.Context, id int64, content string) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateComment"); err != nil {
		return nil, err
	}
	c, ok := s.comments[id]
	if !ok {
		return nil, apperr.NotFound("comment %d not found", id)
	}
	c.Content = content
	c.UpdatedAt = s.now()
	s.comments[id] = c
	c = s.comment(c)
	return &c, nil
}

func (s *Store) DeleteComment(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteComment"); err != nil {
		return err
	}
	if _, ok := s.comments[id]; !ok {
		return apperr.NotFound("comment %d not found", id)
	}
	delete(s.comments, id)
	return nil
}
