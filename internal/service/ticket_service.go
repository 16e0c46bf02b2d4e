package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"bugtracker/internal/apperr"
	"bugtracker/internal/gateway"
	"bugtracker/internal/models"
)

// NewTicket is what a caller supplies to file a ticket. Empty Type and
// Priority fall back to BUG and MEDIUM.
type NewTicket struct {
	ProjectID    int64
	Title        string
	Description  *string
	Type         models.TicketType
	Priority     models.Priority
	TimeEstimate *int
}

// TicketService is the ticket lifecycle engine. It owns the status state
// machine and the assignment rules; everything else passes through to the
// gateway.
type TicketService struct {
	gw  gateway.Gateway
	log zerolog.Logger
}

func NewTicketService(gw gateway.Gateway, log zerolog.Logger) *TicketService {
	return &TicketService{gw: gw, log: log}
}

// transitions lists, per status, the statuses an admin may move it to. No
// status is terminal.
var transitions = map[models.Status][]models.Status{
	models.StatusOpen:       {models.StatusInProgress, models.StatusClosed},
	models.StatusInProgress: {models.StatusOpen, models.StatusClosed},
	models.StatusClosed:     {models.StatusOpen, models.StatusInProgress},
}

// CanTransition reports whether from -> to is allowed. Staying put always is;
// anything outside the known statuses never is.
func CanTransition(from, to models.Status) bool {
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func requireAdmin(actor models.Actor, what string) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("only admins may %s", what)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

func (s *TicketService) GetTicket(ctx context.Context, id int64) (*models.Ticket, error) {
	return s.gw.GetTicket(ctx, id)
}

func (s *TicketService) ListForProject(ctx context.Context, projectID int64) ([]models.Ticket, error) {
	return s.gw.ListTicketsForProject(ctx, projectID)
}

// ListVisible issues the query the actor is entitled to: every ticket for an
// admin, only assigned tickets for anyone else.
func (s *TicketService) ListVisible(ctx context.Context, actor models.Actor) ([]models.Ticket, error) {
	if actor.IsAdmin() {
		return s.gw.ListAllTickets(ctx)
	}
	return s.gw.ListTicketsForUser(ctx, actor.UserID)
}

// ListForUser lists the tickets assigned to userID. Non-admins may only ask
// about themselves.
func (s *TicketService) ListForUser(ctx context.Context, actor models.Actor, userID int64) ([]models.Ticket, error) {
	if !actor.IsAdmin() && actor.UserID != userID {
		return nil, apperr.Forbidden("cannot list tickets of another user")
	}
	return s.gw.ListTicketsForUser(ctx, userID)
}

func (s *TicketService) ListAll(ctx context.Context, actor models.Actor) ([]models.Ticket, error) {
	if err := requireAdmin(actor, "list all tickets"); err != nil {
		return nil, err
	}
	return s.gw.ListAllTickets(ctx)
}

// -----------------------------------------------------------------------------
// Creation and edits
// -----------------------------------------------------------------------------

func (s *TicketService) CreateTicket(ctx context.Context, actor models.Actor, in NewTicket) (*models.Ticket, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	if in.ProjectID <= 0 {
		return nil, apperr.Validation("project id is required")
	}
	typ := in.Type
	if typ == "" {
		typ = models.TypeBug
	}
	if !typ.Valid() {
		return nil, apperr.Validation("invalid type %q", typ)
	}
	prio := in.Priority
	if prio == "" {
		prio = models.PriorityMedium
	}
	if !prio.Valid() {
		return nil, apperr.Validation("invalid priority %q", prio)
	}
	if in.TimeEstimate != nil && *in.TimeEstimate <= 0 {
		return nil, apperr.Validation("time estimate must be positive")
	}

	if _, err := s.gw.GetProject(ctx, in.ProjectID); err != nil {
		return nil, err
	}
	t, err := s.gw.CreateTicket(ctx, actor.UserID, gateway.TicketInput{
		ProjectID:    in.ProjectID,
		Title:        title,
		Description:  trimOptional(in.Description),
		Type:         typ,
		Priority:     prio,
		TimeEstimate: in.TimeEstimate,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("ticket", t.ID).Int64("project", t.ProjectID).Int64("by", actor.UserID).Msg("ticket created")
	return t, nil
}

// UpdateTicket applies a partial edit. A status change inside the patch must be
// made by an admin and follow the transition table.
func (s *TicketService) UpdateTicket(ctx context.Context, actor models.Actor, id int64, p gateway.TicketPatch) (*models.Ticket, error) {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, apperr.Validation("title is required")
		}
		p.Title = &title
	}
	if p.Type != nil && !p.Type.Valid() {
		return nil, apperr.Validation("invalid type %q", *p.Type)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return nil, apperr.Validation("invalid priority %q", *p.Priority)
	}
	if p.Status != nil && !p.Status.Valid() {
		return nil, apperr.Validation("invalid status %q", *p.Status)
	}
	if p.TimeEstimate != nil && *p.TimeEstimate <= 0 {
		return nil, apperr.Validation("time estimate must be positive")
	}
	p.Description = trimOptional(p.Description)

	cur, err := s.gw.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != nil {
		if *p.Status == cur.Status {
			p.Status = nil
		} else {
			if err := requireAdmin(actor, "change ticket status"); err != nil {
				return nil, err
			}
			if !CanTransition(cur.Status, *p.Status) {
				return nil, apperr.Validation("cannot move ticket from %s to %s", cur.Status, *p.Status)
			}
		}
	}
	if p.Empty() {
		return cur, nil
	}
	if _, err := s.gw.UpdateTicket(ctx, id, p); err != nil {
		return nil, err
	}
	return s.gw.GetTicket(ctx, id)
}

func (s *TicketService) DeleteTicket(ctx context.Context, actor models.Actor, id int64) error {
	if err := requireAdmin(actor, "delete tickets"); err != nil {
		return err
	}
	if err := s.gw.DeleteTicket(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("ticket", id).Int64("by", actor.UserID).Msg("ticket deleted")
	return nil
}

// -----------------------------------------------------------------------------
// Status
// -----------------------------------------------------------------------------

func (s *TicketService) setStatus(ctx context.Context, actor models.Actor, id int64, to models.Status, what string) (*models.Ticket, error) {
	if err := requireAdmin(actor, what); err != nil {
		return nil, err
	}
	cur, err := s.gw.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.Status == to {
		return cur, nil
	}
	if !CanTransition(cur.Status, to) {
		return nil, apperr.Validation("cannot move ticket from %s to %s", cur.Status, to)
	}
	if _, err := s.gw.UpdateTicket(ctx, id, gateway.TicketPatch{Status: &to}); err != nil {
		return nil, err
	}
	s.log.Info().Int64("ticket", id).Str("from", string(cur.Status)).Str("to", string(to)).Int64("by", actor.UserID).Msg("ticket status changed")
	return s.gw.GetTicket(ctx, id)
}

// CloseTicket moves the ticket to CLOSED from any status.
func (s *TicketService) CloseTicket(ctx context.Context, actor models.Actor, id int64) (*models.Ticket, error) {
	return s.setStatus(ctx, actor, id, models.StatusClosed, "close tickets")
}

// ReopenTicket moves the ticket to OPEN from any status, even when developers
// are still assigned.
func (s *TicketService) ReopenTicket(ctx context.Context, actor models.Actor, id int64) (*models.Ticket, error) {
	return s.setStatus(ctx, actor, id, models.StatusOpen, "reopen tickets")
}

// -----------------------------------------------------------------------------
// Assignment
// -----------------------------------------------------------------------------

// AssignDeveloper adds userID to the ticket's developers. Assigning someone
// already assigned changes nothing. When the ticket had nobody and was OPEN it
// moves to IN_PROGRESS in the same step; if that cannot be completed the
// assignment is undone and the error returned.
func (s *TicketService) AssignDeveloper(ctx context.Context, actor models.Actor, ticketID, userID int64) (*models.Ticket, error) {
	if err := requireAdmin(actor, "assign developers"); err != nil {
		return nil, err
	}
	t, err := s.gw.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if _, err := s.gw.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	if t.AssignedDeveloperIDs.Contains(userID) {
		return t, nil
	}
	start := len(t.AssignedDeveloperIDs) == 0 && t.Status == models.StatusOpen

	if aa, ok := s.gw.(gateway.AtomicAssigner); ok {
		if err := aa.AssignDeveloperAndStart(ctx, ticketID, userID, start); err != nil {
			return nil, err
		}
	} else if err := s.assignThenStart(ctx, ticketID, userID, start); err != nil {
		return nil, err
	}

	s.log.Info().Int64("ticket", ticketID).Int64("developer", userID).Bool("started", start).Int64("by", actor.UserID).Msg("developer assigned")
	return s.gw.GetTicket(ctx, ticketID)
}

func (s *TicketService) assignThenStart(ctx context.Context, ticketID, userID int64, start bool) error {
	if err := s.gw.AssignDeveloper(ctx, ticketID, userID); err != nil {
		return err
	}
	if !start {
		return nil
	}
	inProgress := models.StatusInProgress
	_, err := s.gw.UpdateTicket(ctx, ticketID, gateway.TicketPatch{Status: &inProgress})
	if err == nil {
		return nil
	}
	if uerr := s.gw.UnassignDeveloper(ctx, ticketID, userID); uerr != nil {
		s.log.Error().Err(uerr).Int64("ticket", ticketID).Int64("developer", userID).Msg("undo assignment failed")
		return errors.Join(err, uerr)
	}
	return err
}

// UnassignDeveloper removes userID if present. The status is left alone.
func (s *TicketService) UnassignDeveloper(ctx context.Context, actor models.Actor, ticketID, userID int64) (*models.Ticket, error) {
	if err := requireAdmin(actor, "unassign developers"); err != nil {
		return nil, err
	}
	t, err := s.gw.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if _, err := s.gw.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	if !t.AssignedDeveloperIDs.Contains(userID) {
		return t, nil
	}
	if err := s.gw.UnassignDeveloper(ctx, ticketID, userID); err != nil {
		return nil, err
	}
	s.log.Info().Int64("ticket", ticketID).Int64("developer", userID).Int64("by", actor.UserID).Msg("developer unassigned")
	return s.gw.GetTicket(ctx, ticketID)
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
