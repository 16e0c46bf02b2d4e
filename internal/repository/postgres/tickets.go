package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"bugtracker/internal/apperr"
	"bugtracker/internal/gateway"
	"bugtracker/internal/models"
)

// ticketSelect joins the project and creator names and derives the developer
// set and comment count.
const ticketSelect = `
	SELECT
		t.id, t.project_id, p.name, t.title, t.description, t.type, t.priority, t.status,
		t.created_by, u.first_name || ' ' || u.last_name,
		ARRAY(SELECT d.user_id FROM dev_assignments d WHERE d.ticket_id = t.id ORDER BY d.user_id),
		t.time_estimate,
		(SELECT COUNT(*) FROM comments c WHERE c.ticket_id = t.id),
		t.created_at, t.updated_at
	FROM tickets t
	JOIN projects p ON p.id = t.project_id
	JOIN users u ON u.id = t.created_by`

func scanTicket(r rowScanner) (models.Ticket, error) {
	var (
		t    models.Ticket
		devs []int64
	)
	err := r.Scan(
		&t.ID, &t.ProjectID, &t.ProjectName, &t.Title, &t.Description, &t.Type, &t.Priority, &t.Status,
		&t.CreatedByID, &t.CreatedByName, &devs, &t.TimeEstimate, &t.CommentCount,
		&t.CreatedAt, &t.UpdatedAt,
	)
	t.AssignedDeveloperIDs = models.NewIDSet(devs...)
	return t, err
}

func (s *Store) listTickets(ctx context.Context, where string, args ...any) ([]models.Ticket, error) {
	rows, err := s.db.Query(ctx, ticketSelect+" "+where+" ORDER BY t.id DESC", args...)
	if err != nil {
		return nil, wrap(err, "tickets")
	}
	defer rows.Close()

	out := []models.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, wrap(err, "ticket")
		}
		out = append(out, t)
	}
	return out, wrap(rows.Err(), "tickets")
}

func (s *Store) ListTicketsForProject(ctx context.Context, projectID int64) ([]models.Ticket, error) {
	return s.listTickets(ctx, `WHERE t.project_id = $1`, projectID)
}

// ListTicketsForUser returns the tickets userID is assigned to.
func (s *Store) ListTicketsForUser(ctx context.Context, userID int64) ([]models.Ticket, error) {
	return s.listTickets(ctx, `WHERE EXISTS (SELECT 1 FROM dev_assignments d WHERE d.ticket_id = t.id AND d.user_id = $1)`, userID)
}

func (s *Store) ListAllTickets(ctx context.Context) ([]models.Ticket, error) {
	return s.listTickets(ctx, "")
}

func (s *Store) GetTicket(ctx context.Context, id int64) (*models.Ticket, error) {
	t, err := scanTicket(s.db.QueryRow(ctx, ticketSelect+` WHERE t.id = $1`, id))
	if err != nil {
		return nil, wrap(err, fmt.Sprintf("ticket %d", id))
	}
	return &t, nil
}

func (s *Store) CreateTicket(ctx context.Context, creatorID int64, in gateway.TicketInput) (*models.Ticket, error) {
	ok, err := exists(ctx, s.db, "projects", in.ProjectID)
	if err != nil {
		return nil, wrap(err, "project")
	}
	if !ok {
		return nil, apperr.NotFound("project %d not found", in.ProjectID)
	}

	var id int64
	err = s.db.QueryRow(ctx, `
		INSERT INTO tickets (project_id, title, description, type, priority, status, created_by, time_estimate)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id`,
		in.ProjectID, in.Title, in.Description, string(in.Type), string(in.Priority),
		string(models.StatusOpen), creatorID, in.TimeEstimate,
	).Scan(&id)
	if err != nil {
		return nil, wrap(err, "ticket")
	}
	return s.GetTicket(ctx, id)
}

// buildTicketSet composes the SET clause for the fields present in p.
func buildTicketSet(p gateway.TicketPatch) (string, []any) {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+itoa(len(args)))
	}

	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Type != nil {
		add("type", string(*p.Type))
	}
	if p.Priority != nil {
		add("priority", string(*p.Priority))
	}
	if p.Status != nil {
		add("status", string(*p.Status))
	}
	if p.TimeEstimate != nil {
		add("time_estimate", *p.TimeEstimate)
	}
	sets = append(sets, "updated_at = now()")
	return strings.Join(sets, ", "), args
}

func (s *Store) UpdateTicket(ctx context.Context, id int64, p gateway.TicketPatch) (*models.Ticket, error) {
	set, args := buildTicketSet(p)
	args = append(args, id)
	ct, err := s.db.Exec(ctx, `UPDATE tickets SET `+set+` WHERE id = $`+itoa(len(args)), args...)
	if err != nil {
		return nil, wrap(err, "ticket")
	}
	if ct.RowsAffected() == 0 {
		return nil, apperr.NotFound("ticket %d not found", id)
	}
	return s.GetTicket(ctx, id)
}

// DeleteTicket removes the ticket with its comments and assignments.
func (s *Store) DeleteTicket(ctx context.Context, id int64) error {
	ct, err := s.db.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return wrap(err, "ticket")
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("ticket %d not found", id)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Assignment
// -----------------------------------------------------------------------------

func (s *Store) AssignDeveloper(ctx context.Context, ticketID, userID int64) error {
	if err := s.checkPair(ctx, "tickets", "ticket", ticketID, userID); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO dev_assignments (ticket_id, user_id) VALUES ($1,$2)
		ON CONFLICT DO NOTHING`, ticketID, userID)
	return wrap(err, "assignment")
}

func (s *Store) UnassignDeveloper(ctx context.Context, ticketID, userID int64) error {
	if err := s.checkPair(ctx, "tickets", "ticket", ticketID, userID); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `DELETE FROM dev_assignments WHERE ticket_id=$1 AND user_id=$2`, ticketID, userID)
	return wrap(err, "assignment")
}

// AssignDeveloperAndStart assigns userID and, when start is set, moves the
// ticket to IN_PROGRESS in the same transaction. The ticket row is locked and
// the move only happens if it is still OPEN with nobody assigned.
func (s *Store) AssignDeveloperAndStart(ctx context.Context, ticketID, userID int64, start bool) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return wrap(err, "assignment")
	}
	defer tx.Rollback(ctx)

	var status models.Status
	if err := tx.QueryRow(ctx, `SELECT status FROM tickets WHERE id=$1 FOR UPDATE`, ticketID).Scan(&status); err != nil {
		return wrap(err, fmt.Sprintf("ticket %d", ticketID))
	}
	ok, err := exists(ctx, tx, "users", userID)
	if err != nil {
		return wrap(err, "user")
	}
	if !ok {
		return apperr.NotFound("user %d not found", userID)
	}

	var assigned int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM dev_assignments WHERE ticket_id=$1`, ticketID).Scan(&assigned); err != nil {
		return wrap(err, "assignment")
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO dev_assignments (ticket_id, user_id) VALUES ($1,$2)
		ON CONFLICT DO NOTHING`, ticketID, userID); err != nil {
		return wrap(err, "assignment")
	}
	if start && assigned == 0 && status == models.StatusOpen {
		if _, err := tx.Exec(ctx, `
			UPDATE tickets SET status=$1, updated_at=now()
			WHERE id=$2`, string(models.StatusInProgress), ticketID); err != nil {
			return wrap(err, "ticket")
		}
	}
	return wrap(tx.Commit(ctx), "assignment")
}
