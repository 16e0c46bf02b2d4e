package postgres

import (
	"context"
	"fmt"

	"bugtracker/internal/apperr"
	"bugtracker/internal/models"
)

const commentSelect = `
	SELECT c.id, c.ticket_id, c.user_id, u.first_name || ' ' || u.last_name,
		c.content, c.created_at, c.updated_at
	FROM comments c
	JOIN users u ON u.id = c.user_id`

func scanComment(r rowScanner) (models.Comment, error) {
	var c models.Comment
	err := r.Scan(&c.ID, &c.TicketID, &c.UserID, &c.UserName, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Store) ListCommentsForTicket(ctx context.Context, ticketID int64) ([]models.Comment, error) {
	rows, err := s.db.Query(ctx, commentSelect+` WHERE c.ticket_id = $1 ORDER BY c.id`, ticketID)
	if err != nil {
		return nil, wrap(err, "comments")
	}
	defer rows.Close()

	out := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, wrap(err, "comment")
		}
		out = append(out, c)
	}
	return out, wrap(rows.Err(), "comments")
}

func (s *Store) GetComment(ctx context.Context, id int64) (*models.Comment, error) {
	c, err := scanComment(s.db.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id))
	if err != nil {
		return nil, wrap(err, fmt.Sprintf("comment %d", id))
	}
	return &c, nil
}

func (s *Store) CreateComment(ctx context.Context, authorID, ticketID int64, content string) (*models.Comment, error) {
	ok, err := exists(ctx, s.db, "tickets", ticketID)
	if err != nil {
		return nil, wrap(err, "ticket")
	}
	if !ok {
		return nil, apperr.NotFound("ticket %d not found", ticketID)
	}

	var id int64
	if err := s.db.QueryRow(ctx, `
		INSERT INTO comments (ticket_id, user_id, content)
		VALUES ($1,$2,$3)
		RETURNING id`, ticketID, authorID, content).Scan(&id); err != nil {
		return nil, wrap(err, "comment")
	}
	return s.GetComment(ctx, id)
}

func (s *Store) UpdateComment(ctx context.Context, id int64, content string) (*models.Comment, error) {
	ct, err := s.db.Exec(ctx, `UPDATE comments SET content=$1, updated_at=now() WHERE id=$2`, content, id)
	if err != nil {
		return nil, wrap(err, "comment")
	}
	if ct.RowsAffected() == 0 {
		return nil, apperr.NotFound("comment %d not found", id)
	}
	return s.GetComment(ctx, id)
}

func (s *Store) DeleteComment(ctx context.Context, id int64) error {
	ct, err := s.db.Exec(ctx, `DELETE FROM comments WHERE id=$1`, id)
	if err != nil {
		return wrap(err, "comment")
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("comment %d not found", id)
	}
	return nil
}
