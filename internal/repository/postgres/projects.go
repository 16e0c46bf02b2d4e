package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bugtracker/internal/apperr"
	"bugtracker/internal/gateway"
	"bugtracker/internal/models"
)

const projectSelect = `
	SELECT
		p.id, p.name, p.description, p.created_by,
		u.first_name || ' ' || u.last_name,
		ARRAY(SELECT m.user_id FROM user_projects m WHERE m.project_id = p.id ORDER BY m.user_id),
		(SELECT COUNT(*) FROM tickets t WHERE t.project_id = p.id),
		p.created_at, p.updated_at
	FROM projects p
	JOIN users u ON u.id = p.created_by`

func scanProject(r rowScanner) (models.Project, error) {
	var (
		p       models.Project
		members []int64
	)
	err := r.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedByID, &p.CreatedByName,
		&members, &p.TicketCount, &p.CreatedAt, &p.UpdatedAt)
	p.TeamMemberIDs = models.NewIDSet(members...)
	return p, err
}

func (s *Store) listProjects(ctx context.Context, sql string, args ...any) ([]models.Project, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrap(err, "projects")
	}
	defer rows.Close()

	out := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, wrap(err, "project")
		}
		out = append(out, p)
	}
	return out, wrap(rows.Err(), "projects")
}

func (s *Store) ListProjectsForUser(ctx context.Context, userID int64) ([]models.Project, error) {
	return s.listProjects(ctx, projectSelect+`
	WHERE EXISTS (SELECT 1 FROM user_projects m WHERE m.project_id = p.id AND m.user_id = $1)
	ORDER BY p.id`, userID)
}

func (s *Store) ListAllProjects(ctx context.Context) ([]models.Project, error) {
	return s.listProjects(ctx, projectSelect+` ORDER BY p.id`)
}

func (s *Store) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	p, err := scanProject(s.db.QueryRow(ctx, projectSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, wrap(err, fmt.Sprintf("project %d", id))
	}
	return &p, nil
}

// CreateProject inserts the project and puts its creator on the team.
func (s *Store) CreateProject(ctx context.Context, creatorID int64, in gateway.ProjectInput) (*models.Project, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, wrap(err, "project")
	}
	defer tx.Rollback(ctx)

	ok, err := exists(ctx, tx, "users", creatorID)
	if err != nil {
		return nil, wrap(err, "user")
	}
	if !ok {
		return nil, apperr.NotFound("user %d not found", creatorID)
	}

	var id int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO projects (name, description, created_by)
		VALUES ($1,$2,$3)
		RETURNING id`, in.Name, in.Description, creatorID).Scan(&id); err != nil {
		return nil, wrap(err, "project")
	}
	if _, err := tx.Exec(ctx, `INSERT INTO user_projects (project_id, user_id) VALUES ($1,$2)`, id, creatorID); err != nil {
		return nil, wrap(err, "project member")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, wrap(err, "project")
	}
	return s.GetProject(ctx, id)
}

func (s *Store) UpdateProject(ctx context.Context, id int64, in gateway.ProjectInput) (*models.Project, error) {
	ct, err := s.db.Exec(ctx, `
		UPDATE projects SET name=$1, description=$2, updated_at=now()
		WHERE id=$3`, in.Name, in.Description, id)
	if err != nil {
		return nil, wrap(err, "project")
	}
	if ct.RowsAffected() == 0 {
		return nil, apperr.NotFound("project %d not found", id)
	}
	return s.GetProject(ctx, id)
}

// DeleteProject removes the project; tickets, comments and memberships go with
// it through ON DELETE CASCADE.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	ct, err := s.db.Exec(ctx, `DELETE FROM projects WHERE id=$1`, id)
	if err != nil {
		return wrap(err, "project")
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("project %d not found", id)
	}
	return nil
}

func (s *Store) AddTeamMember(ctx context.Context, projectID, userID int64) error {
	if err := s.checkPair(ctx, "projects", "project", projectID, userID); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_projects (project_id, user_id) VALUES ($1,$2)
		ON CONFLICT DO NOTHING`, projectID, userID)
	return wrap(err, "project member")
}

func (s *Store) RemoveTeamMember(ctx context.Context, projectID, userID int64) error {
	if err := s.checkPair(ctx, "projects", "project", projectID, userID); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `DELETE FROM user_projects WHERE project_id=$1 AND user_id=$2`, projectID, userID)
	return wrap(err, "project member")
}

// checkPair makes membership and assignment calls fail with NotFound for a
// missing parent or user, even when the write itself would be a no-op.
func (s *Store) checkPair(ctx context.Context, table, what string, id, userID int64) error {
	ok, err := exists(ctx, s.db, table, id)
	if err != nil {
		return wrap(err, what)
	}
	if !ok {
		return apperr.NotFound("%s %d not found", what, id)
	}
	ok, err = exists(ctx, s.db, "users", userID)
	if err != nil {
		return wrap(err, "user")
	}
	if !ok {
		return apperr.NotFound("user %d not found", userID)
	}
	return nil
}
