package postgres

import (
	"context"
	"fmt"

	"bugtracker/internal/models"
)

const userColumns = `id, email, first_name, last_name, authority_level, created_at`

func scanUser(r rowScanner) (models.User, error) {
	var u models.User
	err := r.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.AuthorityLevel, &u.CreatedAt)
	return u, err
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, wrap(err, "users")
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrap(err, "user")
		}
		out = append(out, u)
	}
	return out, wrap(rows.Err(), "users")
}

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, wrap(err, fmt.Sprintf("user %d", id))
	}
	return &u, nil
}

// SeedUser inserts u, or refreshes the names and role of the user with the
// same email. Accounts come from the identity provider; this only mirrors them.
func (s *Store) SeedUser(ctx context.Context, u models.User) (*models.User, error) {
	if u.AuthorityLevel == "" {
		u.AuthorityLevel = models.RoleUser
	}
	out, err := scanUser(s.db.QueryRow(ctx, `
		INSERT INTO users (email, first_name, last_name, authority_level)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (email) DO UPDATE
		SET first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    authority_level = EXCLUDED.authority_level
		RETURNING `+userColumns,
		u.Email, u.FirstName, u.LastName, string(u.AuthorityLevel)))
	if err != nil {
		return nil, wrap(err, "user")
	}
	return &out, nil
}
