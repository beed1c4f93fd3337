package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/foreman/internal/domain"
)

// PersonQuery is a free-text people search. Text is matched as a
// case-insensitive substring against first, last and full name and email;
// when it contains whitespace the first token and the remaining tokens are
// also tried as a first+last name pair in both orders.
type PersonQuery struct {
	Text       string
	Department string
	Team       string
	Limit      int
}

// UserFilter selects users by organisational attributes.
type UserFilter struct {
	Department string
	Team       string
}

const userColumns = `id, first_name, last_name, full_name, email, department, team, position, employment_rate`

// SearchPeople runs a person query ordered by full name.
func (s *Store) SearchPeople(ctx context.Context, q PersonQuery) ([]domain.User, error) {
	text := strings.TrimSpace(q.Text)

	var anyOf where
	anyOf.contains("first_key", text)
	anyOf.contains("last_key", text)
	anyOf.contains("full_key", text)
	anyOf.contains("email_key", text)
	if tokens := strings.Fields(text); len(tokens) > 1 {
		first := ContainsPattern(tokens[0])
		rest := ContainsPattern(strings.Join(tokens[1:], " "))
		anyOf.add(`(first_key LIKE ? ESCAPE '\' AND last_key LIKE ? ESCAPE '\')`, first, rest)
		anyOf.add(`(first_key LIKE ? ESCAPE '\' AND last_key LIKE ? ESCAPE '\')`, rest, first)
	}

	var w where
	w.or(anyOf)
	addOrgFilters(&w, q.Department, q.Team)
	limit, args := w.paged(Page{Limit: q.Limit})

	return s.queryUsers(ctx, `SELECT `+userColumns+` FROM users`+w.sql()+` ORDER BY full_name, id`+limit, args...)
}

// ListUsers lists users by team and department ordered by full name.
func (s *Store) ListUsers(ctx context.Context, f UserFilter) ([]domain.User, error) {
	var w where
	addOrgFilters(&w, f.Department, f.Team)
	return s.queryUsers(ctx, `SELECT `+userColumns+` FROM users`+w.sql()+` ORDER BY team, full_name, id`, w.args...)
}

// GetUser returns the user with the given id or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// UpsertUser inserts u or updates the user with the same email
// (case-insensitively). It reports whether a new row was created and sets
// u.ID either way.
func (s *Store) UpsertUser(ctx context.Context, u *domain.User) (bool, error) {
	u.Email = strings.TrimSpace(u.Email)
	if u.Email == "" {
		return false, errors.New("user email is required")
	}
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	u.FullName = strings.TrimSpace(u.FullName)
	if u.FullName == "" {
		u.FullName = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	if u.EmploymentRate == 0 {
		u.EmploymentRate = 1
	}
	now := formatTimestamp(s.now())

	var existing string
	err := s.queryRow(ctx, `SELECT id FROM users WHERE email_key = ?`, strings.ToLower(u.Email)).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		u.ID = s.newID()
		_, err = s.exec(ctx, `INSERT INTO users (`+userColumns+`,
			first_key, last_key, full_key, email_key, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.FirstName, u.LastName, u.FullName, u.Email, u.Department, u.Team, u.Position, u.EmploymentRate,
			domain.NameKey(u.FirstName), domain.NameKey(u.LastName), domain.NameKey(u.FullName), domain.NameKey(u.Email),
			now, now,
		)
		if err != nil {
			return false, fmt.Errorf("inserting user: %w", err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("looking up user: %w", err)
	}

	u.ID = existing
	_, err = s.exec(ctx, `UPDATE users SET first_name = ?, last_name = ?, full_name = ?, email = ?,
		department = ?, team = ?, position = ?, employment_rate = ?,
		first_key = ?, last_key = ?, full_key = ?, email_key = ?, updated_at = ? WHERE id = ?`,
		u.FirstName, u.LastName, u.FullName, u.Email, u.Department, u.Team, u.Position, u.EmploymentRate,
		domain.NameKey(u.FirstName), domain.NameKey(u.LastName), domain.NameKey(u.FullName), domain.NameKey(u.Email),
		now, u.ID,
	)
	if err != nil {
		return false, fmt.Errorf("updating user: %w", err)
	}
	return false, nil
}

func addOrgFilters(w *where, department, team string) {
	if d := strings.TrimSpace(department); d != "" {
		w.eq("LOWER(department)", strings.ToLower(d))
	}
	if t := strings.TrimSpace(team); t != "" {
		w.eq("LOWER(team)", strings.ToLower(t))
	}
}

func (s *Store) queryUsers(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return out, nil
}

func scanUser(row scanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.FullName, &u.Email,
		&u.Department, &u.Team, &u.Position, &u.EmploymentRate); err != nil {
		return nil, err
	}
	return &u, nil
}
