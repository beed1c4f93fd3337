package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/HendryAvila/foreman/internal/domain"
)

// ProjectFilter selects projects. Zero fields are ignored.
type ProjectFilter struct {
	// Name matches the canonical name exactly.
	Name string
	// NameLike matches a case-insensitive substring of the name.
	NameLike string
	Status   domain.ProjectStatus
	// PersonID matches projects managed or lead-engineered by the user.
	PersonID  string
	ManagerID string
	Page
}

const projectColumns = `id, name, description, manager_id, lead_engineer_id, status, client, created_at, updated_at`

// CreateProject inserts p, assigning its ID and timestamps.
func (s *Store) CreateProject(ctx context.Context, p *domain.Project) error {
	now := s.now()
	p.ID = s.newID()
	p.Name = domain.CanonicalName(p.Name)
	if p.Status == "" {
		p.Status = domain.ProjectActive
	}
	p.CreatedAt, p.UpdatedAt = now, now

	_, err := s.exec(ctx, `INSERT INTO projects (`+projectColumns+`, name_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description,
		nullableString(p.ManagerID), nullableString(p.LeadEngineerID),
		string(p.Status), p.Client,
		formatTimestamp(now), formatTimestamp(now),
		domain.NameKey(p.Name),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

// GetProject returns the project with the given id or ErrNotFound.
func (s *Store) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	row := s.queryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return p, nil
}

// FindProjects lists projects matching f ordered by name.
func (s *Store) FindProjects(ctx context.Context, f ProjectFilter) ([]domain.Project, error) {
	var w where
	if f.Name != "" {
		w.eq("name", domain.CanonicalName(f.Name))
	}
	if f.NameLike != "" {
		w.contains("name_key", f.NameLike)
	}
	if f.Status != "" {
		w.eq("status", string(f.Status))
	}
	if f.ManagerID != "" {
		w.eq("manager_id", f.ManagerID)
	}
	if f.PersonID != "" {
		w.add("(manager_id = ? OR lead_engineer_id = ?)", f.PersonID, f.PersonID)
	}
	limit, args := w.paged(f.Page)

	rows, err := s.query(ctx, `SELECT `+projectColumns+` FROM projects`+w.sql()+` ORDER BY name`+limit, args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var out []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return out, nil
}

// UpdateProject persists every mutable field of p.
func (s *Store) UpdateProject(ctx context.Context, p *domain.Project) error {
	p.Name = domain.CanonicalName(p.Name)
	p.UpdatedAt = s.now()
	res, err := s.exec(ctx, `UPDATE projects SET name = ?, name_key = ?, description = ?, manager_id = ?,
		lead_engineer_id = ?, status = ?, client = ?, updated_at = ? WHERE id = ?`,
		p.Name, domain.NameKey(p.Name), p.Description,
		nullableString(p.ManagerID), nullableString(p.LeadEngineerID),
		string(p.Status), p.Client, formatTimestamp(p.UpdatedAt), p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	return requireRow(res)
}

func scanProject(row scanner) (*domain.Project, error) {
	var (
		p                    domain.Project
		manager, lead        sql.NullString
		status               string
		createdAt, updatedAt string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &manager, &lead, &status, &p.Client, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.ManagerID = stringPtr(manager)
	p.LeadEngineerID = stringPtr(lead)
	p.Status = domain.ProjectStatus(status)
	p.CreatedAt = parseTimestamp(createdAt)
	p.UpdatedAt = parseTimestamp(updatedAt)
	return &p, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
