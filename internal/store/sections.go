package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/foreman/internal/domain"
)

// SectionFilter selects sections. Zero fields are ignored.
type SectionFilter struct {
	ProjectID     string
	ObjectID      string
	Name          string
	NameLike      string
	Type          string
	ResponsibleID string
	Page
}

const sectionColumns = `id, object_id, project_id, name, type, description, responsible_id, start_date, end_date, created_at, updated_at`

// CreateSection inserts sec, assigning its ID and timestamps.
func (s *Store) CreateSection(ctx context.Context, sec *domain.Section) error {
	now := s.now()
	sec.ID = s.newID()
	sec.Name = domain.CanonicalName(sec.Name)
	sec.CreatedAt, sec.UpdatedAt = now, now

	_, err := s.exec(ctx, `INSERT INTO sections (`+sectionColumns+`, name_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sec.ID, sec.ObjectID, sec.ProjectID, sec.Name, strings.TrimSpace(sec.Type), sec.Description,
		nullableString(sec.ResponsibleID),
		nullableDate(sec.StartDate), nullableDate(sec.EndDate),
		formatTimestamp(now), formatTimestamp(now),
		domain.NameKey(sec.Name),
	)
	if err != nil {
		return fmt.Errorf("inserting section: %w", err)
	}
	return nil
}

// GetSection returns the section with the given id or ErrNotFound.
func (s *Store) GetSection(ctx context.Context, id string) (*domain.Section, error) {
	row := s.queryRow(ctx, `SELECT `+sectionColumns+` FROM sections WHERE id = ?`, id)
	sec, err := scanSection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting section: %w", err)
	}
	return sec, nil
}

// FindSections lists sections matching f ordered by name.
func (s *Store) FindSections(ctx context.Context, f SectionFilter) ([]domain.Section, error) {
	var w where
	if f.ProjectID != "" {
		w.eq("project_id", f.ProjectID)
	}
	if f.ObjectID != "" {
		w.eq("object_id", f.ObjectID)
	}
	if f.Name != "" {
		w.eq("name", domain.CanonicalName(f.Name))
	}
	if f.NameLike != "" {
		w.contains("name_key", f.NameLike)
	}
	if f.Type != "" {
		w.eq("LOWER(type)", strings.ToLower(strings.TrimSpace(f.Type)))
	}
	if f.ResponsibleID != "" {
		w.eq("responsible_id", f.ResponsibleID)
	}
	limit, args := w.paged(f.Page)

	rows, err := s.query(ctx, `SELECT `+sectionColumns+` FROM sections`+w.sql()+` ORDER BY name, id`+limit, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sections: %w", err)
	}
	defer rows.Close()

	var out []domain.Section
	for rows.Next() {
		sec, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sections: %w", err)
	}
	return out, nil
}

// UpdateSection persists every mutable field of sec.
func (s *Store) UpdateSection(ctx context.Context, sec *domain.Section) error {
	sec.Name = domain.CanonicalName(sec.Name)
	sec.UpdatedAt = s.now()
	res, err := s.exec(ctx, `UPDATE sections SET name = ?, name_key = ?, type = ?, description = ?,
		responsible_id = ?, start_date = ?, end_date = ?, updated_at = ? WHERE id = ?`,
		sec.Name, domain.NameKey(sec.Name), strings.TrimSpace(sec.Type), sec.Description,
		nullableString(sec.ResponsibleID),
		nullableDate(sec.StartDate), nullableDate(sec.EndDate),
		formatTimestamp(sec.UpdatedAt), sec.ID,
	)
	if err != nil {
		return fmt.Errorf("updating section: %w", err)
	}
	return requireRow(res)
}

func scanSection(row scanner) (*domain.Section, error) {
	var (
		sec                  domain.Section
		responsible          sql.NullString
		start, end           sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&sec.ID, &sec.ObjectID, &sec.ProjectID, &sec.Name, &sec.Type, &sec.Description,
		&responsible, &start, &end, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	sec.ResponsibleID = stringPtr(responsible)
	var err error
	if sec.StartDate, err = parseNullableDate(start); err != nil {
		return nil, err
	}
	if sec.EndDate, err = parseNullableDate(end); err != nil {
		return nil, err
	}
	sec.CreatedAt = parseTimestamp(createdAt)
	sec.UpdatedAt = parseTimestamp(updatedAt)
	return &sec, nil
}
