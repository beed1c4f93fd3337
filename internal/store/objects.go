package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/HendryAvila/foreman/internal/domain"
)

// ObjectFilter selects objects. Zero fields are ignored.
type ObjectFilter struct {
	ProjectID     string
	StageID       string
	Name          string
	NameLike      string
	ResponsibleID string
	Page
}

const objectColumns = `id, stage_id, project_id, name, description, responsible_id, start_date, end_date, created_at, updated_at`

// CreateObject inserts o, assigning its ID and timestamps.
func (s *Store) CreateObject(ctx context.Context, o *domain.Object) error {
	now := s.now()
	o.ID = s.newID()
	o.Name = domain.CanonicalName(o.Name)
	o.CreatedAt, o.UpdatedAt = now, now

	_, err := s.exec(ctx, `INSERT INTO objects (`+objectColumns+`, name_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.StageID, o.ProjectID, o.Name, o.Description,
		nullableString(o.ResponsibleID),
		nullableDate(o.StartDate), nullableDate(o.EndDate),
		formatTimestamp(now), formatTimestamp(now),
		domain.NameKey(o.Name),
	)
	if err != nil {
		return fmt.Errorf("inserting object: %w", err)
	}
	return nil
}

// GetObject returns the object with the given id or ErrNotFound.
func (s *Store) GetObject(ctx context.Context, id string) (*domain.Object, error) {
	row := s.queryRow(ctx, `SELECT `+objectColumns+` FROM objects WHERE id = ?`, id)
	o, err := scanObject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting object: %w", err)
	}
	return o, nil
}

// FindObjects lists objects matching f ordered by name.
func (s *Store) FindObjects(ctx context.Context, f ObjectFilter) ([]domain.Object, error) {
	var w where
	if f.ProjectID != "" {
		w.eq("project_id", f.ProjectID)
	}
	if f.StageID != "" {
		w.eq("stage_id", f.StageID)
	}
	if f.Name != "" {
		w.eq("name", domain.CanonicalName(f.Name))
	}
	if f.NameLike != "" {
		w.contains("name_key", f.NameLike)
	}
	if f.ResponsibleID != "" {
		w.eq("responsible_id", f.ResponsibleID)
	}
	limit, args := w.paged(f.Page)

	rows, err := s.query(ctx, `SELECT `+objectColumns+` FROM objects`+w.sql()+` ORDER BY name, id`+limit, args...)
	if err != nil {
		return nil, fmt.Errorf("listing objects: %w", err)
	}
	defer rows.Close()

	var out []domain.Object
	for rows.Next() {
		o, err := scanObject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating objects: %w", err)
	}
	return out, nil
}

// UpdateObject persists every mutable field of o.
func (s *Store) UpdateObject(ctx context.Context, o *domain.Object) error {
	o.Name = domain.CanonicalName(o.Name)
	o.UpdatedAt = s.now()
	res, err := s.exec(ctx, `UPDATE objects SET name = ?, name_key = ?, description = ?, responsible_id = ?,
		start_date = ?, end_date = ?, updated_at = ? WHERE id = ?`,
		o.Name, domain.NameKey(o.Name), o.Description,
		nullableString(o.ResponsibleID),
		nullableDate(o.StartDate), nullableDate(o.EndDate),
		formatTimestamp(o.UpdatedAt), o.ID,
	)
	if err != nil {
		return fmt.Errorf("updating object: %w", err)
	}
	return requireRow(res)
}

func scanObject(row scanner) (*domain.Object, error) {
	var (
		o                    domain.Object
		responsible          sql.NullString
		start, end           sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&o.ID, &o.StageID, &o.ProjectID, &o.Name, &o.Description, &responsible,
		&start, &end, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	o.ResponsibleID = stringPtr(responsible)
	var err error
	if o.StartDate, err = parseNullableDate(start); err != nil {
		return nil, err
	}
	if o.EndDate, err = parseNullableDate(end); err != nil {
		return nil, err
	}
	o.CreatedAt = parseTimestamp(createdAt)
	o.UpdatedAt = parseTimestamp(updatedAt)
	return &o, nil
}
