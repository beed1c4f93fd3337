package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/HendryAvila/foreman/internal/domain"
)

// StageFilter selects stages. Zero fields are ignored.
type StageFilter struct {
	ProjectID string
	Name      string
	NameLike  string
	Page
}

const stageColumns = `id, project_id, name, description, start_date, end_date, created_at, updated_at`

// CreateStage inserts st, assigning its ID and timestamps.
func (s *Store) CreateStage(ctx context.Context, st *domain.Stage) error {
	now := s.now()
	st.ID = s.newID()
	st.Name = domain.CanonicalName(st.Name)
	st.CreatedAt, st.UpdatedAt = now, now

	_, err := s.exec(ctx, `INSERT INTO stages (`+stageColumns+`, name_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.ProjectID, st.Name, st.Description,
		nullableDate(st.StartDate), nullableDate(st.EndDate),
		formatTimestamp(now), formatTimestamp(now),
		domain.NameKey(st.Name),
	)
	if err != nil {
		return fmt.Errorf("inserting stage: %w", err)
	}
	return nil
}

// GetStage returns the stage with the given id or ErrNotFound.
func (s *Store) GetStage(ctx context.Context, id string) (*domain.Stage, error) {
	row := s.queryRow(ctx, `SELECT `+stageColumns+` FROM stages WHERE id = ?`, id)
	st, err := scanStage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting stage: %w", err)
	}
	return st, nil
}

// FindStages lists stages matching f ordered by start date then name.
func (s *Store) FindStages(ctx context.Context, f StageFilter) ([]domain.Stage, error) {
	var w where
	if f.ProjectID != "" {
		w.eq("project_id", f.ProjectID)
	}
	if f.Name != "" {
		w.eq("name", domain.CanonicalName(f.Name))
	}
	if f.NameLike != "" {
		w.contains("name_key", f.NameLike)
	}
	limit, args := w.paged(f.Page)

	rows, err := s.query(ctx, `SELECT `+stageColumns+` FROM stages`+w.sql()+
		` ORDER BY CASE WHEN start_date IS NULL THEN 1 ELSE 0 END, start_date, name`+limit, args...)
	if err != nil {
		return nil, fmt.Errorf("listing stages: %w", err)
	}
	defer rows.Close()

	var out []domain.Stage
	for rows.Next() {
		st, err := scanStage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stages: %w", err)
	}
	return out, nil
}

// UpdateStage persists every mutable field of st.
func (s *Store) UpdateStage(ctx context.Context, st *domain.Stage) error {
	st.Name = domain.CanonicalName(st.Name)
	st.UpdatedAt = s.now()
	res, err := s.exec(ctx, `UPDATE stages SET name = ?, name_key = ?, description = ?,
		start_date = ?, end_date = ?, updated_at = ? WHERE id = ?`,
		st.Name, domain.NameKey(st.Name), st.Description,
		nullableDate(st.StartDate), nullableDate(st.EndDate),
		formatTimestamp(st.UpdatedAt), st.ID,
	)
	if err != nil {
		return fmt.Errorf("updating stage: %w", err)
	}
	return requireRow(res)
}

func scanStage(row scanner) (*domain.Stage, error) {
	var (
		st                   domain.Stage
		start, end           sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&st.ID, &st.ProjectID, &st.Name, &st.Description, &start, &end, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if st.StartDate, err = parseNullableDate(start); err != nil {
		return nil, err
	}
	if st.EndDate, err = parseNullableDate(end); err != nil {
		return nil, err
	}
	st.CreatedAt = parseTimestamp(createdAt)
	st.UpdatedAt = parseTimestamp(updatedAt)
	return &st, nil
}
