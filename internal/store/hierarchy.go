package store

import (
	"context"
	"fmt"

	"github.com/HendryAvila/foreman/internal/domain"
)

// Table names a catalogue table for the generic existence and uniqueness
// primitives.
type Table string

const (
	Projects Table = "projects"
	Stages   Table = "stages"
	Objects  Table = "objects"
	Sections Table = "sections"
	Users    Table = "users"
	Notes    Table = "notes"
)

// scopeColumn is the parent column within which names must be unique.
func (t Table) scopeColumn() string {
	switch t {
	case Stages:
		return "project_id"
	case Objects:
		return "stage_id"
	case Sections:
		return "object_id"
	default:
		return ""
	}
}

func (t Table) valid() bool {
	switch t {
	case Projects, Stages, Objects, Sections, Users, Notes:
		return true
	}
	return false
}

// Exists reports whether a row with the given id exists in t.
func (s *Store) Exists(ctx context.Context, t Table, id string) (bool, error) {
	if !t.valid() {
		return false, fmt.Errorf("store: unknown table %q", t)
	}
	n, err := s.count(ctx, `SELECT COUNT(*) FROM `+string(t)+` WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("checking %s existence: %w", t, err)
	}
	return n > 0, nil
}

// NameTaken reports whether another row of t already uses name within the
// scope, ignoring case. scopeID is ignored for projects; excludeID (may be
// empty) is the row being renamed.
func (s *Store) NameTaken(ctx context.Context, t Table, scopeID, name, excludeID string) (bool, error) {
	var w where
	switch t {
	case Projects:
	case Stages, Objects, Sections:
		w.eq(t.scopeColumn(), scopeID)
	default:
		return false, fmt.Errorf("store: %q has no scoped names", t)
	}
	w.eq("name_key", domain.NameKey(name))
	if excludeID != "" {
		w.add("id <> ?", excludeID)
	}
	n, err := s.count(ctx, `SELECT COUNT(*) FROM `+string(t)+w.sql(), w.args...)
	if err != nil {
		return false, fmt.Errorf("checking %s name: %w", t, err)
	}
	return n > 0, nil
}

// Dependents counts the descendants of one parent, level by level.
type Dependents struct {
	Stages   int `json:"stages"`
	Objects  int `json:"objects"`
	Sections int `json:"sections"`
}

// Total is the number of descendant records across all levels.
func (d Dependents) Total() int {
	return d.Stages + d.Objects + d.Sections
}

// ProjectDependents counts stages, objects and sections of a project.
func (s *Store) ProjectDependents(ctx context.Context, projectID string) (Dependents, error) {
	var (
		d   Dependents
		err error
	)
	if d.Stages, err = s.count(ctx, `SELECT COUNT(*) FROM stages WHERE project_id = ?`, projectID); err != nil {
		return d, fmt.Errorf("counting stages: %w", err)
	}
	if d.Objects, err = s.count(ctx, `SELECT COUNT(*) FROM objects WHERE project_id = ?`, projectID); err != nil {
		return d, fmt.Errorf("counting objects: %w", err)
	}
	if d.Sections, err = s.count(ctx, `SELECT COUNT(*) FROM sections WHERE project_id = ?`, projectID); err != nil {
		return d, fmt.Errorf("counting sections: %w", err)
	}
	return d, nil
}

// StageDependents counts objects and sections of a stage.
func (s *Store) StageDependents(ctx context.Context, stageID string) (Dependents, error) {
	var (
		d   Dependents
		err error
	)
	if d.Objects, err = s.count(ctx, `SELECT COUNT(*) FROM objects WHERE stage_id = ?`, stageID); err != nil {
		return d, fmt.Errorf("counting objects: %w", err)
	}
	if d.Sections, err = s.count(ctx, `SELECT COUNT(*) FROM sections
		WHERE object_id IN (SELECT id FROM objects WHERE stage_id = ?)`, stageID); err != nil {
		return d, fmt.Errorf("counting sections: %w", err)
	}
	return d, nil
}

// ObjectDependents counts sections of an object.
func (s *Store) ObjectDependents(ctx context.Context, objectID string) (Dependents, error) {
	n, err := s.count(ctx, `SELECT COUNT(*) FROM sections WHERE object_id = ?`, objectID)
	if err != nil {
		return Dependents{}, fmt.Errorf("counting sections: %w", err)
	}
	return Dependents{Sections: n}, nil
}

// DeleteProjectTree deletes a project and every descendant bottom-up and
// returns how many descendants were removed at each level. Callers run it
// inside WithinTx.
func (s *Store) DeleteProjectTree(ctx context.Context, projectID string) (Dependents, error) {
	var d Dependents
	steps := []struct {
		what  string
		query string
		n     *int
	}{
		{"sections", `DELETE FROM sections WHERE project_id = ?`, &d.Sections},
		{"objects", `DELETE FROM objects WHERE project_id = ?`, &d.Objects},
		{"stages", `DELETE FROM stages WHERE project_id = ?`, &d.Stages},
	}
	for _, st := range steps {
		n, err := s.deleteMany(ctx, st.query, projectID)
		if err != nil {
			return d, fmt.Errorf("deleting %s: %w", st.what, err)
		}
		*st.n = n
	}
	if err := s.deleteOne(ctx, Projects, projectID); err != nil {
		return d, err
	}
	return d, nil
}

// DeleteStageTree deletes a stage with its objects and sections.
func (s *Store) DeleteStageTree(ctx context.Context, stageID string) (Dependents, error) {
	var (
		d   Dependents
		err error
	)
	if d.Sections, err = s.deleteMany(ctx, `DELETE FROM sections
		WHERE object_id IN (SELECT id FROM objects WHERE stage_id = ?)`, stageID); err != nil {
		return d, fmt.Errorf("deleting sections: %w", err)
	}
	if d.Objects, err = s.deleteMany(ctx, `DELETE FROM objects WHERE stage_id = ?`, stageID); err != nil {
		return d, fmt.Errorf("deleting objects: %w", err)
	}
	if err := s.deleteOne(ctx, Stages, stageID); err != nil {
		return d, err
	}
	return d, nil
}

// DeleteObjectTree deletes an object with its sections.
func (s *Store) DeleteObjectTree(ctx context.Context, objectID string) (Dependents, error) {
	var (
		d   Dependents
		err error
	)
	if d.Sections, err = s.deleteMany(ctx, `DELETE FROM sections WHERE object_id = ?`, objectID); err != nil {
		return d, fmt.Errorf("deleting sections: %w", err)
	}
	if err := s.deleteOne(ctx, Objects, objectID); err != nil {
		return d, err
	}
	return d, nil
}

// Delete removes one row of t. Deleting a parent that still has children
// fails with ErrReference.
func (s *Store) Delete(ctx context.Context, t Table, id string) error {
	if !t.valid() {
		return fmt.Errorf("store: unknown table %q", t)
	}
	return s.deleteOne(ctx, t, id)
}

func (s *Store) deleteMany(ctx context.Context, query string, args ...any) (int, error) {
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Store) deleteOne(ctx context.Context, t Table, id string) error {
	res, err := s.exec(ctx, `DELETE FROM `+string(t)+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", t, err)
	}
	return requireRow(res)
}
