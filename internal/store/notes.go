package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/HendryAvila/foreman/internal/domain"
)

// NoteFilter selects notes, newest first.
type NoteFilter struct {
	ProjectID string
	Query     string
	Page
}

const noteColumns = `id, title, content, project_id, object_id, author_id, created_at`

// CreateNote inserts n, assigning its ID and creation time.
func (s *Store) CreateNote(ctx context.Context, n *domain.Note) error {
	n.ID = s.newID()
	n.CreatedAt = s.now()
	n.Title = strings.TrimSpace(n.Title)

	_, err := s.exec(ctx, `INSERT INTO notes (`+noteColumns+`, search_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Title, n.Content,
		nullableString(n.ProjectID), nullableString(n.ObjectID), nullableString(n.AuthorID),
		formatTimestamp(n.CreatedAt),
		strings.ToLower(n.Title+"\n"+n.Content),
	)
	if err != nil {
		return fmt.Errorf("inserting note: %w", err)
	}
	return nil
}

// SearchNotes lists notes matching f.
func (s *Store) SearchNotes(ctx context.Context, f NoteFilter) ([]domain.Note, error) {
	var w where
	if f.ProjectID != "" {
		w.eq("project_id", f.ProjectID)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		w.contains("search_key", q)
	}
	limit, args := w.paged(f.Page)

	rows, err := s.query(ctx, `SELECT `+noteColumns+` FROM notes`+w.sql()+` ORDER BY created_at DESC, id`+limit, args...)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	var out []domain.Note
	for rows.Next() {
		var (
			n                       domain.Note
			project, object, author sql.NullString
			createdAt               string
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &project, &object, &author, &createdAt); err != nil {
			return nil, err
		}
		n.ProjectID = stringPtr(project)
		n.ObjectID = stringPtr(object)
		n.AuthorID = stringPtr(author)
		n.CreatedAt = parseTimestamp(createdAt)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notes: %w", err)
	}
	return out, nil
}
