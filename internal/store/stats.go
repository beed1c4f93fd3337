package store

import (
	"context"
	"fmt"
)

// Stats holds aggregate catalogue counts.
type Stats struct {
	ProjectsByStatus map[string]int `json:"projects_by_status"`
	Projects         int            `json:"projects"`
	Stages           int            `json:"stages"`
	Objects          int            `json:"objects"`
	Sections         int            `json:"sections"`
	Users            int            `json:"users"`
	Notes            int            `json:"notes"`
}

// Stats returns aggregate counts over the whole catalogue.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{ProjectsByStatus: map[string]int{}}

	rows, err := s.query(ctx, `SELECT status, COUNT(*) FROM projects GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting projects: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		st.ProjectsByStatus[status] = n
		st.Projects += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating project counts: %w", err)
	}

	counts := []struct {
		table Table
		dst   *int
	}{
		{Stages, &st.Stages},
		{Objects, &st.Objects},
		{Sections, &st.Sections},
		{Users, &st.Users},
		{Notes, &st.Notes},
	}
	for _, c := range counts {
		n, err := s.count(ctx, `SELECT COUNT(*) FROM `+string(c.table))
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", c.table, err)
		}
		*c.dst = n
	}
	return st, nil
}
