// Package domain holds the catalogue entities shared by every layer: the
// project hierarchy (project, stage, object, section), the people referenced
// by it and free-form notes.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectArchived ProjectStatus = "archived"
	ProjectPaused   ProjectStatus = "paused"
	ProjectCanceled ProjectStatus = "canceled"
)

// ProjectStatuses lists every valid status in display order.
var ProjectStatuses = []ProjectStatus{ProjectActive, ProjectPaused, ProjectArchived, ProjectCanceled}

// ParseProjectStatus validates a user-supplied status.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	st := ProjectStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range ProjectStatuses {
		if st == v {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid status %q: must be one of active, paused, archived, canceled", s)
}

// Project is the root of the hierarchy. Its name is globally unique.
type Project struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description,omitempty"`
	ManagerID      *string       `json:"manager_id,omitempty"`
	LeadEngineerID *string       `json:"lead_engineer_id,omitempty"`
	Status         ProjectStatus `json:"status"`
	Client         string        `json:"client,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Stage belongs to one project; its name is unique within that project.
type Stage struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Object belongs to one stage and, denormalized, to the stage's project.
// Its name is unique within the stage.
type Object struct {
	ID            string     `json:"id"`
	StageID       string     `json:"stage_id"`
	ProjectID     string     `json:"project_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	ResponsibleID *string    `json:"responsible_id,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Section is the leaf of the hierarchy. Its name is unique within its object.
type Section struct {
	ID            string     `json:"id"`
	ObjectID      string     `json:"object_id"`
	ProjectID     string     `json:"project_id"`
	Name          string     `json:"name"`
	Type          string     `json:"type,omitempty"`
	Description   string     `json:"description,omitempty"`
	ResponsibleID *string    `json:"responsible_id,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// User is a person referenced by projects, objects and sections.
type User struct {
	ID             string  `json:"id" yaml:"-"`
	FirstName      string  `json:"first_name" yaml:"first_name"`
	LastName       string  `json:"last_name" yaml:"last_name"`
	FullName       string  `json:"full_name" yaml:"full_name"`
	Email          string  `json:"email" yaml:"email"`
	Department     string  `json:"department,omitempty" yaml:"department"`
	Team           string  `json:"team,omitempty" yaml:"team"`
	Position       string  `json:"position,omitempty" yaml:"position"`
	EmploymentRate float64 `json:"employment_rate" yaml:"employment_rate"`
}

// DisplayName returns the full name, falling back to first and last name.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Label renders the user for disambiguation lists.
func (u User) Label() string {
	label := u.DisplayName()
	if u.Email != "" {
		label += " <" + u.Email + ">"
	}
	if u.Position != "" {
		label += ", " + u.Position
	}
	return label
}

// Note is a free-form annotation optionally attached to a project or object.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	ProjectID *string   `json:"project_id,omitempty"`
	ObjectID  *string   `json:"object_id,omitempty"`
	AuthorID  *string   `json:"author_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CanonicalName trims surrounding whitespace. Names are stored and compared
// in this form.
func CanonicalName(s string) string {
	return strings.TrimSpace(s)
}

// NameKey is the lower-cased search key stored alongside every name.
func NameKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
