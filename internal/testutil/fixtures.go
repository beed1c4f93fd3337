package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/HendryAvila/foreman/internal/domain"
	"github.com/HendryAvila/foreman/internal/store"
)

var emailCounter atomic.Int64

// Date builds a UTC calendar date.
func Date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

// User options
type UserOption func(*domain.User)

func WithEmail(email string) UserOption {
	return func(u *domain.User) {
		u.Email = email
	}
}

func WithTeam(department, team string) UserOption {
	return func(u *domain.User) {
		u.Department = department
		u.Team = team
	}
}

func WithPosition(position string) UserOption {
	return func(u *domain.User) {
		u.Position = position
	}
}

// SeedUser inserts a user. Without WithEmail a unique address is generated.
func SeedUser(t *testing.T, s *store.Store, first, last string, opts ...UserOption) domain.User {
	t.Helper()
	u := &domain.User{
		FirstName:      first,
		LastName:       last,
		EmploymentRate: 1,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.Email == "" {
		n := emailCounter.Add(1)
		u.Email = fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(first), strings.ToLower(last), n)
	}
	if _, err := s.UpsertUser(context.Background(), u); err != nil {
		t.Fatalf("seeding user %s %s: %v", first, last, err)
	}
	return *u
}

// Project options
type ProjectOption func(*domain.Project)

func WithProjectStatus(st domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) {
		p.Status = st
	}
}

func WithManager(id string) ProjectOption {
	return func(p *domain.Project) {
		p.ManagerID = &id
	}
}

func WithLeadEngineer(id string) ProjectOption {
	return func(p *domain.Project) {
		p.LeadEngineerID = &id
	}
}

// SeedProject inserts an active project.
func SeedProject(t *testing.T, s *store.Store, name string, opts ...ProjectOption) domain.Project {
	t.Helper()
	p := &domain.Project{Name: name, Status: domain.ProjectActive}
	for _, opt := range opts {
		opt(p)
	}
	if err := s.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("seeding project %q: %v", name, err)
	}
	return *p
}

// Schedule options apply to stages, objects and sections.
type ScheduleOption func(start, end **time.Time)

func WithDates(start, end *time.Time) ScheduleOption {
	return func(s, e **time.Time) {
		*s = start
		*e = end
	}
}

// SeedStage inserts a stage into the project.
func SeedStage(t *testing.T, s *store.Store, projectID, name string, opts ...ScheduleOption) domain.Stage {
	t.Helper()
	st := &domain.Stage{ProjectID: projectID, Name: name}
	for _, opt := range opts {
		opt(&st.StartDate, &st.EndDate)
	}
	if err := s.CreateStage(context.Background(), st); err != nil {
		t.Fatalf("seeding stage %q: %v", name, err)
	}
	return *st
}

// SeedObject inserts an object into the stage. responsibleID may be empty.
func SeedObject(t *testing.T, s *store.Store, stage domain.Stage, name, responsibleID string, opts ...ScheduleOption) domain.Object {
	t.Helper()
	o := &domain.Object{StageID: stage.ID, ProjectID: stage.ProjectID, Name: name}
	if responsibleID != "" {
		o.ResponsibleID = &responsibleID
	}
	for _, opt := range opts {
		opt(&o.StartDate, &o.EndDate)
	}
	if err := s.CreateObject(context.Background(), o); err != nil {
		t.Fatalf("seeding object %q: %v", name, err)
	}
	return *o
}

// SeedSection inserts a section into the object.
func SeedSection(t *testing.T, s *store.Store, obj domain.Object, name, typ, responsibleID string) domain.Section {
	t.Helper()
	sec := &domain.Section{ObjectID: obj.ID, ProjectID: obj.ProjectID, Name: name, Type: typ}
	if responsibleID != "" {
		sec.ResponsibleID = &responsibleID
	}
	if err := s.CreateSection(context.Background(), sec); err != nil {
		t.Fatalf("seeding section %q: %v", name, err)
	}
	return *sec
}

// Tree is a small seeded hierarchy.
type Tree struct {
	Project  domain.Project
	Stage    domain.Stage
	Objects  []domain.Object
	Sections []domain.Section
}

// SeedTree seeds one project with one stage, the given number of objects
// and sectionsPerObject sections under each object.
func SeedTree(t *testing.T, s *store.Store, projectName string, objects, sectionsPerObject int) Tree {
	t.Helper()
	tr := Tree{Project: SeedProject(t, s, projectName)}
	tr.Stage = SeedStage(t, s, tr.Project.ID, "Stage 1")
	for i := 1; i <= objects; i++ {
		o := SeedObject(t, s, tr.Stage, fmt.Sprintf("Object %d", i), "")
		tr.Objects = append(tr.Objects, o)
		for j := 1; j <= sectionsPerObject; j++ {
			tr.Sections = append(tr.Sections, SeedSection(t, s, o, fmt.Sprintf("Section %d.%d", i, j), "", ""))
		}
	}
	return tr
}
