package service

import (
	"context"
	"strings"

	"github.com/HendryAvila/foreman/internal/apperr"
	"github.com/HendryAvila/foreman/internal/domain"
	"github.com/HendryAvila/foreman/internal/resolve"
	"github.com/HendryAvila/foreman/internal/store"
)

// UserQuery holds the search_users arguments.
type UserQuery struct {
	Query      string
	Department string
	Team       string
	Limit      int
}

// SearchUsers runs a free-text person search. The limit defaults to 10 and
// never exceeds resolve.MaxCandidates.
func (c *Catalogue) SearchUsers(ctx context.Context, q UserQuery) ([]domain.User, error) {
	text, err := resolve.PersonText("query", q.Query)
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > resolve.MaxCandidates {
		limit = resolve.MaxCandidates
	}
	users, err := c.store.SearchPeople(ctx, store.PersonQuery{
		Text:       text,
		Department: strings.TrimSpace(q.Department),
		Team:       strings.TrimSpace(q.Team),
		Limit:      limit,
	})
	if err != nil {
		return nil, apperr.StoreFailure("search users", err)
	}
	return users, nil
}

// Assignments summarises what a person is responsible for.
type Assignments struct {
	User domain.User `json:"user"`
	// Managed holds the projects the person manages or lead-engineers.
	Managed  []ProjectView `json:"projects"`
	Objects  []ObjectView  `json:"objects"`
	Sections []SectionView `json:"sections"`
}

// FindResponsible resolves person to exactly one user.
func (c *Catalogue) FindResponsible(ctx context.Context, person string) (*domain.User, error) {
	var u *domain.User
	if err := resolve.NewChain().
		Step("person", c.personStep("person", person, &u)).
		Run(ctx); err != nil {
		return nil, err
	}
	return u, nil
}

// WorkloadInput holds the get_user_workload arguments.
type WorkloadInput struct {
	Person      string
	ProjectName string
}

// Workload lists everything assigned to one person, optionally within one
// project.
func (c *Catalogue) Workload(ctx context.Context, in WorkloadInput) (*Assignments, error) {
	var (
		p domain.Project
		u *domain.User
	)
	err := resolve.NewChain().
		StepIf(strings.TrimSpace(in.ProjectName) != "", "project", c.projectStep(in.ProjectName, resolve.Fuzzy, &p)).
		Step("person", c.personStep("person", in.Person, &u)).
		Run(ctx)
	if err != nil {
		return nil, err
	}

	a := &Assignments{User: *u}
	projects, err := c.store.FindProjects(ctx, store.ProjectFilter{PersonID: u.ID})
	if err != nil {
		return nil, apperr.StoreFailure("load the workload", err)
	}
	for _, pr := range projects {
		if p.ID != "" && pr.ID != p.ID {
			continue
		}
		a.Managed = append(a.Managed, c.projectView(ctx, pr))
	}

	objects, err := c.store.FindObjects(ctx, store.ObjectFilter{ProjectID: p.ID, ResponsibleID: u.ID})
	if err != nil {
		return nil, apperr.StoreFailure("load the workload", err)
	}
	for _, o := range objects {
		a.Objects = append(a.Objects, c.objectView(ctx, o))
	}

	sections, err := c.store.FindSections(ctx, store.SectionFilter{ProjectID: p.ID, ResponsibleID: u.ID})
	if err != nil {
		return nil, apperr.StoreFailure("load the workload", err)
	}
	for _, sec := range sections {
		a.Sections = append(a.Sections, c.sectionView(ctx, sec, ""))
	}
	return a, nil
}

// TeamQuery holds the get_team arguments.
type TeamQuery struct {
	Team       string
	Department string
}

// Team lists users by team and department, grouped by team.
func (c *Catalogue) Team(ctx context.Context, q TeamQuery) ([]domain.User, error) {
	users, err := c.store.ListUsers(ctx, store.UserFilter{
		Department: strings.TrimSpace(q.Department),
		Team:       strings.TrimSpace(q.Team),
	})
	if err != nil {
		return nil, apperr.StoreFailure("list the team", err)
	}
	return users, nil
}
