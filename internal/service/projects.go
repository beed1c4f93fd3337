package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/foreman/internal/apperr"
	"github.com/HendryAvila/foreman/internal/domain"
	"github.com/HendryAvila/foreman/internal/resolve"
	"github.com/HendryAvila/foreman/internal/store"
)

// CreateProjectInput holds the raw create_project arguments.
type CreateProjectInput struct {
	Name         string
	Description  string
	Manager      string
	LeadEngineer string
	Status       string
	Client       string
}

// CreateProject creates a project after resolving its manager and lead
// engineer and checking the name is free.
func (c *Catalogue) CreateProject(ctx context.Context, in CreateProjectInput) (*ProjectView, error) {
	name, err := requiredName("name", "project", in.Name)
	if err != nil {
		return nil, err
	}
	status, err := parseStatus(in.Status)
	if err != nil {
		return nil, err
	}

	var manager, lead *domain.User
	err = resolve.NewChain().
		StepIf(strings.TrimSpace(in.Manager) != "", "manager", c.personStep("manager", in.Manager, &manager)).
		StepIf(strings.TrimSpace(in.LeadEngineer) != "", "lead_engineer", c.personStep("lead_engineer", in.LeadEngineer, &lead)).
		Run(ctx)
	if err != nil {
		return nil, err
	}

	scope := projectNames()
	if err := c.checkUnique(ctx, scope, name); err != nil {
		return nil, err
	}
	if err := c.ValidateReferences(ctx, References{ManagerID: idOf(manager), LeadEngineerID: idOf(lead)}); err != nil {
		return nil, err
	}

	p := &domain.Project{
		Name:           name,
		Description:    strings.TrimSpace(in.Description),
		ManagerID:      userIDPtr(manager),
		LeadEngineerID: userIDPtr(lead),
		Status:         status,
		Client:         strings.TrimSpace(in.Client),
	}
	if err := c.store.CreateProject(ctx, p); err != nil {
		return nil, writeErr(err, "create the project", scope, name)
	}
	c.log.InfoContext(ctx, "project created", "project_id", p.ID, "name", p.Name)

	v := ProjectView{Project: *p}
	if manager != nil {
		v.ManagerName = manager.DisplayName()
	}
	if lead != nil {
		v.LeadEngineerName = lead.DisplayName()
	}
	return &v, nil
}

// ProjectQuery holds the search_projects arguments.
type ProjectQuery struct {
	Query   string
	Status  string
	Manager string
	Limit   int
	Offset  int
}

// SearchProjects lists projects by name substring, status and manager.
func (c *Catalogue) SearchProjects(ctx context.Context, q ProjectQuery) ([]ProjectView, error) {
	f := store.ProjectFilter{NameLike: strings.TrimSpace(q.Query), Page: NormalizePage(q.Limit, q.Offset)}
	if strings.TrimSpace(q.Status) != "" {
		st, err := parseStatus(q.Status)
		if err != nil {
			return nil, err
		}
		f.Status = st
	}

	var manager *domain.User
	err := resolve.NewChain().
		StepIf(strings.TrimSpace(q.Manager) != "", "manager", c.personStep("manager", q.Manager, &manager)).
		Run(ctx)
	if err != nil {
		return nil, err
	}
	f.ManagerID = idOf(manager)

	projects, err := c.store.FindProjects(ctx, f)
	if err != nil {
		return nil, apperr.StoreFailure("search projects", err)
	}
	out := make([]ProjectView, len(projects))
	for i, p := range projects {
		out[i] = c.projectView(ctx, p)
	}
	return out, nil
}

// UpdateProjectInput holds the update_project arguments. Nil pointers leave
// the field unchanged; Manager and LeadEngineer accept Clear.
type UpdateProjectInput struct {
	ProjectName  string
	NewName      *string
	Description  *string
	Status       *string
	Client       *string
	Manager      *string
	LeadEngineer *string
}

// UpdateProject applies the supplied changes to the project with exactly
// the given name.
func (c *Catalogue) UpdateProject(ctx context.Context, in UpdateProjectInput) (*ProjectView, error) {
	var status domain.ProjectStatus
	if in.Status != nil && strings.TrimSpace(*in.Status) != "" {
		st, err := parseStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		status = st
	}

	var p domain.Project
	manager, lead := newPersonChange(in.Manager), newPersonChange(in.LeadEngineer)
	err := resolve.NewChain().
		Step("project", c.projectStep(in.ProjectName, resolve.Exact, &p)).
		StepIf(manager.resolves(), "manager", c.personStep("manager", manager.query, &manager.user)).
		StepIf(lead.resolves(), "lead_engineer", c.personStep("lead_engineer", lead.query, &lead.user)).
		Run(ctx)
	if err != nil {
		return nil, err
	}

	scope := projectNames()
	name, err := c.rename(ctx, scope, p.Name, in.NewName, p.ID)
	if err != nil {
		return nil, err
	}
	p.Name = name
	p.Description = optionalText(in.Description, p.Description)
	p.Client = optionalText(in.Client, p.Client)
	if status != "" {
		p.Status = status
	}
	p.ManagerID = manager.apply(p.ManagerID)
	p.LeadEngineerID = lead.apply(p.LeadEngineerID)

	if err := c.ValidateReferences(ctx, References{
		ProjectID:      p.ID,
		ManagerID:      derefID(p.ManagerID),
		LeadEngineerID: derefID(p.LeadEngineerID),
	}); err != nil {
		return nil, err
	}
	if err := c.store.UpdateProject(ctx, &p); err != nil {
		return nil, writeErr(err, "update the project", scope, p.Name)
	}
	c.log.InfoContext(ctx, "project updated", "project_id", p.ID, "name", p.Name)

	v := c.projectView(ctx, p)
	return &v, nil
}

// DeleteProject deletes the project with exactly the given name. With
// children present it fails unless cascade is set.
func (c *Catalogue) DeleteProject(ctx context.Context, projectName string, cascade bool) (*CascadeReport, error) {
	var p domain.Project
	if err := resolve.NewChain().
		Step("project", c.projectStep(projectName, resolve.Exact, &p)).
		Run(ctx); err != nil {
		return nil, err
	}
	return c.deleteTree(ctx, treeDelete{
		entity:     "project",
		name:       p.Name,
		table:      store.Projects,
		id:         p.ID,
		cascade:    cascade,
		dependents: c.store.ProjectDependents,
		tree:       (*store.Store).DeleteProjectTree,
	})
}

func parseStatus(s string) (domain.ProjectStatus, error) {
	if strings.TrimSpace(s) == "" {
		return domain.ProjectActive, nil
	}
	st, err := domain.ParseProjectStatus(s)
	if err != nil {
		allowed := make([]string, len(domain.ProjectStatuses))
		for i, v := range domain.ProjectStatuses {
			allowed[i] = string(v)
		}
		return "", apperr.InvalidInput("status",
			fmt.Sprintf("Invalid status %q. Allowed values: %s.", s, strings.Join(allowed, ", ")))
	}
	return st, nil
}
