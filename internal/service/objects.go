package service

import (
	"context"
	"strings"

	"github.com/HendryAvila/foreman/internal/apperr"
	"github.com/HendryAvila/foreman/internal/domain"
	"github.com/HendryAvila/foreman/internal/resolve"
	"github.com/HendryAvila/foreman/internal/store"
)

// CreateObjectInput holds the create_object arguments.
type CreateObjectInput struct {
	ProjectName string
	StageName   string
	Name        string
	Description string
	Responsible string
	StartDate   string
	EndDate     string
}

// CreateObject adds an object to a stage. Project and stage are found by
// fuzzy name; the responsible person is resolved concurrently.
func (c *Catalogue) CreateObject(ctx context.Context, in CreateObjectInput) (*ObjectView, error) {
	name, err := requiredName("name", "object", in.Name)
	if err != nil {
		return nil, err
	}
	start, end, err := parseDates(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	var (
		p           domain.Project
		st          domain.Stage
		responsible *domain.User
	)
	err = resolve.NewChain().
		Step("project", c.projectStep(in.ProjectName, resolve.Fuzzy, &p)).
		Step("stage", c.stageStep(&p, in.StageName, resolve.Fuzzy, &st), "project").
		StepIf(strings.TrimSpace(in.Responsible) != "", "responsible", c.personStep("responsible", in.Responsible, &responsible)).
		Run(ctx)
	if err != nil {
		return nil, err
	}

	scope := objectNames(st)
	if err := c.checkUnique(ctx, scope, name); err != nil {
		return nil, err
	}
	if err := c.ValidateReferences(ctx, References{
		ProjectID:     p.ID,
		StageID:       st.ID,
		ResponsibleID: idOf(responsible),
	}); err != nil {
		return nil, err
	}

	o := &domain.Object{
		StageID:       st.ID,
		ProjectID:     p.ID,
		Name:          name,
		Description:   strings.TrimSpace(in.Description),
		ResponsibleID: userIDPtr(responsible),
		StartDate:     start,
		EndDate:       end,
	}
	if err := c.store.CreateObject(ctx, o); err != nil {
		return nil, writeErr(err, "create the object", scope, name)
	}
	c.log.InfoContext(ctx, "object created", "object_id", o.ID, "stage_id", st.ID, "name", o.Name)

	v := &ObjectView{Object: *o, ProjectName: p.Name, StageName: st.Name}
	if responsible != nil {
		v.ResponsibleName = responsible.DisplayName()
	}
	return v, nil
}

// ObjectQuery holds the search_objects arguments.
type ObjectQuery struct {
	ProjectName string
	StageName   string
	Query       string
	Responsible string
	Limit       int
	Offset      int
}

// SearchObjects lists objects filtered by project, stage, name substring
// and responsible person.
func (c *Catalogue) SearchObjects(ctx context.Context, q ObjectQuery) ([]ObjectView, error) {
	hasProject := strings.TrimSpace(q.ProjectName) != ""
	hasStage := strings.TrimSpace(q.StageName) != ""
	if hasStage && !hasProject {
		return nil, apperr.InvalidInput("stage_name", "'stage_name' requires 'project_name'.")
	}

	var (
		p           domain.Project
		st          domain.Stage
		responsible *domain.User
	)
	err := resolve.NewChain().
		StepIf(hasProject, "project", c.projectStep(q.ProjectName, resolve.Fuzzy, &p)).
		StepIf(hasStage, "stage", c.stageStep(&p, q.StageName, resolve.Fuzzy, &st), "project").
		StepIf(strings.TrimSpace(q.Responsible) != "", "responsible", c.personStep("responsible", q.Responsible, &responsible)).
		Run(ctx)
	if err != nil {
		return nil, err
	}

	objects, err := c.store.FindObjects(ctx, store.ObjectFilter{
		ProjectID:     p.ID,
		StageID:       st.ID,
		NameLike:      strings.TrimSpace(q.Query),
		ResponsibleID: idOf(responsible),
		Page:          NormalizePage(q.Limit, q.Offset),
	})
	if err != nil {
		return nil, apperr.StoreFailure("search objects", err)
	}
	out := make([]ObjectView, len(objects))
	for i, o := range objects {
		out[i] = c.objectView(ctx, o)
	}
	return out, nil
}

// UpdateObjectInput holds the update_object arguments. Dates and
// Responsible accept Clear.
type UpdateObjectInput struct {
	ProjectName string
	StageName   string
	ObjectName  string
	NewName     *string
	Description *string
	Responsible *string
	StartDate   *string
	EndDate     *string
}

// UpdateObject applies the supplied changes to one object.
func (c *Catalogue) UpdateObject(ctx context.Context, in UpdateObjectInput) (*ObjectView, error) {
	var (
		p  domain.Project
		st domain.Stage
		o  domain.Object
	)
	responsible := newPersonChange(in.Responsible)
	err := resolve.NewChain().
		Step("project", c.projectStep(in.ProjectName, resolve.Fuzzy, &p)).
		Step("stage", c.stageStep(&p, in.StageName, resolve.Fuzzy, &st), "project").
		Step("object", c.objectStep(&p, &st, in.ObjectName, resolve.Exact, &o), "stage").
		StepIf(responsible.resolves(), "responsible", c.personStep("responsible", responsible.query, &responsible.user)).
		Run(ctx)
	if err != nil {
		return nil, err
	}

	start, end, err := applySchedule(in.StartDate, in.EndDate, o.StartDate, o.EndDate)
	if err != nil {
		return nil, err
	}
	scope := objectNames(st)
	name, err := c.rename(ctx, scope, o.Name, in.NewName, o.ID)
	if err != nil {
		return nil, err
	}
	o.Name = name
	o.Description = optionalText(in.Description, o.Description)
	o.ResponsibleID = responsible.apply(o.ResponsibleID)
	o.StartDate, o.EndDate = start, end

	if err := c.ValidateReferences(ctx, References{
		ProjectID:     p.ID,
		StageID:       st.ID,
		ObjectID:      o.ID,
		ResponsibleID: derefID(o.ResponsibleID),
	}); err != nil {
		return nil, err
	}
	if err := c.store.UpdateObject(ctx, &o); err != nil {
		return nil, writeErr(err, "update the object", scope, o.Name)
	}
	c.log.InfoContext(ctx, "object updated", "object_id", o.ID, "name", o.Name)

	return &ObjectView{
		Object:          o,
		ProjectName:     p.Name,
		StageName:       st.Name,
		ResponsibleName: c.userName(ctx, o.ResponsibleID),
	}, nil
}

// DeleteObject deletes one object, with its sections when cascade is set.
func (c *Catalogue) DeleteObject(ctx context.Context, projectName, stageName, objectName string, cascade bool) (*CascadeReport, error) {
	var (
		p  domain.Project
		st domain.Stage
		o  domain.Object
	)
	err := resolve.NewChain().
		Step("project", c.projectStep(projectName, resolve.Fuzzy, &p)).
		Step("stage", c.stageStep(&p, stageName, resolve.Fuzzy, &st), "project").
		Step("object", c.objectStep(&p, &st, objectName, resolve.Exact, &o), "stage").
		Run(ctx)
	if err != nil {
		return nil, err
	}
	return c.deleteTree(ctx, treeDelete{
		entity:     "object",
		name:       o.Name,
		table:      store.Objects,
		id:         o.ID,
		cascade:    cascade,
		dependents: c.store.ObjectDependents,
		tree:       (*store.Store).DeleteObjectTree,
	})
}
