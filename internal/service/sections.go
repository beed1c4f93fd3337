package service

import (
	"context"
	"strings"

	"github.com/HendryAvila/foreman/internal/apperr"
	"github.com/HendryAvila/foreman/internal/domain"
	"github.com/HendryAvila/foreman/internal/resolve"
	"github.com/HendryAvila/foreman/internal/store"
)

// sectionParents resolves the project, the optional stage and the object a
// section lives in. Steps are declared project, stage, object; the caller
// appends the section and people steps.
type sectionParents struct {
	project domain.Project
	stage   domain.Stage
	object  domain.Object
}

func (c *Catalogue) sectionChain(sp *sectionParents, projectName, stageName, objectName string) *resolve.Chain {
	hasStage := strings.TrimSpace(stageName) != ""
	var stage *domain.Stage
	if hasStage {
		stage = &sp.stage
	}
	return resolve.NewChain().
		Step("project", c.projectStep(projectName, resolve.Fuzzy, &sp.project)).
		StepIf(hasStage, "stage", c.stageStep(&sp.project, stageName, resolve.Fuzzy, &sp.stage), "project").
		Step("object", c.objectStep(&sp.project, stage, objectName, resolve.Fuzzy, &sp.object), "project", "stage")
}

// CreateSectionInput holds the create_section arguments.
type CreateSectionInput struct {
	ProjectName string
	StageName   string
	ObjectName  string
	Name        string
	Type        string
	Description string
	Responsible string
	StartDate   string
	EndDate     string
}

// CreateSection adds a section to an object found by fuzzy name within the
// project and, when given, the stage.
func (c *Catalogue) CreateSection(ctx context.Context, in CreateSectionInput) (*SectionView, error) {
	name, err := requiredName("name", "section", in.Name)
	if err != nil {
		return nil, err
	}
	start, end, err := parseDates(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	var (
		sp          sectionParents
		responsible *domain.User
	)
	err = c.sectionChain(&sp, in.ProjectName, in.StageName, in.ObjectName).
		StepIf(strings.TrimSpace(in.Responsible) != "", "responsible", c.personStep("responsible", in.Responsible, &responsible)).
		Run(ctx)
	if err != nil {
		return nil, err
	}

	scope := sectionNames(sp.object)
	if err := c.checkUnique(ctx, scope, name); err != nil {
		return nil, err
	}
	if err := c.ValidateReferences(ctx, References{
		ProjectID:     sp.project.ID,
		ObjectID:      sp.object.ID,
		ResponsibleID: idOf(responsible),
	}); err != nil {
		return nil, err
	}

	sec := &domain.Section{
		ObjectID:      sp.object.ID,
		ProjectID:     sp.project.ID,
		Name:          name,
		Type:          strings.TrimSpace(in.Type),
		Description:   strings.TrimSpace(in.Description),
		ResponsibleID: userIDPtr(responsible),
		StartDate:     start,
		EndDate:       end,
	}
	if err := c.store.CreateSection(ctx, sec); err != nil {
		return nil, writeErr(err, "create the section", scope, name)
	}
	c.log.InfoContext(ctx, "section created", "section_id", sec.ID, "object_id", sp.object.ID, "name", sec.Name)

	v := &SectionView{Section: *sec, ProjectName: sp.project.Name, ObjectName: sp.object.Name}
	if responsible != nil {
		v.ResponsibleName = responsible.DisplayName()
	}
	return v, nil
}

// SectionQuery holds the search_sections arguments.
type SectionQuery struct {
	ProjectName string
	ObjectName  string
	Query       string
	Type        string
	Responsible string
	Limit       int
	Offset      int
}

// SearchSections lists sections filtered by project, object, name
// substring, type and responsible person. Without a project the object is
// looked up across every project.
func (c *Catalogue) SearchSections(ctx context.Context, q SectionQuery) ([]SectionView, error) {
	hasProject := strings.TrimSpace(q.ProjectName) != ""
	hasObject := strings.TrimSpace(q.ObjectName) != ""

	var (
		p           domain.Project
		o           domain.Object
		responsible *domain.User
	)
	var project *domain.Project
	if hasProject {
		project = &p
	}
	err := resolve.NewChain().
		StepIf(hasProject, "project", c.projectStep(q.ProjectName, resolve.Fuzzy, &p)).
		StepIf(hasObject, "object", c.objectStep(project, nil, q.ObjectName, resolve.Fuzzy, &o), "project").
		StepIf(strings.TrimSpace(q.Responsible) != "", "responsible", c.personStep("responsible", q.Responsible, &responsible)).
		Run(ctx)
	if err != nil {
		return nil, err
	}

	sections, err := c.store.FindSections(ctx, store.SectionFilter{
		ProjectID:     p.ID,
		ObjectID:      o.ID,
		NameLike:      strings.TrimSpace(q.Query),
		Type:          q.Type,
		ResponsibleID: idOf(responsible),
		Page:          NormalizePage(q.Limit, q.Offset),
	})
	if err != nil {
		return nil, apperr.StoreFailure("search sections", err)
	}
	out := make([]SectionView, len(sections))
	for i, sec := range sections {
		out[i] = c.sectionView(ctx, sec, o.Name)
	}
	return out, nil
}

// UpdateSectionInput holds the update_section arguments. Dates and
// Responsible accept Clear.
type UpdateSectionInput struct {
	ProjectName string
	StageName   string
	ObjectName  string
	SectionName string
	NewName     *string
	Type        *string
	Description *string
	Responsible *string
	StartDate   *string
	EndDate     *string
}

// UpdateSection applies the supplied changes to one section.
func (c *Catalogue) UpdateSection(ctx context.Context, in UpdateSectionInput) (*SectionView, error) {
	var (
		sp  sectionParents
		sec domain.Section
	)
	responsible := newPersonChange(in.Responsible)
	err := c.sectionChain(&sp, in.ProjectName, in.StageName, in.ObjectName).
		Step("section", c.sectionStep(&sp.object, in.SectionName, &sec), "object").
		StepIf(responsible.resolves(), "responsible", c.personStep("responsible", responsible.query, &responsible.user)).
		Run(ctx)
	if err != nil {
		return nil, err
	}

	start, end, err := applySchedule(in.StartDate, in.EndDate, sec.StartDate, sec.EndDate)
	if err != nil {
		return nil, err
	}
	scope := sectionNames(sp.object)
	name, err := c.rename(ctx, scope, sec.Name, in.NewName, sec.ID)
	if err != nil {
		return nil, err
	}
	sec.Name = name
	sec.Type = optionalText(in.Type, sec.Type)
	sec.Description = optionalText(in.Description, sec.Description)
	sec.ResponsibleID = responsible.apply(sec.ResponsibleID)
	sec.StartDate, sec.EndDate = start, end

	if err := c.ValidateReferences(ctx, References{
		ProjectID:     sp.project.ID,
		ObjectID:      sp.object.ID,
		ResponsibleID: derefID(sec.ResponsibleID),
	}); err != nil {
		return nil, err
	}
	if err := c.store.UpdateSection(ctx, &sec); err != nil {
		return nil, writeErr(err, "update the section", scope, sec.Name)
	}
	c.log.InfoContext(ctx, "section updated", "section_id", sec.ID, "name", sec.Name)

	return &SectionView{
		Section:         sec,
		ProjectName:     sp.project.Name,
		ObjectName:      sp.object.Name,
		ResponsibleName: c.userName(ctx, sec.ResponsibleID),
	}, nil
}

// DeleteSectionInput holds the delete_section arguments.
type DeleteSectionInput struct {
	ProjectName string
	StageName   string
	ObjectName  string
	SectionName string
}

// DeleteSection deletes one section. Sections are leaves, so there is no
// cascade.
func (c *Catalogue) DeleteSection(ctx context.Context, in DeleteSectionInput) (*CascadeReport, error) {
	var (
		sp  sectionParents
		sec domain.Section
	)
	err := c.sectionChain(&sp, in.ProjectName, in.StageName, in.ObjectName).
		Step("section", c.sectionStep(&sp.object, in.SectionName, &sec), "object").
		Run(ctx)
	if err != nil {
		return nil, err
	}
	return c.deleteSection(ctx, sec.ID, sec.Name)
}
