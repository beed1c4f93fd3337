package service

import (
	"context"
	"strings"

	"github.com/HendryAvila/foreman/internal/apperr"
	"github.com/HendryAvila/foreman/internal/domain"
	"github.com/HendryAvila/foreman/internal/resolve"
	"github.com/HendryAvila/foreman/internal/store"
)

// CreateStageInput holds the create_stage arguments.
type CreateStageInput struct {
	ProjectName string
	Name        string
	Description string
	StartDate   string
	EndDate     string
}

// CreateStage adds a stage to a project found by fuzzy name.
func (c *Catalogue) CreateStage(ctx context.Context, in CreateStageInput) (*StageView, error) {
	name, err := requiredName("name", "stage", in.Name)
	if err != nil {
		return nil, err
	}
	start, end, err := parseDates(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	var p domain.Project
	if err := resolve.NewChain().
		Step("project", c.projectStep(in.ProjectName, resolve.Fuzzy, &p)).
		Run(ctx); err != nil {
		return nil, err
	}

	scope := stageNames(p)
	if err := c.checkUnique(ctx, scope, name); err != nil {
		return nil, err
	}
	if err := c.ValidateReferences(ctx, References{ProjectID: p.ID}); err != nil {
		return nil, err
	}

	st := &domain.Stage{
		ProjectID:   p.ID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		StartDate:   start,
		EndDate:     end,
	}
	if err := c.store.CreateStage(ctx, st); err != nil {
		return nil, writeErr(err, "create the stage", scope, name)
	}
	c.log.InfoContext(ctx, "stage created", "stage_id", st.ID, "project_id", p.ID, "name", st.Name)
	return &StageView{Stage: *st, ProjectName: p.Name}, nil
}

// StageQuery holds the search_stages arguments.
type StageQuery struct {
	ProjectName string
	Query       string
	Limit       int
	Offset      int
}

// SearchStages lists stages, optionally within one project.
func (c *Catalogue) SearchStages(ctx context.Context, q StageQuery) ([]StageView, error) {
	var p domain.Project
	if err := resolve.NewChain().
		StepIf(strings.TrimSpace(q.ProjectName) != "", "project", c.projectStep(q.ProjectName, resolve.Fuzzy, &p)).
		Run(ctx); err != nil {
		return nil, err
	}

	stages, err := c.store.FindStages(ctx, store.StageFilter{
		ProjectID: p.ID,
		NameLike:  strings.TrimSpace(q.Query),
		Page:      NormalizePage(q.Limit, q.Offset),
	})
	if err != nil {
		return nil, apperr.StoreFailure("search stages", err)
	}
	out := make([]StageView, len(stages))
	for i, st := range stages {
		if p.ID != "" {
			out[i] = StageView{Stage: st, ProjectName: p.Name}
			continue
		}
		out[i] = c.stageView(ctx, st)
	}
	return out, nil
}

// UpdateStageInput holds the update_stage arguments. Dates accept Clear.
type UpdateStageInput struct {
	ProjectName string
	StageName   string
	NewName     *string
	Description *string
	StartDate   *string
	EndDate     *string
}

// UpdateStage applies the supplied changes to one stage.
func (c *Catalogue) UpdateStage(ctx context.Context, in UpdateStageInput) (*StageView, error) {
	var (
		p  domain.Project
		st domain.Stage
	)
	err := resolve.NewChain().
		Step("project", c.projectStep(in.ProjectName, resolve.Fuzzy, &p)).
		Step("stage", c.stageStep(&p, in.StageName, resolve.Exact, &st), "project").
		Run(ctx)
	if err != nil {
		return nil, err
	}

	start, end, err := applySchedule(in.StartDate, in.EndDate, st.StartDate, st.EndDate)
	if err != nil {
		return nil, err
	}
	scope := stageNames(p)
	name, err := c.rename(ctx, scope, st.Name, in.NewName, st.ID)
	if err != nil {
		return nil, err
	}
	st.Name = name
	st.Description = optionalText(in.Description, st.Description)
	st.StartDate, st.EndDate = start, end

	if err := c.ValidateReferences(ctx, References{ProjectID: p.ID, StageID: st.ID}); err != nil {
		return nil, err
	}
	if err := c.store.UpdateStage(ctx, &st); err != nil {
		return nil, writeErr(err, "update the stage", scope, st.Name)
	}
	c.log.InfoContext(ctx, "stage updated", "stage_id", st.ID, "name", st.Name)
	return &StageView{Stage: st, ProjectName: p.Name}, nil
}

// DeleteStage deletes one stage, with its objects and sections when cascade
// is set.
func (c *Catalogue) DeleteStage(ctx context.Context, projectName, stageName string, cascade bool) (*CascadeReport, error) {
	var (
		p  domain.Project
		st domain.Stage
	)
	err := resolve.NewChain().
		Step("project", c.projectStep(projectName, resolve.Fuzzy, &p)).
		Step("stage", c.stageStep(&p, stageName, resolve.Exact, &st), "project").
		Run(ctx)
	if err != nil {
		return nil, err
	}
	return c.deleteTree(ctx, treeDelete{
		entity:     "stage",
		name:       st.Name,
		table:      store.Stages,
		id:         st.ID,
		cascade:    cascade,
		dependents: c.store.StageDependents,
		tree:       (*store.Store).DeleteStageTree,
	})
}
