package service

import (
	"context"
	"sort"

	"github.com/HendryAvila/foreman/internal/apperr"
	"github.com/HendryAvila/foreman/internal/domain"
	"github.com/HendryAvila/foreman/internal/resolve"
	"github.com/HendryAvila/foreman/internal/store"
)

// ProjectReport is a plain aggregation of one project's hierarchy.
type ProjectReport struct {
	Project ProjectView   `json:"project"`
	Stages  []StageReport `json:"stages"`
	Totals  ReportTotals  `json:"totals"`
	// People counts assignments per responsible person, busiest first.
	People []PersonLoad `json:"people"`
}

type StageReport struct {
	Stage   domain.Stage   `json:"stage"`
	Objects []ObjectReport `json:"objects"`
}

type ObjectReport struct {
	Object          domain.Object    `json:"object"`
	ResponsibleName string           `json:"responsible,omitempty"`
	Sections        []domain.Section `json:"sections"`
}

type ReportTotals struct {
	Stages             int `json:"stages"`
	Objects            int `json:"objects"`
	Sections           int `json:"sections"`
	UnassignedObjects  int `json:"unassigned_objects"`
	UnassignedSections int `json:"unassigned_sections"`
}

type PersonLoad struct {
	Name     string `json:"name"`
	Objects  int    `json:"objects"`
	Sections int    `json:"sections"`
}

// ProjectReport aggregates the stages, objects and sections of a project
// found by fuzzy name.
func (c *Catalogue) ProjectReport(ctx context.Context, projectName string) (*ProjectReport, error) {
	var p domain.Project
	if err := resolve.NewChain().
		Step("project", c.projectStep(projectName, resolve.Fuzzy, &p)).
		Run(ctx); err != nil {
		return nil, err
	}

	stages, err := c.store.FindStages(ctx, store.StageFilter{ProjectID: p.ID})
	if err != nil {
		return nil, apperr.StoreFailure("build the report", err)
	}
	objects, err := c.store.FindObjects(ctx, store.ObjectFilter{ProjectID: p.ID})
	if err != nil {
		return nil, apperr.StoreFailure("build the report", err)
	}
	sections, err := c.store.FindSections(ctx, store.SectionFilter{ProjectID: p.ID})
	if err != nil {
		return nil, apperr.StoreFailure("build the report", err)
	}

	r := &ProjectReport{Project: c.projectView(ctx, p)}
	r.Totals.Stages, r.Totals.Objects, r.Totals.Sections = len(stages), len(objects), len(sections)

	load := map[string]*PersonLoad{}
	person := func(id *string) *PersonLoad {
		name := c.userName(ctx, id)
		if name == "" {
			name = *id
		}
		pl, ok := load[*id]
		if !ok {
			pl = &PersonLoad{Name: name}
			load[*id] = pl
		}
		return pl
	}

	byObject := map[string][]domain.Section{}
	for _, sec := range sections {
		byObject[sec.ObjectID] = append(byObject[sec.ObjectID], sec)
		if sec.ResponsibleID == nil {
			r.Totals.UnassignedSections++
		} else {
			person(sec.ResponsibleID).Sections++
		}
	}
	byStage := map[string][]ObjectReport{}
	for _, o := range objects {
		rep := ObjectReport{Object: o, Sections: byObject[o.ID]}
		if o.ResponsibleID == nil {
			r.Totals.UnassignedObjects++
		} else {
			pl := person(o.ResponsibleID)
			pl.Objects++
			rep.ResponsibleName = pl.Name
		}
		byStage[o.StageID] = append(byStage[o.StageID], rep)
	}
	for _, st := range stages {
		r.Stages = append(r.Stages, StageReport{Stage: st, Objects: byStage[st.ID]})
	}

	for _, pl := range load {
		r.People = append(r.People, *pl)
	}
	sort.Slice(r.People, func(i, j int) bool {
		a, b := r.People[i], r.People[j]
		if a.Objects+a.Sections != b.Objects+b.Sections {
			return a.Objects+a.Sections > b.Objects+b.Sections
		}
		return a.Name < b.Name
	})
	return r, nil
}
