package service

import (
	"context"

	"github.com/HendryAvila/foreman/internal/domain"
	"github.com/HendryAvila/foreman/internal/store"
)

// Views pair a record with the display names of what it references. The
// names come from the cached lookups and may lag behind recent renames.

type ProjectView struct {
	domain.Project
	ManagerName      string `json:"manager,omitempty"`
	LeadEngineerName string `json:"lead_engineer,omitempty"`
}

type StageView struct {
	domain.Stage
	ProjectName string `json:"project"`
}

type ObjectView struct {
	domain.Object
	ProjectName     string `json:"project"`
	StageName       string `json:"stage"`
	ResponsibleName string `json:"responsible,omitempty"`
}

type SectionView struct {
	domain.Section
	ProjectName     string `json:"project"`
	ObjectName      string `json:"object"`
	ResponsibleName string `json:"responsible,omitempty"`
}

type NoteView struct {
	domain.Note
	ProjectName string `json:"project,omitempty"`
	ObjectName  string `json:"object,omitempty"`
	AuthorName  string `json:"author,omitempty"`
}

// CascadeReport describes a completed delete.
type CascadeReport struct {
	Entity string `json:"entity"`
	Name   string `json:"name"`
	// Removed counts the descendants deleted together with the record.
	Removed store.Dependents `json:"removed"`
}

func (c *Catalogue) projectView(ctx context.Context, p domain.Project) ProjectView {
	return ProjectView{
		Project:          p,
		ManagerName:      c.userName(ctx, p.ManagerID),
		LeadEngineerName: c.userName(ctx, p.LeadEngineerID),
	}
}

func (c *Catalogue) stageView(ctx context.Context, st domain.Stage) StageView {
	return StageView{Stage: st, ProjectName: c.projectName(ctx, st.ProjectID)}
}

func (c *Catalogue) objectView(ctx context.Context, o domain.Object) ObjectView {
	return ObjectView{
		Object:          o,
		ProjectName:     c.projectName(ctx, o.ProjectID),
		StageName:       c.stageName(ctx, o.StageID),
		ResponsibleName: c.userName(ctx, o.ResponsibleID),
	}
}

func (c *Catalogue) sectionView(ctx context.Context, sec domain.Section, objectName string) SectionView {
	if objectName == "" {
		objectName = c.objectName(ctx, sec.ObjectID)
	}
	return SectionView{
		Section:         sec,
		ProjectName:     c.projectName(ctx, sec.ProjectID),
		ObjectName:      objectName,
		ResponsibleName: c.userName(ctx, sec.ResponsibleID),
	}
}

func (c *Catalogue) noteView(ctx context.Context, n domain.Note) NoteView {
	v := NoteView{Note: n, AuthorName: c.userName(ctx, n.AuthorID)}
	if n.ProjectID != nil {
		v.ProjectName = c.projectName(ctx, *n.ProjectID)
	}
	if n.ObjectID != nil {
		v.ObjectName = c.objectName(ctx, *n.ObjectID)
	}
	return v
}
