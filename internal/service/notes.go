package service

import (
	"context"
	"strings"

	"github.com/HendryAvila/foreman/internal/apperr"
	"github.com/HendryAvila/foreman/internal/domain"
	"github.com/HendryAvila/foreman/internal/resolve"
	"github.com/HendryAvila/foreman/internal/store"
)

// NoteInput holds the create_note arguments.
type NoteInput struct {
	Title       string
	Content     string
	ProjectName string
	ObjectName  string
	Author      string
}

// CreateNote stores a note, optionally attached to a project and to one of
// its objects.
func (c *Catalogue) CreateNote(ctx context.Context, in NoteInput) (*NoteView, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apperr.InvalidInput("content", "The note content must not be empty.")
	}
	hasProject := strings.TrimSpace(in.ProjectName) != ""
	hasObject := strings.TrimSpace(in.ObjectName) != ""
	if hasObject && !hasProject {
		return nil, apperr.InvalidInput("object_name", "'object_name' requires 'project_name'.")
	}

	var (
		p      domain.Project
		o      domain.Object
		author *domain.User
	)
	err := resolve.NewChain().
		StepIf(hasProject, "project", c.projectStep(in.ProjectName, resolve.Fuzzy, &p)).
		StepIf(hasObject, "object", c.objectStep(&p, nil, in.ObjectName, resolve.Fuzzy, &o), "project").
		StepIf(strings.TrimSpace(in.Author) != "", "author", c.personStep("author", in.Author, &author)).
		Run(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.ValidateReferences(ctx, References{
		ProjectID: p.ID,
		ObjectID:  o.ID,
		AuthorID:  idOf(author),
	}); err != nil {
		return nil, err
	}

	n := &domain.Note{
		Title:    in.Title,
		Content:  content,
		AuthorID: userIDPtr(author),
	}
	if p.ID != "" {
		n.ProjectID = &p.ID
	}
	if o.ID != "" {
		n.ObjectID = &o.ID
	}
	if err := c.store.CreateNote(ctx, n); err != nil {
		return nil, apperr.StoreFailure("save the note", err)
	}
	c.log.InfoContext(ctx, "note created", "note_id", n.ID)

	v := &NoteView{Note: *n, ProjectName: p.Name, ObjectName: o.Name}
	if author != nil {
		v.AuthorName = author.DisplayName()
	}
	return v, nil
}

// NoteQuery holds the search_notes arguments.
type NoteQuery struct {
	Query       string
	ProjectName string
	Limit       int
	Offset      int
}

// SearchNotes lists notes newest first.
func (c *Catalogue) SearchNotes(ctx context.Context, q NoteQuery) ([]NoteView, error) {
	var p domain.Project
	if err := resolve.NewChain().
		StepIf(strings.TrimSpace(q.ProjectName) != "", "project", c.projectStep(q.ProjectName, resolve.Fuzzy, &p)).
		Run(ctx); err != nil {
		return nil, err
	}

	notes, err := c.store.SearchNotes(ctx, store.NoteFilter{
		ProjectID: p.ID,
		Query:     q.Query,
		Page:      NormalizePage(q.Limit, q.Offset),
	})
	if err != nil {
		return nil, apperr.StoreFailure("search notes", err)
	}
	out := make([]NoteView, len(notes))
	for i, n := range notes {
		out[i] = c.noteView(ctx, n)
	}
	return out, nil
}
