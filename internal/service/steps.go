package service

import (
	"context"
	"strings"

	"github.com/HendryAvila/foreman/internal/domain"
	"github.com/HendryAvila/foreman/internal/resolve"
)

// Step builders shared by the operations. Each writes its result into the
// pointer it was given; resolve.Chain guarantees a step runs only after the
// steps it names have written theirs.

func (c *Catalogue) projectStep(query string, mode resolve.Mode, dst *domain.Project) resolve.StepFunc {
	return func(ctx context.Context) error {
		p, err := c.resolver.Project(ctx, query, mode)
		if err != nil {
			return err
		}
		*dst = p
		return nil
	}
}

func (c *Catalogue) stageStep(project *domain.Project, query string, mode resolve.Mode, dst *domain.Stage) resolve.StepFunc {
	return func(ctx context.Context) error {
		st, err := c.resolver.Stage(ctx, project.ID, query, mode)
		if err != nil {
			return err
		}
		*dst = st
		return nil
	}
}

// objectStep resolves within the project and, when stage is non-nil, within
// that stage.
func (c *Catalogue) objectStep(project *domain.Project, stage *domain.Stage, query string, mode resolve.Mode, dst *domain.Object) resolve.StepFunc {
	return func(ctx context.Context) error {
		scope := resolve.ObjectScope{}
		if project != nil {
			scope.ProjectID = project.ID
		}
		if stage != nil {
			scope.StageID = stage.ID
		}
		o, err := c.resolver.Object(ctx, scope, query, mode)
		if err != nil {
			return err
		}
		*dst = o
		return nil
	}
}

func (c *Catalogue) sectionStep(object *domain.Object, query string, dst *domain.Section) resolve.StepFunc {
	return func(ctx context.Context) error {
		sec, err := c.resolver.Section(ctx, object.ID, query, resolve.Exact)
		if err != nil {
			return err
		}
		*dst = sec
		return nil
	}
}

func (c *Catalogue) personStep(field, query string, dst **domain.User) resolve.StepFunc {
	return func(ctx context.Context) error {
		u, err := c.resolver.Person(ctx, field, query)
		if err != nil {
			return err
		}
		*dst = &u
		return nil
	}
}

// personChange is an optional update of a person reference.
type personChange struct {
	query string
	clear bool
	user  *domain.User
}

func newPersonChange(v *string) personChange {
	if v == nil {
		return personChange{}
	}
	q := strings.TrimSpace(*v)
	if q == Clear {
		return personChange{clear: true}
	}
	return personChange{query: q}
}

// resolves reports whether the change needs a lookup.
func (pc *personChange) resolves() bool {
	return pc.query != ""
}

func (pc *personChange) apply(current *string) *string {
	switch {
	case pc.clear:
		return nil
	case pc.user != nil:
		id := pc.user.ID
		return &id
	default:
		return current
	}
}

func userIDPtr(u *domain.User) *string {
	if u == nil {
		return nil
	}
	id := u.ID
	return &id
}
