package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HendryAvila/foreman/internal/apperr"
	"github.com/HendryAvila/foreman/internal/domain"
	"github.com/HendryAvila/foreman/internal/store"
)

// Clear is the argument value that removes an optional date or person.
const Clear = "-"

// ─── Scoped uniqueness ───────────────────────────────────────────────────────

// nameScope identifies where a name must be unique.
type nameScope struct {
	table  store.Table
	entity string
	// id of the parent; empty for projects.
	id string
	// label is the human description used in the conflict message,
	// e.g. `in project "Tower A"`.
	label string
}

func projectNames() nameScope {
	return nameScope{table: store.Projects, entity: "project"}
}

func stageNames(p domain.Project) nameScope {
	return nameScope{table: store.Stages, entity: "stage", id: p.ID, label: fmt.Sprintf("in project %q", p.Name)}
}

func objectNames(st domain.Stage) nameScope {
	return nameScope{table: store.Objects, entity: "object", id: st.ID, label: fmt.Sprintf("in stage %q", st.Name)}
}

func sectionNames(o domain.Object) nameScope {
	return nameScope{table: store.Sections, entity: "section", id: o.ID, label: fmt.Sprintf("in object %q", o.Name)}
}

func (n nameScope) conflict(name string) *apperr.Error {
	return apperr.Conflict(n.entity, domain.CanonicalName(name), n.label)
}

// checkUnique fails with a Conflict when name is already used in scope.
func (c *Catalogue) checkUnique(ctx context.Context, scope nameScope, name string) error {
	return c.checkUniqueExcluding(ctx, scope, name, "")
}

// checkUniqueExcluding is checkUnique ignoring the record being renamed.
func (c *Catalogue) checkUniqueExcluding(ctx context.Context, scope nameScope, name, excludeID string) error {
	taken, err := c.store.NameTaken(ctx, scope.table, scope.id, name, excludeID)
	if err != nil {
		return apperr.StoreFailure("check "+scope.entity+" names", err)
	}
	if taken {
		return scope.conflict(name)
	}
	return nil
}

// rename validates a new name for an existing record. It returns the name to
// store and whether the name changes at all.
func (c *Catalogue) rename(ctx context.Context, scope nameScope, current string, newName *string, id string) (string, error) {
	if newName == nil {
		return current, nil
	}
	name := domain.CanonicalName(*newName)
	if name == "" {
		return "", apperr.InvalidInput("new_name", "The new name must not be empty.")
	}
	if name == current {
		return current, nil
	}
	if err := c.checkUniqueExcluding(ctx, scope, name, id); err != nil {
		return "", err
	}
	return name, nil
}

func requiredName(field, entity, value string) (string, error) {
	name := domain.CanonicalName(value)
	if name == "" {
		return "", apperr.InvalidInput(field, fmt.Sprintf("The %s name must not be empty.", entity))
	}
	return name, nil
}

// ─── References ──────────────────────────────────────────────────────────────

// References lists the foreign ids a write is about to store. Empty fields
// are not checked.
type References struct {
	ProjectID      string
	StageID        string
	ObjectID       string
	ManagerID      string
	LeadEngineerID string
	ResponsibleID  string
	AuthorID       string
}

// ValidateReferences checks that every referenced record exists, that the
// stage belongs to the project and that the object belongs to the stage and
// the project.
func (c *Catalogue) ValidateReferences(ctx context.Context, refs References) error {
	checks := []struct {
		field string
		table store.Table
		id    string
	}{
		{"project_id", store.Projects, refs.ProjectID},
		{"stage_id", store.Stages, refs.StageID},
		{"object_id", store.Objects, refs.ObjectID},
		{"manager_id", store.Users, refs.ManagerID},
		{"lead_engineer_id", store.Users, refs.LeadEngineerID},
		{"responsible_id", store.Users, refs.ResponsibleID},
		{"author_id", store.Users, refs.AuthorID},
	}
	for _, ch := range checks {
		if ch.id == "" {
			continue
		}
		ok, err := c.store.Exists(ctx, ch.table, ch.id)
		if err != nil {
			return apperr.StoreFailure("validate references", err)
		}
		if !ok {
			return apperr.InvalidReference(ch.field, ch.id)
		}
	}

	if refs.StageID != "" && refs.ProjectID != "" {
		st, err := c.store.GetStage(ctx, refs.StageID)
		if err != nil {
			return apperr.Wrap(err, "validate references")
		}
		if st.ProjectID != refs.ProjectID {
			return mismatch("stage_id", refs.StageID, "project")
		}
	}
	if refs.ObjectID != "" && (refs.StageID != "" || refs.ProjectID != "") {
		o, err := c.store.GetObject(ctx, refs.ObjectID)
		if err != nil {
			return apperr.Wrap(err, "validate references")
		}
		if refs.StageID != "" && o.StageID != refs.StageID {
			return mismatch("object_id", refs.ObjectID, "stage")
		}
		if refs.ProjectID != "" && o.ProjectID != refs.ProjectID {
			return mismatch("object_id", refs.ObjectID, "project")
		}
	}
	return nil
}

func mismatch(field, id, parent string) *apperr.Error {
	e := apperr.InvalidReference(field, id)
	e.Message = fmt.Sprintf("The referenced %s (%s) does not belong to the given %s.",
		strings.TrimSuffix(field, "_id"), id, parent)
	return e
}

func idOf(u *domain.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}

func derefID(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}

// ─── Dates ───────────────────────────────────────────────────────────────────

// parseDate parses an optional dd.mm.yyyy argument; empty means absent.
func parseDate(field, text string) (*time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	t, err := domain.ParseDate(text)
	if err != nil {
		return nil, apperr.InvalidFormat(field, text, domain.DateHint)
	}
	return &t, nil
}

// parseDates parses both bounds and validates the range.
func parseDates(start, end string) (*time.Time, *time.Time, error) {
	s, err := parseDate("start_date", start)
	if err != nil {
		return nil, nil, err
	}
	e, err := parseDate("end_date", end)
	if err != nil {
		return nil, nil, err
	}
	if err := domain.ValidateRange(s, e); err != nil {
		return nil, nil, err
	}
	return s, e, nil
}

// dateChange is an optional update of a stored date.
type dateChange struct {
	set   bool
	value *time.Time
}

// parseDateChange interprets an update argument: nil leaves the date alone,
// Clear removes it and anything else must be a valid date.
func parseDateChange(field string, text *string) (dateChange, error) {
	if text == nil {
		return dateChange{}, nil
	}
	v := strings.TrimSpace(*text)
	if v == Clear {
		return dateChange{set: true}, nil
	}
	if v == "" {
		return dateChange{}, nil
	}
	t, err := parseDate(field, v)
	if err != nil {
		return dateChange{}, err
	}
	return dateChange{set: true, value: t}, nil
}

func (d dateChange) apply(current *time.Time) *time.Time {
	if !d.set {
		return current
	}
	return d.value
}

// applySchedule parses both changes and checks the effective range: the new
// value where one is supplied, otherwise the stored one.
func applySchedule(start, end *string, curStart, curEnd *time.Time) (*time.Time, *time.Time, error) {
	sc, err := parseDateChange("start_date", start)
	if err != nil {
		return nil, nil, err
	}
	ec, err := parseDateChange("end_date", end)
	if err != nil {
		return nil, nil, err
	}
	s, e := sc.apply(curStart), ec.apply(curEnd)
	if err := domain.ValidateRange(s, e); err != nil {
		return nil, nil, err
	}
	return s, e, nil
}

// ─── Store errors ────────────────────────────────────────────────────────────

// writeErr maps a failed insert or update. A unique violation means the
// pre-write check lost a race and gets the same Conflict message.
func writeErr(err error, op string, scope nameScope, name string) error {
	switch {
	case errors.Is(err, store.ErrConflict):
		return scope.conflict(name)
	case errors.Is(err, store.ErrReference):
		return &apperr.Error{
			Kind:    apperr.KindInvalidReference,
			Message: "A referenced record was removed while the request was being processed.",
			Fix:     "Repeat the request.",
			Err:     err,
		}
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(scope.entity, name, "")
	default:
		return apperr.StoreFailure(op, err)
	}
}

func optionalText(v *string, current string) string {
	if v == nil {
		return current
	}
	return strings.TrimSpace(*v)
}
