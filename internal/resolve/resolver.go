package resolve

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/HendryAvila/foreman/internal/apperr"
	"github.com/HendryAvila/foreman/internal/domain"
	"github.com/HendryAvila/foreman/internal/store"
)

// Mode selects the matching policy.
type Mode int

const (
	// Exact requires equality on the trimmed canonical name within scope.
	// Update and delete flows use it.
	Exact Mode = iota
	// Fuzzy is a case-insensitive substring match. When several records
	// match and some of them equal the query case-insensitively, only
	// those are kept.
	Fuzzy
)

const (
	// MaxPersonQuery bounds the length of a person query in characters.
	MaxPersonQuery = 50
	// MaxCandidates caps every lookup.
	MaxCandidates = 50
)

// Source is the read side of the store used by the resolver.
type Source interface {
	FindProjects(ctx context.Context, f store.ProjectFilter) ([]domain.Project, error)
	FindStages(ctx context.Context, f store.StageFilter) ([]domain.Stage, error)
	FindObjects(ctx context.Context, f store.ObjectFilter) ([]domain.Object, error)
	FindSections(ctx context.Context, f store.SectionFilter) ([]domain.Section, error)
	SearchPeople(ctx context.Context, q store.PersonQuery) ([]domain.User, error)
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	GetStage(ctx context.Context, id string) (*domain.Stage, error)
	GetObject(ctx context.Context, id string) (*domain.Object, error)
}

// Observer receives every classified lookup.
type Observer func(entity string, k Kind)

// Resolver performs read-only name lookups. It is safe for concurrent use.
type Resolver struct {
	src     Source
	observe Observer
}

// New creates a Resolver over src. observe may be nil.
func New(src Source, observe Observer) *Resolver {
	return &Resolver{src: src, observe: observe}
}

// ObjectScope narrows object resolution. Empty fields do not narrow, so the
// zero scope searches every object.
type ObjectScope struct {
	ProjectID string
	StageID   string
}

// ─── Projects ────────────────────────────────────────────────────────────────

// Projects classifies the projects matching query.
func (r *Resolver) Projects(ctx context.Context, query string, mode Mode) (Outcome[domain.Project], error) {
	q, err := nameQuery("project_name", "project", query)
	if err != nil {
		return Outcome[domain.Project]{}, err
	}
	f := store.ProjectFilter{Page: store.Page{Limit: MaxCandidates}}
	if mode == Exact {
		f.Name = q
	} else {
		f.NameLike = q
	}
	matches, err := r.src.FindProjects(ctx, f)
	if err != nil {
		return Outcome[domain.Project]{}, apperr.StoreFailure("look up projects", err)
	}
	if mode == Fuzzy {
		matches = preferExact(q, matches, func(p domain.Project) []string { return []string{p.Name} })
	}
	return observed(r, "project", q, matches), nil
}

// Project resolves query to exactly one project.
func (r *Resolver) Project(ctx context.Context, query string, mode Mode) (domain.Project, error) {
	o, err := r.Projects(ctx, query, mode)
	if err != nil {
		return domain.Project{}, err
	}
	if err := o.Err(ProjectLabel); err != nil {
		return domain.Project{}, err
	}
	return o.Match, nil
}

// ProjectLabel renders a project for a disambiguation list.
func ProjectLabel(p domain.Project) string {
	return fmt.Sprintf("%s (%s)", p.Name, p.Status)
}

// ─── Stages ──────────────────────────────────────────────────────────────────

// Stages classifies the stages of a project matching query.
func (r *Resolver) Stages(ctx context.Context, projectID, query string, mode Mode) (Outcome[domain.Stage], error) {
	q, err := nameQuery("stage_name", "stage", query)
	if err != nil {
		return Outcome[domain.Stage]{}, err
	}
	f := store.StageFilter{ProjectID: projectID, Page: store.Page{Limit: MaxCandidates}}
	if mode == Exact {
		f.Name = q
	} else {
		f.NameLike = q
	}
	matches, err := r.src.FindStages(ctx, f)
	if err != nil {
		return Outcome[domain.Stage]{}, apperr.StoreFailure("look up stages", err)
	}
	if mode == Fuzzy {
		matches = preferExact(q, matches, func(s domain.Stage) []string { return []string{s.Name} })
	}
	o := observed(r, "stage", q, matches)
	if o.Kind != Unique {
		o.Scope = r.projectScope(ctx, projectID)
	}
	return o, nil
}

// Stage resolves query to exactly one stage of the project.
func (r *Resolver) Stage(ctx context.Context, projectID, query string, mode Mode) (domain.Stage, error) {
	o, err := r.Stages(ctx, projectID, query, mode)
	if err != nil {
		return domain.Stage{}, err
	}
	if err := o.Err(StageLabel); err != nil {
		return domain.Stage{}, err
	}
	return o.Match, nil
}

// StageLabel renders a stage with its schedule.
func StageLabel(s domain.Stage) string {
	if s.StartDate == nil && s.EndDate == nil {
		return s.Name
	}
	return fmt.Sprintf("%s (%s – %s)", s.Name, domain.FormatDatePtr(s.StartDate), domain.FormatDatePtr(s.EndDate))
}

// ─── Objects ─────────────────────────────────────────────────────────────────

// Objects classifies the objects within scope matching query.
func (r *Resolver) Objects(ctx context.Context, scope ObjectScope, query string, mode Mode) (Outcome[domain.Object], error) {
	q, err := nameQuery("object_name", "object", query)
	if err != nil {
		return Outcome[domain.Object]{}, err
	}
	f := store.ObjectFilter{ProjectID: scope.ProjectID, StageID: scope.StageID, Page: store.Page{Limit: MaxCandidates}}
	if mode == Exact {
		f.Name = q
	} else {
		f.NameLike = q
	}
	matches, err := r.src.FindObjects(ctx, f)
	if err != nil {
		return Outcome[domain.Object]{}, apperr.StoreFailure("look up objects", err)
	}
	if mode == Fuzzy {
		matches = preferExact(q, matches, func(o domain.Object) []string { return []string{o.Name} })
	}
	o := observed(r, "object", q, matches)
	if o.Kind != Unique {
		if scope.StageID != "" {
			o.Scope = r.stageScope(ctx, scope.StageID)
		} else {
			o.Scope = r.projectScope(ctx, scope.ProjectID)
		}
	}
	return o, nil
}

// Object resolves query to exactly one object within scope.
func (r *Resolver) Object(ctx context.Context, scope ObjectScope, query string, mode Mode) (domain.Object, error) {
	o, err := r.Objects(ctx, scope, query, mode)
	if err != nil {
		return domain.Object{}, err
	}
	names := newNameMemo(r.src)
	label := func(obj domain.Object) string {
		return fmt.Sprintf("%s (stage %q, project %q)", obj.Name, names.stage(ctx, obj.StageID), names.project(ctx, obj.ProjectID))
	}
	if err := o.Err(label); err != nil {
		return domain.Object{}, err
	}
	return o.Match, nil
}

// ─── Sections ────────────────────────────────────────────────────────────────

// Sections classifies the sections of an object matching query.
func (r *Resolver) Sections(ctx context.Context, objectID, query string, mode Mode) (Outcome[domain.Section], error) {
	q, err := nameQuery("section_name", "section", query)
	if err != nil {
		return Outcome[domain.Section]{}, err
	}
	f := store.SectionFilter{ObjectID: objectID, Page: store.Page{Limit: MaxCandidates}}
	if mode == Exact {
		f.Name = q
	} else {
		f.NameLike = q
	}
	matches, err := r.src.FindSections(ctx, f)
	if err != nil {
		return Outcome[domain.Section]{}, apperr.StoreFailure("look up sections", err)
	}
	if mode == Fuzzy {
		matches = preferExact(q, matches, func(s domain.Section) []string { return []string{s.Name} })
	}
	o := observed(r, "section", q, matches)
	if o.Kind != Unique {
		o.Scope = r.objectScope(ctx, objectID)
	}
	return o, nil
}

// Section resolves query to exactly one section of the object.
func (r *Resolver) Section(ctx context.Context, objectID, query string, mode Mode) (domain.Section, error) {
	o, err := r.Sections(ctx, objectID, query, mode)
	if err != nil {
		return domain.Section{}, err
	}
	label := func(s domain.Section) string {
		if s.Type != "" {
			return fmt.Sprintf("%s [%s]", s.Name, s.Type)
		}
		return s.Name
	}
	if err := o.Err(label); err != nil {
		return domain.Section{}, err
	}
	return o.Match, nil
}

// ─── People ──────────────────────────────────────────────────────────────────

// PersonText validates and normalizes a person query.
func PersonText(field, query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", apperr.InvalidInput(field, fmt.Sprintf("'%s' must not be empty", field))
	}
	if utf8.RuneCountInString(q) > MaxPersonQuery {
		return "", apperr.InvalidInput(field,
			fmt.Sprintf("'%s' is too long: at most %d characters are allowed", field, MaxPersonQuery))
	}
	return q, nil
}

// People classifies the users matching query. field names the argument the
// query came from and is used in validation errors.
func (r *Resolver) People(ctx context.Context, field, query string) (Outcome[domain.User], error) {
	q, err := PersonText(field, query)
	if err != nil {
		return Outcome[domain.User]{}, err
	}
	matches, err := r.src.SearchPeople(ctx, store.PersonQuery{Text: q, Limit: MaxCandidates})
	if err != nil {
		return Outcome[domain.User]{}, apperr.StoreFailure("look up people", err)
	}
	matches = preferExact(q, matches, func(u domain.User) []string { return []string{u.DisplayName(), u.Email} })
	return observed(r, "person", q, matches), nil
}

// Person resolves query to exactly one user.
func (r *Resolver) Person(ctx context.Context, field, query string) (domain.User, error) {
	o, err := r.People(ctx, field, query)
	if err != nil {
		return domain.User{}, err
	}
	if err := o.Err(domain.User.Label); err != nil {
		return domain.User{}, err
	}
	return o.Match, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func observed[T any](r *Resolver, entity, query string, matches []T) Outcome[T] {
	o := Classify(entity, query, matches)
	if r.observe != nil {
		r.observe(entity, o.Kind)
	}
	return o
}

func nameQuery(field, entity, query string) (string, error) {
	q := domain.CanonicalName(query)
	if q == "" {
		return "", apperr.InvalidInput(field, fmt.Sprintf("The %s name must not be empty.", entity))
	}
	return q, nil
}

// preferExact keeps only the matches whose name equals the query ignoring
// case, when there are several matches and at least one such hit.
func preferExact[T any](query string, matches []T, names func(T) []string) []T {
	if len(matches) < 2 {
		return matches
	}
	key := domain.NameKey(query)
	var exact []T
	for _, m := range matches {
		for _, n := range names(m) {
			if domain.NameKey(n) == key {
				exact = append(exact, m)
				break
			}
		}
	}
	if len(exact) == 0 {
		return matches
	}
	if len(exact) > 1 {
		// Case-only twins in different scopes: the exact spelling wins.
		canon := domain.CanonicalName(query)
		var cased []T
		for _, m := range exact {
			for _, n := range names(m) {
				if n == canon {
					cased = append(cased, m)
					break
				}
			}
		}
		if len(cased) == 1 {
			return cased
		}
	}
	return exact
}

func (r *Resolver) projectScope(ctx context.Context, projectID string) string {
	if projectID == "" {
		return ""
	}
	return fmt.Sprintf("in project %q", newNameMemo(r.src).project(ctx, projectID))
}

func (r *Resolver) stageScope(ctx context.Context, stageID string) string {
	names := newNameMemo(r.src)
	st, err := r.src.GetStage(ctx, stageID)
	if err != nil {
		return fmt.Sprintf("in stage %q", stageID)
	}
	return fmt.Sprintf("in stage %q of project %q", st.Name, names.project(ctx, st.ProjectID))
}

func (r *Resolver) objectScope(ctx context.Context, objectID string) string {
	o, err := r.src.GetObject(ctx, objectID)
	if err != nil {
		return fmt.Sprintf("in object %q", objectID)
	}
	return fmt.Sprintf("in object %q", o.Name)
}

// nameMemo caches parent names while one disambiguation list is rendered.
type nameMemo struct {
	src      Source
	projects map[string]string
	stages   map[string]string
}

func newNameMemo(src Source) *nameMemo {
	return &nameMemo{src: src, projects: map[string]string{}, stages: map[string]string{}}
}

func (m *nameMemo) project(ctx context.Context, id string) string {
	if n, ok := m.projects[id]; ok {
		return n
	}
	n := id
	if p, err := m.src.GetProject(ctx, id); err == nil {
		n = p.Name
	}
	m.projects[id] = n
	return n
}

func (m *nameMemo) stage(ctx context.Context, id string) string {
	if n, ok := m.stages[id]; ok {
		return n
	}
	n := id
	if s, err := m.src.GetStage(ctx, id); err == nil {
		n = s.Name
	}
	m.stages[id] = n
	return n
}
