package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/HendryAvila/foreman/internal/apperr"
	"github.com/HendryAvila/foreman/internal/cache"
	"github.com/HendryAvila/foreman/internal/domain"
	"github.com/HendryAvila/foreman/internal/service"
	"github.com/HendryAvila/foreman/internal/store"
	"github.com/HendryAvila/foreman/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogue(t *testing.T) (*service.Catalogue, *store.Store) {
	t.Helper()
	s := testutil.NewStore(t)
	return service.New(s, service.Options{}), s
}

func ptr(s string) *string { return &s }

// ─── Scoped uniqueness ───────────────────────────────────────────────────────

func TestCreateStage_UniqueWithinProjectOnly(t *testing.T) {
	c, s := newCatalogue(t)
	ctx := context.Background()
	testutil.SeedProject(t, s, "Tower A")
	testutil.SeedProject(t, s, "Tower B")

	_, err := c.CreateStage(ctx, service.CreateStageInput{ProjectName: "Tower A", Name: "Foundation"})
	require.NoError(t, err)

	_, err = c.CreateStage(ctx, service.CreateStageInput{ProjectName: "Tower A", Name: "Foundation"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Contains(t, apperr.Text(err), `"Foundation"`)
	assert.Contains(t, apperr.Text(err), `in project "Tower A"`)

	v, err := c.CreateStage(ctx, service.CreateStageInput{ProjectName: "Tower B", Name: "Foundation"})
	require.NoError(t, err)
	assert.Equal(t, "Tower B", v.ProjectName)
}

func TestCreateObject_UniqueWithinStage(t *testing.T) {
	c, s := newCatalogue(t)
	ctx := context.Background()
	p := testutil.SeedProject(t, s, "Tower A")
	testutil.SeedStage(t, s, p.ID, "Foundation")
	testutil.SeedStage(t, s, p.ID, "Frame")

	in := service.CreateObjectInput{ProjectName: "Tower A", StageName: "Foundation", Name: "Block 1"}
	_, err := c.CreateObject(ctx, in)
	require.NoError(t, err)

	_, err = c.CreateObject(ctx, in)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	in.StageName = "Frame"
	_, err = c.CreateObject(ctx, in)
	assert.NoError(t, err)
}

func TestCreateProject_DuplicateName(t *testing.T) {
	c, _ := newCatalogue(t)
	ctx := context.Background()

	_, err := c.CreateProject(ctx, service.CreateProjectInput{Name: "Tower A"})
	require.NoError(t, err)
	_, err = c.CreateProject(ctx, service.CreateProjectInput{Name: "  Tower A  "})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCreateProject_NameDiffersOnlyInCase(t *testing.T) {
	c, _ := newCatalogue(t)
	ctx := context.Background()

	_, err := c.CreateProject(ctx, service.CreateProjectInput{Name: "Tower A"})
	require.NoError(t, err)
	_, err = c.CreateProject(ctx, service.CreateProjectInput{Name: "tower a"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	for name, stage := range map[string]string{"Tower A": "Foundation", "tower a": "Frame"} {
		v, err := c.CreateStage(ctx, service.CreateStageInput{ProjectName: name, Name: stage})
		require.NoError(t, err, name)
		assert.Equal(t, "Tower A", v.ProjectName)
	}
	_, err = c.CreateStage(ctx, service.CreateStageInput{ProjectName: "Tower A", Name: "FOUNDATION"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	pv, err := c.UpdateProject(ctx, service.UpdateProjectInput{ProjectName: "Tower A", NewName: ptr("TOWER A")})
	require.NoError(t, err, "a case-only rename of the same record is allowed")
	assert.Equal(t, "TOWER A", pv.Name)
}

func TestRename_SameNameIsNoOp(t *testing.T) {
	c, s := newCatalogue(t)
	ctx := context.Background()
	p := testutil.SeedProject(t, s, "Tower A")
	testutil.SeedStage(t, s, p.ID, "Foundation")

	v, err := c.UpdateStage(ctx, service.UpdateStageInput{
		ProjectName: "Tower A",
		StageName:   "Foundation",
		NewName:     ptr("Foundation"),
		Description: ptr("poured in spring"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Foundation", v.Name)
	assert.Equal(t, "poured in spring", v.Description)

	pv, err := c.UpdateProject(ctx, service.UpdateProjectInput{ProjectName: "Tower A", NewName: ptr("Tower A")})
	require.NoError(t, err)
	assert.Equal(t, "Tower A", pv.Name)
}

func TestRename_ToTakenNameConflicts(t *testing.T) {
	c, s := newCatalogue(t)
	ctx := context.Background()
	p := testutil.SeedProject(t, s, "Tower A")
	testutil.SeedStage(t, s, p.ID, "Foundation")
	testutil.SeedStage(t, s, p.ID, "Frame")

	_, err := c.UpdateStage(ctx, service.UpdateStageInput{
		ProjectName: "Tower A",
		StageName:   "Frame",
		NewName:     ptr("Foundation"),
	})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

// ─── Dates ───────────────────────────────────────────────────────────────────

func TestCreateStage_Dates(t *testing.T) {
	c, s := newCatalogue(t)
	ctx := context.Background()
	testutil.SeedProject(t, s, "Tower A")

	v, err := c.CreateStage(ctx, service.CreateStageInput{
		ProjectName: "Tower A", Name: "Foundation", StartDate: "01.03.2025", EndDate: "01.03.2025",
	})
	require.NoError(t, err)
	assert.Equal(t, "01.03.2025", domain.FormatDatePtr(v.StartDate))

	_, err = c.CreateStage(ctx, service.CreateStageInput{
		ProjectName: "Tower A", Name: "Frame", StartDate: "10.03.2025", EndDate: "01.03.2025",
	})
	assert.Equal(t, apperr.KindInvertedRange, apperr.KindOf(err))

	_, err = c.CreateStage(ctx, service.CreateStageInput{
		ProjectName: "Tower A", Name: "Roof", StartDate: "31.02.2024",
	})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindInvalidFormat, e.Kind)
	assert.Equal(t, "start_date", e.Field)
}

func TestUpdateStage_EffectiveRange(t *testing.T) {
	c, s := newCatalogue(t)
	ctx := context.Background()
	p := testutil.SeedProject(t, s, "Tower A")
	testutil.SeedStage(t, s, p.ID, "Foundation",
		testutil.WithDates(testutil.Date(2025, time.March, 1), testutil.Date(2025, time.March, 10)))

	_, err := c.UpdateStage(ctx, service.UpdateStageInput{
		ProjectName: "Tower A", StageName: "Foundation", StartDate: ptr("15.03.2025"),
	})
	assert.Equal(t, apperr.KindInvertedRange, apperr.KindOf(err))

	v, err := c.UpdateStage(ctx, service.UpdateStageInput{
		ProjectName: "Tower A", StageName: "Foundation", StartDate: ptr("15.03.2025"), EndDate: ptr(service.Clear),
	})
	require.NoError(t, err)
	assert.Equal(t, "15.03.2025", domain.FormatDatePtr(v.StartDate))
	assert.Nil(t, v.EndDate)

	stored, err := s.GetStage(ctx, v.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.EndDate)
	assert.Equal(t, "2025-03-15", domain.StoreDate(*stored.StartDate))
}

// ─── References ──────────────────────────────────────────────────────────────

func TestValidateReferences(t *testing.T) {
	c, s := newCatalogue(t)
	ctx := context.Background()
	a := testutil.SeedProject(t, s, "Tower A")
	b := testutil.SeedProject(t, s, "Tower B")
	stB := testutil.SeedStage(t, s, b.ID, "Foundation")
	obj := testutil.SeedObject(t, s, stB, "Block 1", "")
	u := testutil.SeedUser(t, s, "Anna", "Ivanova")

	require.NoError(t, c.ValidateReferences(ctx, service.References{
		ProjectID: b.ID, StageID: stB.ID, ObjectID: obj.ID, ResponsibleID: u.ID,
	}))

	err := c.ValidateReferences(ctx, service.References{ManagerID: "missing"})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindInvalidReference, e.Kind)
	assert.Equal(t, "manager_id", e.Field)

	err = c.ValidateReferences(ctx, service.References{ProjectID: a.ID, StageID: stB.ID})
	e, ok = apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "stage_id", e.Field)

	err = c.ValidateReferences(ctx, service.References{ProjectID: a.ID, ObjectID: obj.ID})
	e, ok = apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "object_id", e.Field)
}

// ─── Cascade ─────────────────────────────────────────────────────────────────

func TestDeleteProject_Cascade(t *testing.T) {
	c, s := newCatalogue(t)
	ctx := context.Background()
	testutil.SeedTree(t, s, "Tower A", 2, 3)

	_, err := c.DeleteProject(ctx, "Tower A", false)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindDependentRecords, e.Kind)
	assert.Equal(t, 9, e.Count)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Projects)
	assert.Equal(t, 6, st.Sections)

	report, err := c.DeleteProject(ctx, "Tower A", true)
	require.NoError(t, err)
	assert.Equal(t, store.Dependents{Stages: 1, Objects: 2, Sections: 6}, report.Removed)

	st, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Projects)
	assert.Zero(t, st.Stages)
	assert.Zero(t, st.Objects)
	assert.Zero(t, st.Sections)
}

func TestDeleteProject_RequiresExactName(t *testing.T) {
	c, s := newCatalogue(t)
	testutil.SeedProject(t, s, "Tower A")

	_, err := c.DeleteProject(context.Background(), "tower", true)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteStage_LeavesSiblings(t *testing.T) {
	c, s := newCatalogue(t)
	ctx := context.Background()
	p := testutil.SeedProject(t, s, "Tower A")
	foundation := testutil.SeedStage(t, s, p.ID, "Foundation")
	frame := testutil.SeedStage(t, s, p.ID, "Frame")
	o := testutil.SeedObject(t, s, foundation, "Block 1", "")
	testutil.SeedSection(t, s, o, "Rebar Plan", "drawing", "")
	testutil.SeedObject(t, s, frame, "Block 1", "")

	report, err := c.DeleteStage(ctx, "Tower A", "Foundation", true)
	require.NoError(t, err)
	assert.Equal(t, store.Dependents{Objects: 1, Sections: 1}, report.Removed)

	left, err := s.FindObjects(ctx, store.ObjectFilter{ProjectID: p.ID})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, frame.ID, left[0].StageID)
}

func TestDeleteObject_WithoutChildren(t *testing.T) {
	c, s := newCatalogue(t)
	ctx := context.Background()
	p := testutil.SeedProject(t, s, "Tower A")
	st := testutil.SeedStage(t, s, p.ID, "Foundation")
	testutil.SeedObject(t, s, st, "Block 1", "")

	report, err := c.DeleteObject(ctx, "Tower A", "Foundation", "Block 1", false)
	require.NoError(t, err)
	assert.Zero(t, report.Removed.Total())

	ok, err := s.Exists(ctx, store.Stages, st.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

// ─── Failure precedence ──────────────────────────────────────────────────────

func TestCreateObject_ProjectFailureWins(t *testing.T) {
	c, s := newCatalogue(t)
	testutil.SeedUser(t, s, "Anna", "Ivanova")

	_, err := c.CreateObject(context.Background(), service.CreateObjectInput{
		ProjectName: "Nowhere",
		StageName:   "Nothing",
		Name:        "Block 1",
		Responsible: "Nobody",
	})
	require.Error(t, err)
	assert.Contains(t, apperr.Text(err), `Project "Nowhere" not found`)
}

func TestCreateObject_StageFailureBeatsResponsible(t *testing.T) {
	c, s := newCatalogue(t)
	testutil.SeedProject(t, s, "Tower A")

	_, err := c.CreateObject(context.Background(), service.CreateObjectInput{
		ProjectName: "Tower A",
		StageName:   "Nothing",
		Name:        "Block 1",
		Responsible: "Nobody",
	})
	require.Error(t, err)
	assert.Contains(t, apperr.Text(err), `Stage "Nothing" not found`)
}

func TestCreateObject_AmbiguousResponsible(t *testing.T) {
	c, s := newCatalogue(t)
	p := testutil.SeedProject(t, s, "Tower A")
	testutil.SeedStage(t, s, p.ID, "Foundation")
	testutil.SeedUser(t, s, "Anna", "Ivanova")
	testutil.SeedUser(t, s, "Ivan", "Petrov")

	_, err := c.CreateObject(context.Background(), service.CreateObjectInput{
		ProjectName: "Tower A", StageName: "Foundation", Name: "Block 1", Responsible: "ivan",
	})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindAmbiguous, e.Kind)
	assert.Len(t, e.Candidates, 2)
}

// ─── Hierarchy walk ──────────────────────────────────────────────────────────

func TestSections_CreateAndSearchByObject(t *testing.T) {
	c, s := newCatalogue(t)
	ctx := context.Background()
	anna := testutil.SeedUser(t, s, "Anna", "Ivanova")

	_, err := c.CreateProject(ctx, service.CreateProjectInput{Name: "Tower A", Manager: "Anna"})
	require.NoError(t, err)
	_, err = c.CreateStage(ctx, service.CreateStageInput{ProjectName: "tower", Name: "Foundation"})
	require.NoError(t, err)
	_, err = c.CreateObject(ctx, service.CreateObjectInput{ProjectName: "Tower A", StageName: "found", Name: "Block 1"})
	require.NoError(t, err)
	sec, err := c.CreateSection(ctx, service.CreateSectionInput{
		ProjectName: "Tower A", ObjectName: "Block 1", Name: "Rebar Plan", Type: "drawing", Responsible: "Ivanova",
	})
	require.NoError(t, err)
	assert.Equal(t, anna.ID, *sec.ResponsibleID)
	assert.Equal(t, "Anna Ivanova", sec.ResponsibleName)

	found, err := c.SearchSections(ctx, service.SectionQuery{ProjectName: "Tower A", ObjectName: "Block 1"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Rebar Plan", found[0].Name)
	assert.Equal(t, "Block 1", found[0].ObjectName)
	assert.Equal(t, "Tower A", found[0].ProjectName)

	none, err := c.SearchSections(ctx, service.SectionQuery{ObjectName: "Block 1", Type: "spec"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateSection_ClearResponsible(t *testing.T) {
	c, s := newCatalogue(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, s, "Anna", "Ivanova")
	tree := testutil.SeedTree(t, s, "Tower A", 1, 0)
	testutil.SeedSection(t, s, tree.Objects[0], "Rebar Plan", "drawing", u.ID)

	v, err := c.UpdateSection(ctx, service.UpdateSectionInput{
		ProjectName: "Tower A", ObjectName: "Object 1", SectionName: "Rebar Plan", Responsible: ptr(service.Clear),
	})
	require.NoError(t, err)
	assert.Nil(t, v.ResponsibleID)
	assert.Equal(t, "drawing", v.Type)
}

func TestSearchObjects_StageRequiresProject(t *testing.T) {
	c, _ := newCatalogue(t)
	_, err := c.SearchObjects(context.Background(), service.ObjectQuery{StageName: "Foundation"})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

// ─── People, reports, notes ──────────────────────────────────────────────────

func TestWorkloadAndReport(t *testing.T) {
	c, s := newCatalogue(t)
	ctx := context.Background()
	anna := testutil.SeedUser(t, s, "Anna", "Ivanova")
	p := testutil.SeedProject(t, s, "Tower A", testutil.WithManager(anna.ID))
	st := testutil.SeedStage(t, s, p.ID, "Foundation")
	o1 := testutil.SeedObject(t, s, st, "Block 1", anna.ID)
	testutil.SeedObject(t, s, st, "Block 2", "")
	testutil.SeedSection(t, s, o1, "Rebar Plan", "drawing", anna.ID)
	testutil.SeedSection(t, s, o1, "Formwork", "", "")

	w, err := c.Workload(ctx, service.WorkloadInput{Person: "anna"})
	require.NoError(t, err)
	assert.Len(t, w.Managed, 1)
	assert.Len(t, w.Objects, 1)
	assert.Len(t, w.Sections, 1)

	r, err := c.ProjectReport(ctx, "tower")
	require.NoError(t, err)
	assert.Equal(t, service.ReportTotals{
		Stages: 1, Objects: 2, Sections: 2, UnassignedObjects: 1, UnassignedSections: 1,
	}, r.Totals)
	require.Len(t, r.People, 1)
	assert.Equal(t, service.PersonLoad{Name: "Anna Ivanova", Objects: 1, Sections: 1}, r.People[0])
	assert.Equal(t, "Anna Ivanova", r.Project.ManagerName)
}

func TestSearchUsers_QueryLength(t *testing.T) {
	c, s := newCatalogue(t)
	testutil.SeedUser(t, s, "Anna", "Ivanova")

	_, err := c.SearchUsers(context.Background(), service.UserQuery{Query: "   "})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	users, err := c.SearchUsers(context.Background(), service.UserQuery{Query: "ivanova anna"})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestNotes(t *testing.T) {
	c, s := newCatalogue(t)
	ctx := context.Background()
	tree := testutil.SeedTree(t, s, "Tower A", 1, 0)

	_, err := c.CreateNote(ctx, service.NoteInput{Content: "x", ObjectName: "Object 1"})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	n, err := c.CreateNote(ctx, service.NoteInput{
		Title: "Crane", Content: "Crane arrives Monday", ProjectName: "Tower A", ObjectName: "Object 1",
	})
	require.NoError(t, err)
	assert.Equal(t, tree.Objects[0].ID, *n.ObjectID)

	found, err := c.SearchNotes(ctx, service.NoteQuery{ProjectName: "Tower A", Query: "monday"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Tower A", found[0].ProjectName)
	assert.Equal(t, "Object 1", found[0].ObjectName)
}

// ─── Cache ───────────────────────────────────────────────────────────────────

func TestDisplayNames_StaleUntilTTL(t *testing.T) {
	s := testutil.NewStore(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var (
		mu      sync.Mutex
		lookups = map[cache.Result]int{}
	)
	c := service.New(s, service.Options{
		CacheTTL: time.Minute,
		Now:      func() time.Time { return now },
		OnCache: func(_ string, r cache.Result) {
			mu.Lock()
			lookups[r]++
			mu.Unlock()
		},
	})
	ctx := context.Background()
	p := testutil.SeedProject(t, s, "Tower A")
	testutil.SeedStage(t, s, p.ID, "Foundation")

	stages, err := c.SearchStages(ctx, service.StageQuery{})
	require.NoError(t, err)
	require.Len(t, stages, 1)
	assert.Equal(t, "Tower A", stages[0].ProjectName)

	_, err = c.UpdateProject(ctx, service.UpdateProjectInput{ProjectName: "Tower A", NewName: ptr("Tower Alpha")})
	require.NoError(t, err)

	stages, err = c.SearchStages(ctx, service.StageQuery{})
	require.NoError(t, err)
	assert.Equal(t, "Tower A", stages[0].ProjectName, "served from cache within the TTL")

	now = now.Add(time.Minute)
	stages, err = c.SearchStages(ctx, service.StageQuery{})
	require.NoError(t, err)
	assert.Equal(t, "Tower Alpha", stages[0].ProjectName)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, lookups[cache.Hit])
	assert.Equal(t, 2, lookups[cache.Miss])
}
