package resolve_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/HendryAvila/foreman/internal/apperr"
	"github.com/HendryAvila/foreman/internal/domain"
	"github.com/HendryAvila/foreman/internal/resolve"
	"github.com/HendryAvila/foreman/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	none := resolve.Classify("project", "x", []string{})
	assert.Equal(t, resolve.NotFound, none.Kind)

	one := resolve.Classify("project", "x", []string{"a"})
	v, ok := one.Value()
	assert.True(t, ok)
	assert.Equal(t, "a", v)
	assert.NoError(t, one.Err(func(s string) string { return s }))

	many := resolve.Classify("project", "x", []string{"a", "b", "c"})
	assert.Equal(t, resolve.Ambiguous, many.Kind)
	assert.Len(t, many.Candidates, 3)
	err := many.Err(strings.ToUpper)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindAmbiguous, e.Kind)
	assert.Equal(t, []string{"A", "B", "C"}, e.Candidates)
}

func TestResolver_Determinism(t *testing.T) {
	s := testutil.NewStore(t)
	p := testutil.SeedProject(t, s, "Tower A")
	testutil.SeedProject(t, s, "Bridge")
	r := resolve.New(s, nil)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		got, err := r.Project(ctx, "Tower A", resolve.Exact)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)

		got, err = r.Project(ctx, "tower", resolve.Fuzzy)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
	}
}

func TestResolver_AmbiguityCompleteness(t *testing.T) {
	s := testutil.NewStore(t)
	p := testutil.SeedProject(t, s, "Tower A")
	st := testutil.SeedStage(t, s, p.ID, "Foundation")
	const k = 7
	for i := 0; i < k; i++ {
		testutil.SeedObject(t, s, st, fmt.Sprintf("Block %d", i), "")
	}
	r := resolve.New(s, nil)

	o, err := r.Objects(context.Background(), resolve.ObjectScope{ProjectID: p.ID, StageID: st.ID}, "block", resolve.Fuzzy)
	require.NoError(t, err)
	assert.Equal(t, resolve.Ambiguous, o.Kind)
	assert.Len(t, o.Candidates, k)

	_, err = r.Object(context.Background(), resolve.ObjectScope{ProjectID: p.ID, StageID: st.ID}, "block", resolve.Fuzzy)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Len(t, e.Candidates, k)
	assert.Contains(t, e.Candidates[0], `stage "Foundation"`)
	assert.Contains(t, e.Message, `in stage "Foundation" of project "Tower A"`)
}

func TestResolver_AmbiguityCap(t *testing.T) {
	s := testutil.NewStore(t)
	for i := 0; i < resolve.MaxCandidates+5; i++ {
		testutil.SeedProject(t, s, fmt.Sprintf("Site %02d", i))
	}
	o, err := resolve.New(s, nil).Projects(context.Background(), "site", resolve.Fuzzy)
	require.NoError(t, err)
	assert.Equal(t, resolve.Ambiguous, o.Kind)
	assert.Len(t, o.Candidates, resolve.MaxCandidates)
}

func TestResolver_FuzzyPrefersExactName(t *testing.T) {
	s := testutil.NewStore(t)
	a := testutil.SeedProject(t, s, "Tower A")
	testutil.SeedProject(t, s, "Tower A2")
	r := resolve.New(s, nil)

	got, err := r.Project(context.Background(), "tower a", resolve.Fuzzy)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = r.Project(context.Background(), "tower", resolve.Fuzzy)
	assert.Equal(t, apperr.KindAmbiguous, apperr.KindOf(err))
}

func TestResolver_FuzzyCaseOnlyTwinsPreferExactSpelling(t *testing.T) {
	s := testutil.NewStore(t)
	p := testutil.SeedProject(t, s, "Tower A")
	upper := testutil.SeedObject(t, s, testutil.SeedStage(t, s, p.ID, "Foundation"), "Block 1", "")
	lower := testutil.SeedObject(t, s, testutil.SeedStage(t, s, p.ID, "Frame"), "block 1", "")
	r := resolve.New(s, nil)
	ctx := context.Background()
	scope := resolve.ObjectScope{ProjectID: p.ID}

	got, err := r.Object(ctx, scope, "Block 1", resolve.Fuzzy)
	require.NoError(t, err)
	assert.Equal(t, upper.ID, got.ID)

	got, err = r.Object(ctx, scope, "block 1", resolve.Fuzzy)
	require.NoError(t, err)
	assert.Equal(t, lower.ID, got.ID)

	_, err = r.Object(ctx, scope, "BLOCK 1", resolve.Fuzzy)
	assert.Equal(t, apperr.KindAmbiguous, apperr.KindOf(err))
}

func TestResolver_ExactIsCaseSensitiveAndTrimmed(t *testing.T) {
	s := testutil.NewStore(t)
	p := testutil.SeedProject(t, s, "Tower A")
	r := resolve.New(s, nil)

	got, err := r.Project(context.Background(), "  Tower A ", resolve.Exact)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = r.Project(context.Background(), "Tower", resolve.Exact)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Contains(t, apperr.Text(err), `"Tower"`)
}

func TestResolver_StageScopedToProject(t *testing.T) {
	s := testutil.NewStore(t)
	a := testutil.SeedProject(t, s, "Tower A")
	b := testutil.SeedProject(t, s, "Tower B")
	stA := testutil.SeedStage(t, s, a.ID, "Foundation")
	testutil.SeedStage(t, s, b.ID, "Foundation")
	r := resolve.New(s, nil)

	got, err := r.Stage(context.Background(), a.ID, "Foundation", resolve.Exact)
	require.NoError(t, err)
	assert.Equal(t, stA.ID, got.ID)

	_, err = r.Stage(context.Background(), a.ID, "Roof", resolve.Exact)
	require.Error(t, err)
	assert.Contains(t, apperr.Text(err), `in project "Tower A"`)
}

func TestResolver_SectionWithinObject(t *testing.T) {
	s := testutil.NewStore(t)
	tree := testutil.SeedTree(t, s, "Tower A", 2, 2)
	r := resolve.New(s, nil)

	got, err := r.Section(context.Background(), tree.Objects[1].ID, "Section 2.1", resolve.Exact)
	require.NoError(t, err)
	assert.Equal(t, tree.Objects[1].ID, got.ObjectID)

	_, err = r.Section(context.Background(), tree.Objects[0].ID, "Section 2.1", resolve.Exact)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestResolver_EmptyNameIsInvalidInput(t *testing.T) {
	s := testutil.NewStore(t)
	_, err := resolve.New(s, nil).Project(context.Background(), "   ", resolve.Fuzzy)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestResolver_Person(t *testing.T) {
	s := testutil.NewStore(t)
	anna := testutil.SeedUser(t, s, "Anna", "Ivanova", testutil.WithEmail("anna@example.com"), testutil.WithPosition("Engineer"))
	testutil.SeedUser(t, s, "Ivan", "Petrov", testutil.WithEmail("ivan@example.com"))
	r := resolve.New(s, nil)
	ctx := context.Background()

	t.Run("unique by pair", func(t *testing.T) {
		got, err := r.Person(ctx, "responsible", "Ivanova Anna")
		require.NoError(t, err)
		assert.Equal(t, anna.ID, got.ID)
	})

	t.Run("ambiguous lists display fields", func(t *testing.T) {
		_, err := r.Person(ctx, "responsible", "ivan")
		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, apperr.KindAmbiguous, e.Kind)
		require.Len(t, e.Candidates, 2)
		assert.Equal(t, "Anna Ivanova <anna@example.com>, Engineer", e.Candidates[0])
	})

	t.Run("exact email wins", func(t *testing.T) {
		got, err := r.Person(ctx, "responsible", "ANNA@example.com")
		require.NoError(t, err)
		assert.Equal(t, anna.ID, got.ID)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := r.Person(ctx, "responsible", "  ")
		assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
	})

	t.Run("too long", func(t *testing.T) {
		_, err := r.Person(ctx, "responsible", strings.Repeat("я", resolve.MaxPersonQuery+1))
		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, apperr.KindInvalidInput, e.Kind)
		assert.Equal(t, "responsible", e.Field)
	})

	t.Run("fifty characters allowed", func(t *testing.T) {
		_, err := r.Person(ctx, "responsible", strings.Repeat("x", resolve.MaxPersonQuery))
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestResolver_Observer(t *testing.T) {
	s := testutil.NewStore(t)
	testutil.SeedProject(t, s, "Tower A")

	var (
		mu  sync.Mutex
		got []string
	)
	r := resolve.New(s, func(entity string, k resolve.Kind) {
		mu.Lock()
		got = append(got, entity+":"+k.String())
		mu.Unlock()
	})
	_, _ = r.Project(context.Background(), "Tower A", resolve.Exact)
	_, _ = r.Project(context.Background(), "Nope", resolve.Exact)
	assert.Equal(t, []string{"project:unique", "project:not_found"}, got)
}

func TestChain_ProjectFailureTakesPrecedenceOverStage(t *testing.T) {
	s := testutil.NewStore(t)
	r := resolve.New(s, nil)
	ctx := context.Background()

	var project domain.Project
	err := resolve.NewChain().
		Step("project", func(ctx context.Context) error {
			var err error
			project, err = r.Project(ctx, "Missing Project", resolve.Fuzzy)
			return err
		}).
		Step("stage", func(ctx context.Context) error {
			_, err := r.Stage(ctx, project.ID, "Missing Stage", resolve.Exact)
			return err
		}, "project").
		Run(ctx)

	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Contains(t, apperr.Text(err), "Missing Project")
	assert.NotContains(t, apperr.Text(err), "Missing Stage")
}
