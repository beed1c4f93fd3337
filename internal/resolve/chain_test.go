package resolve

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_AllSucceedInDependencyOrder(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) StepFunc {
		return func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}

	err := NewChain().
		Step("project", record("project")).
		Step("stage", record("stage"), "project").
		Step("object", record("object"), "stage").
		Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"project", "stage", "object"}, order)
}

func TestChain_DependentStepSeesParentResult(t *testing.T) {
	var projectID, stageScope string
	err := NewChain().
		Step("project", func(context.Context) error {
			projectID = "p-1"
			return nil
		}).
		Step("stage", func(context.Context) error {
			stageScope = projectID
			return nil
		}, "project").
		Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "p-1", stageScope)
}

func TestChain_EarliestDeclaredFailureWins(t *testing.T) {
	errProject := errors.New("project not found")
	errStage := errors.New("stage not found")
	var stageRan atomic.Bool

	err := NewChain().
		Step("project", func(context.Context) error { return errProject }).
		Step("stage", func(context.Context) error {
			stageRan.Store(true)
			return errStage
		}, "project").
		Run(context.Background())

	assert.ErrorIs(t, err, errProject)
	assert.False(t, stageRan.Load(), "a step never runs with an unresolved parent")
}

func TestChain_IndependentLaterFailureDoesNotMaskEarlierOne(t *testing.T) {
	// project and person run in the same wave; stage runs after project.
	// The person failure is declared last, the stage failure must win.
	errStage := errors.New("stage not found")
	errPerson := errors.New("person ambiguous")

	err := NewChain().
		Step("project", func(context.Context) error { return nil }).
		Step("stage", func(context.Context) error { return errStage }, "project").
		Step("person", func(context.Context) error { return errPerson }).
		Run(context.Background())

	assert.ErrorIs(t, err, errStage)
}

func TestChain_LaterStepsSkippedAfterFailure(t *testing.T) {
	errProject := errors.New("project not found")
	var ran atomic.Int32

	err := NewChain().
		Step("project", func(context.Context) error {
			time.Sleep(10 * time.Millisecond)
			return errProject
		}).
		Step("person", func(context.Context) error {
			ran.Add(1)
			return nil
		}).
		Step("stage", func(context.Context) error {
			ran.Add(10)
			return nil
		}, "project").
		Step("late", func(context.Context) error {
			ran.Add(100)
			return nil
		}, "person").
		Run(context.Background())

	assert.ErrorIs(t, err, errProject)
	// person shares the first wave with project; nothing declared after the
	// failing step starts once the failure is known.
	assert.Equal(t, int32(1), ran.Load())
}

func TestChain_FansOutIndependentSteps(t *testing.T) {
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	step := func(context.Context) error {
		started <- struct{}{}
		<-release
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- NewChain().Step("project", step).Step("person", step).Run(context.Background())
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("independent steps did not run concurrently")
		}
	}
	close(release)
	require.NoError(t, <-done)
}

func TestChain_StepIfDisabledCountsAsSuccess(t *testing.T) {
	var ran bool
	err := NewChain().
		StepIf(false, "stage", func(context.Context) error { return errors.New("must not run") }).
		Step("object", func(context.Context) error {
			ran = true
			return nil
		}, "stage").
		Run(context.Background())

	require.NoError(t, err)
	assert.True(t, ran)
}

func TestChain_PanicBecomesError(t *testing.T) {
	err := NewChain().
		Step("boom", func(context.Context) error { panic("kaboom") }).
		Step("other", func(context.Context) error { return nil }).
		Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestChain_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewChain().Step("project", func(context.Context) error { return nil }).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChain_DeclarationErrorsPanic(t *testing.T) {
	noop := func(context.Context) error { return nil }
	assert.Panics(t, func() { NewChain().Step("stage", noop, "project") })
	assert.Panics(t, func() { NewChain().Step("a", noop).Step("a", noop) })
}

func TestChain_Empty(t *testing.T) {
	c := NewChain()
	assert.Equal(t, 0, c.Len())
	assert.NoError(t, c.Run(context.Background()))
}
