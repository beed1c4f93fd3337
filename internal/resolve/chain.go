package resolve

import (
	"context"
	"fmt"
	"sync"
)

// StepFunc performs one resolution. Steps communicate through variables
// captured by their closures; a step only reads what its dependencies wrote.
type StepFunc func(ctx context.Context) error

type stepState int

const (
	pending stepState = iota
	succeeded
	failed
	skipped
)

type step struct {
	name  string
	run   StepFunc
	after []int
}

// Chain is an ordered list of resolution steps with declared dependencies.
//
// Run executes the steps in waves: every pending step whose dependencies
// have all succeeded runs, concurrently with the others in the same wave.
// A step never starts before its dependencies finish, and steps whose
// dependencies failed are skipped. Failure precedence follows declaration
// order: the error returned is the one from the earliest-declared failing
// step, and after a failure only steps declared before it may still start.
//
// Independent steps share a wave, so a people lookup declared after the
// project may already be running when the project lookup fails. Its result
// is discarded; the only cost is the extra query.
//
// Declare steps in dependency order: project, stage, object, section,
// then people.
type Chain struct {
	steps []step
	index map[string]int
}

// NewChain creates an empty chain.
func NewChain() *Chain {
	return &Chain{index: make(map[string]int)}
}

// Step appends a step that runs after the named earlier steps. Naming an
// unknown step, a later step or a duplicate name panics.
func (c *Chain) Step(name string, run StepFunc, after ...string) *Chain {
	if _, dup := c.index[name]; dup {
		panic(fmt.Sprintf("resolve: duplicate step %q", name))
	}
	s := step{name: name, run: run}
	for _, dep := range after {
		i, ok := c.index[dep]
		if !ok {
			panic(fmt.Sprintf("resolve: step %q depends on undeclared step %q", name, dep))
		}
		s.after = append(s.after, i)
	}
	c.index[name] = len(c.steps)
	c.steps = append(c.steps, s)
	return c
}

// StepIf is Step when cond holds. Otherwise the step is recorded as an
// immediate success so later steps may still depend on it.
func (c *Chain) StepIf(cond bool, name string, run StepFunc, after ...string) *Chain {
	if !cond {
		run = nil
	}
	return c.Step(name, run, after...)
}

// Len returns the number of declared steps.
func (c *Chain) Len() int {
	return len(c.steps)
}

// Run executes the chain and returns the earliest-declared failure.
func (c *Chain) Run(ctx context.Context) error {
	n := len(c.steps)
	state := make([]stepState, n)
	errs := make([]error, n)
	firstFail := n

	for {
		var wave []int
		for i := 0; i < firstFail; i++ {
			if state[i] != pending {
				continue
			}
			ready := true
			for _, d := range c.steps[i].after {
				if state[d] == failed || state[d] == skipped {
					state[i] = skipped
					ready = false
					break
				}
				if state[d] != succeeded {
					ready = false
				}
			}
			if ready {
				wave = append(wave, i)
			}
		}
		if len(wave) == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		c.runWave(ctx, wave, errs)

		for _, i := range wave {
			if errs[i] != nil {
				state[i] = failed
				if i < firstFail {
					firstFail = i
				}
				continue
			}
			state[i] = succeeded
		}
	}

	if firstFail < n {
		return errs[firstFail]
	}
	return nil
}

func (c *Chain) runWave(ctx context.Context, wave []int, errs []error) {
	if len(wave) == 1 {
		errs[wave[0]] = c.runStep(ctx, wave[0])
		return
	}
	var wg sync.WaitGroup
	for _, i := range wave {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.runStep(ctx, i)
		}(i)
	}
	wg.Wait()
}

func (c *Chain) runStep(ctx context.Context, i int) (err error) {
	s := c.steps[i]
	if s.run == nil {
		return nil
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("resolve: step %q panicked: %v", s.name, p)
		}
	}()
	return s.run(ctx)
}
