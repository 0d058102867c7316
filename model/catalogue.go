package model

import (
	osmoerrors "github.com/osmo-tool/osmo/errors"
)

// hookSet holds the lifecycle hooks of one constituent model. Any entry
// may be nil.
type hookSet struct {
	beforeSuite Hook
	afterSuite  Hook
	beforeTest  Hook
	afterTest   Hook
	beforeStep  Hook // the general "before" hook, run before every step
	afterStep   Hook // the general "after" hook, run after every step
}

// constituent is one resolved user model: its steps plus lifecycle hooks.
type constituent struct {
	steps []*Step
	hooks hookSet
}

// Catalogue is the immutable union of all constituent models. Step names
// are unique across the whole catalogue; lifecycle hooks run in the order
// the constituents were supplied to Collect.
type Catalogue struct {
	steps        []*Step
	byName       map[string]*Step
	constituents []constituent
}

// Collect introspects the supplied models and builds the catalogue.
// Each model is either a *Builder (explicit registration) or an arbitrary
// struct whose exported methods follow the naming convention. Duplicate
// step names across models, bindings for unknown steps, invalid weights,
// and a step-less result are all fatal ModelStructureErrors.
func Collect(models ...any) (*Catalogue, error) {
	if len(models) == 0 {
		return nil, osmoerrors.NewModelStructureError(osmoerrors.ErrNoSteps, "no models supplied")
	}

	cat := &Catalogue{byName: make(map[string]*Step)}
	for _, m := range models {
		var (
			c   constituent
			err error
		)
		switch v := m.(type) {
		case nil:
			return nil, osmoerrors.NewModelStructureError(osmoerrors.ErrNoSteps, "nil model supplied")
		case *Builder:
			c, err = v.resolve()
		default:
			c, err = introspect(m)
		}
		if err != nil {
			return nil, err
		}

		for _, s := range c.steps {
			if _, dup := cat.byName[s.name]; dup {
				return nil, osmoerrors.NewModelStructureError(
					osmoerrors.ErrDuplicateStep, "step %q declared by more than one model", s.name)
			}
			cat.byName[s.name] = s
			cat.steps = append(cat.steps, s)
		}
		cat.constituents = append(cat.constituents, c)
	}

	if len(cat.steps) == 0 {
		return nil, osmoerrors.NewModelStructureError(osmoerrors.ErrNoSteps, "no steps discovered in any model")
	}

	// Static weight validation happens at definition time; computed weight
	// bindings are probed once here so a broken binding fails before any
	// suite hook runs.
	for _, s := range cat.steps {
		if s.weight == nil {
			continue
		}
		if _, err := s.CurrentWeight(); err != nil {
			return nil, osmoerrors.NewModelStructureError(osmoerrors.ErrInvalidWeight, "%v", err)
		}
	}

	return cat, nil
}

// Steps returns the full catalogue in discovery order.
func (c *Catalogue) Steps() []*Step {
	return c.steps
}

// Step returns the named step, or nil if the catalogue has no such step.
func (c *Catalogue) Step(name string) *Step {
	return c.byName[name]
}

// StepNames returns all step names in discovery order.
func (c *Catalogue) StepNames() []string {
	names := make([]string, len(c.steps))
	for i, s := range c.steps {
		names[i] = s.name
	}
	return names
}

// Len returns the number of catalogued steps.
func (c *Catalogue) Len() int {
	return len(c.steps)
}

// EnabledSteps evaluates every step's guard and returns the enabled subset.
// A guard error (recovered panic) aborts evaluation; the engine treats it
// as a test-level step error with no step having executed.
func (c *Catalogue) EnabledSteps() ([]*Step, error) {
	enabled := make([]*Step, 0, len(c.steps))
	for _, s := range c.steps {
		ok, err := s.Enabled()
		if err != nil {
			return nil, err
		}
		if ok {
			enabled = append(enabled, s)
		}
	}
	return enabled, nil
}

// Hook runners. Before-hooks run constituents in supply order and stop at
// the first error. After-hooks always run every constituent so cleanup is
// never skipped; the first error is returned after all have run.

// RunBeforeSuite invokes before_suite on every constituent in supply order.
func (c *Catalogue) RunBeforeSuite() error {
	return c.runForward(func(h hookSet) Hook { return h.beforeSuite })
}

// RunAfterSuite invokes after_suite on every constituent.
func (c *Catalogue) RunAfterSuite() error {
	return c.runAll(func(h hookSet) Hook { return h.afterSuite })
}

// RunBeforeTest invokes before_test on every constituent in supply order.
func (c *Catalogue) RunBeforeTest() error {
	return c.runForward(func(h hookSet) Hook { return h.beforeTest })
}

// RunAfterTest invokes after_test on every constituent.
func (c *Catalogue) RunAfterTest() error {
	return c.runAll(func(h hookSet) Hook { return h.afterTest })
}

// RunBeforeStep invokes the general before hook on every constituent.
func (c *Catalogue) RunBeforeStep() error {
	return c.runForward(func(h hookSet) Hook { return h.beforeStep })
}

// RunAfterStep invokes the general after hook on every constituent.
func (c *Catalogue) RunAfterStep() error {
	return c.runAll(func(h hookSet) Hook { return h.afterStep })
}

func (c *Catalogue) runForward(pick func(hookSet) Hook) error {
	for _, con := range c.constituents {
		if err := call(pick(con.hooks)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalogue) runAll(pick func(hookSet) Hook) error {
	var first error
	for _, con := range c.constituents {
		if err := call(pick(con.hooks)); err != nil && first == nil {
			first = err
		}
	}
	return first
}
