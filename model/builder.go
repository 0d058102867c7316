package model

import (
	osmoerrors "github.com/osmo-tool/osmo/errors"
)

// Builder registers steps explicitly, for models that cannot or do not
// want to rely on method-name conventions. Registration calls never fail
// in place; structural problems are reported when the builder is handed
// to Collect.
//
//	b := model.NewBuilder()
//	b.Step("insert", m.insert).Guard(m.hasCoin).Weight(2.5)
//	b.Step("refund", m.refund)
//	cat, err := model.Collect(b)
type Builder struct {
	defs         []*stepDef
	namedGuards  map[string]Guard
	namedWeights map[string]WeightFunc
	hooks        hookSet
	errs         []error
}

type stepDef struct {
	name       string
	action     Action
	guard      Guard
	weight     WeightFunc
	enabled    bool
	enabledSet bool
	pre        Hook
	post       Hook
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		namedGuards:  make(map[string]Guard),
		namedWeights: make(map[string]WeightFunc),
	}
}

// Step registers a step and returns a StepBuilder for attaching its guard,
// weight, and hooks.
func (b *Builder) Step(name string, action Action) *StepBuilder {
	def := &stepDef{name: name, action: action}
	if name == "" {
		b.errs = append(b.errs, osmoerrors.NewModelStructureError(
			osmoerrors.ErrUnknownStep, "step registered with empty name"))
	}
	if action == nil {
		b.errs = append(b.errs, osmoerrors.NewModelStructureError(
			osmoerrors.ErrUnknownStep, "step %q registered with nil action", name))
	}
	b.defs = append(b.defs, def)
	return &StepBuilder{b: b, def: def}
}

// GuardFor declares a guard for the named step. It is consulted only when
// the step has neither an explicit enabled flag nor an inline guard.
func (b *Builder) GuardFor(step string, g Guard) *Builder {
	b.namedGuards[step] = g
	return b
}

// WeightFor declares a weight binding for the named step, consulted when
// the step has no inline weight.
func (b *Builder) WeightFor(step string, w WeightFunc) *Builder {
	b.namedWeights[step] = w
	return b
}

// BeforeSuite registers the suite-setup hook.
func (b *Builder) BeforeSuite(h Hook) *Builder { b.hooks.beforeSuite = h; return b }

// AfterSuite registers the suite-teardown hook.
func (b *Builder) AfterSuite(h Hook) *Builder { b.hooks.afterSuite = h; return b }

// BeforeTest registers the per-test setup hook.
func (b *Builder) BeforeTest(h Hook) *Builder { b.hooks.beforeTest = h; return b }

// AfterTest registers the per-test teardown hook.
func (b *Builder) AfterTest(h Hook) *Builder { b.hooks.afterTest = h; return b }

// BeforeStep registers the general hook run before every step.
func (b *Builder) BeforeStep(h Hook) *Builder { b.hooks.beforeStep = h; return b }

// AfterStep registers the general hook run after every step.
func (b *Builder) AfterStep(h Hook) *Builder { b.hooks.afterStep = h; return b }

// StepBuilder attaches bindings to one registered step.
type StepBuilder struct {
	b   *Builder
	def *stepDef
}

// Guard attaches an inline guard to the step.
func (s *StepBuilder) Guard(g Guard) *StepBuilder {
	s.def.guard = g
	return s
}

// Weight attaches a static weight. Non-positive or non-finite values are
// rejected when the builder is collected.
func (s *StepBuilder) Weight(w float64) *StepBuilder {
	if err := validWeight(w); err != nil {
		s.b.errs = append(s.b.errs, osmoerrors.NewModelStructureError(
			osmoerrors.ErrInvalidWeight, "step %q: %v", s.def.name, err))
		return s
	}
	s.def.weight = func() float64 { return w }
	return s
}

// WeightFunc attaches a computed weight, evaluated fresh on every
// selection.
func (s *StepBuilder) WeightFunc(w WeightFunc) *StepBuilder {
	s.def.weight = w
	return s
}

// Enabled pins the step's eligibility, overriding any guard. This is the
// highest-priority enablement binding.
func (s *StepBuilder) Enabled(enabled bool) *StepBuilder {
	s.def.enabled = enabled
	s.def.enabledSet = true
	return s
}

// Pre attaches a hook run immediately before the step body.
func (s *StepBuilder) Pre(h Hook) *StepBuilder {
	s.def.pre = h
	return s
}

// Post attaches a hook run immediately after the step body.
func (s *StepBuilder) Post(h Hook) *StepBuilder {
	s.def.post = h
	return s
}

// Step registers the next step on the underlying builder, allowing
// continuous chaining.
func (s *StepBuilder) Step(name string, action Action) *StepBuilder {
	return s.b.Step(name, action)
}

// resolve applies the binding priority rules and produces the constituent.
// Enablement priority: explicit flag, inline guard, named guard, always
// enabled. Weight priority: inline, named, default.
func (b *Builder) resolve() (constituent, error) {
	if len(b.errs) > 0 {
		return constituent{}, b.errs[0]
	}

	seen := make(map[string]bool, len(b.defs))
	var con constituent
	for _, def := range b.defs {
		if seen[def.name] {
			return constituent{}, osmoerrors.NewModelStructureError(
				osmoerrors.ErrDuplicateStep, "step %q registered twice", def.name)
		}
		seen[def.name] = true

		guard := def.guard
		if def.enabledSet {
			enabled := def.enabled
			guard = func() bool { return enabled }
		} else if guard == nil {
			guard = b.namedGuards[def.name]
		}

		weight := def.weight
		if weight == nil {
			weight = b.namedWeights[def.name]
		}

		con.steps = append(con.steps, &Step{
			name:   def.name,
			action: def.action,
			guard:  guard,
			weight: weight,
			pre:    def.pre,
			post:   def.post,
		})
	}

	for name := range b.namedGuards {
		if !seen[name] {
			return constituent{}, osmoerrors.NewModelStructureError(
				osmoerrors.ErrUnknownStep, "guard declared for unknown step %q", name)
		}
	}
	for name := range b.namedWeights {
		if !seen[name] {
			return constituent{}, osmoerrors.NewModelStructureError(
				osmoerrors.ErrUnknownStep, "weight declared for unknown step %q", name)
		}
	}

	con.hooks = b.hooks
	return con, nil
}
