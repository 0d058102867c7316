package model

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	osmoerrors "github.com/osmo-tool/osmo/errors"
)

// Reserved method-name grammar for reflection-based models. Anything that
// matches a reserved name or prefix must have the right shape; a match
// with the wrong signature or an unknown referent is a fatal structure
// error rather than being silently skipped.
const (
	stepPrefix   = "Step"
	guardPrefix  = "Guard"
	weightPrefix = "Weight"
	prePrefix    = "Pre"
	postPrefix   = "Post"
)

// lifecycleNames maps reserved lifecycle method names to hookSet slots.
var lifecycleNames = map[string]func(*hookSet, Hook){
	"BeforeSuite": func(h *hookSet, fn Hook) { h.beforeSuite = fn },
	"AfterSuite":  func(h *hookSet, fn Hook) { h.afterSuite = fn },
	"BeforeTest":  func(h *hookSet, fn Hook) { h.beforeTest = fn },
	"AfterTest":   func(h *hookSet, fn Hook) { h.afterTest = fn },
	"BeforeStep":  func(h *hookSet, fn Hook) { h.beforeStep = fn },
	"AfterStep":   func(h *hookSet, fn Hook) { h.afterStep = fn },
}

// introspect builds a constituent from an arbitrary user struct by
// scanning its exported methods. Method enumeration order in Go reflection
// is alphabetical, so discovery is deterministic.
func introspect(m any) (constituent, error) {
	v := reflect.ValueOf(m)
	if !v.IsValid() {
		return constituent{}, osmoerrors.NewModelStructureError(osmoerrors.ErrNoSteps, "invalid model value")
	}

	var (
		con     constituent
		order   []string
		actions = make(map[string]Action)
		guards  = make(map[string]Guard)
		weights = make(map[string]WeightFunc)
		pres    = make(map[string]Hook)
		posts   = make(map[string]Hook)
	)

	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		name := t.Method(i).Name
		fn := v.Method(i).Interface()

		if set, ok := lifecycleNames[name]; ok {
			h, err := asHook(fn)
			if err != nil {
				return constituent{}, signatureError(t, name, err)
			}
			set(&con.hooks, h)
			continue
		}

		switch {
		case strings.HasPrefix(name, "Before") || strings.HasPrefix(name, "After"):
			return constituent{}, osmoerrors.NewModelStructureError(
				osmoerrors.ErrUnknownStep, "%s.%s is not a recognized lifecycle hook", t, name)

		case strings.HasPrefix(name, stepPrefix):
			stepName, err := bindingName(t, name, stepPrefix)
			if err != nil {
				return constituent{}, err
			}
			action, err := asAction(fn)
			if err != nil {
				return constituent{}, signatureError(t, name, err)
			}
			actions[stepName] = action
			order = append(order, stepName)

		case strings.HasPrefix(name, guardPrefix):
			stepName, err := bindingName(t, name, guardPrefix)
			if err != nil {
				return constituent{}, err
			}
			g, ok := fn.(func() bool)
			if !ok {
				return constituent{}, signatureError(t, name, errWantSignature("func() bool"))
			}
			guards[stepName] = g

		case strings.HasPrefix(name, weightPrefix):
			stepName, err := bindingName(t, name, weightPrefix)
			if err != nil {
				return constituent{}, err
			}
			w, ok := fn.(func() float64)
			if !ok {
				return constituent{}, signatureError(t, name, errWantSignature("func() float64"))
			}
			weights[stepName] = w

		case strings.HasPrefix(name, postPrefix):
			// "Post" and "Pre" differ in their second letter, so no name
			// matches both prefixes and the order of these cases is free.
			stepName, err := bindingName(t, name, postPrefix)
			if err != nil {
				return constituent{}, err
			}
			h, err := asHook(fn)
			if err != nil {
				return constituent{}, signatureError(t, name, err)
			}
			posts[stepName] = h

		case strings.HasPrefix(name, prePrefix):
			stepName, err := bindingName(t, name, prePrefix)
			if err != nil {
				return constituent{}, err
			}
			h, err := asHook(fn)
			if err != nil {
				return constituent{}, signatureError(t, name, err)
			}
			pres[stepName] = h
		}
		// Exported methods outside the reserved grammar belong to the user
		// and are left alone.
	}

	for _, name := range order {
		con.steps = append(con.steps, &Step{
			name:   name,
			action: actions[name],
			guard:  guards[name],
			weight: weights[name],
			pre:    pres[name],
			post:   posts[name],
		})
	}

	// Bindings that never found their step are misspellings, not noise.
	for _, check := range []struct {
		kind  string
		names map[string]bool
	}{
		{"guard", keysMissing(guards, actions)},
		{"weight", keysMissing(weights, actions)},
		{"pre-hook", keysMissing(pres, actions)},
		{"post-hook", keysMissing(posts, actions)},
	} {
		for name := range check.names {
			return constituent{}, osmoerrors.NewModelStructureError(
				osmoerrors.ErrUnknownStep, "%s bound to step %q but %s has no such step", check.kind, name, t)
		}
	}

	return con, nil
}

// bindingName strips the reserved prefix and lower-cases the first rune:
// StepFooBar binds step "fooBar". An empty remainder is a structure error.
func bindingName(t reflect.Type, method, prefix string) (string, error) {
	rest := strings.TrimPrefix(method, prefix)
	if rest == "" {
		return "", osmoerrors.NewModelStructureError(
			osmoerrors.ErrUnknownStep, "%s.%s has the %s prefix but no step name", t, method, prefix)
	}
	r, size := utf8.DecodeRuneInString(rest)
	return string(unicode.ToLower(r)) + rest[size:], nil
}

func asAction(fn any) (Action, error) {
	switch f := fn.(type) {
	case func():
		return func() error { f(); return nil }, nil
	case func() error:
		return f, nil
	default:
		return nil, errWantSignature("func() or func() error")
	}
}

func asHook(fn any) (Hook, error) {
	switch f := fn.(type) {
	case func():
		return func() error { f(); return nil }, nil
	case func() error:
		return f, nil
	default:
		return nil, errWantSignature("func() or func() error")
	}
}

type signatureErr struct{ want string }

func (e signatureErr) Error() string { return "want signature " + e.want }

func errWantSignature(want string) error { return signatureErr{want: want} }

func signatureError(t reflect.Type, method string, err error) error {
	return osmoerrors.NewModelStructureError(osmoerrors.ErrUnknownStep, "%s.%s: %v", t, method, err)
}

// keysMissing returns the keys of m that are absent from have.
func keysMissing[V any, W any](m map[string]V, have map[string]W) map[string]bool {
	missing := make(map[string]bool)
	for k := range m {
		if _, ok := have[k]; !ok {
			missing[k] = true
		}
	}
	return missing
}
