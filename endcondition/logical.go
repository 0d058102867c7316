package endcondition

import (
	osmoerrors "github.com/osmo-tool/osmo/errors"
	"github.com/osmo-tool/osmo/history"
)

// conjunction is true only when every child is true at the same level.
type conjunction struct {
	children []EndCondition
}

// And builds the conjunction of two or more end conditions.
func And(children ...EndCondition) (EndCondition, error) {
	if err := checkChildren("and", children); err != nil {
		return nil, err
	}
	return &conjunction{children: children}, nil
}

// EndTest reports whether every child ends the test.
func (c *conjunction) EndTest(h *history.History) bool {
	for _, child := range c.children {
		if !child.EndTest(h) {
			return false
		}
	}
	return true
}

// EndSuite reports whether every child ends the suite.
func (c *conjunction) EndSuite(h *history.History) bool {
	for _, child := range c.children {
		if !child.EndSuite(h) {
			return false
		}
	}
	return true
}

// disjunction is true as soon as any child is true at that level.
type disjunction struct {
	children []EndCondition
}

// Or builds the disjunction of two or more end conditions.
func Or(children ...EndCondition) (EndCondition, error) {
	if err := checkChildren("or", children); err != nil {
		return nil, err
	}
	return &disjunction{children: children}, nil
}

// EndTest reports whether any child ends the test.
func (d *disjunction) EndTest(h *history.History) bool {
	for _, child := range d.children {
		if child.EndTest(h) {
			return true
		}
	}
	return false
}

// EndSuite reports whether any child ends the suite.
func (d *disjunction) EndSuite(h *history.History) bool {
	for _, child := range d.children {
		if child.EndSuite(h) {
			return true
		}
	}
	return false
}

func checkChildren(op string, children []EndCondition) error {
	if len(children) < 2 {
		return osmoerrors.NewConfigurationError("%s needs at least two end conditions, got %d", op, len(children))
	}
	for _, child := range children {
		if child == nil {
			return osmoerrors.NewConfigurationError("%s received a nil end condition", op)
		}
	}
	return nil
}
