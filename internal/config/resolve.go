package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/osmo-tool/osmo/algorithm"
	"github.com/osmo-tool/osmo/endcondition"
	"github.com/osmo-tool/osmo/engine"
	osmoerrors "github.com/osmo-tool/osmo/errors"
	"github.com/osmo-tool/osmo/errorstrategy"
)

// AlgorithmNames lists the built-in algorithm names in stable order.
func AlgorithmNames() []string {
	return []string{"random", "weighted", "balancing", "weighted-balancing"}
}

// StrategyNames lists the built-in error strategy names in stable order.
func StrategyNames() []string {
	return []string{"raise", "ignore", "ignore-asserts", "allow:N"}
}

// EndConditionNames lists the built-in end condition specs.
func EndConditionNames() []string {
	return []string{"length:N", "time:DURATION", "coverage:PERCENT", "endless"}
}

// ResolveAlgorithm maps an algorithm name to its kind.
func ResolveAlgorithm(name string) (algorithm.Algorithm, error) {
	switch name {
	case "random":
		return algorithm.Random{}, nil
	case "weighted":
		return algorithm.Weighted{}, nil
	case "balancing":
		return algorithm.Balancing{}, nil
	case "weighted-balancing":
		return algorithm.WeightedBalancing{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (valid: %v)",
			osmoerrors.ErrUnknownAlgorithm, name, AlgorithmNames())
	}
}

// ResolveStrategy maps an error strategy name to its kind.
func ResolveStrategy(name string) (errorstrategy.Strategy, error) {
	switch {
	case name == "raise":
		return errorstrategy.AlwaysRaise{}, nil
	case name == "ignore":
		return errorstrategy.AlwaysIgnore{}, nil
	case name == "ignore-asserts":
		return errorstrategy.IgnoreAssertions{}, nil
	case strings.HasPrefix(name, "allow:"):
		n, err := strconv.Atoi(strings.TrimPrefix(name, "allow:"))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: count is not a number", osmoerrors.ErrUnknownStrategy, name)
		}
		return errorstrategy.NewAllowCount(n)
	default:
		return nil, fmt.Errorf("%w: %q (valid: %v)",
			osmoerrors.ErrUnknownStrategy, name, StrategyNames())
	}
}

// ResolveEndCondition parses an end condition spec. The grammar supports
// "length:N", "time:DURATION", "coverage:PERCENT", "endless", with "|"
// composing alternatives (Or) and "&" composing requirements (And); "|"
// binds looser than "&". The catalogue is required for coverage specs.
func ResolveEndCondition(spec string, catalogue []string) (endcondition.EndCondition, error) {
	parts := strings.Split(spec, "|")
	if len(parts) > 1 {
		children := make([]endcondition.EndCondition, 0, len(parts))
		for _, part := range parts {
			child, err := ResolveEndCondition(part, catalogue)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return endcondition.Or(children...)
	}

	parts = strings.Split(spec, "&")
	if len(parts) > 1 {
		children := make([]endcondition.EndCondition, 0, len(parts))
		for _, part := range parts {
			child, err := ResolveEndCondition(part, catalogue)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return endcondition.And(children...)
	}

	return resolveSimpleEndCondition(strings.TrimSpace(spec), catalogue)
}

func resolveSimpleEndCondition(spec string, catalogue []string) (endcondition.EndCondition, error) {
	kind, arg, hasArg := strings.Cut(spec, ":")
	switch kind {
	case "endless":
		if hasArg {
			return nil, fmt.Errorf("%w: %q takes no argument", osmoerrors.ErrUnknownEndCondition, spec)
		}
		return endcondition.Endless{}, nil

	case "length":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: length is not a number", osmoerrors.ErrUnknownEndCondition, spec)
		}
		return endcondition.NewLength(n)

	case "time":
		d, err := time.ParseDuration(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", osmoerrors.ErrUnknownEndCondition, spec, err)
		}
		return endcondition.NewTime(d)

	case "coverage":
		p, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: percent is not a number", osmoerrors.ErrUnknownEndCondition, spec)
		}
		return endcondition.NewStepCoverage(p, catalogue)

	default:
		return nil, fmt.Errorf("%w: %q (valid: %v)",
			osmoerrors.ErrUnknownEndCondition, spec, EndConditionNames())
	}
}

// Resolve converts the textual run configuration into an engine.Config.
// The catalogue step names are needed for coverage end conditions.
func (c RunConfig) Resolve(catalogue []string) (engine.Config, error) {
	cfg := engine.Config{
		Seed:                c.Seed,
		StopOnFail:          c.StopOnFail,
		StopTestOnException: c.StopTestOnException,
	}

	var err error
	if cfg.Algorithm, err = ResolveAlgorithm(c.Algorithm); err != nil {
		return engine.Config{}, err
	}
	if cfg.TestEndCondition, err = ResolveEndCondition(c.TestEndCondition, catalogue); err != nil {
		return engine.Config{}, err
	}
	if cfg.SuiteEndCondition, err = ResolveEndCondition(c.SuiteEndCondition, catalogue); err != nil {
		return engine.Config{}, err
	}
	if cfg.TestErrorStrategy, err = ResolveStrategy(c.TestErrorStrategy); err != nil {
		return engine.Config{}, err
	}
	if cfg.SuiteErrorStrategy, err = ResolveStrategy(c.SuiteErrorStrategy); err != nil {
		return engine.Config{}, err
	}
	return cfg, nil
}
