// Package errors provides centralized error handling for osmo.
//
// This package defines sentinel errors used for programmatic error
// categorization throughout the engine, plus the typed failure variants
// that surface to callers when a run propagates. All error types can be
// checked using errors.Is() / errors.As().
//
// IMPORTANT: This package MUST NOT import any other osmo packages.
// Only standard library imports are allowed.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrModelStructure indicates the model catalogue could not be built:
	// duplicate step names, a guard or weight bound to an unknown step,
	// an invalid weight, or a model with no steps at all.
	ErrModelStructure = errors.New("invalid model structure")

	// ErrConfiguration indicates an invalid engine or end-condition
	// configuration value detected at construction time.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrNoSteps indicates a model exposes no steps.
	ErrNoSteps = errors.New("model has no steps")

	// ErrDuplicateStep indicates two steps resolved to the same name.
	ErrDuplicateStep = errors.New("duplicate step name")

	// ErrUnknownStep indicates a guard, weight, or per-step hook refers
	// to a step that does not exist in the catalogue, or that a reserved
	// method or registration does not form a valid binding (wrong
	// signature, unrecognized lifecycle name, empty name, nil function).
	ErrUnknownStep = errors.New("unknown step")

	// ErrInvalidWeight indicates a step weight is non-positive or non-finite.
	ErrInvalidWeight = errors.New("invalid step weight")

	// ErrNoActiveTest indicates a step was appended while no test is open.
	ErrNoActiveTest = errors.New("no active test case")

	// ErrTestAlreadyOpen indicates StartTest was called while another
	// test case is still open.
	ErrTestAlreadyOpen = errors.New("test case already open")

	// ErrTestSealed indicates an append to a sealed test case record.
	ErrTestSealed = errors.New("test case is sealed")

	// ErrInvalidTransition indicates an attempt to make an invalid engine
	// phase transition. This is an internal invariant violation.
	ErrInvalidTransition = errors.New("invalid phase transition")

	// ErrEmptyChoice indicates a selection algorithm was invoked with an
	// empty candidate set. The engine never does this; seeing this error
	// means an algorithm was driven outside the engine contract.
	ErrEmptyChoice = errors.New("empty step choice")

	// ErrAssertion marks assertion failures raised inside user steps.
	// The IgnoreAssertions error strategy absorbs errors matching this
	// sentinel and propagates everything else.
	ErrAssertion = errors.New("assertion failed")

	// ErrUnknownAlgorithm indicates an unrecognized algorithm name.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")

	// ErrUnknownEndCondition indicates an unrecognized end-condition spec.
	ErrUnknownEndCondition = errors.New("unknown end condition")

	// ErrUnknownStrategy indicates an unrecognized error-strategy name.
	ErrUnknownStrategy = errors.New("unknown error strategy")

	// ErrInvalidOutputFormat indicates an invalid report format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")
)

// ModelStructureError reports a fatal problem found while introspecting a
// user model. It always wraps ErrModelStructure plus a more specific
// sentinel (ErrDuplicateStep, ErrUnknownStep, ErrInvalidWeight, ErrNoSteps).
type ModelStructureError struct {
	Detail string
	Err    error
}

// NewModelStructureError builds a ModelStructureError around the given
// specific sentinel and a formatted detail message.
func NewModelStructureError(cause error, format string, args ...any) *ModelStructureError {
	return &ModelStructureError{
		Detail: fmt.Sprintf(format, args...),
		Err:    cause,
	}
}

// Error implements the error interface.
func (e *ModelStructureError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrModelStructure, e.Err, e.Detail)
}

// Unwrap exposes the specific sentinel for errors.Is checks.
func (e *ModelStructureError) Unwrap() []error {
	return []error{ErrModelStructure, e.Err}
}

// ConfigurationError reports an invalid configuration value detected at
// engine or end-condition construction. It wraps ErrConfiguration.
type ConfigurationError struct {
	Detail string
}

// NewConfigurationError builds a ConfigurationError with a formatted detail.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Detail: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConfiguration, e.Detail)
}

// Unwrap exposes the configuration sentinel.
func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// StepFailedError wraps an error raised by a user step (or its pre/post
// hook, which count as part of the step). Test is the 1-based index of the
// test case the step ran in.
type StepFailedError struct {
	Test int
	Step string
	Err  error
}

// Error implements the error interface.
func (e *StepFailedError) Error() string {
	return fmt.Sprintf("step %q failed in test %d: %v", e.Step, e.Test, e.Err)
}

// Unwrap returns the underlying step error.
func (e *StepFailedError) Unwrap() error {
	return e.Err
}

// HookFailedError wraps an error raised by a lifecycle hook
// (before_suite, after_test, before, ...).
type HookFailedError struct {
	Hook string
	Err  error
}

// Error implements the error interface.
func (e *HookFailedError) Error() string {
	return fmt.Sprintf("hook %q failed: %v", e.Hook, e.Err)
}

// Unwrap returns the underlying hook error.
func (e *HookFailedError) Unwrap() error {
	return e.Err
}

// NoAvailableStepsError indicates every guard evaluated false at once, so
// the engine had no step to hand to the selection algorithm. Test is the
// 1-based index of the test case in which it happened.
type NoAvailableStepsError struct {
	Test int
}

// Error implements the error interface.
func (e *NoAvailableStepsError) Error() string {
	return fmt.Sprintf("no available steps in test %d", e.Test)
}

// Assertionf builds an assertion failure. Errors built this way match
// ErrAssertion via errors.Is, even when wrapped by StepFailedError.
func Assertionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAssertion, fmt.Sprintf(format, args...))
}

// IsAssertion reports whether err is (or wraps) an assertion failure.
func IsAssertion(err error) bool {
	return errors.Is(err, ErrAssertion)
}
