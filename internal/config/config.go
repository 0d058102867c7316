// Package config provides configuration management for the osmo CLI with
// layered precedence.
//
// Configuration sources are loaded in the following order (highest
// precedence first):
//  1. CLI flags (bound by the cli package)
//  2. Environment variables (OSMO_* prefix)
//  3. Project config (.osmo/config.yaml)
//  4. Global config (~/.osmo/config.yaml)
//  5. Built-in defaults
//
// IMPORTANT: This package may import the library packages to resolve
// configured names into kinds, but MUST NOT import internal/cli.
package config

// Config is the root configuration structure for the osmo CLI.
type Config struct {
	// Run contains the engine run options.
	Run RunConfig `yaml:"run" mapstructure:"run"`

	// Report contains report rendering options.
	Report ReportConfig `yaml:"report" mapstructure:"report"`
}

// RunConfig holds the engine options in their textual, user-facing form.
// Names are resolved to concrete kinds by Resolve.
type RunConfig struct {
	// Seed seeds the engine's random source. Nil derives a seed from the
	// current time; the used seed is logged at info level and shown in
	// the run summary.
	Seed *int64 `yaml:"seed" mapstructure:"seed"`

	// Algorithm is one of: random, weighted, balancing,
	// weighted-balancing. Default: "random"
	Algorithm string `yaml:"algorithm" mapstructure:"algorithm"`

	// TestEndCondition ends a test. Grammar: "length:N", "time:DUR",
	// "coverage:P", "endless", composed with "&" (and) or "|" (or).
	// Default: "length:10"
	TestEndCondition string `yaml:"test_end_condition" mapstructure:"test_end_condition"`

	// SuiteEndCondition ends the suite, same grammar.
	// Default: "length:1"
	SuiteEndCondition string `yaml:"suite_end_condition" mapstructure:"suite_end_condition"`

	// TestErrorStrategy is one of: raise, ignore, ignore-asserts,
	// "allow:N". Default: "raise"
	TestErrorStrategy string `yaml:"test_error_strategy" mapstructure:"test_error_strategy"`

	// SuiteErrorStrategy uses the same names. Default: "raise"
	SuiteErrorStrategy string `yaml:"suite_error_strategy" mapstructure:"suite_error_strategy"`

	// StopOnFail ends the suite on any propagated test error, regardless
	// of the suite strategy.
	StopOnFail bool `yaml:"stop_on_fail" mapstructure:"stop_on_fail"`

	// StopTestOnException ends the current test on any non-assertion
	// error even when the test strategy absorbs it.
	StopTestOnException bool `yaml:"stop_test_on_exception" mapstructure:"stop_test_on_exception"`
}

// ReportConfig holds report rendering options.
type ReportConfig struct {
	// Formats lists the report formats to write: json, junit, markdown, csv.
	Formats []string `yaml:"formats" mapstructure:"formats"`

	// Dir is the output directory for report files.
	// Default: "osmo-reports"
	Dir string `yaml:"dir" mapstructure:"dir"`

	// Title labels report documents.
	// Default: "osmo run"
	Title string `yaml:"title" mapstructure:"title"`
}
