// Package cmd implements the CLI subcommands. Each RunXxx function backs one
// subcommand; main.go only parses enough to dispatch here.
package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"grimm.is/firn/internal/brand"
	"grimm.is/firn/internal/config"
	"grimm.is/firn/internal/i18n"
	"grimm.is/firn/internal/iptables"
	"grimm.is/firn/internal/rules"
)

// Printer routes all CLI output through the locale-aware printer.
var Printer = i18n.NewCLIPrinter()

// defaultConfigFile is the config path used when none is given on the
// command line.
func defaultConfigFile() string {
	return brand.DefaultConfigDir + "/" + brand.ConfigFileName
}

// DefaultOutputDir is where build writes ruleset files unless -o overrides it.
func DefaultOutputDir() string {
	return filepath.Join(brand.GetStateDir(), "rules")
}

// compilation is the outcome of running every rule in a config through the
// processing core. One rule failing never stops its batch: failed rules land
// in Failures and the rest keep their results and generated output.
type compilation struct {
	Load      *config.LoadResult
	Generator *iptables.Generator
	Results   []*rules.Result
	Failures  []error
}

// compile loads and validates a config file, then processes each rule into a
// fresh generator. Config-level problems (unreadable file, bad syntax,
// validation errors) return an error; per-rule failures are collected in the
// returned compilation instead.
func compile(configFile string) (*compilation, error) {
	result, err := config.LoadFileWithOptions(configFile, config.DefaultLoadOptions())
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if errs := result.Config.Validate(); errs.HasErrors() {
		return nil, fmt.Errorf("configuration invalid: %w", errs)
	}

	comp := &compilation{
		Load:      result,
		Generator: iptables.NewGenerator(result.Config.Chains),
	}

	for i := range result.Config.Rules {
		res, err := rules.Process(result.Config.Rules[i].Declaration(), comp.Generator)
		if err != nil {
			comp.Failures = append(comp.Failures, err)
			continue
		}
		comp.Results = append(comp.Results, res)
	}

	return comp, nil
}

// diagnostics flattens the per-rule diagnostics in rule order.
func (c *compilation) diagnostics() []rules.Diagnostic {
	var out []rules.Diagnostic
	for _, res := range c.Results {
		out = append(out, res.Diagnostics...)
	}
	return out
}

// warningCount counts warning-severity diagnostics across all rules.
func (c *compilation) warningCount() int {
	n := 0
	for _, d := range c.diagnostics() {
		if d.Severity == rules.SeverityWarning {
			n++
		}
	}
	return n
}

// ruleCount returns the number of rendered rules for a family.
func (c *compilation) ruleCount(family rules.Family) int {
	return c.Generator.RuleCount(family)
}

// printDiagnostics writes notices and warnings to standard output, one line
// each, tagged with their severity.
func printDiagnostics(diags []rules.Diagnostic) {
	for _, d := range diags {
		Printer.Printf("%s: rule %q: %s\n", strings.ToUpper(string(d.Severity)), d.Title, d.Message)
	}
}

// printFailures writes fatal per-rule errors to standard output.
func printFailures(failures []error) {
	for _, err := range failures {
		Printer.Printf("ERROR: %v\n", err)
	}
}
