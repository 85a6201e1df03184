package cmd

import (
	"flag"
	"fmt"

	"github.com/spf13/afero"

	"grimm.is/firn/internal/brand"
	"grimm.is/firn/internal/history"
	"grimm.is/firn/internal/rules"
)

// RunBuild compiles a config file into iptables-restore ruleset files.
//
// Every rule is processed even when some fail; by default a failure means
// nothing is written and the command errors, while --keep-going writes the
// rulesets from the rules that did compile. Each build is recorded in the
// history database unless --no-history is set.
func RunBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	outputDir := fs.String("output", DefaultOutputDir(), "Directory for generated ruleset files")
	fs.StringVar(outputDir, "o", DefaultOutputDir(), "Output directory (short)")

	keepGoing := fs.Bool("keep-going", false, "Write rulesets even when some rules fail")
	fs.BoolVar(keepGoing, "k", false, "Keep going (short)")

	noHistory := fs.Bool("no-history", false, "Do not record this build in the history database")
	dbPath := fs.String("db", brand.HistoryDBPath(), "Build history database")
	fs.Parse(args)

	configFile := defaultConfigFile()
	if fs.NArg() > 0 {
		configFile = fs.Arg(0)
	}

	comp, err := compile(configFile)
	if err != nil {
		return err
	}

	printDiagnostics(comp.diagnostics())
	printFailures(comp.Failures)

	total := len(comp.Load.Config.Rules)
	if len(comp.Failures) > 0 && !*keepGoing {
		return fmt.Errorf("%d of %d rules failed, nothing written (use --keep-going to write the rest)",
			len(comp.Failures), total)
	}

	written, err := comp.Generator.FileSet().WriteTo(afero.NewOsFs(), *outputDir)
	if err != nil {
		return err
	}
	for _, path := range written {
		Printer.Printf("Wrote %s\n", path)
	}
	Printer.Printf("%d IPv4 rules, %d IPv6 rules, %d warnings\n",
		comp.ruleCount(rules.FamilyIPv4), comp.ruleCount(rules.FamilyIPv6), comp.warningCount())

	if !*noHistory {
		if err := recordBuild(*dbPath, configFile, *outputDir, comp); err != nil {
			Printer.Printf("WARNING: could not record build history: %v\n", err)
		}
	}

	if len(comp.Failures) > 0 {
		return fmt.Errorf("%d of %d rules failed", len(comp.Failures), total)
	}
	return nil
}

// recordBuild appends one run to the history database. Callers treat a
// failure here as a warning, not a build failure.
func recordBuild(dbPath, configFile, outputDir string, comp *compilation) error {
	store, err := history.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	hash, err := history.HashFile(configFile)
	if err != nil {
		return err
	}

	status := history.StatusOK
	if len(comp.Failures) > 0 {
		status = history.StatusFailed
	}

	var diags []string
	for _, d := range comp.diagnostics() {
		diags = append(diags, fmt.Sprintf("%s: rule %q: %s", d.Severity, d.Title, d.Message))
	}
	for _, ferr := range comp.Failures {
		diags = append(diags, "error: "+ferr.Error())
	}

	_, err = store.Record(history.Run{
		ConfigPath:  configFile,
		ConfigHash:  hash,
		OutputDir:   outputDir,
		V4Rules:     comp.ruleCount(rules.FamilyIPv4),
		V6Rules:     comp.ruleCount(rules.FamilyIPv6),
		Warnings:    comp.warningCount(),
		Status:      status,
		Diagnostics: diags,
	})
	return err
}
