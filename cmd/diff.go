package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"

	"grimm.is/firn/internal/iptables"
	"grimm.is/firn/internal/rules"
)

// RunDiff compares generated rulesets. With two config files it compares what
// each would generate; with one (or none, using the default path) it compares
// against the files from the last build. Either way it returns an error when
// the rulesets differ, so scripts can use the exit code to decide whether a
// rebuild is needed.
func RunDiff(args []string) error {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	outputDir := fs.String("output", DefaultOutputDir(), "Directory holding the last build")
	fs.StringVar(outputDir, "o", DefaultOutputDir(), "Output directory (short)")
	fs.Parse(args)

	if fs.NArg() >= 2 {
		return diffConfigs(fs.Arg(0), fs.Arg(1))
	}

	configFile := defaultConfigFile()
	if fs.NArg() > 0 {
		configFile = fs.Arg(0)
	}
	return diffAgainstBuild(configFile, *outputDir)
}

// diffConfigs renders both configs in memory and compares them per family.
func diffConfigs(pathA, pathB string) error {
	compA, err := compileForDiff(pathA)
	if err != nil {
		return err
	}
	compB, err := compileForDiff(pathB)
	if err != nil {
		return err
	}

	changed := false
	for _, fam := range []rules.Family{rules.FamilyIPv4, rules.FamilyIPv6} {
		a := renderFamily(compA, fam)
		b := renderFamily(compB, fam)
		if a == b {
			continue
		}
		changed = true
		printDiff(a, b, pathA, pathB, fam)
	}

	if !changed {
		Printer.Println("No changes detected.")
		return nil
	}
	return fmt.Errorf("%s and %s generate different rulesets", pathA, pathB)
}

// diffAgainstBuild compares a fresh render of configFile with the ruleset
// files written by the last build.
func diffAgainstBuild(configFile, outputDir string) error {
	comp, err := compileForDiff(configFile)
	if err != nil {
		return err
	}

	fileSet := comp.Generator.FileSet()
	changed := false
	for _, fam := range []rules.Family{rules.FamilyIPv4, rules.FamilyIPv6} {
		f, generated := fileSet.File(fam)
		path := filepath.Join(outputDir, iptables.FileName(fam))

		onDisk, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err) && !generated:
			continue
		case os.IsNotExist(err):
			Printer.Printf("%s: not yet written\n", path)
			changed = true
			continue
		case err != nil:
			return fmt.Errorf("read %s: %w", path, err)
		case !generated:
			Printer.Printf("%s: no longer generated by this configuration\n", path)
			changed = true
			continue
		}

		rendered := string(f.Render())
		if string(onDisk) == rendered {
			continue
		}
		changed = true
		printDiff(string(onDisk), rendered, path, "generated", fam)
	}

	if !changed {
		Printer.Println("No changes detected.")
		return nil
	}
	return fmt.Errorf("generated rulesets differ from %s", outputDir)
}

// compileForDiff compiles a config, treating any failed rule as fatal: a diff
// over a partial ruleset would be misleading.
func compileForDiff(configFile string) (*compilation, error) {
	comp, err := compile(configFile)
	if err != nil {
		return nil, err
	}
	if len(comp.Failures) > 0 {
		printFailures(comp.Failures)
		return nil, fmt.Errorf("%s: %d rules failed, cannot diff", configFile, len(comp.Failures))
	}
	return comp, nil
}

// renderFamily renders one family's ruleset, or "" when the config never
// activated that family.
func renderFamily(comp *compilation, fam rules.Family) string {
	f, ok := comp.Generator.FileSet().File(fam)
	if !ok {
		return ""
	}
	return string(f.Render())
}

// printDiff writes a unified diff between two ruleset texts.
func printDiff(a, b, fromFile, toFile string, fam rules.Family) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: fmt.Sprintf("%s (%s)", fromFile, iptables.FileName(fam)),
		ToFile:   fmt.Sprintf("%s (%s)", toFile, iptables.FileName(fam)),
		Context:  3,
	}
	text, _ := difflib.GetUnifiedDiffString(diff)
	fmt.Print(text)
}
