package cmd

import (
	"fmt"
)

// RunShow prints the rulesets a config file compiles to. With summary set it
// prints a per-rule table instead of the full iptables-restore output.
func RunShow(configFile string, summary bool) error {
	comp, err := compile(configFile)
	if err != nil {
		return err
	}

	printFailures(comp.Failures)

	if summary {
		printRuleSummary(comp)
	} else {
		fileSet := comp.Generator.FileSet()
		for i, fam := range fileSet.Families() {
			if i > 0 {
				Printer.Println()
			}
			f, _ := fileSet.File(fam)
			Printer.Print(string(f.Render()))
		}
	}

	if len(comp.Failures) > 0 {
		return fmt.Errorf("%d of %d rules failed", len(comp.Failures), len(comp.Load.Config.Rules))
	}
	return nil
}
