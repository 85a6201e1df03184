package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"grimm.is/firn/internal/brand"
	"grimm.is/firn/internal/iptables"
	"grimm.is/firn/internal/rules"
)

// RunCheck validates the configuration file and dry-runs the build without
// writing anything.
func RunCheck(configFile string, verbose bool) error {
	if len(configFile) == 0 {
		return fmt.Errorf("usage: %s check [-v] <config-file>\nExample: %s check -v %s", brand.BinaryName, brand.BinaryName, defaultConfigFile())
	}

	comp, err := compile(configFile)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	cfg := comp.Load.Config
	Printer.Printf("Configuration valid!\n")
	Printer.Printf("Schema Version: %s\n", cfg.SchemaVersion)
	Printer.Printf("Chains: %d\n", len(cfg.Chains))
	Printer.Printf("Rules: %d\n", len(cfg.Rules))
	Printer.Printf("Generated: %d IPv4 rules, %d IPv6 rules\n",
		comp.ruleCount(rules.FamilyIPv4), comp.ruleCount(rules.FamilyIPv6))

	for _, w := range comp.Load.Warnings {
		Printer.Printf("WARNING: %s\n", w)
	}
	printDiagnostics(comp.diagnostics())
	printFailures(comp.Failures)

	if verbose {
		Printer.Println()
		printRuleSummary(comp)

		Printer.Println("\n[DRY RUN] Generated Rulesets:")
		fileSet := comp.Generator.FileSet()
		for _, fam := range fileSet.Families() {
			f, _ := fileSet.File(fam)
			Printer.Printf("\n--- %s ---\n", iptables.FileName(fam))
			Printer.Println(string(f.Render()))
		}
	}

	if len(comp.Failures) > 0 {
		return fmt.Errorf("%d of %d rules failed", len(comp.Failures), len(cfg.Rules))
	}
	return nil
}

// printRuleSummary prints one table row per configured rule with the
// families it resolved to. Rules that failed show "failed" instead.
func printRuleSummary(comp *compilation) {
	byTitle := make(map[string]*rules.Result, len(comp.Results))
	for _, res := range comp.Results {
		byTitle[res.Title] = res
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	Printer.Fprintln(w, "RULE\tCHAIN\tACTION\tPROTO\tFAMILIES")
	for _, r := range comp.Load.Config.Rules {
		chain := r.Chain
		if chain == "" {
			chain = "-"
		}
		action := r.Action
		if action == "" {
			action = "-"
		}
		proto := r.Protocol
		if proto == "" {
			proto = "-"
		}

		families := "failed"
		if res, ok := byTitle[r.Title]; ok {
			var fams []string
			for _, fam := range res.Dispatched {
				fams = append(fams, fam.String())
			}
			families = strings.Join(fams, " ")
		}

		Printer.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Title, chain, action, proto, families)
	}
	w.Flush()
}
