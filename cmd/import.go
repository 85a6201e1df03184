package cmd

import (
	"flag"
	"fmt"

	"grimm.is/firn/internal/config"
	imports "grimm.is/firn/internal/import"
)

// RunImport converts an existing ruleset into a config file. Supported
// inputs are iptables-save dumps and YAML rule catalogs.
func RunImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	inputFile := fs.String("input", "", "Path to the file to import")
	outputConfig := fs.String("output", "imported.hcl", "Output configuration file")
	format := fs.String("format", "iptables-save", "Input format (iptables-save, yaml)")
	fs.Parse(args)

	if *inputFile == "" && fs.NArg() > 0 {
		*inputFile = fs.Arg(0)
	}
	if *inputFile == "" {
		fs.Usage()
		return fmt.Errorf("--input is required")
	}

	var result *imports.ImportResult
	switch *format {
	case "iptables-save":
		dump, err := imports.ParseIPTablesSave(*inputFile)
		if err != nil {
			return err
		}
		result = dump.ToImportResult()
	case "yaml":
		catalog, err := imports.ParseYAMLCatalog(*inputFile)
		if err != nil {
			return err
		}
		result = catalog.ToImportResult()
	default:
		return fmt.Errorf("unsupported format %q (want iptables-save or yaml)", *format)
	}

	importable := 0
	for _, r := range result.Rules {
		if r.CanImport {
			importable++
		}
	}
	Printer.Printf("Found: %d rules (%d importable), %d chains\n",
		len(result.Rules), importable, len(result.Chains))

	for _, w := range result.Warnings {
		Printer.Printf("WARNING: %s\n", w)
	}
	for _, s := range result.Skipped {
		Printer.Printf("Skipped: %s\n", s)
	}
	for _, r := range result.Rules {
		if r.CanImport {
			continue
		}
		for _, note := range r.Notes {
			Printer.Printf("Skipped (%s): %s\n", r.Chain, note)
		}
	}

	cfg := result.ToConfig()
	if errs := cfg.Validate(); errs.HasErrors() {
		return fmt.Errorf("imported configuration failed validation: %w", errs)
	}

	if err := config.SaveFile(cfg, *outputConfig); err != nil {
		return fmt.Errorf("write %s: %w", *outputConfig, err)
	}
	Printer.Printf("Configuration written to %s\n", *outputConfig)
	Printer.Println()
	Printer.Println("Review the generated titles and ordering before building.")

	if len(result.ManualSteps) > 0 {
		Printer.Println("\nManual Steps Required:")
		for _, step := range result.ManualSteps {
			Printer.Printf("- %s\n", step)
		}
	}
	return nil
}
