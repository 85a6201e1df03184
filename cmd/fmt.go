package cmd

import (
	"flag"
	"fmt"
	"os"

	"grimm.is/firn/internal/brand"
	"grimm.is/firn/internal/config"
)

// RunFmt rewrites config files into canonical HCL. Defaults are left
// unapplied so the defaults block survives the round trip; JSON input comes
// out as HCL.
func RunFmt(args []string) error {
	fs := flag.NewFlagSet("fmt", flag.ExitOnError)
	write := fs.Bool("w", false, "Write result back to the source file instead of stdout")
	fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("usage: %s fmt [-w] <config-file>...", brand.BinaryName)
	}

	opts := config.DefaultLoadOptions()
	opts.SkipDefaults = true

	for _, path := range fs.Args() {
		result, err := config.LoadFileWithOptions(path, opts)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}

		formatted, err := config.GenerateHCL(result.Config)
		if err != nil {
			return fmt.Errorf("format %s: %w", path, err)
		}

		if *write {
			if err := os.WriteFile(path, formatted, 0644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			Printer.Printf("Formatted %s\n", path)
		} else {
			fmt.Print(string(formatted))
		}
	}
	return nil
}
