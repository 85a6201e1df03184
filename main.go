package main

import (
	"flag"
	"os"

	"grimm.is/firn/cmd"
	"grimm.is/firn/internal/brand"
	"grimm.is/firn/internal/i18n"
)

var printer = i18n.NewCLIPrinter()

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "build":
		if err := cmd.RunBuild(os.Args[2:]); err != nil {
			printer.Fprintf(os.Stderr, "Build failed: %v\n", err)
			os.Exit(1)
		}

	case "check":
		checkFlags := flag.NewFlagSet("check", flag.ExitOnError)
		verbose := checkFlags.Bool("verbose", false, "Verbose output")
		checkFlags.BoolVar(verbose, "v", false, "Verbose output (short)")
		checkFlags.Parse(os.Args[2:])

		configFile := brand.DefaultConfigDir + "/" + brand.ConfigFileName
		if len(checkFlags.Args()) > 0 {
			configFile = checkFlags.Arg(0)
		}

		if err := cmd.RunCheck(configFile, *verbose); err != nil {
			printer.Fprintf(os.Stderr, "Check failed: %v\n", err)
			os.Exit(1)
		}

	case "show":
		showFlags := flag.NewFlagSet("show", flag.ExitOnError)
		summary := showFlags.Bool("summary", false, "Show a per-rule table instead of full rulesets")
		showFlags.BoolVar(summary, "s", false, "Summary (short)")
		showFlags.Parse(os.Args[2:])

		configFile := brand.DefaultConfigDir + "/" + brand.ConfigFileName
		if len(showFlags.Args()) > 0 {
			configFile = showFlags.Arg(0)
		}

		if err := cmd.RunShow(configFile, *summary); err != nil {
			printer.Fprintf(os.Stderr, "Show failed: %v\n", err)
			os.Exit(1)
		}

	case "diff":
		if err := cmd.RunDiff(os.Args[2:]); err != nil {
			printer.Fprintf(os.Stderr, "Diff failed: %v\n", err)
			os.Exit(1)
		}

	case "import":
		if err := cmd.RunImport(os.Args[2:]); err != nil {
			printer.Fprintf(os.Stderr, "Import failed: %v\n", err)
			os.Exit(1)
		}

	case "history":
		if err := cmd.RunHistory(os.Args[2:]); err != nil {
			printer.Fprintf(os.Stderr, "History failed: %v\n", err)
			os.Exit(1)
		}

	case "protocols":
		if err := cmd.RunProtocols(os.Args[2:]); err != nil {
			printer.Fprintf(os.Stderr, "Protocols failed: %v\n", err)
			os.Exit(1)
		}

	case "fmt":
		if err := cmd.RunFmt(os.Args[2:]); err != nil {
			printer.Fprintf(os.Stderr, "Fmt failed: %v\n", err)
			os.Exit(1)
		}

	case "version", "-v", "--version":
		printer.Printf("%s %s (built %s)\n", brand.Name, brand.Version, brand.BuildTime)

	case "help", "-h", "--help":
		printUsage()

	default:
		printer.Printf("Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	printer.Printf(`%s - %s

Usage:
  %s <command> [options] [config-file]

Core Commands:
  build     Compile the configuration into iptables-restore files
            Options: --output (-o) <dir>, --keep-going (-k), --no-history, --db <file>
  check     Validate the configuration and dry-run the build
            Options: --verbose (-v)
  show      Print the generated rulesets
            Options: --summary (-s)
  diff      Compare two configs, or one config against the last build
            Options: --output (-o) <dir>

Utility Commands:
  import    Convert an existing ruleset into a %s configuration
            Options: --input <file>, --format <iptables-save|yaml>, --output <file>
  history   List or prune recorded builds
            Options: -n <count>, --db <file>, --prune <count>
  fmt       Rewrite configuration files in canonical HCL
            Options: -w (write in place)
  protocols Look up protocol names and numbers
  version   Print version information

Examples:
  %s build                          # Compile %s/%s
  %s build -o /etc/iptables my-rules.hcl
  %s check -v my-rules.hcl
  %s import --input save.txt --output imported.hcl
  %s history -n 10

Generated files load with iptables-restore and ip6tables-restore; %s never
invokes iptables itself.
`,
		brand.Name, brand.Description,
		brand.LowerName,
		brand.LowerName,
		brand.LowerName, brand.DefaultConfigDir, brand.ConfigFileName,
		brand.LowerName, brand.LowerName, brand.LowerName, brand.LowerName,
		brand.LowerName)
}
