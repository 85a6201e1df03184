package cmd

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"grimm.is/firn/internal/iptables"
)

// RunProtocols lists protocols from the system database, optionally filtered
// by a query. Useful for finding the right name to put in a rule when strict
// protocol checking rejects one.
func RunProtocols(args []string) error {
	fs := flag.NewFlagSet("protocols", flag.ExitOnError)
	fs.Parse(args)

	query := ""
	if fs.NArg() > 0 {
		query = fs.Arg(0)
	}

	protos, err := iptables.SearchProtocols(query)
	if err != nil {
		return fmt.Errorf("read protocol database: %w", err)
	}
	if len(protos) == 0 {
		if p, ok := iptables.LookupProtocol(query); ok {
			protos = []iptables.Protocol{p}
		} else {
			Printer.Printf("No protocols match %q\n", query)
			return nil
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	Printer.Fprintln(w, "NAME\tNUMBER\tALIASES")
	for _, p := range protos {
		aliases := "-"
		if len(p.Aliases) > 0 {
			aliases = strings.Join(p.Aliases, " ")
		}
		strict := ""
		if iptables.IsStrictProtocol(p.Name) {
			strict = " *"
		}
		Printer.Fprintf(w, "%s%s\t%d\t%s\n", p.Name, strict, p.Number, aliases)
	}
	w.Flush()
	Printer.Println("\n* usable with strict protocol checking")
	return nil
}
