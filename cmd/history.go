package cmd

import (
	"flag"
	"os"
	"text/tabwriter"

	"grimm.is/firn/internal/brand"
	"grimm.is/firn/internal/history"
)

// RunHistory lists recorded builds, newest first, or prunes old ones.
func RunHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("n", 20, "Number of runs to show (0 for all)")
	dbPath := fs.String("db", brand.HistoryDBPath(), "Build history database")
	prune := fs.Int("prune", 0, "Delete all but the newest N runs")
	fs.Parse(args)

	store, err := history.NewStore(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if *prune > 0 {
		removed, err := store.Prune(*prune)
		if err != nil {
			return err
		}
		Printer.Printf("Pruned %d runs, kept the newest %d\n", removed, *prune)
		return nil
	}

	runs, err := store.Recent(*limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		Printer.Println("No builds recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	Printer.Fprintln(w, "TIME\tSTATUS\tV4\tV6\tWARN\tCONFIG\tHASH")
	for _, run := range runs {
		hash := run.ConfigHash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		Printer.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			run.Timestamp.Local().Format("2006-01-02 15:04:05"), run.Status,
			run.V4Rules, run.V6Rules, run.Warnings, run.ConfigPath, hash)
	}
	w.Flush()
	return nil
}
