package cmd

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/agentvault/bps"
	"github.com/rustyeddy/agentvault/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query and replay the event journal",
	Long: `Query event journal records from a SQLite database or a CSV file.

Subcommands:
  show   - Show one event by ID (SQLite only)
  list   - List events, optionally filtered
  replay - Rebuild account books from the events

Examples:
  vault journal show evt_01J9...
  vault journal list --entity acct_01J9... --kind deposit --kind withdrawal
  vault journal replay --csv events.csv`,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <event-id>",
	Short: "Show a single event",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalShow,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events",
	Args:  cobra.NoArgs,
	RunE:  runJournalList,
}

var journalReplayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Rebuild account books from the journal",
	Args:  cobra.NoArgs,
	RunE:  runJournalReplay,
}

var (
	journalDBPath  string
	journalCSVPath string
	journalEntity  string
	journalKinds   []string
	journalSince   string
	journalLimit   int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalShowCmd)
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalReplayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./vault.sqlite", "path to SQLite journal DB")
	journalCmd.PersistentFlags().StringVar(&journalCSVPath, "csv", "", "read a CSV journal instead of SQLite")
	journalListCmd.Flags().StringVar(&journalEntity, "entity", "", "only events for this account or engine")
	journalListCmd.Flags().StringSliceVar(&journalKinds, "kind", nil, "only events of these kinds")
	journalListCmd.Flags().StringVar(&journalSince, "since", "", "only events on or after this day (YYYY-MM-DD)")
	journalListCmd.Flags().IntVar(&journalLimit, "limit", 0, "maximum events to list")
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	e, err := j.GetEvent(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatEventOrg(e))
	return nil
}

func runJournalList(cmd *cobra.Command, args []string) error {
	f := journal.Filter{Entity: journalEntity, Limit: journalLimit}
	for _, k := range journalKinds {
		f.Kinds = append(f.Kinds, journal.Kind(k))
	}
	if journalSince != "" {
		t, err := time.ParseInLocation("2006-01-02", journalSince, time.Local)
		if err != nil {
			return fmt.Errorf("since: %w", err)
		}
		f.Since = t
	}

	events, err := loadEvents(cmd, f)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatEventsOrg(events))
	return nil
}

func runJournalReplay(cmd *cobra.Command, args []string) error {
	events, err := loadEvents(cmd, journal.Filter{})
	if err != nil {
		return err
	}
	books, err := journal.Replay(events)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(books))
	for id := range books {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := cmd.OutOrStdout()
	for _, id := range ids {
		b := books[id]
		fmt.Fprintf(out, "* %s\n", id)
		fmt.Fprintf(out, "  value=%s deposited=%s withdrawn=%s realized=%s paused=%t agent=%s\n",
			b.TotalValue, b.TotalDeposited, b.TotalWithdrawn, b.RealizedPnL, b.Paused, b.Agent)
		for target, pos := range b.Positions {
			fmt.Fprintf(out, "  %s: %s (%s%%)\n", target, pos, bps.Ratio(pos, b.TotalValue).StringFixed(2))
		}
	}
	return nil
}

// loadEvents reads from --csv when set, otherwise queries SQLite. CSV
// journals are filtered in memory.
func loadEvents(cmd *cobra.Command, f journal.Filter) ([]journal.Event, error) {
	if journalCSVPath == "" {
		j, err := journal.NewSQLite(journalDBPath)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		defer j.Close()
		return j.ListEvents(cmd.Context(), f)
	}

	file, err := os.Open(journalCSVPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	all, err := journal.ReadCSV(file)
	if err != nil {
		return nil, err
	}
	return f.Apply(all), nil
}
