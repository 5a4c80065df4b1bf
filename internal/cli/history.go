package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/bfe/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	Program  string // program hash filter
}

// HistoryEntry is one row of the history listing.
type HistoryEntry struct {
	ID          string         `json:"id"`
	Seq         int64          `json:"seq"`
	ProgramName string         `json:"program_name"`
	ProgramHash string         `json:"program_hash"`
	Steps       int            `json:"steps"`
	Output      string         `json:"output"`
	Conditions  map[string]int `json:"conditions"`
	ErrorKind   string         `json:"error_kind,omitempty"`
}

// HistoryResult is the history listing plus the newest seq in the log, so a
// limited listing shows how far behind its first entry is.
type HistoryResult struct {
	Runs    []HistoryEntry `json:"runs"`
	LastSeq int64          `json:"last_seq"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `List runs recorded with "bfe run --db", oldest first.

Examples:
  bfe history --db runs.db
  bfe history --db runs.db --limit 5
  bfe history --db runs.db --program <hash> --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "show at most this many recent runs (0 = all)")
	cmd.Flags().StringVar(&opts.Program, "program", "", "only runs of the program with this hash")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	st, err := openExistingStore(opts.Database)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.logger().Error("error closing database", "error", closeErr)
		}
	}()

	var runs []store.Run
	if opts.Program != "" {
		runs, err = st.RunsByProgram(cmd.Context(), opts.Program)
		if err == nil && opts.Limit > 0 && len(runs) > opts.Limit {
			runs = runs[len(runs)-opts.Limit:]
		}
	} else {
		runs, err = st.ListRuns(cmd.Context(), opts.Limit)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read runs", err)
	}

	lastSeq, err := st.LastSeq(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read runs", err)
	}

	entries := make([]HistoryEntry, 0, len(runs))
	for _, r := range runs {
		entries = append(entries, HistoryEntry{
			ID:          r.ID,
			Seq:         r.Seq,
			ProgramName: r.ProgramName,
			ProgramHash: r.ProgramHash,
			Steps:       r.Steps,
			Output:      string(r.Output),
			Conditions:  r.Conditions,
			ErrorKind:   r.ErrorKind,
		})
	}

	result := HistoryResult{Runs: entries, LastSeq: lastSeq}
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: result})
	}
	outputHistoryText(cmd.OutOrStdout(), result)
	return nil
}

func outputHistoryText(w io.Writer, result HistoryResult) {
	entries := result.Runs
	if len(entries) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tID\tPROGRAM\tHASH\tSTEPS\tERROR")
	for _, e := range entries {
		errKind := e.ErrorKind
		if errKind == "" {
			errKind = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n", e.Seq, e.ID, e.ProgramName, shortHash(e.ProgramHash), e.Steps, errKind)
	}
	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d run(s) shown, last seq %d\n", len(entries), result.LastSeq)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// openExistingStore opens a database that must already exist. store.Open
// would create an empty one.
func openExistingStore(path string) (*store.Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}
