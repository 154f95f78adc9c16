package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/focuswatch/internal/config"
	"github.com/blackwell-systems/focuswatch/internal/output"
	"github.com/blackwell-systems/focuswatch/internal/reminder"
	"github.com/blackwell-systems/focuswatch/internal/store"
)

var (
	historyKind  string
	historyDays  int
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List logged reminders and status episodes",
	Long: `List reminders, status episodes and per-kind totals from the event
database written by 'focuswatch watch'.

Examples:
  focuswatch history
  focuswatch history --kind distraction --days 7
  focuswatch history --json`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "Filter reminders by kind (fatigue, distraction)")
	historyCmd.Flags().IntVar(&historyDays, "days", 1, "Look back N days (0 for everything)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "Maximum rows per list")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(historyCmd)
}

// historyReport is the JSON shape of `focuswatch history --json`.
type historyReport struct {
	Since       *time.Time               `json:"since,omitempty"`
	Summary     []store.KindSummary      `json:"summary"`
	Reminders   []store.ReminderRecord   `json:"reminders"`
	Transitions []store.TransitionRecord `json:"transitions"`
	Responses   []store.ResponseRecord   `json:"responses"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyKind != "" {
		if _, err := reminder.ParseKind(historyKind); err != nil {
			return err
		}
	}

	db, err := store.Open(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	var since time.Time
	if historyDays > 0 {
		since = time.Now().AddDate(0, 0, -historyDays)
	}
	report, err := loadHistory(db, since, historyKind, historyLimit)
	if err != nil {
		return err
	}

	if historyJSON {
		return writeJSON(os.Stdout, report)
	}
	renderHistory(os.Stdout, report)
	return nil
}

func loadHistory(db *store.DB, since time.Time, kind string, limit int) (*historyReport, error) {
	f := store.Filter{Since: since, Kind: kind, Limit: limit}
	report := &historyReport{}
	if !since.IsZero() {
		report.Since = &since
	}

	var err error
	if report.Summary, err = db.SummarizeReminders(since); err != nil {
		return nil, fmt.Errorf("summarizing reminders: %w", err)
	}
	if report.Reminders, err = db.ListReminders(f); err != nil {
		return nil, fmt.Errorf("listing reminders: %w", err)
	}
	if report.Transitions, err = db.ListTransitions(f); err != nil {
		return nil, fmt.Errorf("listing transitions: %w", err)
	}
	if report.Responses, err = db.ListResponses(f); err != nil {
		return nil, fmt.Errorf("listing responses: %w", err)
	}
	return report, nil
}

func renderHistory(w io.Writer, r *historyReport) {
	if len(r.Reminders) == 0 && len(r.Transitions) == 0 {
		fmt.Fprintln(w, "No events logged. Run 'focuswatch watch' to start recording.")
		return
	}

	fmt.Fprintln(w, output.Section("Reminders by kind"))
	output.SummaryTable(r.Summary).Fprint(w)

	fmt.Fprintln(w, output.Section("Reminders"))
	output.ReminderTable(r.Reminders).Fprint(w)

	fmt.Fprintln(w, output.Section("Status episodes"))
	output.TransitionTable(r.Transitions).Fprint(w)

	if len(r.Responses) > 0 {
		fmt.Fprintln(w, output.Section("Responses"))
		tbl := output.NewTable("At", "Action", "Kind", "Minutes")
		for _, resp := range r.Responses {
			minutes := ""
			if resp.Minutes > 0 {
				minutes = fmt.Sprintf("%d", resp.Minutes)
			}
			tbl.AddRow(resp.At.Local().Format("2006-01-02 15:04"), resp.Action, resp.Kind, minutes)
		}
		tbl.Fprint(w)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
