package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/focuswatch/internal/config"
	"github.com/blackwell-systems/focuswatch/internal/escalation"
	"github.com/blackwell-systems/focuswatch/internal/output"
	"github.com/blackwell-systems/focuswatch/internal/reminder"
	"github.com/blackwell-systems/focuswatch/internal/suggest"
)

var (
	suggestKind     string
	suggestMinutes  float64
	suggestHour     int
	suggestLimit    int
	suggestCategory string
	suggestJSON     bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Preview the suggestions attached to a reminder",
	Long: `Run the suggestion rules for a hypothetical reminder and list the ranked
results. The tier and severity are derived from the configured thresholds.

Examples:
  focuswatch suggest --kind fatigue --minutes 330
  focuswatch suggest --kind distraction --minutes 50 --hour 23
  focuswatch suggest --kind fatigue --minutes 420 --category rest --json`,
	Args: cobra.NoArgs,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().StringVar(&suggestKind, "kind", "fatigue", "Reminder kind (fatigue, distraction)")
	suggestCmd.Flags().Float64Var(&suggestMinutes, "minutes", 300, "Continuous work or entertainment minutes")
	suggestCmd.Flags().IntVar(&suggestHour, "hour", -1, "Local hour of day (default: now)")
	suggestCmd.Flags().IntVar(&suggestLimit, "limit", 10, "Maximum number of suggestions to show")
	suggestCmd.Flags().StringVar(&suggestCategory, "category", "", "Filter by category")
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(suggestCmd)
}

// reminderContext derives the tier and severity a reminder of kind would
// carry after d, under cfg.
func reminderContext(cfg *config.Config, kind reminder.Kind, d time.Duration, hour int) *suggest.ReminderContext {
	ctx := &suggest.ReminderContext{Kind: kind, Duration: d, Hour: hour}
	switch kind {
	case reminder.KindFatigue:
		ctx.Tier = tierFor(cfg.FatigueConfig().Tiers, d)
		ctx.Severity = reminder.SeverityMedium
		if ctx.Tier > 1 {
			ctx.Severity = reminder.SeverityHigh
		}
	case reminder.KindDistraction:
		dc := cfg.DistractionConfig()
		ctx.Tier = tierFor(dc.Boundaries, d)
		ctx.Severity = escalation.SeverityForRatio(float64(d) / float64(dc.Threshold))
	}
	return ctx
}

// tierFor is the 1-based index of the highest boundary reached, or 0.
func tierFor(bounds []time.Duration, d time.Duration) int {
	tier := 0
	for i, b := range bounds {
		if d >= b {
			tier = i + 1
		}
	}
	return tier
}

func runSuggest(cmd *cobra.Command, args []string) error {
	kind, err := reminder.ParseKind(suggestKind)
	if err != nil {
		return err
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	hour := suggestHour
	if hour < 0 || hour > 23 {
		hour = time.Now().Hour()
	}
	rc := reminderContext(cfg, kind, time.Duration(suggestMinutes*float64(time.Minute)), hour)

	suggestions := suggest.NewEngine().Run(rc)
	if suggestCategory != "" {
		suggestions = filterByCategory(suggestions, suggestCategory)
	}
	if suggestLimit > 0 && len(suggestions) > suggestLimit {
		suggestions = suggestions[:suggestLimit]
	}

	if suggestJSON {
		return writeJSON(os.Stdout, suggestions)
	}
	renderSuggestions(os.Stdout, rc, suggestions)
	return nil
}

func filterByCategory(suggestions []suggest.Suggestion, category string) []suggest.Suggestion {
	var filtered []suggest.Suggestion
	for _, s := range suggestions {
		if s.Category == category {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func renderSuggestions(w io.Writer, rc *suggest.ReminderContext, suggestions []suggest.Suggestion) {
	title := fmt.Sprintf("Suggestions for a %s reminder after %s (tier %d, %s)",
		rc.Kind, output.FormatDuration(rc.Duration), rc.Tier, rc.Severity)
	fmt.Fprintln(w, output.Section(title))
	fmt.Fprintln(w)

	if len(suggestions) == 0 {
		fmt.Fprintln(w, " No suggestions for this reminder.")
		return
	}

	for i, s := range suggestions {
		priorityStyled := stylePriority(s.Priority, priorityToLabel(s.Priority))
		fmt.Fprintf(w, " #%d %s %s\n", i+1, priorityStyled, output.StyleBold.Render(s.Title))
		fmt.Fprintf(w, "    Impact: %.1f  |  Category: %s\n", s.ImpactScore, s.Category)
		fmt.Fprintf(w, "    %s\n", s.Description)
		fmt.Fprintln(w)
	}
}

func priorityToLabel(priority int) string {
	switch priority {
	case suggest.PriorityCritical:
		return "[CRITICAL]"
	case suggest.PriorityHigh:
		return "[HIGH]"
	case suggest.PriorityMedium:
		return "[MEDIUM]"
	case suggest.PriorityLow:
		return "[LOW]"
	default:
		return "[UNKNOWN]"
	}
}

func stylePriority(priority int, label string) string {
	switch priority {
	case suggest.PriorityCritical, suggest.PriorityHigh:
		return output.StyleError.Render(label)
	case suggest.PriorityMedium:
		return output.StyleWarning.Render(label)
	default:
		return output.StyleMuted.Render(label)
	}
}
