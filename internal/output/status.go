package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/blackwell-systems/focuswatch/internal/escalation"
	"github.com/blackwell-systems/focuswatch/internal/session"
	"github.com/blackwell-systems/focuswatch/internal/store"
	"github.com/blackwell-systems/focuswatch/internal/watcher"
)

// RenderStatus renders the engine snapshot as a status panel. The configs
// supply the limits the progress bars are drawn against.
func RenderStatus(snap *watcher.Snapshot, fatigue escalation.FatigueConfig, distraction escalation.DistractionConfig) string {
	var b strings.Builder

	b.WriteString(Section("Activity"))
	b.WriteString("\n")
	row(&b, "Status", StatusLabel(snap.Status.String()))
	row(&b, "For", FormatDuration(snap.StatusDuration))
	row(&b, "Source", snap.Source)
	row(&b, "Ticks", fmt.Sprintf("%d", snap.Ticks))
	if snap.LastError != "" {
		row(&b, "Last error", StyleError.Render(snap.LastError))
	}

	b.WriteString(Section("Work session"))
	b.WriteString("\n")
	f := snap.Fatigue
	row(&b, "State", f.State.String())
	row(&b, "Continuous work", RatioBar(f.Duration, nextTier(fatigue.Tiers, f.Fired), 20)+" "+FormatDuration(f.Duration))
	row(&b, "Reminders", firedSummary(f.Fired))
	row(&b, "Gate", gateSummary(f.Gate, snap.At))

	b.WriteString(Section("Entertainment"))
	b.WriteString("\n")
	d := snap.Distraction
	if d.InEpisode {
		row(&b, "Episode", RatioBar(d.Effective, distraction.Threshold, 20)+" "+FormatDuration(d.Effective))
		row(&b, "Severity", d.Severity)
	} else {
		row(&b, "Episode", StyleMuted.Render("none"))
	}
	row(&b, "Reminders", firedSummary(d.Fired))
	row(&b, "Gate", gateSummary(d.Gate, snap.At))

	if len(snap.History) > 0 {
		b.WriteString(Section("Recent episodes"))
		b.WriteString("\n")
		b.WriteString(HistoryTable(snap.History).Render())
	}
	return b.String()
}

// HistoryTable lists completed episodes, newest last.
func HistoryTable(history []session.Entry) *Table {
	tbl := NewTable("Status", "Started", "Ended", "Duration")
	for _, e := range history {
		tbl.AddRow(
			StatusLabel(e.Status.String()),
			e.StartedAt.Local().Format("15:04:05"),
			e.EndedAt.Local().Format("15:04:05"),
			FormatDuration(e.Duration()),
		)
	}
	return tbl
}

// ReminderTable lists logged reminders.
func ReminderTable(records []store.ReminderRecord) *Table {
	tbl := NewTable("Fired", "Kind", "Severity", "Tier", "Duration", "Message")
	for _, r := range records {
		tbl.AddRow(
			r.FiredAt.Local().Format("2006-01-02 15:04"),
			r.Kind,
			r.Severity,
			fmt.Sprintf("%d", r.Tier),
			FormatDuration(time.Duration(r.DurationSeconds*float64(time.Second))),
			r.Message,
		)
	}
	return tbl
}

// TransitionTable lists logged status episodes.
func TransitionTable(records []store.TransitionRecord) *Table {
	tbl := NewTable("Started", "Status", "Duration")
	for _, r := range records {
		tbl.AddRow(
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			StatusLabel(r.Status),
			fmt.Sprintf("%.1fm", r.DurationMinutes),
		)
	}
	return tbl
}

// SummaryTable lists per-kind reminder counts.
func SummaryTable(summaries []store.KindSummary) *Table {
	tbl := NewTable("Kind", "Total", "Low", "Medium", "High")
	for _, s := range summaries {
		tbl.AddRow(
			s.Kind,
			fmt.Sprintf("%d", s.Total),
			fmt.Sprintf("%d", s.BySeverity["low"]),
			fmt.Sprintf("%d", s.BySeverity["medium"]),
			fmt.Sprintf("%d", s.BySeverity["high"]),
		)
	}
	return tbl
}

func row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, " %s %s\n", StyleLabel.Render(label), value)
}

// nextTier is the first tier not yet fired, or the last tier when all have.
func nextTier(tiers []time.Duration, fired []bool) time.Duration {
	if len(tiers) == 0 {
		return 0
	}
	for i, t := range tiers {
		if i >= len(fired) || !fired[i] {
			return t
		}
	}
	return tiers[len(tiers)-1]
}

func firedSummary(fired []bool) string {
	n := 0
	for _, f := range fired {
		if f {
			n++
		}
	}
	return fmt.Sprintf("%d/%d tiers fired", n, len(fired))
}

func gateSummary(g escalation.Gate, now time.Time) string {
	switch {
	case g.Disabled:
		return StyleWarning.Render("disabled")
	case g.Snoozed(now):
		return StyleWarning.Render("snoozed for " + FormatDuration(g.SnoozeUntil.Sub(now)))
	default:
		return StyleSuccess.Render("open")
	}
}
