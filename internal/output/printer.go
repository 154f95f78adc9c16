package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/blackwell-systems/focuswatch/internal/reminder"
	"github.com/blackwell-systems/focuswatch/internal/session"
)

// Printer writes reminders and status transitions to a terminal as single
// styled lines. Its methods match reminder.Sink so it can be attached to the
// watcher's dispatchers.
type Printer struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
}

// NewPrinter returns a printer writing to w. Transitions are only printed
// when verbose is set.
func NewPrinter(w io.Writer, verbose bool) *Printer {
	return &Printer{w: w, verbose: verbose}
}

// Reminder writes one reminder line, followed by its suggestions.
func (p *Printer) Reminder(ev reminder.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ts := StyleMuted.Render(ev.FiredAt.Local().Format("15:04:05"))
	if _, err := fmt.Fprintf(p.w, " %s  %s  %s\n", ts, SeverityBadge(ev.Severity), StyleBold.Render(ev.Title())); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(p.w, "            %s\n", ev.Message); err != nil {
		return err
	}
	for _, s := range ev.Suggestions {
		if _, err := fmt.Fprintf(p.w, "            %s %s\n", StyleMuted.Render("→"), s); err != nil {
			return err
		}
	}
	return nil
}

// Transition writes one completed episode when the printer is verbose.
func (p *Printer) Transition(e session.Entry) error {
	if !p.verbose {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	ts := StyleMuted.Render(e.EndedAt.Local().Format("15:04:05"))
	_, err := fmt.Fprintf(p.w, " %s  %s %s\n", ts,
		StatusLabel(e.Status.String()),
		StyleMuted.Render("ended after "+FormatDuration(e.Duration())))
	return err
}

// Reminders adapts Reminder to a reminder sink.
func (p *Printer) Reminders() reminder.SinkFunc[reminder.Event] {
	return p.Reminder
}

// Transitions adapts Transition to a transition sink.
func (p *Printer) Transitions() reminder.SinkFunc[session.Entry] {
	return p.Transition
}

// StatusLabel styles an activity status name.
func StatusLabel(status string) string {
	switch status {
	case "working":
		return StyleSuccess.Render(status)
	case "entertainment":
		return StyleWarning.Render(status)
	default:
		return StyleMuted.Render(status)
	}
}
