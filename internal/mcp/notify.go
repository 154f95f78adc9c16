package mcp

import (
	"errors"

	"github.com/blackwell-systems/focuswatch/internal/reminder"
)

// ReminderMethod is the notification method used to push reminders.
const ReminderMethod = "notifications/reminder"

// ReminderParams is the payload of a reminder notification.
type ReminderParams struct {
	Title string         `json:"title"`
	Event reminder.Event `json:"event"`
	// Actions lists the control tools a client can offer as buttons.
	Actions []string `json:"actions"`
}

// Reminders returns a sink that pushes every reminder to the connected
// client. Reminders raised while no client is connected are discarded.
func (s *Server) Reminders() reminder.SinkFunc[reminder.Event] {
	return func(ev reminder.Event) error {
		err := s.Notify(ReminderMethod, ReminderParams{
			Title:   ev.Title(),
			Event:   ev,
			Actions: []string{"continue_reminder", "snooze_reminder", "disable_reminder"},
		})
		if errors.Is(err, ErrNotConnected) {
			return nil
		}
		return err
	}
}
