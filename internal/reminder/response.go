package reminder

import "time"

// Action is a user response to reminders.
type Action string

const (
	ActionContinue   Action = "continue"
	ActionSnooze     Action = "snooze"
	ActionDisable    Action = "disable"
	ActionEndSession Action = "end_session"
)

// Response records one accepted control command.
type Response struct {
	Kind    Kind      `json:"kind,omitempty"`
	Action  Action    `json:"action"`
	Minutes int       `json:"minutes,omitempty"`
	At      time.Time `json:"at"`
}
