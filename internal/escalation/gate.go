// Package escalation implements the two reminder state machines: the fatigue
// timer for long continuous work and the distraction escalator for long
// entertainment episodes. Both share the same snooze/disable Gate.
package escalation

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSnooze is returned for a negative snooze length.
var ErrInvalidSnooze = errors.New("invalid snooze duration")

// Gate decides whether an escalator may fire at all.
type Gate struct {
	// SnoozeUntil suppresses firing before this instant. Zero means not
	// snoozed.
	SnoozeUntil time.Time `json:"snooze_until,omitzero"`
	// Disabled suppresses firing until the owning escalator clears it.
	Disabled bool `json:"disabled"`
}

// Open reports whether a reminder may fire at now.
func (g Gate) Open(now time.Time) bool {
	return !g.Disabled && !g.Snoozed(now)
}

// Snoozed reports whether now is before the snooze deadline.
func (g Gate) Snoozed(now time.Time) bool {
	return now.Before(g.SnoozeUntil)
}

// Snooze suppresses firing for the given number of minutes from now.
// A negative value is rejected and leaves the gate unchanged.
func (g *Gate) Snooze(minutes int, now time.Time) error {
	if minutes < 0 {
		return fmt.Errorf("%w: %d minutes", ErrInvalidSnooze, minutes)
	}
	g.SnoozeUntil = now.Add(time.Duration(minutes) * time.Minute)
	return nil
}

// Disable suppresses firing until Enable.
func (g *Gate) Disable() {
	g.Disabled = true
}

// Enable clears both the snooze deadline and the disable flag.
func (g *Gate) Enable() {
	*g = Gate{}
}
