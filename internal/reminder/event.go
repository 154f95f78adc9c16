// Package reminder defines the reminder payload emitted by the escalators and
// the non-blocking dispatcher that hands it to UI and logging collaborators.
package reminder

import (
	"fmt"
	"time"
)

// Kind identifies which escalator raised a reminder.
type Kind string

const (
	KindFatigue     Kind = "fatigue"
	KindDistraction Kind = "distraction"
)

// ParseKind validates a kind name.
func ParseKind(name string) (Kind, error) {
	switch Kind(name) {
	case KindFatigue, KindDistraction:
		return Kind(name), nil
	default:
		return "", fmt.Errorf("unknown reminder kind %q (want %q or %q)", name, KindFatigue, KindDistraction)
	}
}

// Severity grades how urgent a reminder is.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "low"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "low":
		*s = SeverityLow
	case "medium":
		*s = SeverityMedium
	case "high":
		*s = SeverityHigh
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Event is a single reminder. It is built once by an escalator and never
// modified after it is dispatched.
type Event struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	// Tier is the 1-based escalation tier that fired.
	Tier int `json:"tier"`
	// Duration is the continuous time that triggered the reminder.
	Duration    time.Duration `json:"duration"`
	Message     string        `json:"message"`
	Suggestions []string      `json:"suggestions,omitempty"`
	FiredAt     time.Time     `json:"fired_at"`
}

// DurationSeconds is the triggering duration in seconds.
func (e Event) DurationSeconds() float64 {
	return e.Duration.Seconds()
}

// Title is a short headline suitable for a notification banner.
func (e Event) Title() string {
	switch e.Kind {
	case KindFatigue:
		return fmt.Sprintf("Time for a break (tier %d)", e.Tier)
	case KindDistraction:
		return fmt.Sprintf("Still on a break? (tier %d)", e.Tier)
	default:
		return "Reminder"
	}
}
