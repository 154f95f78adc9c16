// Package suggest provides the rule engine that attaches concrete break and
// refocus suggestions to reminders.
package suggest

import (
	"time"

	"github.com/blackwell-systems/focuswatch/internal/reminder"
)

// Priority levels for suggestions.
const (
	PriorityCritical = 1
	PriorityHigh     = 2
	PriorityMedium   = 3
	PriorityLow      = 4
)

// Suggestion represents one actionable thing to do about a reminder.
type Suggestion struct {
	Category    string  `json:"category"`
	Priority    int     `json:"priority"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImpactScore float64 `json:"impact_score"`
}

// ReminderContext provides all data needed by suggest rules. It is built
// from the fired event and the tracker's recent history by NewContext.
type ReminderContext struct {
	// Kind is the escalator that raised the reminder.
	Kind reminder.Kind `json:"kind"`

	// Severity and Tier are copied from the event.
	Severity reminder.Severity `json:"severity"`
	Tier     int               `json:"tier"`

	// Duration is the work or entertainment span that triggered the event.
	Duration time.Duration `json:"duration"`

	// Hour is the local hour of day the reminder fired at.
	Hour int `json:"hour"`

	// RecentWorkMinutes sums the working entries in recent history.
	RecentWorkMinutes float64 `json:"recent_work_minutes"`

	// RecentEntertainmentEpisodes counts entertainment entries in recent
	// history.
	RecentEntertainmentEpisodes int `json:"recent_entertainment_episodes"`
}

// Rule is a function that examines the reminder context and produces
// zero or more suggestions.
type Rule func(ctx *ReminderContext) []Suggestion
