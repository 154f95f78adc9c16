// Package store provides the SQLite event log for reminders, status
// transitions and user responses.
package store

import "time"

// Run is one invocation of the watch loop. Every logged row belongs to a run.
type Run struct {
	ID        int64     `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

// ReminderRecord is a logged reminder.
type ReminderRecord struct {
	ID              int64     `json:"id"`
	RunID           int64     `json:"run_id"`
	FiredAt         time.Time `json:"fired_at"`
	Kind            string    `json:"kind"`
	Severity        string    `json:"severity"`
	Tier            int       `json:"tier"`
	DurationSeconds float64   `json:"duration_seconds"`
	Message         string    `json:"message"`
	Suggestions     []string  `json:"suggestions,omitempty"`
}

// TransitionRecord is a logged completed status episode.
type TransitionRecord struct {
	ID              int64     `json:"id"`
	RunID           int64     `json:"run_id"`
	Status          string    `json:"status"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	DurationMinutes float64   `json:"duration_minutes"`
}

// ResponseRecord is a logged control command.
type ResponseRecord struct {
	ID      int64     `json:"id"`
	RunID   int64     `json:"run_id"`
	At      time.Time `json:"at"`
	Kind    string    `json:"kind,omitempty"`
	Action  string    `json:"action"`
	Minutes int       `json:"minutes,omitempty"`
}

// Filter narrows history queries. Zero values match everything.
type Filter struct {
	Since time.Time
	Kind  string
	Limit int
}

// KindSummary aggregates reminders for one kind.
type KindSummary struct {
	Kind       string         `json:"kind"`
	Total      int            `json:"total"`
	BySeverity map[string]int `json:"by_severity"`
}
