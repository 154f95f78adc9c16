// Package session records how long the user has been in the current activity
// status and keeps a short rolling history of completed episodes.
package session

import (
	"time"

	"github.com/blackwell-systems/focuswatch/internal/activity"
	"github.com/blackwell-systems/focuswatch/internal/clock"
)

// DefaultHistorySize is the number of completed episodes retained.
const DefaultHistorySize = 10

// Entry is one completed episode: a maximal run of a single status.
type Entry struct {
	Status          activity.Status `json:"status"`
	DurationMinutes float64         `json:"duration_minutes"`
	StartedAt       time.Time       `json:"started_at"`
	EndedAt         time.Time       `json:"ended_at"`
}

// Duration returns the episode length.
func (e Entry) Duration() time.Duration {
	return e.EndedAt.Sub(e.StartedAt)
}

// Tracker owns the current status and the capped episode history. It is not
// safe for concurrent use; the polling driver is its only writer.
type Tracker struct {
	clock     clock.Clock
	status    activity.Status
	startedAt time.Time
	history   []Entry
	limit     int
}

// NewTracker starts tracking in the Idle status as of now.
func NewTracker(c clock.Clock, historySize int) *Tracker {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &Tracker{
		clock:     c,
		status:    activity.Idle,
		startedAt: c.Now(),
		limit:     historySize,
	}
}

// Update records the status observed this tick. When the status changes, the
// episode being left is appended to the history and returned with ok set.
func (t *Tracker) Update(status activity.Status) (closed Entry, ok bool) {
	if status == t.status {
		return Entry{}, false
	}

	now := t.clock.Now()
	closed = Entry{
		Status:          t.status,
		DurationMinutes: now.Sub(t.startedAt).Minutes(),
		StartedAt:       t.startedAt,
		EndedAt:         now,
	}
	t.history = append(t.history, closed)
	if over := len(t.history) - t.limit; over > 0 {
		// Evict oldest first, in place.
		copy(t.history, t.history[over:])
		t.history = t.history[:t.limit]
	}

	t.status = status
	t.startedAt = now
	return closed, true
}

// Status returns the current status.
func (t *Tracker) Status() activity.Status {
	return t.status
}

// StartedAt returns when the current status began.
func (t *Tracker) StartedAt() time.Time {
	return t.startedAt
}

// CurrentDuration is the time spent in the current status, computed from the
// clock on every call.
func (t *Tracker) CurrentDuration() time.Duration {
	return t.clock.Now().Sub(t.startedAt)
}

// History returns a copy of the completed episodes, oldest first.
func (t *Tracker) History() []Entry {
	out := make([]Entry, len(t.history))
	copy(out, t.history)
	return out
}

// Resize changes the history cap, dropping the oldest entries if needed.
func (t *Tracker) Resize(limit int) {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	t.limit = limit
	if over := len(t.history) - limit; over > 0 {
		copy(t.history, t.history[over:])
		t.history = t.history[:limit]
	}
}
