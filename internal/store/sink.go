package store

import (
	"github.com/blackwell-systems/focuswatch/internal/reminder"
	"github.com/blackwell-systems/focuswatch/internal/session"
)

// Recorder logs engine output for one run. Its sinks are meant to be
// registered with the watcher's dispatchers.
type Recorder struct {
	db    *DB
	runID int64
}

// NewRecorder binds a recorder to runID.
func NewRecorder(db *DB, runID int64) *Recorder {
	return &Recorder{db: db, runID: runID}
}

// RunID returns the run every row is logged under.
func (r *Recorder) RunID() int64 { return r.runID }

// Reminders returns a sink logging fired reminders.
func (r *Recorder) Reminders() reminder.Sink[reminder.Event] {
	return reminder.SinkFunc[reminder.Event](func(ev reminder.Event) error {
		return r.db.InsertReminder(r.runID, ev)
	})
}

// Transitions returns a sink logging completed status episodes.
func (r *Recorder) Transitions() reminder.Sink[session.Entry] {
	return reminder.SinkFunc[session.Entry](func(e session.Entry) error {
		return r.db.InsertTransition(r.runID, e)
	})
}

// Responses returns a sink logging control commands.
func (r *Recorder) Responses() reminder.Sink[reminder.Response] {
	return reminder.SinkFunc[reminder.Response](func(resp reminder.Response) error {
		return r.db.InsertResponse(r.runID, resp)
	})
}
