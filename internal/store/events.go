package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/blackwell-systems/focuswatch/internal/reminder"
	"github.com/blackwell-systems/focuswatch/internal/session"
)

// timeLayout has fixed-width fractions so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

// CreateRun inserts a new run and returns its ID.
func (db *DB) CreateRun(startedAt time.Time, source, version string) (int64, error) {
	result, err := db.conn.Exec(
		"INSERT INTO runs (started_at, source, version) VALUES (?, ?, ?)",
		formatTime(startedAt), source, version,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetLatestRun returns the most recent run, or nil if none exist.
func (db *DB) GetLatestRun() (*Run, error) {
	row := db.conn.QueryRow("SELECT id, started_at, source, version FROM runs ORDER BY id DESC LIMIT 1")
	var r Run
	var startedAt string
	err := row.Scan(&r.ID, &startedAt, &r.Source, &r.Version)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.StartedAt = parseTime(startedAt)
	return &r, nil
}

// InsertReminder logs a fired reminder.
func (db *DB) InsertReminder(runID int64, ev reminder.Event) error {
	var suggestions any
	if len(ev.Suggestions) > 0 {
		data, err := json.Marshal(ev.Suggestions)
		if err != nil {
			return err
		}
		suggestions = string(data)
	}
	_, err := db.conn.Exec(
		`INSERT INTO reminders
		(run_id, fired_at, kind, severity, tier, duration_seconds, message, suggestions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, formatTime(ev.FiredAt), string(ev.Kind), ev.Severity.String(), ev.Tier,
		ev.DurationSeconds(), ev.Message, suggestions,
	)
	return err
}

// InsertTransition logs a completed status episode.
func (db *DB) InsertTransition(runID int64, e session.Entry) error {
	_, err := db.conn.Exec(
		`INSERT INTO transitions (run_id, status, started_at, ended_at, duration_minutes)
		VALUES (?, ?, ?, ?, ?)`,
		runID, e.Status.String(), formatTime(e.StartedAt), formatTime(e.EndedAt), e.DurationMinutes,
	)
	return err
}

// InsertResponse logs an accepted control command.
func (db *DB) InsertResponse(runID int64, r reminder.Response) error {
	var kind, minutes any
	if r.Kind != "" {
		kind = string(r.Kind)
	}
	if r.Minutes != 0 {
		minutes = r.Minutes
	}
	_, err := db.conn.Exec(
		"INSERT INTO responses (run_id, at, kind, action, minutes) VALUES (?, ?, ?, ?, ?)",
		runID, formatTime(r.At), kind, string(r.Action), minutes,
	)
	return err
}

// where builds a WHERE clause for the given time column.
func where(column string, f Filter, withKind bool) (string, []any) {
	var clauses []string
	var args []any
	if !f.Since.IsZero() {
		clauses = append(clauses, column+" >= ?")
		args = append(args, formatTime(f.Since))
	}
	if withKind && f.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, f.Kind)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func limit(f Filter) string {
	if f.Limit <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d", f.Limit)
}

// ListReminders returns logged reminders, newest first.
func (db *DB) ListReminders(f Filter) ([]ReminderRecord, error) {
	clause, args := where("fired_at", f, true)
	rows, err := db.conn.Query(
		`SELECT id, run_id, fired_at, kind, severity, tier, duration_seconds, message, suggestions
		FROM reminders`+clause+` ORDER BY fired_at DESC, id DESC`+limit(f),
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReminderRecord
	for rows.Next() {
		var r ReminderRecord
		var firedAt string
		var suggestions sql.NullString
		if err := rows.Scan(&r.ID, &r.RunID, &firedAt, &r.Kind, &r.Severity, &r.Tier,
			&r.DurationSeconds, &r.Message, &suggestions); err != nil {
			return nil, err
		}
		r.FiredAt = parseTime(firedAt)
		if suggestions.Valid {
			_ = json.Unmarshal([]byte(suggestions.String), &r.Suggestions)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListTransitions returns logged status episodes, newest first.
func (db *DB) ListTransitions(f Filter) ([]TransitionRecord, error) {
	clause, args := where("ended_at", f, false)
	rows, err := db.conn.Query(
		`SELECT id, run_id, status, started_at, ended_at, duration_minutes
		FROM transitions`+clause+` ORDER BY ended_at DESC, id DESC`+limit(f),
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransitionRecord
	for rows.Next() {
		var t TransitionRecord
		var startedAt, endedAt string
		if err := rows.Scan(&t.ID, &t.RunID, &t.Status, &startedAt, &endedAt, &t.DurationMinutes); err != nil {
			return nil, err
		}
		t.StartedAt = parseTime(startedAt)
		t.EndedAt = parseTime(endedAt)
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListResponses returns logged control commands, newest first.
func (db *DB) ListResponses(f Filter) ([]ResponseRecord, error) {
	clause, args := where("at", f, true)
	rows, err := db.conn.Query(
		`SELECT id, run_id, at, kind, action, minutes
		FROM responses`+clause+` ORDER BY at DESC, id DESC`+limit(f),
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ResponseRecord
	for rows.Next() {
		var r ResponseRecord
		var at string
		var kind sql.NullString
		var minutes sql.NullInt64
		if err := rows.Scan(&r.ID, &r.RunID, &at, &kind, &r.Action, &minutes); err != nil {
			return nil, err
		}
		r.At = parseTime(at)
		r.Kind = kind.String
		r.Minutes = int(minutes.Int64)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SummarizeReminders counts reminders per kind and severity since the given
// time. Kinds are returned in alphabetical order.
func (db *DB) SummarizeReminders(since time.Time) ([]KindSummary, error) {
	clause, args := where("fired_at", Filter{Since: since}, false)
	rows, err := db.conn.Query(
		`SELECT kind, severity, COUNT(*) FROM reminders`+clause+
			` GROUP BY kind, severity ORDER BY kind`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []KindSummary
	for rows.Next() {
		var kind, severity string
		var n int
		if err := rows.Scan(&kind, &severity, &n); err != nil {
			return nil, err
		}
		if len(out) == 0 || out[len(out)-1].Kind != kind {
			out = append(out, KindSummary{Kind: kind, BySeverity: make(map[string]int)})
		}
		s := &out[len(out)-1]
		s.Total += n
		s.BySeverity[severity] = n
	}
	return out, rows.Err()
}
