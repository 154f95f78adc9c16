package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/focuswatch/internal/activity"
	"github.com/blackwell-systems/focuswatch/internal/reminder"
	"github.com/blackwell-systems/focuswatch/internal/session"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func openTest(t *testing.T) (*DB, int64) {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	runID, err := db.CreateRun(t0, "screen", "test")
	require.NoError(t, err)
	return db, runID
}

func TestMigrate_Idempotent(t *testing.T) {
	db, _ := openTest(t)
	require.NoError(t, db.Migrate())

	var version int
	require.NoError(t, db.Conn().QueryRow("SELECT version FROM schema_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "focuswatch.db")
	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.CreateRun(t0, "screen+camera", "dev")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	run, err := db.GetLatestRun()
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "screen+camera", run.Source)
	assert.True(t, run.StartedAt.Equal(t0))
}

func TestGetLatestRun_Empty(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer db.Close()
	run, err := db.GetLatestRun()
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestReminders_RoundTrip(t *testing.T) {
	db, runID := openTest(t)

	ev := reminder.Event{
		Kind:        reminder.KindFatigue,
		Severity:    reminder.SeverityMedium,
		Tier:        1,
		Duration:    5 * time.Hour,
		Message:     "You have been working for 5h00m without a real break.",
		Suggestions: []string{"Stand up and stretch for five minutes"},
		FiredAt:     t0.Add(5 * time.Hour),
	}
	require.NoError(t, db.InsertReminder(runID, ev))
	require.NoError(t, db.InsertReminder(runID, reminder.Event{
		Kind:     reminder.KindDistraction,
		Severity: reminder.SeverityLow,
		Tier:     1,
		Duration: 15 * time.Minute,
		FiredAt:  t0.Add(6 * time.Hour),
	}))

	all, err := db.ListReminders(Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "distraction", all[0].Kind, "newest first")
	assert.Nil(t, all[0].Suggestions)

	got := all[1]
	assert.Equal(t, runID, got.RunID)
	assert.Equal(t, "fatigue", got.Kind)
	assert.Equal(t, "medium", got.Severity)
	assert.Equal(t, 1, got.Tier)
	assert.Equal(t, 18000.0, got.DurationSeconds)
	assert.Equal(t, ev.Message, got.Message)
	assert.Equal(t, ev.Suggestions, got.Suggestions)
	assert.True(t, got.FiredAt.Equal(ev.FiredAt))

	fatigue, err := db.ListReminders(Filter{Kind: "fatigue"})
	require.NoError(t, err)
	assert.Len(t, fatigue, 1)

	recent, err := db.ListReminders(Filter{Since: t0.Add(5*time.Hour + time.Second)})
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	limited, err := db.ListReminders(Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestTimesSortAcrossFractions(t *testing.T) {
	db, runID := openTest(t)
	require.NoError(t, db.InsertReminder(runID, reminder.Event{Kind: reminder.KindFatigue, FiredAt: t0}))
	require.NoError(t, db.InsertReminder(runID, reminder.Event{Kind: reminder.KindFatigue, FiredAt: t0.Add(500 * time.Millisecond)}))

	got, err := db.ListReminders(Filter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].FiredAt.After(got[1].FiredAt))
}

func TestTransitions_RoundTrip(t *testing.T) {
	db, runID := openTest(t)
	entry := session.Entry{
		Status:          activity.Working,
		DurationMinutes: 42,
		StartedAt:       t0,
		EndedAt:         t0.Add(42 * time.Minute),
	}
	require.NoError(t, db.InsertTransition(runID, entry))

	got, err := db.ListTransitions(Filter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "working", got[0].Status)
	assert.Equal(t, 42.0, got[0].DurationMinutes)
	assert.True(t, got[0].StartedAt.Equal(t0))
	assert.True(t, got[0].EndedAt.Equal(entry.EndedAt))
}

func TestResponses_RoundTrip(t *testing.T) {
	db, runID := openTest(t)
	require.NoError(t, db.InsertResponse(runID, reminder.Response{
		Kind: reminder.KindDistraction, Action: reminder.ActionSnooze, Minutes: 5, At: t0,
	}))
	require.NoError(t, db.InsertResponse(runID, reminder.Response{
		Action: reminder.ActionEndSession, At: t0.Add(time.Minute),
	}))

	got, err := db.ListResponses(Filter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "end_session", got[0].Action)
	assert.Empty(t, got[0].Kind)
	assert.Zero(t, got[0].Minutes)
	assert.Equal(t, "distraction", got[1].Kind)
	assert.Equal(t, 5, got[1].Minutes)
}

func TestSummarizeReminders(t *testing.T) {
	db, runID := openTest(t)
	for _, ev := range []reminder.Event{
		{Kind: reminder.KindFatigue, Severity: reminder.SeverityMedium, FiredAt: t0},
		{Kind: reminder.KindFatigue, Severity: reminder.SeverityHigh, FiredAt: t0.Add(time.Hour)},
		{Kind: reminder.KindDistraction, Severity: reminder.SeverityLow, FiredAt: t0},
		{Kind: reminder.KindDistraction, Severity: reminder.SeverityLow, FiredAt: t0.Add(time.Minute)},
	} {
		require.NoError(t, db.InsertReminder(runID, ev))
	}

	got, err := db.SummarizeReminders(time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, KindSummary{Kind: "distraction", Total: 2, BySeverity: map[string]int{"low": 2}}, got[0])
	assert.Equal(t, KindSummary{Kind: "fatigue", Total: 2, BySeverity: map[string]int{"medium": 1, "high": 1}}, got[1])
}

func TestRecorder_Sinks(t *testing.T) {
	db, runID := openTest(t)
	rec := NewRecorder(db, runID)
	assert.Equal(t, runID, rec.RunID())

	require.NoError(t, rec.Reminders().Dispatch(reminder.Event{Kind: reminder.KindFatigue, FiredAt: t0}))
	require.NoError(t, rec.Transitions().Dispatch(session.Entry{Status: activity.Idle, StartedAt: t0, EndedAt: t0}))
	require.NoError(t, rec.Responses().Dispatch(reminder.Response{Action: reminder.ActionContinue, Kind: reminder.KindFatigue, At: t0}))

	reminders, err := db.ListReminders(Filter{})
	require.NoError(t, err)
	transitions, err := db.ListTransitions(Filter{})
	require.NoError(t, err)
	responses, err := db.ListResponses(Filter{})
	require.NoError(t, err)
	assert.Len(t, reminders, 1)
	assert.Len(t, transitions, 1)
	assert.Len(t, responses, 1)
}

func TestInsert_UnknownRunFails(t *testing.T) {
	db, _ := openTest(t)
	err := db.InsertReminder(999, reminder.Event{Kind: reminder.KindFatigue, FiredAt: t0})
	assert.Error(t, err, "foreign keys are enforced")
}
