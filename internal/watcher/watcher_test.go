package watcher

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blackwell-systems/focuswatch/internal/activity"
	"github.com/blackwell-systems/focuswatch/internal/clock"
	"github.com/blackwell-systems/focuswatch/internal/config"
	"github.com/blackwell-systems/focuswatch/internal/escalation"
	"github.com/blackwell-systems/focuswatch/internal/metrics"
	"github.com/blackwell-systems/focuswatch/internal/reminder"
	"github.com/blackwell-systems/focuswatch/internal/session"
	"github.com/blackwell-systems/focuswatch/internal/signals"
	"github.com/blackwell-systems/focuswatch/internal/suggest"
)

var (
	t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	working       = activity.Sample{ScreenChangeRate: 0.05, ComplexScene: true}
	entertainment = activity.Sample{ScreenChangeRate: 0.2}
	idle          = activity.Sample{}
)

// fakeSource serves whatever sample was set last.
type fakeSource struct {
	mu     sync.Mutex
	sample activity.Sample
	err    error
	panics bool
}

func (f *fakeSource) Kind() signals.Kind { return signals.KindScreenOnly }

func (f *fakeSource) Acquire(context.Context) (activity.Sample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panics {
		panic("capture exploded")
	}
	return f.sample, f.err
}

func (f *fakeSource) set(s activity.Sample, err error) {
	f.mu.Lock()
	f.sample, f.err = s, err
	f.mu.Unlock()
}

// recorder is a thread-safe sink.
type recorder[T any] struct {
	mu  sync.Mutex
	got []T
}

func (r *recorder[T]) Dispatch(v T) error {
	r.mu.Lock()
	r.got = append(r.got, v)
	r.mu.Unlock()
	return nil
}

func (r *recorder[T]) items() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.got...)
}

type harness struct {
	w           *Watcher
	clock       *clock.Manual
	src         *fakeSource
	metrics     *metrics.Metrics
	reminders   *recorder[reminder.Event]
	transitions *recorder[session.Entry]
	responses   *recorder[reminder.Response]
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	h := &harness{
		clock:       clock.NewManual(t0),
		src:         &fakeSource{},
		metrics:     metrics.New(),
		reminders:   &recorder[reminder.Event]{},
		transitions: &recorder[session.Entry]{},
		responses:   &recorder[reminder.Response]{},
	}
	w, err := New(Options{
		Source:          h.src,
		Config:          cfg,
		Clock:           h.clock,
		Logger:          zerolog.Nop(),
		Metrics:         h.metrics,
		Suggest:         suggest.NewEngine(),
		ReminderSinks:   []reminder.Sink[reminder.Event]{h.reminders},
		TransitionSinks: []reminder.Sink[session.Entry]{h.transitions},
		ResponseSinks:   []reminder.Sink[reminder.Response]{h.responses},
	})
	require.NoError(t, err)
	t.Cleanup(w.closeDispatchers)
	h.w = w
	return h
}

// tick advances the clock by step and runs one Check, n times.
func (h *harness) tick(n int, step time.Duration) {
	for i := 0; i < n; i++ {
		h.clock.Advance(step)
		h.w.Check(context.Background())
	}
}

// control runs a control call the way a UI goroutine would and applies it on
// the calling goroutine, standing in for the polling loop.
func (h *harness) control(t *testing.T, call func(context.Context) error) error {
	t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- call(context.Background()) }()
	require.Eventually(t, func() bool { return len(h.w.cmds) > 0 }, time.Second, time.Millisecond)
	h.w.drain()
	return <-errc
}

func waitFor[T any](t *testing.T, r *recorder[T], n int) []T {
	t.Helper()
	require.Eventually(t, func() bool { return len(r.items()) >= n }, 2*time.Second, 5*time.Millisecond)
	return r.items()
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{Config: config.Default()})
	assert.Error(t, err)

	_, err = New(Options{Source: &fakeSource{}})
	assert.Error(t, err)

	bad := config.Default()
	bad.Distraction.Profile = "turbo"
	_, err = New(Options{Source: &fakeSource{}, Config: bad})
	assert.ErrorContains(t, err, "distraction.profile")
}

func TestNew_PublishesInitialSnapshot(t *testing.T) {
	h := newHarness(t, nil)
	snap := h.w.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, activity.Idle, snap.Status)
	assert.Equal(t, t0, snap.StatusSince)
	assert.Equal(t, "screen", snap.Source)
	assert.Zero(t, snap.Ticks)
}

func TestCheck_FatigueReminderAfterFiveHours(t *testing.T) {
	h := newHarness(t, nil)
	h.src.set(working, nil)

	h.tick(1, time.Minute)
	h.tick(299, time.Minute)
	assert.Empty(t, h.reminders.items())

	h.tick(1, time.Minute)
	got := waitFor(t, h.reminders, 1)
	require.Len(t, got, 1)
	ev := got[0]
	assert.Equal(t, reminder.KindFatigue, ev.Kind)
	assert.Equal(t, reminder.SeverityMedium, ev.Severity)
	assert.Equal(t, 1, ev.Tier)
	assert.Equal(t, 5*time.Hour, ev.Duration, "timer starts on the first working tick")
	assert.NotEmpty(t, ev.Suggestions)

	snap := h.w.Snapshot()
	assert.Equal(t, activity.Working, snap.Status)
	assert.Equal(t, escalation.FatigueActive, snap.Fatigue.State)
	assert.Equal(t, uint64(301), snap.Ticks)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Reminders.WithLabelValues("fatigue", "medium")))
}

func TestCheck_PublishesTransitions(t *testing.T) {
	h := newHarness(t, nil)

	h.src.set(working, nil)
	h.tick(1, time.Second)
	h.tick(10, time.Minute)
	h.src.set(entertainment, nil)
	h.tick(1, time.Minute)

	got := waitFor(t, h.transitions, 2)
	require.Len(t, got, 2)
	assert.Equal(t, activity.Idle, got[0].Status)
	assert.Equal(t, activity.Working, got[1].Status)
	assert.InDelta(t, 11, got[1].DurationMinutes, 1e-9)

	snap := h.w.Snapshot()
	assert.Equal(t, activity.Entertainment, snap.Status)
	assert.Len(t, snap.History, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Status.WithLabelValues("entertainment")))
}

func TestCheck_DistractionDebugProfile(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Distraction.Profile = config.ProfileDebug })
	h.src.set(entertainment, nil)

	h.tick(25, time.Second)

	got := waitFor(t, h.reminders, 3)
	require.Len(t, got, 3)
	var severities []reminder.Severity
	for _, ev := range got {
		assert.Equal(t, reminder.KindDistraction, ev.Kind)
		severities = append(severities, ev.Severity)
	}
	assert.Equal(t, []reminder.Severity{reminder.SeverityLow, reminder.SeverityMedium, reminder.SeverityHigh}, severities)
}

func TestSnooze_DefaultMinutesAndResponse(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Distraction.Profile = config.ProfileDebug })
	h.src.set(entertainment, nil)
	h.tick(1, time.Second)

	require.NoError(t, h.control(t, func(ctx context.Context) error {
		return h.w.Snooze(ctx, reminder.KindDistraction, 0)
	}))

	resp := waitFor(t, h.responses, 1)
	assert.Equal(t, reminder.Response{
		Kind:    reminder.KindDistraction,
		Action:  reminder.ActionSnooze,
		Minutes: 5,
		At:      t0.Add(time.Second),
	}, resp[0])

	h.tick(299, time.Second)
	assert.Empty(t, h.reminders.items(), "snoozed for five minutes")

	h.tick(1, time.Second)
	got := waitFor(t, h.reminders, 1)
	assert.Equal(t, reminder.SeverityHigh, got[0].Severity, "highest crossed boundary fires after the snooze")
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Commands.WithLabelValues("snooze", "ok")))
}

func TestControl_RejectsInvalidBeforeQueueing(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	err := h.w.Snooze(ctx, reminder.KindFatigue, -1)
	assert.ErrorIs(t, err, escalation.ErrInvalidSnooze)

	err = h.w.Continue(ctx, reminder.Kind("boredom"))
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.ErrorIs(t, h.w.Disable(ctx, ""), ErrUnknownKind)

	bad := config.Default()
	bad.TickInterval = 0
	assert.Error(t, h.w.Reconfigure(ctx, bad))
	assert.Error(t, h.w.Reconfigure(ctx, nil))

	assert.Zero(t, len(h.w.cmds))
	assert.Empty(t, h.responses.items())
}

func TestControl_ContextCancelled(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := h.w.Continue(ctx, reminder.KindFatigue)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEndWorkSession(t *testing.T) {
	h := newHarness(t, nil)
	h.src.set(working, nil)
	h.tick(60, time.Minute)
	require.Equal(t, escalation.FatigueActive, h.w.Snapshot().Fatigue.State)

	require.NoError(t, h.control(t, h.w.EndWorkSession))

	snap := h.w.Snapshot()
	assert.Equal(t, escalation.FatigueIdle, snap.Fatigue.State)
	assert.Zero(t, snap.Fatigue.Duration)

	resp := waitFor(t, h.responses, 1)
	assert.Equal(t, reminder.ActionEndSession, resp[0].Action)
}

func TestDisableFatigue(t *testing.T) {
	h := newHarness(t, nil)
	h.src.set(working, nil)
	h.tick(1, time.Minute)

	require.NoError(t, h.control(t, func(ctx context.Context) error {
		return h.w.Disable(ctx, reminder.KindFatigue)
	}))
	h.tick(8*60, time.Minute)
	assert.Empty(t, h.reminders.items())
	assert.True(t, h.w.Snapshot().Fatigue.Gate.Disabled)
}

func TestReconfigure_KeepsTimers(t *testing.T) {
	h := newHarness(t, nil)
	h.src.set(working, nil)
	h.tick(90, time.Minute)

	next := config.Default()
	next.Fatigue.TierHours = []float64{1, 2}
	next.HistorySize = 3
	require.NoError(t, h.control(t, func(ctx context.Context) error {
		return h.w.Reconfigure(ctx, next)
	}))
	assert.Empty(t, h.responses.items(), "reconfigure is not a reminder response")

	h.tick(1, time.Minute)
	got := waitFor(t, h.reminders, 1)
	assert.Equal(t, 1, got[0].Tier)
	assert.Greater(t, got[0].Duration, time.Hour)
	assert.Len(t, h.w.Snapshot().Fatigue.Fired, 2)
}

func TestCheck_SourceFailureDegrades(t *testing.T) {
	h := newHarness(t, nil)
	fail := errors.Join(&signals.AnalyzerError{Analyzer: "screen", Err: signals.ErrStale})
	h.src.set(activity.Sample{}, fail)

	h.tick(3, time.Second)

	snap := h.w.Snapshot()
	assert.Equal(t, activity.Idle, snap.Status)
	assert.Contains(t, snap.LastError, "stale")
	assert.Equal(t, 3.0, testutil.ToFloat64(h.metrics.SignalFailures.WithLabelValues("screen")))
	assert.Equal(t, 3.0, testutil.ToFloat64(h.metrics.TickErrors.WithLabelValues("acquire")))

	h.src.set(working, nil)
	h.tick(1, time.Second)
	assert.Empty(t, h.w.Snapshot().LastError)
	assert.Equal(t, activity.Working, h.w.Snapshot().Status)
}

func TestCheck_MalformedSampleIsIdle(t *testing.T) {
	h := newHarness(t, nil)
	h.src.set(working, nil)
	h.tick(1, time.Second)

	h.src.set(activity.Sample{ScreenChangeRate: math.NaN()}, nil)
	h.tick(1, time.Second)

	assert.Equal(t, activity.Idle, h.w.Snapshot().Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.TickErrors.WithLabelValues("classify")))
}

func TestCheck_RecoversFromPanic(t *testing.T) {
	h := newHarness(t, nil)
	h.src.mu.Lock()
	h.src.panics = true
	h.src.mu.Unlock()

	assert.NotPanics(t, func() { h.tick(1, time.Second) })
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.TickErrors.WithLabelValues("panic")))

	h.src.mu.Lock()
	h.src.panics = false
	h.src.mu.Unlock()
	h.src.set(working, nil)
	h.tick(1, time.Second)
	assert.Equal(t, activity.Working, h.w.Snapshot().Status)
}

func TestRun_ControlAndShutdown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cfg := config.Default()
	cfg.TickInterval = 5 * time.Millisecond
	src := &fakeSource{}
	src.set(working, nil)
	responses := &recorder[reminder.Response]{}

	w, err := New(Options{
		Source:        src,
		Config:        cfg,
		Logger:        zerolog.Nop(),
		ResponseSinks: []reminder.Sink[reminder.Response]{responses},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return w.Snapshot().Ticks >= 3 }, 2*time.Second, time.Millisecond)
	assert.Equal(t, activity.Working, w.Status())

	require.NoError(t, w.Continue(context.Background(), reminder.KindFatigue))
	require.NoError(t, w.Snooze(context.Background(), reminder.KindFatigue, 15))
	waitFor(t, responses, 2)

	faster := config.Default()
	faster.TickInterval = time.Millisecond
	require.NoError(t, w.Reconfigure(context.Background(), faster))

	assert.Error(t, w.Run(ctx), "second Run is rejected")

	cancel()
	select {
	case err := <-runErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	<-w.Done()

	assert.ErrorIs(t, w.Continue(context.Background(), reminder.KindFatigue), ErrStopped)
}
