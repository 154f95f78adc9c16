// Package watcher drives the activity engine: it polls the signal source on
// a fixed interval, classifies each sample, advances the session tracker and
// both escalators, and hands reminders and transitions to dispatchers.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/focuswatch/internal/activity"
	"github.com/blackwell-systems/focuswatch/internal/clock"
	"github.com/blackwell-systems/focuswatch/internal/config"
	"github.com/blackwell-systems/focuswatch/internal/metrics"
	"github.com/blackwell-systems/focuswatch/internal/reminder"
	"github.com/blackwell-systems/focuswatch/internal/session"
	"github.com/blackwell-systems/focuswatch/internal/signals"
	"github.com/blackwell-systems/focuswatch/internal/suggest"
)

// commandQueue is the depth of the control command queue.
const commandQueue = 16

// Options wires a Watcher to its collaborators. Source and Config are
// required; everything else is optional.
type Options struct {
	Source  signals.Source
	Config  *config.Config
	Clock   clock.Clock
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
	// Suggest, if set, attaches suggestions to every reminder.
	Suggest *suggest.Engine

	ReminderSinks   []reminder.Sink[reminder.Event]
	TransitionSinks []reminder.Sink[session.Entry]
	ResponseSinks   []reminder.Sink[reminder.Response]
}

// Watcher owns the engine state and the polling loop. Control methods and
// Snapshot are safe from any goroutine; Check and Run are not, and only one
// Run may be active.
type Watcher struct {
	source  signals.Source
	clock   clock.Clock
	log     zerolog.Logger
	metrics *metrics.Metrics
	suggest *suggest.Engine
	engine  *EngineState

	reminders   *reminder.Dispatcher[reminder.Event]
	transitions *reminder.Dispatcher[session.Entry]
	responses   *reminder.Dispatcher[reminder.Response]

	cmds    chan command
	done    chan struct{}
	running atomic.Bool
	ticks   uint64
	lastErr string // dedup: suppress repeated identical acquire errors
	snap    atomic.Pointer[Snapshot]
}

// New validates opts and builds a Watcher. Dispatchers start immediately and
// are closed when Run returns.
func New(opts Options) (*Watcher, error) {
	if opts.Source == nil {
		return nil, errors.New("watcher: nil signal source")
	}
	if opts.Config == nil {
		return nil, errors.New("watcher: nil config")
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	engine, err := NewEngineState(opts.Clock, opts.Config)
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}

	m := opts.Metrics
	dispatchOpts := func(name string) reminder.Options {
		return reminder.Options{
			Buffer: opts.Config.DispatchBuffer,
			Logger: opts.Logger,
			OnDrop: func() { m.Dropped(name) },
		}
	}

	w := &Watcher{
		source:      opts.Source,
		clock:       opts.Clock,
		log:         opts.Logger,
		metrics:     m,
		suggest:     opts.Suggest,
		engine:      engine,
		reminders:   reminder.NewDispatcher("reminders", dispatchOpts("reminders"), opts.ReminderSinks...),
		transitions: reminder.NewDispatcher("transitions", dispatchOpts("transitions"), opts.TransitionSinks...),
		responses:   reminder.NewDispatcher("responses", dispatchOpts("responses"), opts.ResponseSinks...),
		cmds:        make(chan command, commandQueue),
		done:        make(chan struct{}),
	}
	w.publish()
	return w, nil
}

// Snapshot returns the most recently published engine state.
func (w *Watcher) Snapshot() *Snapshot {
	return w.snap.Load()
}

// Done is closed once Run has returned.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// Run starts the polling loop. It ticks once immediately, then at every
// tick interval, and applies control commands as they arrive. It blocks
// until ctx is cancelled and then closes the dispatchers.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return errors.New("watcher: already running")
	}
	defer close(w.done)
	defer w.closeDispatchers()

	interval := w.engine.cfg.TickInterval
	w.log.Info().
		Str("source", w.source.Kind().String()).
		Dur("interval", interval).
		Msg("watching activity")

	w.Check(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("watcher stopped")
			return nil
		case <-ticker.C:
			w.Check(ctx)
		case cmd := <-w.cmds:
			w.apply(cmd)
		}
		if next := w.engine.cfg.TickInterval; next != interval {
			interval = next
			ticker.Reset(interval)
			w.log.Info().Dur("interval", interval).Msg("tick interval changed")
		}
	}
}

// Check performs a single tick: queued commands, acquisition,
// classification, tracker and escalator updates, dispatch and snapshot
// publication. A panic inside the tick is logged and the tick abandoned.
func (w *Watcher) Check(ctx context.Context) {
	defer func() {
		if p := recover(); p != nil {
			w.metrics.TickError("panic")
			w.log.Error().Interface("panic", p).Msg("tick panicked")
			w.publish()
		}
	}()

	w.drain()
	w.ticks++
	w.metrics.Tick()

	sample, err := w.source.Acquire(ctx)
	w.noteAcquireError(err)

	res := w.engine.step(sample)
	if res.ClassifyErr != nil {
		w.metrics.TickError("classify")
		w.log.Warn().Err(res.ClassifyErr).Msg("sample rejected; treating as idle")
	}
	w.metrics.SetStatus(res.Status)

	if res.Changed {
		w.log.Debug().
			Str("old_status", res.Closed.Status.String()).
			Str("status", res.Status.String()).
			Float64("minutes", res.Closed.DurationMinutes).
			Msg("status changed")
		w.transitions.Dispatch(res.Closed)
	}

	for _, ev := range res.Events {
		if w.suggest != nil {
			ev = w.suggest.Enrich(ev, w.engine.tracker.History(), suggest.DefaultLimit)
		}
		w.metrics.Reminder(string(ev.Kind), ev.Severity.String())
		w.log.Info().
			Str("kind", string(ev.Kind)).
			Str("severity", ev.Severity.String()).
			Int("tier", ev.Tier).
			Dur("duration", ev.Duration).
			Msg("reminder fired")
		w.reminders.Dispatch(ev)
	}

	w.publish()
}

// noteAcquireError counts every analyzer failure but logs only when the
// error changes, so a disconnected camera does not log once per second.
func (w *Watcher) noteAcquireError(err error) {
	if err == nil {
		if w.lastErr != "" {
			w.log.Info().Msg("signal source recovered")
		}
		w.lastErr = ""
		return
	}
	w.metrics.TickError("acquire")
	for _, f := range signals.Failures(err) {
		w.metrics.SignalFailure(f.Analyzer)
	}
	if msg := err.Error(); msg != w.lastErr {
		w.log.Warn().Err(err).Msg("signal acquisition degraded")
		w.lastErr = msg
	}
}

func (w *Watcher) publish() {
	w.snap.Store(w.engine.snapshot(w.source.Kind().String(), w.ticks, w.lastErr))
}

// closeGrace bounds how long shutdown waits for a sink call in progress.
const closeGrace = 2 * time.Second

// closeDispatchers stops delivery and waits for in-flight sink calls, so
// collaborators such as the event log can be closed after Run returns.
func (w *Watcher) closeDispatchers() {
	w.reminders.Close()
	w.transitions.Close()
	w.responses.Close()

	timeout := time.After(closeGrace)
	for _, done := range []<-chan struct{}{w.reminders.Done(), w.transitions.Done(), w.responses.Done()} {
		select {
		case <-done:
		case <-timeout:
			w.log.Warn().Msg("sink still busy at shutdown")
			return
		}
	}
}

// Status is a convenience for the current classified status.
func (w *Watcher) Status() activity.Status {
	return w.Snapshot().Status
}
