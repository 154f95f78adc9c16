package watcher

import (
	"time"

	"github.com/blackwell-systems/focuswatch/internal/activity"
	"github.com/blackwell-systems/focuswatch/internal/clock"
	"github.com/blackwell-systems/focuswatch/internal/config"
	"github.com/blackwell-systems/focuswatch/internal/escalation"
	"github.com/blackwell-systems/focuswatch/internal/reminder"
	"github.com/blackwell-systems/focuswatch/internal/session"
)

// EngineState is everything the polling loop mutates. It has no locking;
// exactly one goroutine owns it.
type EngineState struct {
	clock       clock.Clock
	cfg         *config.Config
	classifier  *activity.Classifier
	tracker     *session.Tracker
	fatigue     *escalation.Fatigue
	distraction *escalation.Distraction
}

// stepResult is what one tick produced.
type stepResult struct {
	Status      activity.Status
	ClassifyErr error
	Closed      session.Entry
	Changed     bool
	Events      []reminder.Event
}

// NewEngineState builds the engine from a validated config.
func NewEngineState(c clock.Clock, cfg *config.Config) (*EngineState, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fatigue, err := escalation.NewFatigue(cfg.FatigueConfig())
	if err != nil {
		return nil, err
	}
	distraction, err := escalation.NewDistraction(cfg.DistractionConfig())
	if err != nil {
		return nil, err
	}
	return &EngineState{
		clock:       c,
		cfg:         cfg,
		classifier:  activity.NewClassifier(cfg.ClassifierConfig()),
		tracker:     session.NewTracker(c, cfg.HistorySize),
		fatigue:     fatigue,
		distraction: distraction,
	}, nil
}

// step classifies s and advances the tracker and both escalators. Fatigue is
// evaluated before distraction.
func (e *EngineState) step(s activity.Sample) stepResult {
	now := e.clock.Now()
	var res stepResult

	res.Status, res.ClassifyErr = e.classifier.Classify(s)
	res.Closed, res.Changed = e.tracker.Update(res.Status)

	if ev, ok := e.fatigue.Observe(res.Status, now); ok {
		res.Events = append(res.Events, ev)
	}
	if ev, ok := e.distraction.Observe(res.Status, e.tracker.CurrentDuration(), now); ok {
		res.Events = append(res.Events, ev)
	}
	return res
}

func (e *EngineState) continueKind(kind reminder.Kind) {
	switch kind {
	case reminder.KindFatigue:
		e.fatigue.Continue()
	case reminder.KindDistraction:
		e.distraction.Continue(e.tracker.CurrentDuration())
	}
}

func (e *EngineState) snooze(kind reminder.Kind, minutes int) error {
	now := e.clock.Now()
	if kind == reminder.KindFatigue {
		return e.fatigue.Snooze(minutes, now)
	}
	return e.distraction.Snooze(minutes, now)
}

func (e *EngineState) disable(kind reminder.Kind) {
	if kind == reminder.KindFatigue {
		e.fatigue.Disable()
		return
	}
	e.distraction.Disable()
}

func (e *EngineState) endWorkSession() time.Duration {
	return e.fatigue.End(e.clock.Now())
}

// reconfigure swaps thresholds in place. Timers, fired flags and history are
// kept.
func (e *EngineState) reconfigure(cfg *config.Config) error {
	if err := e.fatigue.Reconfigure(cfg.FatigueConfig()); err != nil {
		return err
	}
	if err := e.distraction.Reconfigure(cfg.DistractionConfig()); err != nil {
		return err
	}
	e.classifier = activity.NewClassifier(cfg.ClassifierConfig())
	e.tracker.Resize(cfg.HistorySize)
	e.cfg = cfg
	return nil
}

func (e *EngineState) snapshot(source string, ticks uint64, lastErr string) *Snapshot {
	now := e.clock.Now()
	current := e.tracker.CurrentDuration()
	snap := &Snapshot{
		At:             now,
		Status:         e.tracker.Status(),
		StatusSince:    e.tracker.StartedAt(),
		StatusDuration: current,
		History:        e.tracker.History(),
		Fatigue:        e.fatigue.Snapshot(now),
		Source:         source,
		Ticks:          ticks,
		LastError:      lastErr,
	}
	episode := time.Duration(0)
	if snap.Status == activity.Entertainment {
		episode = current
	}
	snap.Distraction = e.distraction.Snapshot(episode)
	return snap
}
