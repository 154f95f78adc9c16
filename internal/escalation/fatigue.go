package escalation

import (
	"fmt"
	"time"

	"github.com/blackwell-systems/focuswatch/internal/activity"
	"github.com/blackwell-systems/focuswatch/internal/reminder"
)

// FatigueConfig holds the fatigue timer thresholds.
type FatigueConfig struct {
	// Tiers are the continuous-work durations at which reminders fire,
	// strictly ascending.
	Tiers []time.Duration
	// ReminderInterval is the minimum spacing between two reminders of the
	// same session, across tier boundaries.
	ReminderInterval time.Duration
	// IdleThreshold is how long without a Working tick before an active
	// session is paused.
	IdleThreshold time.Duration
}

// DefaultFatigueConfig returns the 5h/6h/7h policy with hourly spacing and a
// five minute idle tolerance.
func DefaultFatigueConfig() FatigueConfig {
	return FatigueConfig{
		Tiers:            []time.Duration{5 * time.Hour, 6 * time.Hour, 7 * time.Hour},
		ReminderInterval: time.Hour,
		IdleThreshold:    5 * time.Minute,
	}
}

// Validate checks the configuration.
func (c FatigueConfig) Validate() error {
	if err := validateTiers("fatigue", c.Tiers); err != nil {
		return err
	}
	if c.ReminderInterval < 0 {
		return fmt.Errorf("fatigue: reminder interval must not be negative, got %s", c.ReminderInterval)
	}
	if c.IdleThreshold <= 0 {
		return fmt.Errorf("fatigue: idle threshold must be positive, got %s", c.IdleThreshold)
	}
	return nil
}

// FatigueState is the lifecycle state of the current work session.
type FatigueState int

const (
	FatigueIdle FatigueState = iota
	FatigueActive
	FatiguePaused
)

func (s FatigueState) String() string {
	switch s {
	case FatigueActive:
		return "active"
	case FatiguePaused:
		return "paused"
	default:
		return "idle"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s FatigueState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FatigueSnapshot is a read-only copy of the timer state.
type FatigueSnapshot struct {
	State        FatigueState  `json:"state"`
	Duration     time.Duration `json:"duration"`
	Cumulative   time.Duration `json:"cumulative"`
	StartedAt    time.Time     `json:"started_at,omitzero"`
	PausedAt     time.Time     `json:"paused_at,omitzero"`
	Fired        []bool        `json:"fired"`
	LastReminder time.Time     `json:"last_reminder,omitzero"`
	Gate         Gate          `json:"gate"`
}

// Fatigue tracks cumulative continuous work across idle-tolerant pauses and
// fires one reminder per tier. It is driven by a single goroutine.
type Fatigue struct {
	cfg FatigueConfig

	state        FatigueState
	startedAt    time.Time
	pausedAt     time.Time
	lastActivity time.Time
	cumulative   time.Duration

	fired        []bool
	lastReminder time.Time
	gate         Gate
}

// NewFatigue creates a fatigue timer in the Idle state.
func NewFatigue(cfg FatigueConfig) (*Fatigue, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Fatigue{
		cfg:   cfg,
		fired: make([]bool, len(cfg.Tiers)),
	}, nil
}

// Observe feeds one tick's status into the timer and returns a reminder when
// a tier fires.
func (f *Fatigue) Observe(status activity.Status, now time.Time) (reminder.Event, bool) {
	if status == activity.Working {
		switch f.state {
		case FatigueIdle:
			f.start(now)
		case FatiguePaused:
			f.resume(now)
		}
		f.lastActivity = now
	} else if f.state == FatigueActive && now.Sub(f.lastActivity) > f.cfg.IdleThreshold {
		f.pause(now)
	}

	if f.state != FatigueActive {
		return reminder.Event{}, false
	}
	return f.checkTiers(now)
}

func (f *Fatigue) start(now time.Time) {
	f.state = FatigueActive
	f.startedAt = now
	f.pausedAt = time.Time{}
	f.cumulative = 0
	for i := range f.fired {
		f.fired[i] = false
	}
	f.lastReminder = time.Time{}
	f.gate.Disabled = false
}

func (f *Fatigue) resume(now time.Time) {
	f.state = FatigueActive
	f.startedAt = now
	f.pausedAt = time.Time{}
}

func (f *Fatigue) pause(now time.Time) {
	f.cumulative += now.Sub(f.startedAt)
	f.pausedAt = now
	f.state = FatiguePaused
}

// checkTiers fires the earliest unfired tier once its threshold is reached,
// subject to the reminder interval and the gate.
func (f *Fatigue) checkTiers(now time.Time) (reminder.Event, bool) {
	next := -1
	for i, done := range f.fired {
		if !done {
			next = i
			break
		}
	}
	if next < 0 {
		return reminder.Event{}, false
	}

	d := f.Duration(now)
	if d < f.cfg.Tiers[next] {
		return reminder.Event{}, false
	}
	if !f.lastReminder.IsZero() && now.Sub(f.lastReminder) < f.cfg.ReminderInterval {
		return reminder.Event{}, false
	}
	if !f.gate.Open(now) {
		return reminder.Event{}, false
	}

	f.fired[next] = true
	f.lastReminder = now

	return reminder.Event{
		Kind:     reminder.KindFatigue,
		Severity: fatigueSeverity(next),
		Tier:     next + 1,
		Duration: d,
		Message:  fmt.Sprintf("You have been working for %s without a real break.", formatSpan(d)),
		FiredAt:  now,
	}, true
}

// fatigueSeverity maps a zero-based tier index to a severity: the first tier
// is a firm nudge, everything after it is urgent.
func fatigueSeverity(tier int) reminder.Severity {
	if tier == 0 {
		return reminder.SeverityMedium
	}
	return reminder.SeverityHigh
}

// Duration returns the accumulated work time of the current session.
func (f *Fatigue) Duration(now time.Time) time.Duration {
	if f.state == FatigueActive {
		return f.cumulative + now.Sub(f.startedAt)
	}
	return f.cumulative
}

// State returns the current lifecycle state.
func (f *Fatigue) State() FatigueState {
	return f.state
}

// End closes the session: the running interval is banked and reported, then
// every field is reset so the next Working tick starts a fresh session.
func (f *Fatigue) End(now time.Time) time.Duration {
	if f.state == FatigueActive {
		f.pause(now)
	}
	total := f.cumulative

	snooze := f.gate.SnoozeUntil
	*f = Fatigue{
		cfg:   f.cfg,
		fired: make([]bool, len(f.cfg.Tiers)),
	}
	f.gate.SnoozeUntil = snooze
	return total
}

// Snooze suppresses fatigue reminders for minutes. Fired tiers stay fired.
func (f *Fatigue) Snooze(minutes int, now time.Time) error {
	return f.gate.Snooze(minutes, now)
}

// Continue acknowledges a reminder and lifts any snooze or disable.
func (f *Fatigue) Continue() {
	f.gate.Enable()
}

// Disable suppresses fatigue reminders until a new session starts.
func (f *Fatigue) Disable() {
	f.gate.Disable()
}

// Reconfigure swaps thresholds. Fired flags are kept where the tier still
// exists.
func (f *Fatigue) Reconfigure(cfg FatigueConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	fired := make([]bool, len(cfg.Tiers))
	copy(fired, f.fired)
	f.cfg = cfg
	f.fired = fired
	return nil
}

// Snapshot returns a copy of the timer state as of now.
func (f *Fatigue) Snapshot(now time.Time) FatigueSnapshot {
	fired := make([]bool, len(f.fired))
	copy(fired, f.fired)
	return FatigueSnapshot{
		State:        f.state,
		Duration:     f.Duration(now),
		Cumulative:   f.cumulative,
		StartedAt:    f.startedAt,
		PausedAt:     f.pausedAt,
		Fired:        fired,
		LastReminder: f.lastReminder,
		Gate:         f.gate,
	}
}
