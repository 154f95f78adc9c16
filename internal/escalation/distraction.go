package escalation

import (
	"fmt"
	"time"

	"github.com/blackwell-systems/focuswatch/internal/activity"
	"github.com/blackwell-systems/focuswatch/internal/reminder"
)

// DistractionConfig holds the distraction escalator thresholds.
type DistractionConfig struct {
	// Threshold is the entertainment duration that counts as ratio 1.0.
	Threshold time.Duration
	// Boundaries are the episode durations at which reminders fire,
	// strictly ascending.
	Boundaries []time.Duration
}

// DefaultTierRatios place the three boundaries at half, one and one and a
// half times the threshold.
var DefaultTierRatios = []float64{0.5, 1.0, 1.5}

// BoundariesFromRatios scales ratios by threshold.
func BoundariesFromRatios(threshold time.Duration, ratios []float64) []time.Duration {
	out := make([]time.Duration, len(ratios))
	for i, r := range ratios {
		out[i] = time.Duration(float64(threshold) * r)
	}
	return out
}

// DefaultDistractionConfig returns a 30 minute threshold with the default
// ratios.
func DefaultDistractionConfig() DistractionConfig {
	return DistractionConfig{
		Threshold:  30 * time.Minute,
		Boundaries: BoundariesFromRatios(30*time.Minute, DefaultTierRatios),
	}
}

// Validate checks the configuration.
func (c DistractionConfig) Validate() error {
	if c.Threshold <= 0 {
		return fmt.Errorf("distraction: threshold must be positive, got %s", c.Threshold)
	}
	return validateTiers("distraction", c.Boundaries)
}

// SeverityForRatio grades an episode by duration/threshold.
func SeverityForRatio(ratio float64) reminder.Severity {
	switch {
	case ratio >= 1.5:
		return reminder.SeverityHigh
	case ratio >= 1.0:
		return reminder.SeverityMedium
	default:
		return reminder.SeverityLow
	}
}

// DistractionSnapshot is a read-only copy of the escalator state.
type DistractionSnapshot struct {
	InEpisode bool          `json:"in_episode"`
	Effective time.Duration `json:"effective"`
	Ratio     float64       `json:"ratio"`
	Severity  string        `json:"severity"`
	Fired     []bool        `json:"fired"`
	Gate      Gate          `json:"gate"`
}

// Distraction escalates continuous entertainment episodes. It keeps no timer
// of its own; the episode length comes from the session tracker on every
// tick.
type Distraction struct {
	cfg DistractionConfig

	inEpisode bool
	fired     []bool
	// ackOffset is the episode duration at the last Continue; escalation is
	// measured from there.
	ackOffset time.Duration
	gate      Gate
}

// NewDistraction creates an escalator outside of any episode.
func NewDistraction(cfg DistractionConfig) (*Distraction, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Distraction{
		cfg:   cfg,
		fired: make([]bool, len(cfg.Boundaries)),
	}, nil
}

// Observe feeds one tick. episode is the tracker's current-status duration.
func (d *Distraction) Observe(status activity.Status, episode time.Duration, now time.Time) (reminder.Event, bool) {
	if status != activity.Entertainment {
		if d.inEpisode {
			d.endEpisode()
		}
		return reminder.Event{}, false
	}
	if !d.inEpisode {
		// A disable issued outside an episode does not carry into this one.
		d.gate.Disabled = false
		d.inEpisode = true
	}

	if !d.gate.Open(now) {
		return reminder.Event{}, false
	}

	effective := d.effective(episode)
	tier := -1
	for i := len(d.cfg.Boundaries) - 1; i >= 0; i-- {
		if effective >= d.cfg.Boundaries[i] {
			if !d.fired[i] {
				tier = i
			}
			break
		}
	}
	if tier < 0 {
		return reminder.Event{}, false
	}
	for i := 0; i <= tier; i++ {
		d.fired[i] = true
	}

	ratio := d.ratio(effective)
	return reminder.Event{
		Kind:     reminder.KindDistraction,
		Severity: SeverityForRatio(ratio),
		Tier:     tier + 1,
		Duration: effective,
		Message: fmt.Sprintf("You have been on entertainment for %s (limit %s).",
			formatSpan(effective), formatSpan(d.cfg.Threshold)),
		FiredAt: now,
	}, true
}

func (d *Distraction) endEpisode() {
	d.inEpisode = false
	d.ackOffset = 0
	for i := range d.fired {
		d.fired[i] = false
	}
	d.gate.Disabled = false
}

func (d *Distraction) effective(episode time.Duration) time.Duration {
	if e := episode - d.ackOffset; e > 0 {
		return e
	}
	return 0
}

func (d *Distraction) ratio(effective time.Duration) float64 {
	return float64(effective) / float64(d.cfg.Threshold)
}

// Continue acknowledges the episode: tier flags are cleared, snooze and
// disable are lifted, and escalation restarts from the current duration.
func (d *Distraction) Continue(episode time.Duration) {
	for i := range d.fired {
		d.fired[i] = false
	}
	if d.inEpisode {
		d.ackOffset = episode
	}
	d.gate.Enable()
}

// Snooze suppresses reminders for minutes. Tier flags are kept, so only
// boundaries not yet fired can fire after the snooze.
func (d *Distraction) Snooze(minutes int, now time.Time) error {
	return d.gate.Snooze(minutes, now)
}

// Disable suppresses reminders until the status leaves entertainment. It is
// a no-op outside an episode.
func (d *Distraction) Disable() {
	if !d.inEpisode {
		return
	}
	d.gate.Disable()
}

// Reconfigure swaps thresholds, keeping fired flags for surviving tiers.
func (d *Distraction) Reconfigure(cfg DistractionConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	fired := make([]bool, len(cfg.Boundaries))
	copy(fired, d.fired)
	d.cfg = cfg
	d.fired = fired
	return nil
}

// Snapshot returns a copy of the escalator state for the given episode
// duration.
func (d *Distraction) Snapshot(episode time.Duration) DistractionSnapshot {
	fired := make([]bool, len(d.fired))
	copy(fired, d.fired)
	snap := DistractionSnapshot{
		InEpisode: d.inEpisode,
		Fired:     fired,
		Gate:      d.gate,
	}
	if d.inEpisode {
		snap.Effective = d.effective(episode)
		snap.Ratio = d.ratio(snap.Effective)
		snap.Severity = SeverityForRatio(snap.Ratio).String()
	}
	return snap
}
