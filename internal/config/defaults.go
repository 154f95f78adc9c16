// Package config provides configuration loading, validation and defaults for
// focuswatch.
package config

import "time"

// DefaultConfigDir is the default location for focuswatch configuration.
const DefaultConfigDir = "~/.config/focuswatch"

// DefaultDBName is the filename for the SQLite event log.
const DefaultDBName = "focuswatch.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// Profile names for the distraction thresholds.
const (
	ProfileProduction = "production"
	ProfileDebug      = "debug"
)

// Engine defaults.
const (
	DefaultTickInterval         = time.Second
	DefaultSampleTimeout        = 500 * time.Millisecond
	DefaultStaleAfter           = 5 * time.Second
	DefaultHistorySize          = 10
	DefaultDispatchBuffer       = 32
	DefaultChangeThreshold      = 0.01
	DefaultIdleThresholdSeconds = 300
)

// DefaultFatigue holds the default fatigue timer settings.
var DefaultFatigue = Fatigue{
	TierHours:               []float64{5, 6, 7},
	ReminderIntervalSeconds: 3600,
	SnoozeMinutes:           30,
}

// DefaultDistraction holds the default distraction escalator settings.
var DefaultDistraction = Distraction{
	Profile:          ProfileProduction,
	ThresholdMinutes: 30,
	TierRatios:       []float64{0.5, 1.0, 1.5},
	SnoozeMinutes:    5,
	Debug: DebugProfile{
		ThresholdSeconds: 10,
		TierSeconds:      []int{3, 10, 20},
	},
}

// DefaultNotify holds the default notification channels.
var DefaultNotify = Notify{
	Desktop:  true,
	Terminal: true,
}

// DefaultLog holds the default logging settings.
var DefaultLog = Log{
	Level: "info",
}

// DefaultMetrics holds the default metrics export settings.
var DefaultMetrics = Metrics{
	FlushInterval: 15 * time.Second,
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
}
