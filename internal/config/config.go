package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/blackwell-systems/focuswatch/internal/activity"
	"github.com/blackwell-systems/focuswatch/internal/escalation"
	"github.com/blackwell-systems/focuswatch/internal/reminder"
)

// Config is the top-level focuswatch configuration.
type Config struct {
	TickInterval         time.Duration `mapstructure:"tick_interval"`
	SampleTimeout        time.Duration `mapstructure:"sample_timeout"`
	StaleAfter           time.Duration `mapstructure:"stale_after"`
	HistorySize          int           `mapstructure:"history_size"`
	DispatchBuffer       int           `mapstructure:"dispatch_buffer"`
	ScreenThreshold      float64       `mapstructure:"screen_threshold"`
	CameraThreshold      float64       `mapstructure:"camera_threshold"`
	CameraEnabled        bool          `mapstructure:"camera_enabled"`
	IdleThresholdSeconds int           `mapstructure:"idle_threshold_seconds"`
	Fatigue              Fatigue       `mapstructure:"fatigue"`
	Distraction          Distraction   `mapstructure:"distraction"`
	Notify               Notify        `mapstructure:"notify"`
	Log                  Log           `mapstructure:"log"`
	Metrics              Metrics       `mapstructure:"metrics"`
	Output               Output        `mapstructure:"output"`
}

// Fatigue configures the fatigue timer.
type Fatigue struct {
	TierHours               []float64 `mapstructure:"tier_hours"`
	ReminderIntervalSeconds int       `mapstructure:"reminder_interval_seconds"`
	SnoozeMinutes           int       `mapstructure:"snooze_minutes"`
}

// Distraction configures the distraction escalator.
type Distraction struct {
	Profile          string       `mapstructure:"profile"`
	ThresholdMinutes float64      `mapstructure:"threshold_minutes"`
	TierRatios       []float64    `mapstructure:"tier_ratios"`
	SnoozeMinutes    int          `mapstructure:"snooze_minutes"`
	Debug            DebugProfile `mapstructure:"debug"`
}

// DebugProfile holds the short thresholds used for manual testing.
type DebugProfile struct {
	ThresholdSeconds int   `mapstructure:"threshold_seconds"`
	TierSeconds      []int `mapstructure:"tier_seconds"`
}

// Notify selects the reminder channels.
type Notify struct {
	Desktop  bool `mapstructure:"desktop"`
	Terminal bool `mapstructure:"terminal"`
}

// Log defines logging preferences.
type Log struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Metrics defines the textfile export.
type Metrics struct {
	Textfile      string        `mapstructure:"textfile"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func newViper(cfgFile string) *viper.Viper {
	v := viper.New()

	v.SetDefault("tick_interval", DefaultTickInterval)
	v.SetDefault("sample_timeout", DefaultSampleTimeout)
	v.SetDefault("stale_after", DefaultStaleAfter)
	v.SetDefault("history_size", DefaultHistorySize)
	v.SetDefault("dispatch_buffer", DefaultDispatchBuffer)
	v.SetDefault("screen_threshold", DefaultChangeThreshold)
	v.SetDefault("camera_threshold", DefaultChangeThreshold)
	v.SetDefault("camera_enabled", false)
	v.SetDefault("idle_threshold_seconds", DefaultIdleThresholdSeconds)
	v.SetDefault("fatigue.tier_hours", DefaultFatigue.TierHours)
	v.SetDefault("fatigue.reminder_interval_seconds", DefaultFatigue.ReminderIntervalSeconds)
	v.SetDefault("fatigue.snooze_minutes", DefaultFatigue.SnoozeMinutes)
	v.SetDefault("distraction.profile", DefaultDistraction.Profile)
	v.SetDefault("distraction.threshold_minutes", DefaultDistraction.ThresholdMinutes)
	v.SetDefault("distraction.tier_ratios", DefaultDistraction.TierRatios)
	v.SetDefault("distraction.snooze_minutes", DefaultDistraction.SnoozeMinutes)
	v.SetDefault("distraction.debug.threshold_seconds", DefaultDistraction.Debug.ThresholdSeconds)
	v.SetDefault("distraction.debug.tier_seconds", DefaultDistraction.Debug.TierSeconds)
	v.SetDefault("notify.desktop", DefaultNotify.Desktop)
	v.SetDefault("notify.terminal", DefaultNotify.Terminal)
	v.SetDefault("log.level", DefaultLog.Level)
	v.SetDefault("log.file", DefaultLog.File)
	v.SetDefault("metrics.textfile", DefaultMetrics.Textfile)
	v.SetDefault("metrics.flush_interval", DefaultMetrics.FlushInterval)
	v.SetDefault("output.color", DefaultOutput.Color)

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	return v
}

// readIn reads the config file if it exists; a missing file is not an error.
// found reports whether a file was read.
func readIn(v *viper.Viper) (found bool, err error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.Metrics.Textfile = expandPath(cfg.Metrics.Textfile)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads configuration from the given path (or the default location)
// and returns a validated Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := newViper(cfgFile)
	if _, err := readIn(v); err != nil {
		return nil, err
	}
	return decode(v)
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := decode(newViper(""))
	if err != nil {
		panic(fmt.Sprintf("config: built-in defaults invalid: %v", err))
	}
	return cfg
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval))
	}
	if c.SampleTimeout <= 0 {
		errs = append(errs, fmt.Errorf("sample_timeout must be positive, got %s", c.SampleTimeout))
	}
	if c.StaleAfter < 0 {
		errs = append(errs, fmt.Errorf("stale_after must not be negative, got %s", c.StaleAfter))
	}
	if c.HistorySize <= 0 {
		errs = append(errs, fmt.Errorf("history_size must be positive, got %d", c.HistorySize))
	}
	if c.DispatchBuffer <= 0 {
		errs = append(errs, fmt.Errorf("dispatch_buffer must be positive, got %d", c.DispatchBuffer))
	}
	if c.ScreenThreshold < 0 || c.ScreenThreshold > 1 {
		errs = append(errs, fmt.Errorf("screen_threshold must be in [0,1], got %v", c.ScreenThreshold))
	}
	if c.CameraThreshold < 0 || c.CameraThreshold > 1 {
		errs = append(errs, fmt.Errorf("camera_threshold must be in [0,1], got %v", c.CameraThreshold))
	}
	if c.Fatigue.SnoozeMinutes < 0 || c.Distraction.SnoozeMinutes < 0 {
		errs = append(errs, errors.New("snooze_minutes must not be negative"))
	}
	if c.Metrics.FlushInterval <= 0 {
		errs = append(errs, fmt.Errorf("metrics.flush_interval must be positive, got %s", c.Metrics.FlushInterval))
	}
	if err := c.FatigueConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	switch c.Distraction.Profile {
	case ProfileProduction, ProfileDebug:
		if err := c.DistractionConfig().Validate(); err != nil {
			errs = append(errs, err)
		}
	default:
		errs = append(errs, fmt.Errorf("distraction.profile must be %q or %q, got %q",
			ProfileProduction, ProfileDebug, c.Distraction.Profile))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ClassifierConfig returns the classifier thresholds.
func (c *Config) ClassifierConfig() activity.ClassifierConfig {
	return activity.ClassifierConfig{
		ScreenThreshold: c.ScreenThreshold,
		CameraThreshold: c.CameraThreshold,
	}
}

// FatigueConfig converts the fatigue section to engine units.
func (c *Config) FatigueConfig() escalation.FatigueConfig {
	tiers := make([]time.Duration, len(c.Fatigue.TierHours))
	for i, h := range c.Fatigue.TierHours {
		tiers[i] = time.Duration(h * float64(time.Hour))
	}
	return escalation.FatigueConfig{
		Tiers:            tiers,
		ReminderInterval: time.Duration(c.Fatigue.ReminderIntervalSeconds) * time.Second,
		IdleThreshold:    time.Duration(c.IdleThresholdSeconds) * time.Second,
	}
}

// DistractionConfig converts the active distraction profile to engine units.
func (c *Config) DistractionConfig() escalation.DistractionConfig {
	if c.Distraction.Profile == ProfileDebug {
		bounds := make([]time.Duration, len(c.Distraction.Debug.TierSeconds))
		for i, s := range c.Distraction.Debug.TierSeconds {
			bounds[i] = time.Duration(s) * time.Second
		}
		return escalation.DistractionConfig{
			Threshold:  time.Duration(c.Distraction.Debug.ThresholdSeconds) * time.Second,
			Boundaries: bounds,
		}
	}
	threshold := time.Duration(c.Distraction.ThresholdMinutes * float64(time.Minute))
	return escalation.DistractionConfig{
		Threshold:  threshold,
		Boundaries: escalation.BoundariesFromRatios(threshold, c.Distraction.TierRatios),
	}
}

// SnoozeMinutes returns the default snooze length for a reminder kind.
func (c *Config) SnoozeMinutes(kind reminder.Kind) int {
	if kind == reminder.KindFatigue {
		return c.Fatigue.SnoozeMinutes
	}
	return c.Distraction.SnoozeMinutes
}

// DBPath returns the full path to the SQLite database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
