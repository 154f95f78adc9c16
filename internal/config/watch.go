package config

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watch reloads the config file whenever it changes and passes every valid
// result to apply. Invalid edits are logged and ignored. Watch returns when
// ctx is done, or immediately when there is no config file to watch.
func Watch(ctx context.Context, cfgFile string, logger zerolog.Logger, apply func(*Config)) error {
	v := newViper(cfgFile)
	found, err := readIn(v)
	if err != nil {
		return err
	}
	if !found {
		logger.Debug().Msg("no config file; hot reload disabled")
		return nil
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		if err != nil {
			logger.Warn().Err(err).Str("path", e.Name).Msg("ignoring invalid config change")
			return
		}
		logger.Info().Str("path", e.Name).Msg("config reloaded")
		apply(cfg)
	})
	v.WatchConfig()
	logger.Debug().Str("path", v.ConfigFileUsed()).Msg("watching config")

	<-ctx.Done()
	return nil
}

// Describe renders the effective engine thresholds for log lines.
func (c *Config) Describe() string {
	f := c.FatigueConfig()
	d := c.DistractionConfig()
	return fmt.Sprintf("tick=%s fatigue=%v/%s distraction[%s]=%s %v",
		c.TickInterval, f.Tiers, f.ReminderInterval, c.Distraction.Profile, d.Threshold, d.Boundaries)
}
