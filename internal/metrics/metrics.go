// Package metrics provides Prometheus metrics for the focuswatch engine.
// Metrics live on a private registry and are exported by writing a
// node-exporter textfile; there is no HTTP surface.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/focuswatch/internal/activity"
)

// DefaultFlushInterval is how often the textfile is rewritten.
const DefaultFlushInterval = 15 * time.Second

// Metrics holds the engine's collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	reg *prometheus.Registry

	// Counters

	Ticks          prometheus.Counter
	TickErrors     *prometheus.CounterVec
	SignalFailures *prometheus.CounterVec
	Reminders      *prometheus.CounterVec
	Drops          *prometheus.CounterVec
	Commands       *prometheus.CounterVec

	// Gauges

	Status *prometheus.GaugeVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		Ticks: f.NewCounter(prometheus.CounterOpts{
			Name: "focuswatch_ticks_total",
			Help: "Total number of polling ticks executed.",
		}),
		TickErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "focuswatch_tick_errors_total",
			Help: "Total number of per-tick failures, by stage.",
		}, []string{"stage"}),
		SignalFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "focuswatch_signal_failures_total",
			Help: "Total number of analyzer reads that failed or timed out, by analyzer.",
		}, []string{"analyzer"}),
		Reminders: f.NewCounterVec(prometheus.CounterOpts{
			Name: "focuswatch_reminders_total",
			Help: "Total number of reminders fired, by kind and severity.",
		}, []string{"kind", "severity"}),
		Drops: f.NewCounterVec(prometheus.CounterOpts{
			Name: "focuswatch_dispatch_dropped_total",
			Help: "Total number of events dropped on a full dispatch queue, by dispatcher.",
		}, []string{"dispatcher"}),
		Commands: f.NewCounterVec(prometheus.CounterOpts{
			Name: "focuswatch_commands_total",
			Help: "Total number of control commands, by command and result.",
		}, []string{"command", "result"}),
		Status: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "focuswatch_status",
			Help: "Current activity status (1 for the active status, 0 otherwise).",
		}, []string{"status"}),
	}
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// Tick counts one polling tick.
func (m *Metrics) Tick() {
	if m == nil {
		return
	}
	m.Ticks.Inc()
}

// TickError counts a failed tick stage ("acquire", "classify", "panic").
func (m *Metrics) TickError(stage string) {
	if m == nil {
		return
	}
	m.TickErrors.WithLabelValues(stage).Inc()
}

// SignalFailure counts a failed analyzer read.
func (m *Metrics) SignalFailure(analyzer string) {
	if m == nil {
		return
	}
	m.SignalFailures.WithLabelValues(analyzer).Inc()
}

// Reminder counts a fired reminder.
func (m *Metrics) Reminder(kind, severity string) {
	if m == nil {
		return
	}
	m.Reminders.WithLabelValues(kind, severity).Inc()
}

// Dropped counts an event dropped by the named dispatcher.
func (m *Metrics) Dropped(dispatcher string) {
	if m == nil {
		return
	}
	m.Drops.WithLabelValues(dispatcher).Inc()
}

// Command counts a control command. err == nil counts as "ok".
func (m *Metrics) Command(name string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Commands.WithLabelValues(name, result).Inc()
}

// SetStatus marks s as the only active status.
func (m *Metrics) SetStatus(s activity.Status) {
	if m == nil {
		return
	}
	for _, st := range activity.AllStatuses {
		v := 0.0
		if st == s {
			v = 1
		}
		m.Status.WithLabelValues(st.String()).Set(v)
	}
}

// WriteTextfile atomically writes the registry in text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

// Flush rewrites the textfile every interval until ctx is done, then once
// more so the final counts are kept.
func (m *Metrics) Flush(ctx context.Context, path string, interval time.Duration, logger zerolog.Logger) error {
	if m == nil || path == "" {
		return nil
	}
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return m.WriteTextfile(path)
		case <-ticker.C:
			if err := m.WriteTextfile(path); err != nil {
				logger.Warn().Err(err).Str("path", path).Msg("metrics flush failed")
			}
		}
	}
}
