package watcher

import (
	"time"

	"github.com/blackwell-systems/focuswatch/internal/activity"
	"github.com/blackwell-systems/focuswatch/internal/escalation"
	"github.com/blackwell-systems/focuswatch/internal/session"
)

// Snapshot is a read-only copy of the engine state, published after every
// tick and command. Readers must not modify it.
type Snapshot struct {
	At             time.Time                      `json:"at"`
	Status         activity.Status                `json:"status"`
	StatusSince    time.Time                      `json:"status_since"`
	StatusDuration time.Duration                  `json:"status_duration"`
	History        []session.Entry                `json:"history"`
	Fatigue        escalation.FatigueSnapshot     `json:"fatigue"`
	Distraction    escalation.DistractionSnapshot `json:"distraction"`
	Source         string                         `json:"source"`
	Ticks          uint64                         `json:"ticks"`
	LastError      string                         `json:"last_error,omitempty"`
}

// StatusMinutes is the current status duration in minutes.
func (s *Snapshot) StatusMinutes() float64 {
	return s.StatusDuration.Minutes()
}
