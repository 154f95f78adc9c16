package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/blackwell-systems/focuswatch/internal/reminder"
	"github.com/blackwell-systems/focuswatch/internal/session"
	"github.com/blackwell-systems/focuswatch/internal/store"
	"github.com/blackwell-systems/focuswatch/internal/watcher"
)

// Controller is the slice of the watcher the bridge drives.
type Controller interface {
	Snapshot() *watcher.Snapshot
	Continue(ctx context.Context, kind reminder.Kind) error
	Snooze(ctx context.Context, kind reminder.Kind, minutes int) error
	Disable(ctx context.Context, kind reminder.Kind) error
	EndWorkSession(ctx context.Context) error
}

// HistoryReader is the slice of the event log the bridge queries.
type HistoryReader interface {
	ListReminders(f store.Filter) ([]store.ReminderRecord, error)
}

// ActivityStatusResult is the current engine state.
type ActivityStatusResult struct {
	Status            string  `json:"status"`
	StatusMinutes     float64 `json:"status_minutes"`
	WorkState         string  `json:"work_state"`
	WorkMinutes       float64 `json:"work_minutes"`
	FatigueSnoozed    bool    `json:"fatigue_snoozed"`
	FatigueDisabled   bool    `json:"fatigue_disabled"`
	InEntertainment   bool    `json:"in_entertainment"`
	EntertainmentMins float64 `json:"entertainment_minutes"`
	DistractionRatio  float64 `json:"distraction_ratio"`
	DistractionLevel  string  `json:"distraction_severity,omitempty"`
	Source            string  `json:"source"`
	LastError         string  `json:"last_error,omitempty"`
	At                string  `json:"at"`
}

// SessionHistoryResult lists completed status episodes, oldest first.
type SessionHistoryResult struct {
	Episodes []session.Entry `json:"episodes"`
}

// ReminderLogResult lists logged reminders, newest first.
type ReminderLogResult struct {
	Reminders []store.ReminderRecord `json:"reminders"`
}

// CommandResult acknowledges a control command.
type CommandResult struct {
	OK      bool   `json:"ok"`
	Action  string `json:"action"`
	Kind    string `json:"kind,omitempty"`
	Minutes int    `json:"minutes,omitempty"`
}

var (
	noArgsSchema   = json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`)
	kindSchema     = json.RawMessage(`{"type":"object","properties":{"kind":{"type":"string","enum":["fatigue","distraction"]}},"required":["kind"],"additionalProperties":false}`)
	snoozeSchema   = json.RawMessage(`{"type":"object","properties":{"kind":{"type":"string","enum":["fatigue","distraction"]},"minutes":{"type":"integer","minimum":0,"description":"Snooze length in minutes (0 or omitted uses the configured default)"}},"required":["kind"],"additionalProperties":false}`)
	historySchema  = json.RawMessage(`{"type":"object","properties":{"n":{"type":"integer","description":"Number of episodes to return (default all retained)"}},"additionalProperties":false}`)
	reminderSchema = json.RawMessage(`{"type":"object","properties":{"kind":{"type":"string","enum":["fatigue","distraction"]},"hours":{"type":"integer","description":"Look-back window in hours (default 24)"},"n":{"type":"integer","description":"Maximum rows (default 20)"}},"additionalProperties":false}`)
)

// addTools registers the MCP tool handlers on s.
func addTools(s *Server) {
	s.registerTool(toolDef{
		Name:        "get_activity_status",
		Description: "Current activity status, continuous work time and entertainment episode.",
		InputSchema: noArgsSchema,
		Handler:     s.handleGetActivityStatus,
	})
	s.registerTool(toolDef{
		Name:        "get_session_history",
		Description: "Recently completed activity episodes with their durations.",
		InputSchema: historySchema,
		Handler:     s.handleGetSessionHistory,
	})
	s.registerTool(toolDef{
		Name:        "continue_reminder",
		Description: "Acknowledge reminders of a kind and keep going; escalation restarts.",
		InputSchema: kindSchema,
		Handler:     s.handleContinue,
	})
	s.registerTool(toolDef{
		Name:        "snooze_reminder",
		Description: "Silence reminders of a kind for a number of minutes.",
		InputSchema: snoozeSchema,
		Handler:     s.handleSnooze,
	})
	s.registerTool(toolDef{
		Name:        "disable_reminder",
		Description: "Silence reminders of a kind for the rest of the current session or episode.",
		InputSchema: kindSchema,
		Handler:     s.handleDisable,
	})
	s.registerTool(toolDef{
		Name:        "end_work_session",
		Description: "End the current work session and reset the fatigue timer.",
		InputSchema: noArgsSchema,
		Handler:     s.handleEndWorkSession,
	})
	if s.history != nil {
		s.registerTool(toolDef{
			Name:        "get_reminder_log",
			Description: "Reminders logged in the last hours, newest first.",
			InputSchema: reminderSchema,
			Handler:     s.handleGetReminderLog,
		})
	}
}

func (s *Server) handleGetActivityStatus(_ context.Context, _ json.RawMessage) (any, error) {
	snap := s.ctrl.Snapshot()
	f, d := snap.Fatigue, snap.Distraction
	return ActivityStatusResult{
		Status:            snap.Status.String(),
		StatusMinutes:     snap.StatusMinutes(),
		WorkState:         f.State.String(),
		WorkMinutes:       f.Duration.Minutes(),
		FatigueSnoozed:    f.Gate.Snoozed(snap.At),
		FatigueDisabled:   f.Gate.Disabled,
		InEntertainment:   d.InEpisode,
		EntertainmentMins: d.Effective.Minutes(),
		DistractionRatio:  d.Ratio,
		DistractionLevel:  d.Severity,
		Source:            snap.Source,
		LastError:         snap.LastError,
		At:                snap.At.Format(time.RFC3339),
	}, nil
}

func (s *Server) handleGetSessionHistory(_ context.Context, args json.RawMessage) (any, error) {
	var params struct {
		N *int `json:"n"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	episodes := s.ctrl.Snapshot().History
	if params.N != nil && *params.N >= 0 && *params.N < len(episodes) {
		episodes = episodes[len(episodes)-*params.N:]
	}
	if episodes == nil {
		episodes = []session.Entry{}
	}
	return SessionHistoryResult{Episodes: episodes}, nil
}

type kindArgs struct {
	Kind    string `json:"kind"`
	Minutes int    `json:"minutes"`
}

func parseKindArgs(args json.RawMessage) (kindArgs, reminder.Kind, error) {
	var params kindArgs
	if err := json.Unmarshal(args, &params); err != nil {
		return params, "", fmt.Errorf("invalid arguments: %w", err)
	}
	kind, err := reminder.ParseKind(params.Kind)
	return params, kind, err
}

func (s *Server) handleContinue(ctx context.Context, args json.RawMessage) (any, error) {
	_, kind, err := parseKindArgs(args)
	if err != nil {
		return nil, err
	}
	if err := s.ctrl.Continue(ctx, kind); err != nil {
		return nil, err
	}
	return CommandResult{OK: true, Action: string(reminder.ActionContinue), Kind: string(kind)}, nil
}

func (s *Server) handleSnooze(ctx context.Context, args json.RawMessage) (any, error) {
	params, kind, err := parseKindArgs(args)
	if err != nil {
		return nil, err
	}
	if err := s.ctrl.Snooze(ctx, kind, params.Minutes); err != nil {
		return nil, err
	}
	return CommandResult{OK: true, Action: string(reminder.ActionSnooze), Kind: string(kind), Minutes: params.Minutes}, nil
}

func (s *Server) handleDisable(ctx context.Context, args json.RawMessage) (any, error) {
	_, kind, err := parseKindArgs(args)
	if err != nil {
		return nil, err
	}
	if err := s.ctrl.Disable(ctx, kind); err != nil {
		return nil, err
	}
	return CommandResult{OK: true, Action: string(reminder.ActionDisable), Kind: string(kind)}, nil
}

func (s *Server) handleEndWorkSession(ctx context.Context, _ json.RawMessage) (any, error) {
	if err := s.ctrl.EndWorkSession(ctx); err != nil {
		return nil, err
	}
	return CommandResult{OK: true, Action: string(reminder.ActionEndSession)}, nil
}

func (s *Server) handleGetReminderLog(_ context.Context, args json.RawMessage) (any, error) {
	var params struct {
		Kind  string `json:"kind"`
		Hours *int   `json:"hours"`
		N     *int   `json:"n"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if params.Kind != "" {
		if _, err := reminder.ParseKind(params.Kind); err != nil {
			return nil, err
		}
	}
	hours, n := 24, 20
	if params.Hours != nil && *params.Hours > 0 {
		hours = *params.Hours
	}
	if params.N != nil && *params.N > 0 {
		n = *params.N
	}

	since := s.ctrl.Snapshot().At.Add(-time.Duration(hours) * time.Hour)
	records, err := s.history.ListReminders(store.Filter{Since: since, Kind: params.Kind, Limit: n})
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []store.ReminderRecord{}
	}
	return ReminderLogResult{Reminders: records}, nil
}
