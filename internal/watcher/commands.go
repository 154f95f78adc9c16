package watcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/blackwell-systems/focuswatch/internal/config"
	"github.com/blackwell-systems/focuswatch/internal/escalation"
	"github.com/blackwell-systems/focuswatch/internal/reminder"
)

var (
	// ErrStopped is returned by control calls once Run has exited.
	ErrStopped = errors.New("watcher stopped")
	// ErrUnknownKind is returned for a reminder kind other than fatigue or
	// distraction.
	ErrUnknownKind = errors.New("unknown reminder kind")
)

// command is a control request executed on the polling goroutine.
type command struct {
	name     string
	apply    func(*EngineState) error
	response *reminder.Response
	reply    chan error
}

func checkKind(kind reminder.Kind) error {
	switch kind {
	case reminder.KindFatigue, reminder.KindDistraction:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Continue acknowledges reminders of kind: fired tiers are cleared and any
// snooze or disable is lifted.
func (w *Watcher) Continue(ctx context.Context, kind reminder.Kind) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	return w.submit(ctx, command{
		name: "continue",
		apply: func(e *EngineState) error {
			e.continueKind(kind)
			return nil
		},
		response: &reminder.Response{Kind: kind, Action: reminder.ActionContinue},
	})
}

// Snooze suppresses reminders of kind for minutes. Zero selects the
// configured default for the kind; negative values are rejected.
func (w *Watcher) Snooze(ctx context.Context, kind reminder.Kind, minutes int) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	if minutes < 0 {
		return fmt.Errorf("%w: %d minutes", escalation.ErrInvalidSnooze, minutes)
	}
	resp := &reminder.Response{Kind: kind, Action: reminder.ActionSnooze}
	return w.submit(ctx, command{
		name: "snooze",
		apply: func(e *EngineState) error {
			m := minutes
			if m == 0 {
				m = e.cfg.SnoozeMinutes(kind)
			}
			resp.Minutes = m
			return e.snooze(kind, m)
		},
		response: resp,
	})
}

// Disable silences reminders of kind. Fatigue stays silent until the next
// work session starts, distraction until the current episode ends.
func (w *Watcher) Disable(ctx context.Context, kind reminder.Kind) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	return w.submit(ctx, command{
		name: "disable",
		apply: func(e *EngineState) error {
			e.disable(kind)
			return nil
		},
		response: &reminder.Response{Kind: kind, Action: reminder.ActionDisable},
	})
}

// EndWorkSession hard-resets the fatigue timer.
func (w *Watcher) EndWorkSession(ctx context.Context) error {
	return w.submit(ctx, command{
		name: "end_session",
		apply: func(e *EngineState) error {
			banked := e.endWorkSession()
			w.log.Info().Dur("banked", banked).Msg("work session ended")
			return nil
		},
		response: &reminder.Response{Kind: reminder.KindFatigue, Action: reminder.ActionEndSession},
	})
}

// Reconfigure swaps thresholds without resetting timers or history.
func (w *Watcher) Reconfigure(ctx context.Context, cfg *config.Config) error {
	if cfg == nil {
		return errors.New("reconfigure: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return w.submit(ctx, command{
		name: "reconfigure",
		apply: func(e *EngineState) error {
			return e.reconfigure(cfg)
		},
	})
}

// submit queues cmd for the polling goroutine and waits for its result.
func (w *Watcher) submit(ctx context.Context, cmd command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-w.done:
		return ErrStopped
	default:
	}

	cmd.reply = make(chan error, 1)
	select {
	case w.cmds <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-w.done:
		return ErrStopped
	}

	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-w.done:
		// The command may have run just before the loop exited.
		select {
		case err := <-cmd.reply:
			return err
		default:
			return ErrStopped
		}
	}
}

// apply runs one command on the polling goroutine.
func (w *Watcher) apply(cmd command) {
	err := w.run(cmd)
	w.metrics.Command(cmd.name, err)
	if err != nil {
		w.log.Warn().Err(err).Str("command", cmd.name).Msg("command rejected")
	} else {
		w.log.Debug().Str("command", cmd.name).Msg("command applied")
		if cmd.response != nil {
			resp := *cmd.response
			resp.At = w.clock.Now()
			w.responses.Dispatch(resp)
		}
	}
	w.publish()
	cmd.reply <- err
}

func (w *Watcher) run(cmd command) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s: panic: %v", cmd.name, p)
		}
	}()
	return cmd.apply(w.engine)
}

// drain applies every queued command without blocking.
func (w *Watcher) drain() {
	for {
		select {
		case cmd := <-w.cmds:
			w.apply(cmd)
		default:
			return
		}
	}
}
