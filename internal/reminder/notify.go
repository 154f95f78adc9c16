package reminder

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// DefaultNotifyTimeout bounds one notification command.
const DefaultNotifyTimeout = 5 * time.Second

// Notifier delivers reminders as desktop notifications. On macOS it uses
// osascript, on Linux it tries notify-send. If neither is available, it falls
// back to writing to Fallback (stderr by default).
type Notifier struct {
	AppName  string
	Fallback io.Writer
	// Timeout bounds the notification command; a hung command is killed
	// and the reminder goes to Fallback.
	Timeout time.Duration
	goos    string
}

// NewNotifier creates a Notifier for the running platform.
func NewNotifier(appName string) *Notifier {
	return &Notifier{AppName: appName, Fallback: os.Stderr, Timeout: DefaultNotifyTimeout, goos: runtime.GOOS}
}

// Dispatch implements Sink.
func (n *Notifier) Dispatch(ev Event) error {
	switch n.goos {
	case "darwin":
		return n.notifyMacOS(ev)
	case "linux":
		return n.notifyLinux(ev)
	default:
		return n.notifyFallback(ev)
	}
}

// notifyMacOS sends a notification via osascript on macOS.
func (n *Notifier) notifyMacOS(ev Event) error {
	script := fmt.Sprintf(
		`display notification %q with title %q subtitle %q`,
		body(ev), n.AppName, ev.Title(),
	)
	if err := n.run("osascript", "-e", script); err != nil {
		return n.notifyFallback(ev)
	}
	return nil
}

// notifyLinux sends a notification via notify-send on Linux.
func (n *Notifier) notifyLinux(ev Event) error {
	if _, err := exec.LookPath("notify-send"); err != nil {
		return n.notifyFallback(ev)
	}

	title := fmt.Sprintf("%s: %s", n.AppName, ev.Title())
	if err := n.run("notify-send", "--urgency", urgency(ev.Severity), title, body(ev)); err != nil {
		return n.notifyFallback(ev)
	}
	return nil
}

func (n *Notifier) run(name string, args ...string) error {
	timeout := n.Timeout
	if timeout <= 0 {
		timeout = DefaultNotifyTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = time.Second
	return cmd.Run()
}

// notifyFallback prints the reminder when no desktop notification system is
// available.
func (n *Notifier) notifyFallback(ev Event) error {
	w := n.Fallback
	if w == nil {
		w = os.Stderr
	}
	_, err := fmt.Fprintf(w, "[%s] %s: %s\n", ev.Severity, ev.Title(), ev.Message)
	return err
}

// body joins the message with the top suggestion, if any.
func body(ev Event) string {
	if len(ev.Suggestions) == 0 {
		return ev.Message
	}
	return strings.TrimSpace(ev.Message) + " " + ev.Suggestions[0]
}

func urgency(s Severity) string {
	switch s {
	case SeverityHigh:
		return "critical"
	case SeverityMedium:
		return "normal"
	default:
		return "low"
	}
}
