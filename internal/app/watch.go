package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/focuswatch/internal/config"
	"github.com/blackwell-systems/focuswatch/internal/log"
	"github.com/blackwell-systems/focuswatch/internal/output"
	"github.com/blackwell-systems/focuswatch/internal/reminder"
	"github.com/blackwell-systems/focuswatch/internal/session"
)

var (
	watchDaemon   bool
	watchStop     bool
	watchQuiet    bool
	watchSamples  string
	watchNoFollow bool
	watchNoStore  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the engine against a sample feed",
	Long: `Run the polling engine. Every tick it reads the latest screen and camera
readings from the sample feed, classifies the activity, advances the fatigue
timer and the distraction escalator, and emits reminders as desktop
notifications and terminal lines. Reminders and status episodes are logged to
the event database.

The feed is newline-delimited JSON, one frame per line:

  {"screen":{"change_rate":0.04,"complex":true},"camera":{"change_rate":0.0},"keys":3,"clicks":1}

Examples:
  capture | focuswatch watch --samples -        # read frames from stdin
  focuswatch watch --samples /tmp/frames.jsonl  # tail a file written by the capture process
  focuswatch watch --samples f.jsonl --daemon   # run in background, write PID file
  focuswatch watch --stop                       # stop the background daemon`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "Run in background mode (write PID file, log to file)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "Stop a running background daemon")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Suppress terminal output, only send notifications")
	watchCmd.Flags().StringVar(&watchSamples, "samples", "-", "Sample feed path, or - for stdin")
	watchCmd.Flags().BoolVar(&watchNoFollow, "no-follow", false, "Stop at the end of a file feed instead of waiting for more frames")
	watchCmd.Flags().BoolVar(&watchNoStore, "no-store", false, "Do not log reminders and episodes to the event database")
	rootCmd.AddCommand(watchCmd)
}

// pidFilePath returns the path to the daemon PID file.
func pidFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.pid")
}

// logFilePath returns the daemon log file, honouring log.file.
func logFilePath(cfg *config.Config) string {
	if cfg.Log.File != "" {
		return cfg.Log.File
	}
	return filepath.Join(config.ConfigDir(), "watch.log")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchStop {
		return stopDaemon()
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if !cfg.Output.Color {
		output.SetNoColor(true)
	}

	if watchDaemon {
		return runDaemon(cfg)
	}
	return runForeground(cfg)
}

// dbPath is the event log location, or empty when logging is off.
func dbPath() string {
	if watchNoStore {
		return ""
	}
	return config.DBPath()
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), shutdownSignals...)
}

// reminderSinks returns the notification channels enabled in cfg.
func reminderSinks(cfg *config.Config, printer *output.Printer) ([]reminder.Sink[reminder.Event], []reminder.Sink[session.Entry]) {
	var rs []reminder.Sink[reminder.Event]
	var ts []reminder.Sink[session.Entry]
	if cfg.Notify.Desktop {
		rs = append(rs, reminder.NewNotifier("focuswatch"))
	}
	if printer != nil && cfg.Notify.Terminal {
		rs = append(rs, printer.Reminders())
		ts = append(ts, printer.Transitions())
	}
	return rs, ts
}

// runForeground runs the engine in the foreground with live terminal output.
func runForeground(cfg *config.Config) error {
	log.Configure(log.Config{Level: cfg.Log.Level, Output: os.Stderr, Console: true})
	logger := log.Base()

	ctx, cancel := signalContext()
	defer cancel()

	var printer *output.Printer
	if !watchQuiet {
		printer = output.NewPrinter(os.Stdout, flagVerbose)
	}
	rs, ts := reminderSinks(cfg, printer)

	e, err := newEngine(engineOptions{
		Config:          cfg,
		ConfigFile:      flagConfig,
		Samples:         watchSamples,
		Follow:          !watchNoFollow,
		DBPath:          dbPath(),
		Logger:          logger,
		ReminderSinks:   rs,
		TransitionSinks: ts,
	})
	if err != nil {
		return err
	}
	defer e.close()

	if !watchQuiet {
		fmt.Printf("focuswatch watching %s (%s, tick %s)\n", feedName(watchSamples), e.sourceKind, cfg.TickInterval)
	}

	if err := e.run(ctx); err != nil {
		return err
	}

	if !watchQuiet {
		printSummary(os.Stdout, e, cfg)
	}
	return nil
}

// runDaemon sets up PID and log files, then runs the engine. The actual
// backgrounding should be done by the caller (nohup, &, etc.) since Go
// cannot reliably fork.
func runDaemon(cfg *config.Config) error {
	if watchSamples == "-" {
		return fmt.Errorf("daemon mode needs a file feed: pass --samples PATH")
	}

	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	// Check for existing daemon.
	if pid, err := readPID(); err == nil {
		if processExists(pid) {
			return fmt.Errorf("daemon already running (PID %d). Use --stop to stop it", pid)
		}
		// Stale PID file, remove it.
		_ = os.Remove(pidFilePath())
	}

	pid := os.Getpid()
	if err := os.WriteFile(pidFilePath(), []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer func() { _ = os.Remove(pidFilePath()) }()

	logFile, err := os.OpenFile(logFilePath(cfg), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	log.Configure(log.Config{Level: cfg.Log.Level, Output: logFile})
	logger := log.Base()

	ctx, cancel := signalContext()
	defer cancel()

	rs, ts := reminderSinks(cfg, nil)
	rs = append(rs, logSink(logger))

	e, err := newEngine(engineOptions{
		Config:          cfg,
		ConfigFile:      flagConfig,
		Samples:         watchSamples,
		Follow:          !watchNoFollow,
		DBPath:          dbPath(),
		Logger:          logger,
		ReminderSinks:   rs,
		TransitionSinks: ts,
	})
	if err != nil {
		return err
	}
	defer e.close()

	logger.Info().Int("pid", pid).Str("config", cfg.Describe()).Msg("daemon started")
	err = e.run(ctx)
	logger.Info().Err(err).Msg("daemon stopped")
	return err
}

// logSink writes every reminder to the daemon log.
func logSink(logger zerolog.Logger) reminder.SinkFunc[reminder.Event] {
	return func(ev reminder.Event) error {
		logger.Info().
			Str(log.FieldEvent, "reminder").
			Str(log.FieldKind, string(ev.Kind)).
			Str(log.FieldSeverity, ev.Severity.String()).
			Int(log.FieldTier, ev.Tier).
			Msg(ev.Message)
		return nil
	}
}

// stopTimeout bounds how long --stop waits for the daemon to exit.
const stopTimeout = 5 * time.Second

// waitForExit polls until pid is gone or timeout passes.
func waitForExit(pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !processExists(pid) {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return !processExists(pid)
}

// readPID reads the daemon PID from the PID file.
func readPID() (int, error) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func feedName(path string) string {
	if path == "-" {
		return "stdin"
	}
	return path
}

// printSummary prints the final engine state after shutdown.
func printSummary(w io.Writer, e *engine, cfg *config.Config) {
	snap := e.watcher.Snapshot()
	fmt.Fprintln(w, output.RenderStatus(snap, cfg.FatigueConfig(), cfg.DistractionConfig()))
	fmt.Fprintln(w, "\nStopped.")
}
