package app

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/focuswatch/internal/config"
	"github.com/blackwell-systems/focuswatch/internal/log"
	"github.com/blackwell-systems/focuswatch/internal/mcp"
	"github.com/blackwell-systems/focuswatch/internal/reminder"
)

var (
	mcpSamples  string
	mcpNoFollow bool
	mcpNoStore  bool
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the engine behind an MCP stdio control server",
	Long: `Start the engine and a Model Context Protocol stdio server that a UI or
assistant can use to observe and control it. Stdin and stdout carry JSON-RPC,
so the sample feed must be a file.

Tools:
  get_activity_status   Current status, continuous work and entertainment time
  get_session_history   Recently completed activity episodes
  get_reminder_log      Logged reminders (when the event log is enabled)
  continue_reminder     Acknowledge reminders of a kind and keep going
  snooze_reminder       Silence reminders of a kind for N minutes
  disable_reminder      Silence reminders of a kind until the session ends
  end_work_session      Reset the fatigue timer

Reminders are pushed to the client as notifications/reminder messages.

Example MCP configuration:
  {"mcpServers":{"focuswatch":{"command":"focuswatch","args":["mcp","--samples","/tmp/frames.jsonl"]}}}`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpSamples, "samples", "", "Sample feed path (required; stdin is the RPC channel)")
	mcpCmd.Flags().BoolVar(&mcpNoFollow, "no-follow", false, "Stop at the end of the feed instead of waiting for more frames")
	mcpCmd.Flags().BoolVar(&mcpNoStore, "no-store", false, "Do not log reminders and episodes to the event database")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	if mcpSamples == "" || mcpSamples == "-" {
		return fmt.Errorf("mcp needs a file feed: pass --samples PATH")
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Stdout belongs to the protocol; logs go to stderr as JSON lines.
	log.Configure(log.Config{Level: cfg.Log.Level, Output: os.Stderr})
	logger := log.Base()

	ctx, cancel := signalContext()
	defer cancel()

	// The server is built after the engine, so reminders reach it through
	// this forwarding sink.
	var server atomic.Pointer[mcp.Server]
	push := reminder.SinkFunc[reminder.Event](func(ev reminder.Event) error {
		if srv := server.Load(); srv != nil {
			return srv.Reminders().Dispatch(ev)
		}
		return nil
	})

	rs, _ := reminderSinks(cfg, nil)
	db := config.DBPath()
	if mcpNoStore {
		db = ""
	}
	e, err := newEngine(engineOptions{
		Config:        cfg,
		ConfigFile:    flagConfig,
		Samples:       mcpSamples,
		Follow:        !mcpNoFollow,
		DBPath:        db,
		Logger:        logger,
		ReminderSinks: append(rs, push),
	})
	if err != nil {
		return err
	}
	defer e.close()

	opts := mcp.Options{
		Controller: e.watcher,
		Version:    appVersion,
		Logger:     component(logger, "mcp"),
	}
	if e.db != nil {
		opts.History = e.db
	}
	srv, err := mcp.NewServer(opts)
	if err != nil {
		return err
	}
	server.Store(srv)

	return e.run(ctx, func(ctx context.Context) error {
		err := srv.Run(ctx, os.Stdin, os.Stdout)
		// The client hung up; stop the engine with it.
		cancel()
		return err
	})
}
