package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/focuswatch/internal/clock"
	"github.com/blackwell-systems/focuswatch/internal/config"
	"github.com/blackwell-systems/focuswatch/internal/log"
	"github.com/blackwell-systems/focuswatch/internal/metrics"
	"github.com/blackwell-systems/focuswatch/internal/reminder"
	"github.com/blackwell-systems/focuswatch/internal/session"
	"github.com/blackwell-systems/focuswatch/internal/signals"
	"github.com/blackwell-systems/focuswatch/internal/store"
	"github.com/blackwell-systems/focuswatch/internal/suggest"
	"github.com/blackwell-systems/focuswatch/internal/watcher"
)

// engineOptions selects the sample feed and the collaborators attached to
// the watcher.
type engineOptions struct {
	Config *config.Config
	// ConfigFile is watched for hot reload. Empty uses the default lookup.
	ConfigFile string
	// Samples is a feed path, or "-" for stdin.
	Samples string
	// Follow keeps reading a file feed after EOF.
	Follow bool
	// DBPath enables the event log. Empty disables it.
	DBPath string
	Logger zerolog.Logger

	ReminderSinks   []reminder.Sink[reminder.Event]
	TransitionSinks []reminder.Sink[session.Entry]
}

// engine is one wired instance of the polling engine.
type engine struct {
	cfg        *config.Config
	cfgFile    string
	log        zerolog.Logger
	feed       *signals.Feed
	samples    io.ReadCloser
	follow     bool
	watcher    *watcher.Watcher
	metrics    *metrics.Metrics
	db         *store.DB
	recorder   *store.Recorder
	sourceKind signals.Kind
}

// openSamples opens the sample feed. Stdin is never followed.
func openSamples(path string) (io.ReadCloser, bool, error) {
	if path == "" {
		return nil, false, errors.New("no sample feed: pass --samples PATH or --samples -")
	}
	if path == "-" {
		return io.NopCloser(os.Stdin), false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("opening sample feed: %w", err)
	}
	return f, true, nil
}

// newSource builds the per-tick signal source over the feed.
func newSource(cfg *config.Config, feed *signals.Feed) *signals.Composite {
	var src *signals.Composite
	if cfg.CameraEnabled {
		src = signals.ScreenAndCamera(feed.Screen(), feed.Camera(), feed.Input())
	} else {
		src = signals.ScreenOnly(feed.Screen(), feed.Input())
	}
	return src.WithTimeout(cfg.SampleTimeout)
}

func newEngine(opts engineOptions) (*engine, error) {
	cfg := opts.Config
	samples, canFollow, err := openSamples(opts.Samples)
	if err != nil {
		return nil, err
	}

	e := &engine{
		cfg:     cfg,
		cfgFile: opts.ConfigFile,
		log:     opts.Logger,
		samples: samples,
		follow:  opts.Follow && canFollow,
		metrics: metrics.New(),
	}
	e.feed = signals.NewFeed(clock.System{}, cfg.StaleAfter, component(opts.Logger, "feed"))
	src := newSource(cfg, e.feed)
	e.sourceKind = src.Kind()

	reminderSinks := opts.ReminderSinks
	transitionSinks := opts.TransitionSinks
	var responseSinks []reminder.Sink[reminder.Response]

	if opts.DBPath != "" {
		db, err := store.Open(opts.DBPath)
		if err != nil {
			// The event log is an optional subscriber; the engine runs without it.
			e.log.Warn().Err(err).Str(log.FieldPath, opts.DBPath).Msg("event log unavailable")
		} else {
			runID, err := db.CreateRun(time.Now(), e.sourceKind.String(), appVersion)
			if err != nil {
				_ = db.Close()
				_ = samples.Close()
				return nil, fmt.Errorf("recording run: %w", err)
			}
			e.db = db
			e.recorder = store.NewRecorder(db, runID)
			reminderSinks = append(reminderSinks, e.recorder.Reminders())
			transitionSinks = append(transitionSinks, e.recorder.Transitions())
			responseSinks = append(responseSinks, e.recorder.Responses())
		}
	}

	w, err := watcher.New(watcher.Options{
		Source:          src,
		Config:          cfg,
		Logger:          component(opts.Logger, "watcher"),
		Metrics:         e.metrics,
		Suggest:         suggest.NewEngine(),
		ReminderSinks:   reminderSinks,
		TransitionSinks: transitionSinks,
		ResponseSinks:   responseSinks,
	})
	if err != nil {
		e.close()
		return nil, err
	}
	e.watcher = w
	return e, nil
}

// run drives the watcher, the feed reader, the metrics flusher, the config
// watcher and any extra tasks until ctx is done or one of them fails. A
// finite feed (stdin or an unfollowed file) stops the engine at EOF.
func (e *engine) run(ctx context.Context, extra ...func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return e.watcher.Run(gctx)
	})
	g.Go(func() error {
		// A blocked read on stdin ignores ctx; the reader goroutine is
		// abandoned on shutdown instead of holding up Wait.
		errc := make(chan error, 1)
		go func() { errc <- e.feed.Run(gctx, e.samples, e.follow) }()

		var err error
		select {
		case err = <-errc:
		case <-gctx.Done():
			_ = e.samples.Close()
			return nil
		}
		frames, malformed := e.feed.Stats()
		e.log.Info().Uint64("frames", frames).Uint64("malformed", malformed).Msg("sample feed finished")
		if err == nil && !e.follow {
			cancel()
		}
		return err
	})
	g.Go(func() error {
		return e.metrics.Flush(gctx, e.cfg.Metrics.Textfile, e.cfg.Metrics.FlushInterval, e.log)
	})
	g.Go(func() error {
		return config.Watch(gctx, e.cfgFile, component(e.log, "config"), func(cfg *config.Config) {
			if err := e.watcher.Reconfigure(gctx, cfg); err != nil {
				e.log.Warn().Err(err).Msg("config reload rejected")
				return
			}
			e.log.Info().Str("config", cfg.Describe()).Msg("engine reconfigured")
		})
	})
	for _, task := range extra {
		task := task
		g.Go(func() error {
			return task(gctx)
		})
	}

	return g.Wait()
}

func component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str(log.FieldComponent, name).Logger()
}

// close releases the feed and the event log.
func (e *engine) close() {
	if e.samples != nil {
		_ = e.samples.Close()
	}
	if e.db != nil {
		_ = e.db.Close()
	}
}
