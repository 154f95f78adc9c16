package signals

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/focuswatch/internal/clock"
)

// DefaultStaleAfter is how old a feed reading may get before it is rejected.
const DefaultStaleAfter = 5 * time.Second

// followPoll is how often a followed file is re-read after EOF.
const followPoll = 200 * time.Millisecond

// Frame is one line of the sample feed written by the capture process.
//
//	{"screen":{"change_rate":0.04,"complex":true,"hint":"working"},"camera":{"change_rate":0.0},"keys":3,"clicks":1}
//
// Screen or Camera may be omitted when that analyzer has nothing new.
type Frame struct {
	Screen *Reading `json:"screen,omitempty"`
	Camera *Reading `json:"camera,omitempty"`
	Keys   uint     `json:"keys"`
	Clicks uint     `json:"clicks"`
}

type slot struct {
	reading Reading
	at      time.Time
	ok      bool
}

// Feed caches the latest frame from a newline-delimited JSON stream and
// serves it through the Analyzer and InputCounter interfaces. Safe for
// concurrent use.
type Feed struct {
	clock      clock.Clock
	staleAfter time.Duration
	log        zerolog.Logger

	mu        sync.Mutex
	screen    slot
	camera    slot
	keys      uint
	clicks    uint
	seen      bool
	frames    uint64
	malformed uint64
}

// NewFeed returns an empty feed. staleAfter <= 0 disables staleness checks.
func NewFeed(c clock.Clock, staleAfter time.Duration, logger zerolog.Logger) *Feed {
	return &Feed{clock: c, staleAfter: staleAfter, log: logger}
}

// Push records a frame as received now.
func (f *Feed) Push(fr Frame) {
	now := f.clock.Now()
	f.mu.Lock()
	defer f.mu.Unlock()
	if fr.Screen != nil {
		f.screen = slot{reading: *fr.Screen, at: now, ok: true}
	}
	if fr.Camera != nil {
		f.camera = slot{reading: *fr.Camera, at: now, ok: true}
	}
	f.keys += fr.Keys
	f.clicks += fr.Clicks
	f.seen = true
	f.frames++
}

// Stats returns the number of accepted and malformed lines so far.
func (f *Feed) Stats() (frames, malformed uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames, f.malformed
}

// Screen returns the analyzer view of the screen readings.
func (f *Feed) Screen() Analyzer {
	return AnalyzerFunc(func(ctx context.Context) (Reading, error) {
		return f.read(ctx, func() slot { return f.screen })
	})
}

// Camera returns the analyzer view of the camera readings.
func (f *Feed) Camera() Analyzer {
	return AnalyzerFunc(func(ctx context.Context) (Reading, error) {
		return f.read(ctx, func() slot { return f.camera })
	})
}

// Input returns the input counter view. Counts drain the accumulated totals.
func (f *Feed) Input() InputCounter {
	return InputCounterFunc(func(ctx context.Context) (uint, uint, error) {
		if err := ctx.Err(); err != nil {
			return 0, 0, err
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.seen {
			return 0, 0, ErrNoData
		}
		keys, clicks := f.keys, f.clicks
		f.keys, f.clicks = 0, 0
		return keys, clicks, nil
	})
}

func (f *Feed) read(ctx context.Context, get func() slot) (Reading, error) {
	if err := ctx.Err(); err != nil {
		return Reading{}, err
	}
	now := f.clock.Now()
	f.mu.Lock()
	s := get()
	f.mu.Unlock()
	if !s.ok {
		return Reading{}, ErrNoData
	}
	if age := now.Sub(s.at); f.staleAfter > 0 && age > f.staleAfter {
		return Reading{}, fmt.Errorf("%w: last reading %s old", ErrStale, age.Round(time.Millisecond))
	}
	return s.reading, nil
}

// Run streams frames from r until EOF or ctx is done. With follow set, EOF
// is treated as "no new data yet" and the reader is polled again, like
// tail -f. Malformed lines are logged and skipped.
func (f *Feed) Run(ctx context.Context, r io.Reader, follow bool) error {
	br := bufio.NewReaderSize(r, 64*1024)
	var pending []byte
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		chunk, err := br.ReadBytes('\n')
		pending = append(pending, chunk...)
		if err == nil {
			f.handleLine(pending)
			pending = pending[:0]
			continue
		}
		if !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading sample feed: %w", err)
		}
		if !follow {
			if len(bytes.TrimSpace(pending)) > 0 {
				f.handleLine(pending)
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(followPoll):
		}
	}
}

func (f *Feed) handleLine(line []byte) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return
	}
	var fr Frame
	if err := json.Unmarshal(line, &fr); err != nil {
		f.mu.Lock()
		f.malformed++
		f.mu.Unlock()
		f.log.Warn().Err(err).Msg("skipping malformed feed line")
		return
	}
	f.Push(fr)
}
