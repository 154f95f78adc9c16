// Package signals acquires the per-tick Sample from the screen and camera
// analyzers and the input counter. Analysis itself happens outside this
// process; this package only gathers its latest verdicts.
package signals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/focuswatch/internal/activity"
)

// DefaultTimeout bounds each analyzer read.
const DefaultTimeout = 500 * time.Millisecond

var (
	// ErrNoData is returned by an analyzer that has not produced a reading.
	ErrNoData = errors.New("no data")
	// ErrStale is returned when the latest reading is older than allowed.
	ErrStale = errors.New("stale reading")
)

// Reading is one analyzer verdict.
type Reading struct {
	ChangeRate   float64       `json:"change_rate"`
	ComplexScene bool          `json:"complex"`
	Hint         activity.Hint `json:"hint"`
}

// Analyzer reports the latest change rate for one image stream.
type Analyzer interface {
	Read(ctx context.Context) (Reading, error)
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(ctx context.Context) (Reading, error)

func (f AnalyzerFunc) Read(ctx context.Context) (Reading, error) { return f(ctx) }

// InputCounter reports key presses and mouse clicks since the previous call.
type InputCounter interface {
	Counts(ctx context.Context) (keys, clicks uint, err error)
}

// InputCounterFunc adapts a function to InputCounter.
type InputCounterFunc func(ctx context.Context) (uint, uint, error)

func (f InputCounterFunc) Counts(ctx context.Context) (uint, uint, error) { return f(ctx) }

// Kind names the analyzer set a Source was built with.
type Kind int

const (
	KindScreenOnly Kind = iota
	KindScreenAndCamera
)

func (k Kind) String() string {
	if k == KindScreenAndCamera {
		return "screen+camera"
	}
	return "screen"
}

// Source produces one Sample per tick.
type Source interface {
	Kind() Kind
	Acquire(ctx context.Context) (activity.Sample, error)
}

// AnalyzerError records which collaborator failed during Acquire.
type AnalyzerError struct {
	Analyzer string
	Err      error
}

func (e *AnalyzerError) Error() string { return e.Analyzer + ": " + e.Err.Error() }

func (e *AnalyzerError) Unwrap() error { return e.Err }

// Failures lists the analyzer errors joined into an Acquire error.
func Failures(err error) []*AnalyzerError {
	if err == nil {
		return nil
	}
	var out []*AnalyzerError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, Failures(e)...)
		}
		return out
	}
	var ae *AnalyzerError
	if errors.As(err, &ae) {
		out = append(out, ae)
	}
	return out
}

// Composite is the Source over a fixed set of analyzers. The variant is
// chosen once at construction.
type Composite struct {
	kind    Kind
	screen  Analyzer
	camera  Analyzer
	input   InputCounter
	timeout time.Duration
}

// ScreenOnly builds a Source without a camera. input may be nil.
func ScreenOnly(screen Analyzer, input InputCounter) *Composite {
	return &Composite{kind: KindScreenOnly, screen: screen, input: input, timeout: DefaultTimeout}
}

// ScreenAndCamera builds a Source that also reads a camera analyzer.
// input may be nil.
func ScreenAndCamera(screen, camera Analyzer, input InputCounter) *Composite {
	return &Composite{kind: KindScreenAndCamera, screen: screen, camera: camera, input: input, timeout: DefaultTimeout}
}

// WithTimeout sets the per-analyzer read bound. Non-positive keeps the
// current value.
func (c *Composite) WithTimeout(d time.Duration) *Composite {
	if d > 0 {
		c.timeout = d
	}
	return c
}

// Kind reports the analyzer set.
func (c *Composite) Kind() Kind { return c.kind }

// Acquire reads every analyzer concurrently, each bounded by the timeout.
// A failed read degrades to zero and is reported in the joined error; the
// returned Sample is always usable.
func (c *Composite) Acquire(ctx context.Context) (activity.Sample, error) {
	var (
		screen, camera       Reading
		keys, clicks         uint
		screenErr, cameraErr error
		inputErr             error
		g                    errgroup.Group
	)

	g.Go(func() error {
		screen, screenErr = c.read(ctx, c.screen)
		return nil
	})
	if c.kind == KindScreenAndCamera {
		g.Go(func() error {
			camera, cameraErr = c.read(ctx, c.camera)
			return nil
		})
	}
	if c.input != nil {
		g.Go(func() error {
			keys, clicks, inputErr = c.counts(ctx)
			return nil
		})
	}
	_ = g.Wait()

	var s activity.Sample
	var errs []error
	if screenErr != nil {
		errs = append(errs, &AnalyzerError{Analyzer: "screen", Err: screenErr})
	} else {
		s.ScreenChangeRate = screen.ChangeRate
		s.ComplexScene = screen.ComplexScene
		s.ScreenHint = screen.Hint
	}
	if c.kind == KindScreenAndCamera {
		if cameraErr != nil {
			errs = append(errs, &AnalyzerError{Analyzer: "camera", Err: cameraErr})
		} else {
			s.CameraAvailable = true
			s.CameraChangeRate = camera.ChangeRate
			s.CameraHint = camera.Hint
		}
	}
	if inputErr != nil {
		errs = append(errs, &AnalyzerError{Analyzer: "input", Err: inputErr})
	} else {
		s.KeyPresses, s.MouseClicks = keys, clicks
	}
	return s, errors.Join(errs...)
}

func (c *Composite) read(ctx context.Context, a Analyzer) (Reading, error) {
	if a == nil {
		return Reading{}, ErrNoData
	}
	return bounded(ctx, c.timeout, "analyzer", a.Read)
}

type inputCounts struct{ keys, clicks uint }

func (c *Composite) counts(ctx context.Context) (uint, uint, error) {
	n, err := bounded(ctx, c.timeout, "input counter", func(ctx context.Context) (inputCounts, error) {
		k, cl, err := c.input.Counts(ctx)
		return inputCounts{k, cl}, err
	})
	return n.keys, n.clicks, err
}

type outcome[T any] struct {
	v   T
	err error
}

// bounded runs fn on its own goroutine and waits at most timeout for it.
// A call that ignores its context is abandoned; its late result is
// discarded. A panic in fn is returned as an error.
func bounded[T any](ctx context.Context, timeout time.Duration, what string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan outcome[T], 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome[T]{err: fmt.Errorf("%s panic: %v", what, p)}
			}
		}()
		v, err := fn(rctx)
		done <- outcome[T]{v: v, err: err}
	}()

	select {
	case o := <-done:
		if o.err == nil && rctx.Err() != nil {
			return zero, rctx.Err()
		}
		if o.err != nil {
			return zero, o.err
		}
		return o.v, nil
	case <-rctx.Done():
		return zero, rctx.Err()
	}
}
