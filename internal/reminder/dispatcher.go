package reminder

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// DefaultBuffer is the queue depth used when Options.Buffer is not set.
const DefaultBuffer = 32

// Sink receives dispatched values. Implementations may be slow or fail; the
// dispatcher isolates the polling loop from both.
type Sink[T any] interface {
	Dispatch(v T) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc[T any] func(T) error

// Dispatch calls f(v).
func (f SinkFunc[T]) Dispatch(v T) error {
	return f(v)
}

// Options configures a Dispatcher.
type Options struct {
	Buffer int
	Logger zerolog.Logger
	// OnDrop, if set, is called from Dispatch whenever a value is discarded
	// because the queue is full or the dispatcher is closed.
	OnDrop func()
	// OnSinkError, if set, is called from the delivery goroutine for every
	// failed or panicking sink call.
	OnSinkError func(error)
}

// Dispatcher fans values out to sinks on a single delivery goroutine.
// Dispatch never blocks: when the queue is full the value is dropped.
type Dispatcher[T any] struct {
	name  string
	sinks []Sink[T]
	queue chan T
	stop  chan struct{}
	done  chan struct{}
	opts  Options

	closeOnce sync.Once
	dropped   atomic.Uint64
	delivered atomic.Uint64
}

// NewDispatcher creates a Dispatcher and starts its delivery goroutine.
func NewDispatcher[T any](name string, opts Options, sinks ...Sink[T]) *Dispatcher[T] {
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultBuffer
	}
	d := &Dispatcher[T]{
		name:  name,
		sinks: sinks,
		queue: make(chan T, opts.Buffer),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
		opts:  opts,
	}
	go d.run()
	return d
}

// Dispatch queues v for delivery. It reports false if v was dropped.
func (d *Dispatcher[T]) Dispatch(v T) bool {
	select {
	case <-d.stop:
		d.drop()
		return false
	default:
	}

	select {
	case d.queue <- v:
		return true
	default:
		d.drop()
		d.opts.Logger.Warn().Str("dispatcher", d.name).Msg("queue full, dropping event")
		return false
	}
}

// Close stops delivery. Values still queued are discarded and a sink call in
// progress is not waited for. Close is idempotent.
func (d *Dispatcher[T]) Close() {
	d.closeOnce.Do(func() {
		close(d.stop)
	})
}

// Done is closed once the delivery goroutine has exited.
func (d *Dispatcher[T]) Done() <-chan struct{} {
	return d.done
}

// Dropped returns the number of values discarded so far.
func (d *Dispatcher[T]) Dropped() uint64 {
	return d.dropped.Load()
}

// Delivered returns the number of values handed to all sinks.
func (d *Dispatcher[T]) Delivered() uint64 {
	return d.delivered.Load()
}

func (d *Dispatcher[T]) drop() {
	d.dropped.Add(1)
	if d.opts.OnDrop != nil {
		d.opts.OnDrop()
	}
}

func (d *Dispatcher[T]) run() {
	defer close(d.done)
	for {
		select {
		case <-d.stop:
			return
		case v := <-d.queue:
			for _, s := range d.sinks {
				d.deliver(s, v)
			}
			d.delivered.Add(1)
		}
	}
}

// deliver calls one sink, converting a panic into an error so one broken
// sink cannot take down delivery for the others.
func (d *Dispatcher[T]) deliver(s Sink[T], v T) {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("sink panic: %v", r)
			}
		}()
		err = s.Dispatch(v)
	}()
	if err == nil {
		return
	}
	d.opts.Logger.Error().Err(err).Str("dispatcher", d.name).Msg("sink failed")
	if d.opts.OnSinkError != nil {
		d.opts.OnSinkError(err)
	}
}
