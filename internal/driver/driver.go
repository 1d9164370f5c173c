package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	DefaultTickLength = time.Second
	DefaultQueueSize  = 256
)

var (
	ErrQueueFull  = errors.New("driver queue is full")
	ErrNotRunning = errors.New("driver is not running")
)

// Manager is ticked once per driver tick, in registration order.
type Manager interface {
	Tick(context.Context) error
}

// Driver is the control thread. Managers are ticked and submitted work is
// run on the single goroutine running Start, so neither needs locking
// against the other.
type Driver struct {
	tickLength time.Duration
	managers   []Manager
	work       chan func(context.Context)
	done       chan struct{}
}

func NewDriver(managers []Manager, opts ...DriverOpt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
		managers:   managers,
		work:       make(chan func(context.Context), DefaultQueueSize),
		done:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Driver) Start(ctx context.Context) error {
	defer close(d.done)

	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-d.work:
			fn(ctx)
		case <-ticker.C:
			err := d.Tick(ctx)
			if err != nil {
				return err
			}
		}
	}
}

func (d *Driver) Tick(ctx context.Context) error {
	for _, m := range d.managers {
		if err := m.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Submit queues fn to run on the control thread without waiting for it.
func (d *Driver) Submit(fn func(context.Context)) error {
	select {
	case <-d.done:
		return ErrNotRunning
	default:
	}

	select {
	case d.work <- fn:
		return nil
	default:
		slog.Warn("driver queue full, dropping work", "size", cap(d.work))
		return ErrQueueFull
	}
}

// Done is closed once the driver has stopped.
func (d *Driver) Done() <-chan struct{} {
	return d.done
}

// Do runs fn on the control thread and waits for its result.
func (d *Driver) Do(ctx context.Context, fn func(context.Context) error) error {
	_, err := Call(ctx, d, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Runner queues work for the control thread.
type Runner interface {
	Submit(fn func(context.Context)) error
	Done() <-chan struct{}
}

// Call runs fn on the control thread with ctx and returns its result. If ctx
// ends before fn starts, fn never runs. Once fn has started Call waits for it
// to finish, so a result is never lost to a timeout.
func Call[T any](ctx context.Context, r Runner, fn func(context.Context) (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}

	var zero T
	var claimed atomic.Bool
	out := make(chan result, 1)

	err := r.Submit(func(context.Context) {
		if !claimed.CompareAndSwap(false, true) {
			return
		}
		v, err := fn(ctx)
		out <- result{v: v, err: err}
	})
	if err != nil {
		return zero, err
	}

	select {
	case res := <-out:
		return res.v, res.err
	case <-r.Done():
		if claimed.CompareAndSwap(false, true) {
			return zero, ErrNotRunning
		}
	case <-ctx.Done():
		if claimed.CompareAndSwap(false, true) {
			return zero, fmt.Errorf("waiting for driver: %w", ctx.Err())
		}
	}

	res := <-out
	return res.v, res.err
}
