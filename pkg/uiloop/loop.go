// Package uiloop runs engine work on a single goroutine. Values arriving from
// other goroutines (a subscriber, stdin, a file watcher) are posted to the loop
// and applied one event at a time, with deferred widget destruction drained
// after every event.
package uiloop

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrStopped is returned by Post and Call once Run has returned.
var ErrStopped = errors.New("uiloop: loop stopped")

// Loop is a single-consumer event queue.
type Loop struct {
	queue     chan func()
	done      chan struct{}
	stopOnce  sync.Once
	afterEach []func()
	logger    *zap.Logger
}

// Option customises a Loop.
type Option func(*Loop)

// WithBuffer sets how many events may wait before Post blocks.
func WithBuffer(n int) Option {
	return func(l *Loop) {
		if n >= 0 {
			l.queue = make(chan func(), n)
		}
	}
}

// WithLogger sets the logger used for recovered panics.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithAfterEach registers work executed on the loop goroutine after every
// event, typically MessageWidget.ProcessDeferred.
func WithAfterEach(fn func()) Option {
	return func(l *Loop) {
		if fn != nil {
			l.afterEach = append(l.afterEach, fn)
		}
	}
}

// New returns a loop. Call Run to start processing.
func New(opts ...Option) *Loop {
	l := &Loop{
		queue:  make(chan func(), 64),
		done:   make(chan struct{}),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Post queues fn. It blocks while the queue is full and fails once the loop
// has stopped or ctx is done.
func (l *Loop) Post(ctx context.Context, fn func()) error {
	if fn == nil {
		return errors.New("uiloop: nil event")
	}
	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	select {
	case l.queue <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	if fn == nil {
		return errors.New("uiloop: nil event")
	}
	result := make(chan error, 1)
	if err := l.Post(ctx, func() { result <- fn() }); err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-l.done:
		select {
		case err := <-result:
			return err
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes events until ctx is done. Events still queued at that point
// are dropped.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			l.dispatch(fn)
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) dispatch(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("event panicked", zap.String("panic", fmt.Sprint(r)))
		}
		for _, after := range l.afterEach {
			after()
		}
	}()
	fn()
}

func (l *Loop) stop() {
	l.stopOnce.Do(func() { close(l.done) })
}
