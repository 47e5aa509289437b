package chordbutton

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	DefaultPollInterval = time.Millisecond
	CommandBufferDepth  = 16
)

var ErrLoopStopped = errors.New("chordbutton: loop is not running")

// Element is polled by a Loop
type Element interface {
	Begin() error
	Update()
}

// Releaser is an Element that can silence itself when the Loop stops
type Releaser interface {
	Release()
}

// Loop polls its elements from a single goroutine at a fixed cadence.
// Mutations queued with Do run on the same goroutine between polls, so
// an element is never changed while it is being updated.
type Loop struct {
	elements []Element
	interval time.Duration
	cmds     chan func()

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewLoop creates a Loop. An interval <= 0 selects DefaultPollInterval.
func NewLoop(interval time.Duration, elements ...Element) *Loop {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Loop{
		elements: elements,
		interval: interval,
		cmds:     make(chan func(), CommandBufferDepth),
		done:     make(chan struct{}),
	}
}

// Run calls Begin on every element and then polls them until the context
// is canceled. Elements that implement Releaser are released before Run
// returns, so no note is left sounding.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return errors.New("chordbutton: loop already running")
	}
	l.running = true
	l.mu.Unlock()
	defer close(l.done)

	for i, e := range l.elements {
		if err := e.Begin(); err != nil {
			return fmt.Errorf("chordbutton: begin element %d: %w", i, err)
		}
	}

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.release()
			return ctx.Err()
		case fn := <-l.cmds:
			fn()
		case <-ticker.C:
			l.Poll()
		}
	}
}

// Poll updates every element once. Only call it from the goroutine that
// owns the elements.
func (l *Loop) Poll() {
	for _, e := range l.elements {
		e.Update()
	}
}

// release silences every element that supports it
func (l *Loop) release() {
	for _, e := range l.elements {
		if r, ok := e.(Releaser); ok {
			r.Release()
		}
	}
}

// Do runs fn on the loop goroutine and waits for it to finish
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	cmd := func() {
		defer close(finished)
		fn()
	}

	select {
	case l.cmds <- cmd:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		// Run may have returned before picking the command up
		select {
		case <-finished:
			return nil
		default:
			return ErrLoopStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
