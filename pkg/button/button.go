// Package button provides a debounced momentary push button
package button

import (
	"fmt"
	"time"
)

// DefaultDebounce is the time an input must be stable before an edge is reported
const DefaultDebounce = 25 * time.Millisecond

// Pin is a digital input line. With the pull-up enabled an open switch
// reads high and a pressed switch reads low.
type Pin interface {
	// Configure sets the pin up as an input with its pull-up resistor enabled.
	Configure() error
	// Read returns true when the line is high.
	Read() bool
}

// State is the debounced button state. The low bit is the current level,
// the high bit the previous one.
type State uint8

const (
	Pressed  State = 0b00
	Rising   State = 0b01
	Falling  State = 0b10
	Released State = 0b11
)

func (s State) String() string {
	switch s {
	case Pressed:
		return "Pressed"
	case Rising:
		return "Rising"
	case Falling:
		return "Falling"
	case Released:
		return "Released"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Button debounces a Pin and reports edges
type Button struct {
	pin      Pin
	debounce time.Duration
	now      func() time.Time
	invert   bool

	state      State
	prevInput  bool
	lastBounce time.Time
}

// Option configures a Button
type Option func(*Button)

// WithDebounce sets the debounce time
func WithDebounce(d time.Duration) Option {
	return func(b *Button) { b.debounce = d }
}

// WithClock replaces time.Now, for simulation and tests
func WithClock(now func() time.Time) Option {
	return func(b *Button) { b.now = now }
}

// Inverted makes a high level mean pressed (active-high wiring)
func Inverted() Option {
	return func(b *Button) { b.invert = true }
}

// New creates a Button reading from pin
func New(pin Pin, opts ...Option) *Button {
	b := &Button{
		pin:       pin,
		debounce:  DefaultDebounce,
		now:       time.Now,
		state:     Released,
		prevInput: true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Begin configures the pin. It must be called before the first State.
func (b *Button) Begin() error {
	if err := b.pin.Configure(); err != nil {
		return fmt.Errorf("button: configure pin: %w", err)
	}
	b.lastBounce = b.now()
	return nil
}

// Invert flips the button polarity
func (b *Button) Invert() {
	b.invert = !b.invert
}

// State samples the pin and returns the debounced state. Falling and
// Rising are reported once, on the poll where the stable level changes.
func (b *Button) State() State {
	input := b.pin.Read() != b.invert
	now := b.now()

	prev := b.state & 0b01
	if now.Sub(b.lastBounce) > b.debounce {
		b.state = prev<<1 | level(input)
	} else {
		b.state = prev<<1 | prev
	}

	if input != b.prevInput {
		b.lastBounce = now
		b.prevInput = input
	}
	return b.state
}

// Debounce returns the configured debounce time
func (b *Button) Debounce() time.Duration {
	return b.debounce
}

func level(high bool) State {
	if high {
		return 1
	}
	return 0
}
