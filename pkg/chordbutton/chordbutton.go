// Package chordbutton provides a bankable momentary button that plays a
// chord on top of a base note
package chordbutton

import (
	"time"

	"github.com/james-see/chordbutton/pkg/address"
	"github.com/james-see/chordbutton/pkg/bank"
	"github.com/james-see/chordbutton/pkg/button"
	"github.com/james-see/chordbutton/pkg/chord"
	"github.com/james-see/chordbutton/pkg/sender"
)

// ChordButton sends a note-on for its base note and for every chord offset
// when pressed, and the matching note-offs when released. The address is
// locked for the whole press, so bank changes while the button is held do
// not move the note-offs.
type ChordButton struct {
	address *bank.Address
	button  *button.Button
	sender  sender.Sender
	policy  address.Overflow

	chord   chord.Chord
	pending chord.Chord
	pressed bool
}

type options struct {
	overflow   address.Overflow
	buttonOpts []button.Option
}

// Option configures a ChordButton
type Option func(*options)

// WithOverflow sets how offsets past the note range are handled
func WithOverflow(policy address.Overflow) Option {
	return func(o *options) { o.overflow = policy }
}

// WithButtonOptions passes options to the debounced button
func WithButtonOptions(opts ...button.Option) Option {
	return func(o *options) { o.buttonOpts = append(o.buttonOpts, opts...) }
}

// New creates a ChordButton. The base address is validated by the caller.
func New(config bank.OutputConfig, pin button.Pin, base address.Address, c chord.Chord, s sender.Sender, opts ...Option) *ChordButton {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if c == nil {
		c = chord.Of()
	}
	return &ChordButton{
		address: bank.NewAddress(config, base, o.overflow),
		button:  button.New(pin, o.buttonOpts...),
		sender:  s,
		policy:  o.overflow,
		chord:   c,
	}
}

// Begin initializes the button hardware
func (b *ChordButton) Begin() error {
	return b.button.Begin()
}

// Update polls the button once and sends notes on its edges
func (b *ChordButton) Update() {
	switch b.button.State() {
	case button.Falling:
		if b.pressed {
			return
		}
		if b.pending != nil {
			b.chord, b.pending = b.pending, nil
		}
		b.address.Lock()
		b.pressed = true
		b.each(b.chord, b.sender.SendOn)
	case button.Rising:
		b.Release()
	}
}

// Release sends the note-offs of a sounding chord and unlocks the address.
// It does nothing when no chord is sounding. A pin still held low has to go
// high before the next press is seen.
func (b *ChordButton) Release() {
	if !b.pressed {
		return
	}
	b.each(b.chord, b.sender.SendOff)
	b.address.Unlock()
	b.pressed = false
}

// each calls send for the base note and then every offset of c, in order
func (b *ChordButton) each(c chord.Chord, send func(address.Address)) {
	base := b.address.Resolve()
	send(base)
	for i := 0; i < c.Len(); i++ {
		send(base.Transpose(c.At(i), b.policy))
	}
}

// SetChord stages a chord for the next press. A chord that is sounding is
// never changed; an earlier staged chord is replaced.
func (b *ChordButton) SetChord(c chord.Chord) {
	if c == nil {
		c = chord.Of()
	}
	b.pending = c
}

// Invert flips the button polarity
func (b *ChordButton) Invert() {
	b.button.Invert()
}

// Debounce returns the debounce time of the underlying button
func (b *ChordButton) Debounce() time.Duration { return b.button.Debounce() }

// Pressed reports whether a chord is sounding
func (b *ChordButton) Pressed() bool { return b.pressed }

// Chord returns the chord of the current or most recent press
func (b *ChordButton) Chord() chord.Chord { return b.chord }

// Pending returns the staged chord, or nil
func (b *ChordButton) Pending() chord.Chord { return b.pending }

// Address returns the address the next or current press resolves to
func (b *ChordButton) Address() address.Address { return b.address.Resolve() }

// Notes returns the addresses the next or current press sends, base first
func (b *ChordButton) Notes() []address.Address {
	c := b.chord
	if !b.pressed && b.pending != nil {
		c = b.pending
	}
	var notes []address.Address
	b.each(c, func(a address.Address) { notes = append(notes, a) })
	return notes
}
