// Package address provides the MIDI note address used by chord buttons
package address

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"
)

// Address ranges
const (
	MaxNote     = 127
	NumNotes    = 128
	NumChannels = 16
	NumCables   = 16
)

// Channel is a 1-based MIDI channel (1-16)
type Channel uint8

// MIDI channels
const (
	Channel1 Channel = iota + 1
	Channel2
	Channel3
	Channel4
	Channel5
	Channel6
	Channel7
	Channel8
	Channel9
	Channel10
	Channel11
	Channel12
	Channel13
	Channel14
	Channel15
	Channel16
)

// Index returns the 0-based channel number used on the wire
func (c Channel) Index() uint8 {
	return uint8(c) - 1
}

var (
	ErrNoteRange    = errors.New("address: note number out of range [0, 127]")
	ErrChannelRange = errors.New("address: channel out of range [1, 16]")
	ErrCableRange   = errors.New("address: cable number out of range [0, 15]")
)

// Address identifies a note on a channel of a virtual cable
type Address struct {
	Note    uint8   `json:"note"`
	Channel Channel `json:"channel"`
	Cable   uint8   `json:"cable"`
}

// New creates a validated Address
func New(note int, channel int, cable int) (Address, error) {
	if note < 0 || note > MaxNote {
		return Address{}, fmt.Errorf("%w: %d", ErrNoteRange, note)
	}
	if channel < 1 || channel > NumChannels {
		return Address{}, fmt.Errorf("%w: %d", ErrChannelRange, channel)
	}
	if cable < 0 || cable >= NumCables {
		return Address{}, fmt.Errorf("%w: %d", ErrCableRange, cable)
	}
	return Address{Note: uint8(note), Channel: Channel(channel), Cable: uint8(cable)}, nil
}

// Must is like New but panics on invalid input
func Must(note, channel, cable int) Address {
	a, err := New(note, channel, cable)
	if err != nil {
		panic(err)
	}
	return a
}

// Valid reports whether every field is in range
func (a Address) Valid() bool {
	return a.Note <= MaxNote &&
		a.Channel >= Channel1 && a.Channel <= Channel16 &&
		a.Cable < NumCables
}

func (a Address) String() string {
	return fmt.Sprintf("note=%d ch=%d cable=%d", a.Note, a.Channel, a.Cable)
}

// Overflow selects what happens when arithmetic leaves a field's range
type Overflow int

const (
	// Wrap reduces the result modulo the field's range, the way 7-bit
	// note numbers and 4-bit channel/cable numbers overflow on the wire.
	Wrap Overflow = iota
	// Clamp saturates at the nearest bound.
	Clamp
)

func (o Overflow) String() string {
	switch o {
	case Wrap:
		return "wrap"
	case Clamp:
		return "clamp"
	default:
		return fmt.Sprintf("Overflow(%d)", int(o))
	}
}

// ParseOverflow parses "wrap" or "clamp"
func ParseOverflow(s string) (Overflow, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wrap":
		return Wrap, nil
	case "clamp":
		return Clamp, nil
	default:
		return Wrap, fmt.Errorf("address: unknown overflow policy %q", s)
	}
}

// Field names an Address field that a bank can move
type Field int

const (
	FieldNote Field = iota
	FieldChannel
	FieldCable
)

// Transpose adds a signed semitone offset to the note number
func (a Address) Transpose(offset int8, policy Overflow) Address {
	a.Note = uint8(fit(int(a.Note)+int(offset), 0, MaxNote, policy))
	return a
}

// Shift moves one field by delta, keeping it inside its range
func (a Address) Shift(field Field, delta int, policy Overflow) Address {
	switch field {
	case FieldNote:
		a.Note = uint8(fit(int(a.Note)+delta, 0, MaxNote, policy))
	case FieldChannel:
		// channels are 1-based, so shift in 0-based space
		idx := fit(int(a.Channel.Index())+delta, 0, NumChannels-1, policy)
		a.Channel = Channel(idx + 1)
	case FieldCable:
		a.Cable = uint8(fit(int(a.Cable)+delta, 0, NumCables-1, policy))
	}
	return a
}

func fit(v, lo, hi int, policy Overflow) int {
	if policy == Clamp {
		return clamp(v, lo, hi)
	}
	return wrap(v, lo, hi)
}

func clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func wrap[T constraints.Signed](v, lo, hi T) T {
	n := hi - lo + 1
	r := (v - lo) % n
	if r < 0 {
		r += n
	}
	return lo + r
}
