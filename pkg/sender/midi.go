package sender

import (
	"errors"
	"fmt"
	"strings"

	"github.com/james-see/chordbutton/pkg/address"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Default note velocities
const (
	DefaultOnVelocity  = 0x7F
	DefaultOffVelocity = 0x7F
)

var (
	ErrNoPorts   = errors.New("sender: no MIDI output ports")
	ErrNoCable   = errors.New("sender: no output port for cable")
	ErrPortClose = errors.New("sender: close output ports")
	ErrNoEvents  = errors.New("sender: no events on cable")
)

// NoteSender sends note messages to MIDI output ports, one port per
// cable number. Send failures never reach the polling loop; the first
// pending one is available on Errors.
type NoteSender struct {
	outs        []drivers.Out
	onVelocity  uint8
	offVelocity uint8
	errorChan   chan error
}

// NoteOption configures a NoteSender
type NoteOption func(*NoteSender)

// WithVelocity sets the note-on and note-off velocities
func WithVelocity(on, off uint8) NoteOption {
	return func(s *NoteSender) {
		s.onVelocity = on & 0x7F
		s.offVelocity = off & 0x7F
	}
}

// NewNoteSender creates a NoteSender. outs[i] carries cable number i.
func NewNoteSender(outs []drivers.Out, opts ...NoteOption) (*NoteSender, error) {
	if len(outs) == 0 {
		return nil, ErrNoPorts
	}
	s := &NoteSender{
		outs:        outs,
		onVelocity:  DefaultOnVelocity,
		offVelocity: DefaultOffVelocity,
		errorChan:   make(chan error, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Open opens every output port that is not open yet
func (s *NoteSender) Open() error {
	for i, out := range s.outs {
		if out.IsOpen() {
			continue
		}
		if err := out.Open(); err != nil {
			return fmt.Errorf("sender: open cable %d (%s): %w", i, out, err)
		}
	}
	return nil
}

func (s *NoteSender) SendOn(addr address.Address) {
	s.send(addr, midi.NoteOn(addr.Channel.Index(), addr.Note, s.onVelocity))
}

func (s *NoteSender) SendOff(addr address.Address) {
	s.send(addr, midi.NoteOffVelocity(addr.Channel.Index(), addr.Note, s.offVelocity))
}

func (s *NoteSender) send(addr address.Address, msg midi.Message) {
	if int(addr.Cable) >= len(s.outs) {
		s.handleError(fmt.Errorf("%w %d", ErrNoCable, addr.Cable))
		return
	}
	if err := s.outs[addr.Cable].Send(msg); err != nil {
		s.handleError(fmt.Errorf("sender: %s to %v: %w", msg, addr, err))
	}
}

// Errors delivers send failures
func (s *NoteSender) Errors() <-chan error {
	return s.errorChan
}

// Close closes every output port
func (s *NoteSender) Close() error {
	var errs []error
	for _, out := range s.outs {
		if err := out.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrPortClose, errors.Join(errs...))
	}
	return nil
}

func (s *NoteSender) handleError(err error) {
	select {
	case s.errorChan <- err:
	default:
	}
}

// FindOutPorts looks up one output port per name, in cable order.
// Names are matched the way midi.FindOutPort matches them.
func FindOutPorts(names ...string) ([]drivers.Out, error) {
	if len(names) == 0 {
		return nil, ErrNoPorts
	}
	outs := make([]drivers.Out, 0, len(names))
	for _, name := range names {
		out, err := midi.FindOutPort(strings.TrimSpace(name))
		if err != nil {
			return nil, fmt.Errorf("can't find output %q: %w", name, err)
		}
		outs = append(outs, out)
	}
	return outs, nil
}

// OutPortNames lists the output ports of the registered driver
func OutPortNames() []string {
	var names []string
	for _, out := range midi.GetOutPorts() {
		names = append(names, out.String())
	}
	return names
}
