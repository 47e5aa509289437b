// Package sender provides the note-on/note-off boundary of chord buttons
// and the transports behind it
package sender

import (
	"github.com/james-see/chordbutton/pkg/address"
)

// Sender emits note events for resolved addresses. Implementations report
// transport failures out of band; the polling loop never blocks on them.
type Sender interface {
	SendOn(addr address.Address)
	SendOff(addr address.Address)
}

type tee []Sender

// Tee returns a Sender that forwards every event to each of senders in order
func Tee(senders ...Sender) Sender {
	return tee(senders)
}

func (t tee) SendOn(addr address.Address) {
	for _, s := range t {
		s.SendOn(addr)
	}
}

func (t tee) SendOff(addr address.Address) {
	for _, s := range t {
		s.SendOff(addr)
	}
}
