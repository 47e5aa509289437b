package sender

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/james-see/chordbutton/pkg/address"
)

// Kind is the type of a recorded note event
type Kind string

const (
	KindOn  Kind = "on"
	KindOff Kind = "off"
)

// Event is a single recorded note event
type Event struct {
	ID      string          `json:"id"`
	Kind    Kind            `json:"kind"`
	Address address.Address `json:"address"`
	At      time.Time       `json:"at"`
}

// Recorder is a Sender that keeps every event in order. It is safe to read
// from other goroutines while the polling loop writes to it.
type Recorder struct {
	mu     sync.Mutex
	now    func() time.Time
	limit  int
	events []Event
}

// NewRecorder creates a Recorder keeping at most limit events (0 = unlimited)
func NewRecorder(limit int) *Recorder {
	return &Recorder{now: time.Now, limit: limit}
}

func (r *Recorder) SendOn(addr address.Address) { r.record(KindOn, addr) }

func (r *Recorder) SendOff(addr address.Address) { r.record(KindOff, addr) }

func (r *Recorder) record(kind Kind, addr address.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{
		ID:      uuid.NewString(),
		Kind:    kind,
		Address: addr,
		At:      r.now(),
	})
	if r.limit > 0 && len(r.events) > r.limit {
		r.events = append(r.events[:0:0], r.events[len(r.events)-r.limit:]...)
	}
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Addresses returns the addresses of the recorded events of one kind
func (r *Recorder) Addresses(kind Kind) []address.Address {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []address.Address
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e.Address)
		}
	}
	return out
}

// Sounding returns the notes that have been switched on and not yet off
func (r *Recorder) Sounding() []address.Address {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := make(map[address.Address]int)
	var order []address.Address
	for _, e := range r.events {
		switch e.Kind {
		case KindOn:
			if _, seen := count[e.Address]; !seen {
				order = append(order, e.Address)
			}
			count[e.Address]++
		case KindOff:
			if count[e.Address] > 0 {
				count[e.Address]--
			}
		}
	}
	var out []address.Address
	for _, a := range order {
		if count[a] > 0 {
			out = append(out, a)
		}
	}
	return out
}

// Reset drops all recorded events
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
