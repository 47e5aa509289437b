package sender

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/james-see/chordbutton/pkg/address"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	DefaultTicksPerQuarter = 960
	DefaultTempo           = 120.0
)

// TrackRecorder is a Sender that writes note events into a Standard MIDI
// File, one track per cable number. Delta times come from a clock.
type TrackRecorder struct {
	mu              sync.Mutex
	now             func() time.Time
	ticksPerQuarter uint16
	tempo           float64
	velocity        uint8

	start  time.Time
	tracks map[uint8]*trackState
}

type trackState struct {
	track    smf.Track
	lastTick uint32
}

// TrackOption configures a TrackRecorder
type TrackOption func(*TrackRecorder)

// WithTrackClock replaces time.Now
func WithTrackClock(now func() time.Time) TrackOption {
	return func(r *TrackRecorder) { r.now = now }
}

// WithTempo sets the tempo written to the file
func WithTempo(bpm float64) TrackOption {
	return func(r *TrackRecorder) {
		if bpm > 0 {
			r.tempo = bpm
		}
	}
}

// WithTrackVelocity sets the note-on velocity
func WithTrackVelocity(v uint8) TrackOption {
	return func(r *TrackRecorder) { r.velocity = v & 0x7F }
}

// NewTrackRecorder creates a TrackRecorder starting at the current clock time
func NewTrackRecorder(opts ...TrackOption) *TrackRecorder {
	r := &TrackRecorder{
		now:             time.Now,
		ticksPerQuarter: DefaultTicksPerQuarter,
		tempo:           DefaultTempo,
		velocity:        DefaultOnVelocity,
		tracks:          make(map[uint8]*trackState),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.start = r.now()
	return r
}

func (r *TrackRecorder) SendOn(addr address.Address) {
	r.add(addr.Cable, midi.NoteOn(addr.Channel.Index(), addr.Note, r.velocity))
}

func (r *TrackRecorder) SendOff(addr address.Address) {
	r.add(addr.Cable, midi.NoteOff(addr.Channel.Index(), addr.Note))
}

func (r *TrackRecorder) add(cable uint8, msg midi.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts, ok := r.tracks[cable]
	if !ok {
		ts = &trackState{}
		r.tracks[cable] = ts
	}
	tick := r.tickAt(r.now())
	if tick < ts.lastTick {
		tick = ts.lastTick
	}
	ts.track.Add(tick-ts.lastTick, msg)
	ts.lastTick = tick
}

// tickAt converts elapsed wall time to ticks at the recorder's tempo
func (r *TrackRecorder) tickAt(t time.Time) uint32 {
	elapsed := t.Sub(r.start)
	if elapsed < 0 {
		return 0
	}
	quarter := time.Duration(float64(time.Minute) / r.tempo)
	return uint32(elapsed * time.Duration(r.ticksPerQuarter) / quarter)
}

// WriteTo writes the recorded tracks as a Standard MIDI File. The first
// track always belongs to cable 0 and carries the tempo, even when cable 0
// has no events. Other cables with events follow in ascending order.
func (r *TrackRecorder) WriteTo(w io.Writer) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(r.ticksPerQuarter)

	microsecondsPerBeat := uint32(60000000.0 / r.tempo)
	tempo := smf.Message([]byte{
		0xFF, 0x51, 0x03,
		byte(microsecondsPerBeat >> 16),
		byte(microsecondsPerBeat >> 8),
		byte(microsecondsPerBeat),
	})

	for cable := 0; cable < address.NumCables; cable++ {
		ts, ok := r.tracks[uint8(cable)]
		if !ok && cable != 0 {
			continue
		}
		var track smf.Track
		if cable == 0 {
			track.Add(0, tempo)
		}
		if ok {
			track = append(track, ts.track...)
		}
		track.Close(0)
		if err := s.Add(track); err != nil {
			return 0, fmt.Errorf("failed to add track for cable %d: %w", cable, err)
		}
	}

	n, err := s.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return n, nil
}

// Ticks returns the tick position of the last event on a cable
func (r *TrackRecorder) Ticks(cable uint8) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ts, ok := r.tracks[cable]
	if !ok {
		return 0, fmt.Errorf("%w %d", ErrNoEvents, cable)
	}
	return ts.lastTick, nil
}
