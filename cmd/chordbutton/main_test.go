package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/james-see/chordbutton/pkg/config"
	"gitlab.com/gomidi/midi/v2/smf"
)

func renderedNotes(t *testing.T, c config.Config, s simulation) (ons, offs []uint8) {
	t.Helper()
	var buf bytes.Buffer
	if err := render(c, s, &buf); err != nil {
		t.Fatalf("render() error = %v", err)
	}
	file, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("smf.ReadFrom() error = %v", err)
	}
	for _, track := range file.Tracks {
		for _, ev := range track {
			var ch, key, vel uint8
			switch {
			case ev.Message.GetNoteOn(&ch, &key, &vel):
				ons = append(ons, key)
			case ev.Message.GetNoteOff(&ch, &key, &vel):
				offs = append(offs, key)
			}
		}
	}
	return ons, offs
}

func TestRender(t *testing.T) {
	c := config.Default()
	c.Chord = "3,7"

	ons, offs := renderedNotes(t, c, simulation{presses: 2, hold: 100 * time.Millisecond, gap: 100 * time.Millisecond})

	want := []uint8{60, 63, 67, 60, 63, 67}
	if !bytes.Equal(ons, want) {
		t.Errorf("note ons = %v, want %v", ons, want)
	}
	if !bytes.Equal(offs, want) {
		t.Errorf("note offs = %v, want %v", offs, want)
	}
}

func TestRenderWalkBanks(t *testing.T) {
	c := config.Default()
	c.Chord = "none"

	ons, offs := renderedNotes(t, c, simulation{presses: 3, hold: 100 * time.Millisecond, gap: 100 * time.Millisecond, walkBanks: true})

	// every note off matches its note on even though the bank moved mid-press
	want := []uint8{60, 72, 84}
	if !bytes.Equal(ons, want) {
		t.Errorf("note ons = %v, want %v", ons, want)
	}
	if !bytes.Equal(offs, want) {
		t.Errorf("note offs = %v, want %v", offs, want)
	}
}

func TestRenderRejectsShortHold(t *testing.T) {
	c := config.Default()
	var buf bytes.Buffer
	if err := render(c, simulation{presses: 1, hold: time.Millisecond, gap: time.Second}, &buf); err == nil {
		t.Error("render() should reject a hold shorter than the debounce time")
	}
}
