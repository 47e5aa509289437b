package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/james-see/chordbutton/pkg/button"
	"github.com/james-see/chordbutton/pkg/chord"
	"github.com/james-see/chordbutton/pkg/config"
	"github.com/james-see/chordbutton/pkg/sender"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) (Model, *button.VirtualPin, *sender.Recorder) {
	t.Helper()
	cfg := config.Default()
	cfg.Debounce = 0

	rec := sender.NewRecorder(0)
	pin := button.NewVirtualPin()
	cb, output, err := cfg.NewButton(pin, rec)
	require.NoError(t, err)

	m := New(cb, pin, output, rec, WithReleaseDelay(100*time.Millisecond))
	require.NotNil(t, m.Init())
	return m, pin, rec
}

func send(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func pollUntil(t *testing.T, m Model, cond func() bool) Model {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		require.True(t, time.Now().Before(deadline), "condition not met")
		time.Sleep(time.Millisecond)
		m = send(m, pollMsg(time.Now()))
	}
	return m
}

func TestSpacePlaysAndReleases(t *testing.T) {
	m, pin, rec := newTestModel(t)

	m = send(m, keyMsg(" "))
	assert.True(t, pin.Held())

	m = pollUntil(t, m, func() bool { return len(rec.Addresses(sender.KindOn)) == 3 })
	assert.Contains(t, m.View(), "SOUNDING")

	// release follows once the key stops repeating
	m = pollUntil(t, m, func() bool { return len(rec.Addresses(sender.KindOff)) == 3 })
	assert.False(t, pin.Held())
	assert.Equal(t, rec.Addresses(sender.KindOn), rec.Addresses(sender.KindOff))
	assert.Contains(t, m.View(), "idle")
}

func TestBankKeysWrap(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = send(m, keyMsg("left"))
	assert.Equal(t, 3, m.output.Bank.Selection())
	m = send(m, keyMsg("right"))
	m = send(m, keyMsg("right"))
	assert.Equal(t, 1, m.output.Bank.Selection())
	assert.Equal(t, uint8(72), m.button.Address().Note)
	assert.Contains(t, m.View(), "2/4 (address +12)")
}

func TestChordKeyCyclesPresets(t *testing.T) {
	m, _, _ := newTestModel(t)
	require.Equal(t, "major", m.nameOf(m.button.Chord()))

	m = send(m, keyMsg("c"))
	names := chord.Names()
	want, err := chord.Lookup(names[m.preset])
	require.NoError(t, err)
	assert.True(t, chord.Equal(want, m.button.Pending()))
	assert.Contains(t, m.View(), "Next")
}

func TestQuit(t *testing.T) {
	m, pin, _ := newTestModel(t)
	m = send(m, keyMsg(" "))
	require.True(t, pin.Held())

	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, pin.Held())
}

func TestQuitWhileSoundingReleasesChord(t *testing.T) {
	m, _, rec := newTestModel(t)

	m = send(m, keyMsg(" "))
	m = pollUntil(t, m, func() bool { return len(rec.Addresses(sender.KindOn)) == 3 })
	require.True(t, m.button.Pressed())

	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.Empty(t, rec.Sounding())
	assert.Equal(t, rec.Addresses(sender.KindOn), rec.Addresses(sender.KindOff))
	assert.False(t, m.button.Pressed())
}

func TestErrorShowsIssue(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = send(m, fault.Wrap(errors.New("pin busy"), fmsg.WithDesc("begin button", "Could not configure the button pin")))
	assert.Contains(t, m.View(), "Could not configure the button pin")
	assert.NotContains(t, m.View(), "pin busy")
}
