// Package tui provides a terminal user interface for playing a chord button
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/bep/debounce"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/chordbutton/pkg/bank"
	"github.com/james-see/chordbutton/pkg/button"
	"github.com/james-see/chordbutton/pkg/chord"
	"github.com/james-see/chordbutton/pkg/chordbutton"
	"github.com/james-see/chordbutton/pkg/config"
	"github.com/james-see/chordbutton/pkg/sender"
)

// Acid-inspired color scheme
var (
	acidGreen  = lipgloss.Color("#39FF14")
	acidYellow = lipgloss.Color("#FFFF00")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(acidGreen).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			Width(10)

	valueStyle = lipgloss.NewStyle().
			Foreground(acidGreen).
			Bold(true)

	pendingStyle = lipgloss.NewStyle().
			Foreground(acidYellow)

	statusStyle = lipgloss.NewStyle().
			Foreground(acidYellow).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(acidGreen).
			Padding(1, 2)
)

// Terminals report no key-up events and start key repeat after a few
// hundred milliseconds, so the release fires once repeat has stopped for
// this long.
const DefaultReleaseDelay = 600 * time.Millisecond

// DefaultPollInterval is how often the model polls the button
const DefaultPollInterval = 5 * time.Millisecond

const recentEvents = 8

// pollMsg asks the model to poll the button
type pollMsg time.Time

type keyMap struct {
	Press     key.Binding
	BankDown  key.Binding
	BankUp    key.Binding
	NextChord key.Binding
	Invert    key.Binding
	Quit      key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Press, k.BankDown, k.BankUp, k.NextChord, k.Invert, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Press:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play")),
	BankDown:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "bank down")),
	BankUp:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "bank up")),
	NextChord: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "next chord")),
	Invert:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "invert")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model represents the TUI model. The button is only touched from
// Update, which bubbletea calls from a single goroutine.
type Model struct {
	button   *chordbutton.ChordButton
	pin      *button.VirtualPin
	output   bank.OutputConfig
	recorder *sender.Recorder
	spinner  spinner.Model
	help     help.Model

	release  func(func())
	interval time.Duration
	presets  []string
	preset   int
	err      error
}

// Option configures a Model
type Option func(*Model)

// WithReleaseDelay sets how long after the last space key the button is released
func WithReleaseDelay(d time.Duration) Option {
	return func(m *Model) { m.release = debounce.New(d) }
}

// WithPollInterval sets the polling interval
func WithPollInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.interval = d
		}
	}
}

// New creates a new TUI model. rec receives the button's note events.
func New(cb *chordbutton.ChordButton, pin *button.VirtualPin, output bank.OutputConfig, rec *sender.Recorder, opts ...Option) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(acidGreen)

	m := Model{
		button:   cb,
		pin:      pin,
		output:   output,
		recorder: rec,
		spinner:  s,
		help:     help.New(),
		release:  debounce.New(DefaultReleaseDelay),
		interval: DefaultPollInterval,
		presets:  chord.Names(),
		preset:   -1,
	}
	for _, opt := range opts {
		opt(&m)
	}
	for i, name := range m.presets {
		if c, _ := chord.Lookup(name); chord.Equal(c, cb.Chord()) {
			m.preset = i
			break
		}
	}
	return m
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	if err := m.button.Begin(); err != nil {
		err = fault.Wrap(err, fmsg.WithDesc("begin button", "Could not configure the button pin"))
		return func() tea.Msg { return err }
	}
	return tea.Batch(m.spinner.Tick, m.poll())
}

func (m Model) poll() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return pollMsg(t) })
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKeys(msg)

	case pollMsg:
		m.button.Update()
		return m, m.poll()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case error:
		m.err = msg
		return m, nil
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Press):
		m.pin.Press()
		m.release(m.pin.Release)
	case key.Matches(msg, keys.BankDown):
		m.selectBank(-1)
	case key.Matches(msg, keys.BankUp):
		m.selectBank(1)
	case key.Matches(msg, keys.NextChord):
		if len(m.presets) > 0 {
			m.preset = (m.preset + 1) % len(m.presets)
			c, err := chord.Lookup(m.presets[m.preset])
			if err != nil {
				m.err = fault.Wrap(err, fmsg.With("next chord"))
				break
			}
			m.button.SetChord(c)
		}
	case key.Matches(msg, keys.Invert):
		m.button.Invert()
	case key.Matches(msg, keys.Quit):
		m.pin.Release()
		m.button.Release()
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) selectBank(delta int) {
	b := m.output.Bank
	if b == nil {
		return
	}
	sel := (b.Selection() + delta + b.NumBanks()) % b.NumBanks()
	if err := b.Select(sel); err != nil {
		m.err = fault.Wrap(err, fmsg.WithDesc("select bank", fmt.Sprintf("Bank %d is not available", sel+1)))
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(asciiLogo())
	s.WriteString("\n")
	s.WriteString(m.viewButton())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.View(keys)))

	return s.String()
}

func (m Model) viewButton() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" CHORD BUTTON "))
	s.WriteString("\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label))
		s.WriteString(value)
		s.WriteString("\n")
	}

	if b := m.output.Bank; b != nil {
		var cells []string
		for i := 0; i < b.NumBanks(); i++ {
			if i == b.Selection() {
				cells = append(cells, valueStyle.Render("■"))
			} else {
				cells = append(cells, "□")
			}
		}
		row("Bank", fmt.Sprintf("%s  %d/%d (%s +%d)", strings.Join(cells, " "), b.Selection()+1, b.NumBanks(), m.output.Type, b.TracksPerBank()))
	}

	row("Chord", valueStyle.Render(fmt.Sprintf("%s %s", m.nameOf(m.button.Chord()), chord.Format(m.button.Chord()))))
	if p := m.button.Pending(); p != nil {
		row("Next", pendingStyle.Render(fmt.Sprintf("%s %s", m.nameOf(p), chord.Format(p))))
	}

	var notes []string
	for _, a := range m.button.Notes() {
		notes = append(notes, fmt.Sprint(a.Note))
	}
	row("Notes", strings.Join(notes, " "))
	row("Address", m.button.Address().String())

	if m.button.Pressed() {
		s.WriteString(statusStyle.Render(fmt.Sprintf("%s SOUNDING %d notes", m.spinner.View(), len(m.recorder.Sounding()))))
	} else {
		s.WriteString(statusStyle.Render("  idle"))
	}
	s.WriteString("\n\n")

	events := m.recorder.Events()
	if len(events) > recentEvents {
		events = events[len(events)-recentEvents:]
	}
	for _, e := range events {
		s.WriteString(eventStyle.Render(fmt.Sprintf("%-3s %s", e.Kind, e.Address)))
		s.WriteString("\n")
	}

	if m.err != nil {
		issue := fmsg.GetIssue(m.err)
		if issue == "" {
			issue = m.err.Error()
		}
		s.WriteString("\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s", issue)))
	}

	return boxStyle.Render(s.String())
}

// nameOf returns the preset name of c, or "custom"
func (m Model) nameOf(c chord.Chord) string {
	for _, name := range m.presets {
		if p, _ := chord.Lookup(name); chord.Equal(p, c) {
			return name
		}
	}
	return "custom"
}

func asciiLogo() string {
	logo := `
   ____ _   _  ___  ____  ____  ____  _   _ _____ _____ ___  _   _
  / ___| | | |/ _ \|  _ \|  _ \| __ )| | | |_   _|_   _/ _ \| \ | |
 | |   | |_| | | | | |_) | | | |  _ \| | | | | |   | || | | |  \| |
 | |___|  _  | |_| |  _ <| |_| | |_) | |_| | | |   | || |_| | |\  |
  \____|_| |_|\___/|_| \_\____/|____/ \___/  |_|   |_| \___/|_| \_|
`
	return lipgloss.NewStyle().Foreground(acidGreen).Render(logo)
}

// Run starts the TUI application for the button described by cfg. Note
// events also go to out.
func Run(cfg config.Config, out ...sender.Sender) error {
	rec := sender.NewRecorder(recentEvents * 4)
	var s sender.Sender = rec
	if len(out) > 0 {
		s = sender.Tee(append([]sender.Sender{rec}, out...)...)
	}

	pin := button.NewVirtualPin()
	cb, output, err := cfg.NewButton(pin, s)
	if err != nil {
		return fault.Wrap(err, fmsg.With("build chord button"))
	}

	p := tea.NewProgram(New(cb, pin, output, rec, WithPollInterval(cfg.PollInterval)), tea.WithAltScreen())
	_, err = p.Run()
	cb.Release()
	return err
}
