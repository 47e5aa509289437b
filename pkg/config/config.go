// Package config holds the settings shared by the chordbutton commands
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/james-see/chordbutton/pkg/address"
	"github.com/james-see/chordbutton/pkg/bank"
	"github.com/james-see/chordbutton/pkg/button"
	"github.com/james-see/chordbutton/pkg/chord"
	"github.com/james-see/chordbutton/pkg/chordbutton"
	"github.com/james-see/chordbutton/pkg/sender"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "CHORDBUTTON_"

var ErrInvalid = errors.New("config: invalid setting")

// Config describes one chord button and its surroundings
type Config struct {
	Note    int
	Channel int
	Cable   int
	Chord   string

	BankType      string
	TracksPerBank int
	NumBanks      int

	Debounce     time.Duration
	PollInterval time.Duration
	Overflow     string
	Inverted     bool

	Velocity uint8
	OutPorts []string

	Port int
}

// Default returns the built-in settings: middle C on channel 1 playing a
// major triad, four banks of twelve semitones.
func Default() Config {
	return Config{
		Note:          60,
		Channel:       1,
		Cable:         0,
		Chord:         "major",
		BankType:      "address",
		TracksPerBank: 12,
		NumBanks:      4,
		Debounce:      button.DefaultDebounce,
		PollInterval:  chordbutton.DefaultPollInterval,
		Overflow:      "wrap",
		Velocity:      0x7F,
		Port:          8080,
	}
}

// Load returns the defaults with environment overrides applied
func Load() (Config, error) {
	c := Default()
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return c, err
	}
	return c, nil
}

// ApplyEnv overrides settings from CHORDBUTTON_* variables
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	ints := map[string]*int{
		"NOTE":            &c.Note,
		"CHANNEL":         &c.Channel,
		"CABLE":           &c.Cable,
		"TRACKS_PER_BANK": &c.TracksPerBank,
		"NUM_BANKS":       &c.NumBanks,
		"PORT":            &c.Port,
	}
	for key, dst := range ints {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q: %v", ErrInvalid, EnvPrefix, key, v, err)
		}
		*dst = n
	}

	strs := map[string]*string{
		"CHORD":     &c.Chord,
		"BANK_TYPE": &c.BankType,
		"OVERFLOW":  &c.Overflow,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"DEBOUNCE":      &c.Debounce,
		"POLL_INTERVAL": &c.PollInterval,
	}
	for key, dst := range durations {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q: %v", ErrInvalid, EnvPrefix, key, v, err)
		}
		*dst = d
	}

	if v, ok := lookup(EnvPrefix + "VELOCITY"); ok {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 0, 8)
		if err != nil || n > 127 {
			return fmt.Errorf("%w: %sVELOCITY=%q", ErrInvalid, EnvPrefix, v)
		}
		c.Velocity = uint8(n)
	}
	if v, ok := lookup(EnvPrefix + "INVERTED"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %sINVERTED=%q", ErrInvalid, EnvPrefix, v)
		}
		c.Inverted = b
	}
	if v, ok := lookup(EnvPrefix + "OUT_PORTS"); ok && strings.TrimSpace(v) != "" {
		c.OutPorts = strings.Split(v, ",")
	}
	return nil
}

// BindFlags registers flags that write into c
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.IntVarP(&c.Note, "note", "n", c.Note, "Base note number [0, 127]")
	fs.IntVarP(&c.Channel, "channel", "c", c.Channel, "MIDI channel [1, 16]")
	fs.IntVar(&c.Cable, "cable", c.Cable, "Cable number [0, 15]")
	fs.StringVar(&c.Chord, "chord", c.Chord, "Chord preset name or offsets such as 3,7")
	fs.StringVar(&c.BankType, "bank-type", c.BankType, "Field the bank changes: address, channel or cable")
	fs.IntVar(&c.TracksPerBank, "tracks-per-bank", c.TracksPerBank, "Offset between consecutive banks")
	fs.IntVar(&c.NumBanks, "banks", c.NumBanks, "Number of banks")
	fs.DurationVar(&c.Debounce, "debounce", c.Debounce, "Button debounce time")
	fs.DurationVar(&c.PollInterval, "poll", c.PollInterval, "Polling interval")
	fs.StringVar(&c.Overflow, "overflow", c.Overflow, "Note overflow policy: wrap or clamp")
	fs.BoolVar(&c.Inverted, "invert", c.Inverted, "Active-high button polarity")
	fs.Uint8Var(&c.Velocity, "velocity", c.Velocity, "Note-on velocity")
	fs.StringSliceVar(&c.OutPorts, "out", c.OutPorts, "MIDI output port per cable number")
}

// Validate checks every setting. Errors wrap ErrInvalid or the range
// errors of the address package.
func (c Config) Validate() error {
	if _, err := c.Address(); err != nil {
		return err
	}
	if _, err := c.ParseChord(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := bank.ParseType(c.BankType); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := address.ParseOverflow(c.Overflow); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.TracksPerBank <= 0 || c.NumBanks <= 0 {
		return fmt.Errorf("%w: banks and tracks per bank must be positive", ErrInvalid)
	}
	if c.Debounce < 0 || c.PollInterval < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalid)
	}
	if c.Velocity > 127 {
		return fmt.Errorf("%w: velocity %d above 127", ErrInvalid, c.Velocity)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalid, c.Port)
	}
	return nil
}

// Address returns the validated base address
func (c Config) Address() (address.Address, error) {
	return address.New(c.Note, c.Channel, c.Cable)
}

// ParseChord resolves the Chord setting, either a preset name or a comma
// separated list of offsets
func (c Config) ParseChord() (chord.Chord, error) {
	return ParseChord(c.Chord)
}

// ParseChord resolves a preset name or offsets such as "3,7" or "-12, 12"
func ParseChord(s string) (chord.Chord, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "none" {
		return chord.Of(), nil
	}
	if c, err := chord.Lookup(s); err == nil {
		return c, nil
	} else if !strings.ContainsAny(s, "0123456789") {
		return nil, err
	}
	var offsets []int8
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 8)
		if err != nil {
			return nil, fmt.Errorf("chord offset %q: %w", part, err)
		}
		offsets = append(offsets, int8(n))
	}
	return chord.Of(offsets...), nil
}

// Bank builds the bank configuration
func (c Config) Bank() (bank.OutputConfig, error) {
	typ, err := bank.ParseType(c.BankType)
	if err != nil {
		return bank.OutputConfig{}, err
	}
	b, err := bank.New(c.TracksPerBank, c.NumBanks)
	if err != nil {
		return bank.OutputConfig{}, err
	}
	return bank.OutputConfig{Bank: b, Type: typ}, nil
}

// ButtonOptions returns the chord button options implied by the settings
func (c Config) ButtonOptions() ([]chordbutton.Option, error) {
	policy, err := address.ParseOverflow(c.Overflow)
	if err != nil {
		return nil, err
	}
	btn := []button.Option{button.WithDebounce(c.Debounce)}
	if c.Inverted {
		btn = append(btn, button.Inverted())
	}
	return []chordbutton.Option{
		chordbutton.WithOverflow(policy),
		chordbutton.WithButtonOptions(btn...),
	}, nil
}

// NewButton builds a chord button from the settings
func (c Config) NewButton(pin button.Pin, s sender.Sender) (*chordbutton.ChordButton, bank.OutputConfig, error) {
	if err := c.Validate(); err != nil {
		return nil, bank.OutputConfig{}, err
	}
	base, err := c.Address()
	if err != nil {
		return nil, bank.OutputConfig{}, err
	}
	ch, err := c.ParseChord()
	if err != nil {
		return nil, bank.OutputConfig{}, err
	}
	cfg, err := c.Bank()
	if err != nil {
		return nil, bank.OutputConfig{}, err
	}
	opts, err := c.ButtonOptions()
	if err != nil {
		return nil, bank.OutputConfig{}, err
	}
	return chordbutton.New(cfg, pin, base, ch, s, opts...), cfg, nil
}
