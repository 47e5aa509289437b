// Package main is the entry point for the chordbutton CLI
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/james-see/chordbutton/pkg/api"
	"github.com/james-see/chordbutton/pkg/button"
	"github.com/james-see/chordbutton/pkg/chord"
	"github.com/james-see/chordbutton/pkg/chordbutton"
	"github.com/james-see/chordbutton/pkg/config"
	"github.com/james-see/chordbutton/pkg/sender"
	"github.com/james-see/chordbutton/pkg/tui"
	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfg    config.Config
	envErr error

	outputFile string
	sim        simulation
)

// simulation describes the presses the render command plays
type simulation struct {
	presses   int
	hold      time.Duration
	gap       time.Duration
	walkBanks bool
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chordbutton",
	Short: "Play chords from a single bankable MIDI button",
	Long: `chordbutton turns one momentary button into a chord: pressing it sends
note-ons for a base note plus a set of semitone offsets, releasing it sends
the matching note-offs. Bank changes move the base note, channel or cable
without ever leaving a note hanging.

Settings come from flags or CHORDBUTTON_* environment variables.

Examples:
  chordbutton chords
  chordbutton ports
  chordbutton play --out "IAC Driver Bus 1" --chord minor7
  chordbutton render -o chords.mid --presses 8 --walk-banks
  chordbutton serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envErr != nil {
			return envErr
		}
		return cfg.Validate()
	},
	SilenceUsage: true,
}

var chordsCmd = &cobra.Command{
	Use:   "chords",
	Short: "List chord presets",
	Args:  cobra.NoArgs,
	RunE:  runChords,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI output ports",
	Args:  cobra.NoArgs,
	RunE:  runPorts,
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the button from the keyboard into MIDI output ports",
	Long:  `Opens the ports given with --out (one per cable number) and launches the terminal UI.`,
	Args:  cobra.NoArgs,
	RunE:  runPlay,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI without MIDI output",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render simulated button presses to a MIDI file",
	Args:  cobra.NoArgs,
	RunE:  runRender,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	cfg, envErr = config.Load()

	// Global flags
	cfg.BindFlags(rootCmd.PersistentFlags())

	// render command
	renderCmd.Flags().StringVarP(&outputFile, "output", "o", "chordbutton.mid", "Output .mid file path")
	renderCmd.Flags().IntVar(&sim.presses, "presses", 4, "Number of button presses")
	renderCmd.Flags().DurationVar(&sim.hold, "hold", 500*time.Millisecond, "How long each press is held")
	renderCmd.Flags().DurationVar(&sim.gap, "gap", 250*time.Millisecond, "Pause between presses")
	renderCmd.Flags().BoolVar(&sim.walkBanks, "walk-banks", false, "Select the next bank while each press is held")

	// serve command
	serveCmd.Flags().IntVarP(&cfg.Port, "port", "p", cfg.Port, "Server port")

	// Add commands
	rootCmd.AddCommand(chordsCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(serveCmd)
}

func runChords(cmd *cobra.Command, args []string) error {
	for _, name := range chord.Names() {
		c, err := chord.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Printf("%-12s %s\n", name, chord.Format(c))
	}
	return nil
}

func runPorts(cmd *cobra.Command, args []string) error {
	names := sender.OutPortNames()
	if len(names) == 0 {
		fmt.Println("No MIDI output ports found")
		return nil
	}
	for i, name := range names {
		fmt.Printf("%2d: %s\n", i, name)
	}
	return nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	if len(cfg.OutPorts) == 0 {
		return fmt.Errorf("no output ports given, use --out (see 'chordbutton ports')")
	}
	outs, err := sender.FindOutPorts(cfg.OutPorts...)
	if err != nil {
		return err
	}
	notes, err := sender.NewNoteSender(outs, sender.WithVelocity(cfg.Velocity, sender.DefaultOffVelocity))
	if err != nil {
		return err
	}
	if err := notes.Open(); err != nil {
		return err
	}
	defer func() { _ = notes.Close() }()

	if err := tui.Run(cfg, notes); err != nil {
		return err
	}
	select {
	case err := <-notes.Errors():
		return fmt.Errorf("MIDI output failed during play: %w", err)
	default:
		return nil
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run(cfg)
}

func runRender(cmd *cobra.Command, args []string) error {
	f, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := render(cfg, sim, f); err != nil {
		return err
	}
	fmt.Printf("Rendered %d presses -> %s\n", sim.presses, outputFile)
	return nil
}

// render simulates presses on a virtual pin with a stepped clock and writes
// the resulting notes as a Standard MIDI File
func render(cfg config.Config, sim simulation, w io.Writer) error {
	if sim.presses < 0 || sim.hold <= cfg.Debounce || sim.gap <= cfg.Debounce {
		return fmt.Errorf("hold and gap must be longer than the debounce time %v", cfg.Debounce)
	}

	clock := time.Unix(0, 0)
	now := func() time.Time { return clock }

	base, err := cfg.Address()
	if err != nil {
		return err
	}
	c, err := cfg.ParseChord()
	if err != nil {
		return err
	}
	output, err := cfg.Bank()
	if err != nil {
		return err
	}
	opts, err := cfg.ButtonOptions()
	if err != nil {
		return err
	}
	opts = append(opts, chordbutton.WithButtonOptions(button.WithClock(now)))

	track := sender.NewTrackRecorder(sender.WithTrackClock(now), sender.WithTrackVelocity(cfg.Velocity))
	pin := button.NewVirtualPin()
	cb := chordbutton.New(output, pin, base, c, track, opts...)
	loop := chordbutton.NewLoop(cfg.PollInterval, cb)

	if err := cb.Begin(); err != nil {
		return err
	}
	advance := func(d time.Duration) {
		for end := clock.Add(d); clock.Before(end); {
			clock = clock.Add(time.Millisecond)
			loop.Poll()
		}
	}

	for i := 0; i < sim.presses; i++ {
		pin.Press()
		advance(sim.hold / 2)
		if sim.walkBanks {
			if err := output.Bank.Select((output.Bank.Selection() + 1) % output.Bank.NumBanks()); err != nil {
				return err
			}
		}
		advance(sim.hold - sim.hold/2)
		pin.Release()
		advance(sim.gap)
	}

	_, err = track.WriteTo(w)
	return err
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", cfg.Port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", cfg.Port)
	return api.StartServer(cfg)
}
