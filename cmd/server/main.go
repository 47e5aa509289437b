// Package main is the entry point for the chordbutton API server
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/james-see/chordbutton/pkg/api"
	"github.com/james-see/chordbutton/pkg/config"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	port := flag.Int("port", cfg.Port, "Server port")
	chordName := flag.String("chord", cfg.Chord, "Chord preset name or offsets such as 3,7")
	out := flag.String("out", strings.Join(cfg.OutPorts, ","), "Comma separated MIDI output ports, one per cable")
	flag.Parse()

	cfg.Port = *port
	cfg.Chord = *chordName
	if *out != "" {
		cfg.OutPorts = strings.Split(*out, ",")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	fmt.Printf("Starting chordbutton API server on port %d...\n", cfg.Port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", cfg.Port)

	if err := api.StartServer(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
