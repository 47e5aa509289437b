package chord

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Semitone intervals
const (
	Unison        int8 = 0
	MinorSecond   int8 = 1
	MajorSecond   int8 = 2
	MinorThird    int8 = 3
	MajorThird    int8 = 4
	PerfectFourth int8 = 5
	Tritone       int8 = 6
	PerfectFifth  int8 = 7
	MinorSixth    int8 = 8
	MajorSixth    int8 = 9
	MinorSeventh  int8 = 10
	MajorSeventh  int8 = 11
	Octave        int8 = 12
)

var (
	Major      = Two(MajorThird, PerfectFifth)
	Minor      = Two(MinorThird, PerfectFifth)
	Diminished = Two(MinorThird, Tritone)
	Augmented  = Two(MajorThird, MinorSixth)
	Suspended2 = Two(MajorSecond, PerfectFifth)
	Suspended4 = Two(PerfectFourth, PerfectFifth)

	Major7      = Three(MajorThird, PerfectFifth, MajorSeventh)
	Minor7      = Three(MinorThird, PerfectFifth, MinorSeventh)
	Dominant7   = Three(MajorThird, PerfectFifth, MinorSeventh)
	Diminished7 = Three(MinorThird, Tritone, MajorSixth)

	PowerChord = Two(PerfectFifth, Octave)
	Octaves    = Two(Octave, -Octave)
)

var ErrUnknownChord = errors.New("chord: unknown chord name")

var presets = map[string]Chord{
	"major":       Major,
	"minor":       Minor,
	"diminished":  Diminished,
	"augmented":   Augmented,
	"sus2":        Suspended2,
	"sus4":        Suspended4,
	"major7":      Major7,
	"minor7":      Minor7,
	"dominant7":   Dominant7,
	"diminished7": Diminished7,
	"power":       PowerChord,
	"octaves":     Octaves,
}

// Lookup returns the preset with the given name
func Lookup(name string) (Chord, error) {
	c, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChord, name)
	}
	return c, nil
}

// Names returns the preset names in sorted order
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
