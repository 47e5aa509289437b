// Package chord provides immutable chords of semitone offsets
package chord

import (
	"fmt"
	"strings"
)

// Chord is an ordered, immutable set of signed semitone offsets
// layered above a base note
type Chord interface {
	Len() int
	At(i int) int8
}

// Fixed is a chord of exactly N offsets
type Fixed[N ~[2]int8 | ~[3]int8 | ~[4]int8] struct {
	offsets N
}

func (c Fixed[N]) Len() int { return len(c.offsets) }

func (c Fixed[N]) At(i int) int8 { return c.offsets[i] }

// Two creates a two-interval chord
func Two(a, b int8) Chord {
	return Fixed[[2]int8]{offsets: [2]int8{a, b}}
}

// Three creates a three-interval chord
func Three(a, b, c int8) Chord {
	return Fixed[[3]int8]{offsets: [3]int8{a, b, c}}
}

// Four creates a four-interval chord
func Four(a, b, c, d int8) Chord {
	return Fixed[[4]int8]{offsets: [4]int8{a, b, c, d}}
}

// list holds offsets of a size only known at runtime
type list struct {
	offsets []int8
}

func (c list) Len() int { return len(c.offsets) }

func (c list) At(i int) int8 { return c.offsets[i] }

// Of creates a chord from any number of offsets. The offsets are copied.
func Of(offsets ...int8) Chord {
	switch len(offsets) {
	case 2:
		return Two(offsets[0], offsets[1])
	case 3:
		return Three(offsets[0], offsets[1], offsets[2])
	case 4:
		return Four(offsets[0], offsets[1], offsets[2], offsets[3])
	}
	cp := make([]int8, len(offsets))
	copy(cp, offsets)
	return list{offsets: cp}
}

// Offsets returns a copy of the chord's offsets in stored order
func Offsets(c Chord) []int8 {
	if c == nil {
		return nil
	}
	out := make([]int8, c.Len())
	for i := range out {
		out[i] = c.At(i)
	}
	return out
}

// Equal reports whether two chords have the same offsets in the same order
func Equal(a, b Chord) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if a.At(i) != b.At(i) {
			return false
		}
	}
	return true
}

// Format renders a chord as "[+3 +7]"
func Format(c Chord) string {
	if c == nil {
		return "[]"
	}
	parts := make([]string, c.Len())
	for i := range parts {
		parts[i] = fmt.Sprintf("%+d", c.At(i))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
