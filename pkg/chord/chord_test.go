package chord

import (
	"errors"
	"testing"
)

func TestFixedSizes(t *testing.T) {
	tests := []struct {
		name  string
		chord Chord
		want  []int8
	}{
		{"two", Two(3, 7), []int8{3, 7}},
		{"three", Three(4, 7, 11), []int8{4, 7, 11}},
		{"four", Four(4, 7, 11, 14), []int8{4, 7, 11, 14}},
		{"of five", Of(1, 2, 3, 4, 5), []int8{1, 2, 3, 4, 5}},
		{"of one", Of(-12), []int8{-12}},
		{"empty", Of(), []int8{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.chord.Len() != len(tt.want) {
				t.Fatalf("Len() = %d, want %d", tt.chord.Len(), len(tt.want))
			}
			for i, w := range tt.want {
				if got := tt.chord.At(i); got != w {
					t.Errorf("At(%d) = %d, want %d", i, got, w)
				}
			}
		})
	}
}

func TestOfCopiesInput(t *testing.T) {
	offsets := []int8{1, 2, 3, 4, 5}
	c := Of(offsets...)
	offsets[0] = 99
	if c.At(0) != 1 {
		t.Errorf("chord changed after caller mutated its slice: At(0) = %d", c.At(0))
	}

	out := Offsets(c)
	out[1] = 99
	if c.At(1) != 2 {
		t.Errorf("chord changed after mutating Offsets() result: At(1) = %d", c.At(1))
	}
}

func TestEqual(t *testing.T) {
	if !Equal(Two(3, 7), Of(3, 7)) {
		t.Error("Two(3, 7) should equal Of(3, 7)")
	}
	if Equal(Two(3, 7), Two(7, 3)) {
		t.Error("order must matter")
	}
	if Equal(Two(3, 7), Three(3, 7, 10)) {
		t.Error("different sizes must differ")
	}
	if !Equal(nil, nil) || Equal(Major, nil) {
		t.Error("nil handling is wrong")
	}
}

func TestFormat(t *testing.T) {
	if got := Format(Octaves); got != "[+12 -12]" {
		t.Errorf("Format(Octaves) = %q", got)
	}
	if got := Format(nil); got != "[]" {
		t.Errorf("Format(nil) = %q", got)
	}
}

func TestLookup(t *testing.T) {
	c, err := Lookup(" Minor ")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !Equal(c, Minor) {
		t.Errorf("Lookup(minor) = %s", Format(c))
	}

	_, err = Lookup("mystery")
	if !errors.Is(err, ErrUnknownChord) {
		t.Errorf("Lookup(mystery) error = %v, want ErrUnknownChord", err)
	}
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	if len(names) != len(presets) {
		t.Fatalf("Names() returned %d names, want %d", len(names), len(presets))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("Names() not sorted at %d: %q > %q", i, names[i-1], names[i])
		}
	}
}
