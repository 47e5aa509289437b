// Package bank provides bank selection and bankable addresses
package bank

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/james-see/chordbutton/pkg/address"
)

var (
	ErrBankRange = errors.New("bank: selection out of range")
	ErrBankSize  = errors.New("bank: tracks per bank and number of banks must be positive")
)

// Bank is a shared selection that remaps the addresses of every element
// configured with it. Selection may be changed from any goroutine.
type Bank struct {
	tracksPerBank int
	numBanks      int
	selection     atomic.Int32
}

// New creates a Bank with the given number of tracks per bank and banks
func New(tracksPerBank, numBanks int) (*Bank, error) {
	if tracksPerBank <= 0 || numBanks <= 0 {
		return nil, fmt.Errorf("%w: got %d tracks, %d banks", ErrBankSize, tracksPerBank, numBanks)
	}
	return &Bank{tracksPerBank: tracksPerBank, numBanks: numBanks}, nil
}

// Select changes the active bank
func (b *Bank) Select(selection int) error {
	if selection < 0 || selection >= b.numBanks {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrBankRange, selection, b.numBanks)
	}
	b.selection.Store(int32(selection))
	return nil
}

// Selection returns the active bank
func (b *Bank) Selection() int {
	return int(b.selection.Load())
}

// Offset returns the address offset for a selection
func (b *Bank) Offset(selection int) int {
	return selection * b.tracksPerBank
}

// TracksPerBank returns how far each bank step moves an address
func (b *Bank) TracksPerBank() int { return b.tracksPerBank }

func (b *Bank) NumBanks() int { return b.numBanks }

// Type selects which address field a bank changes
type Type int

const (
	ChangeAddress Type = iota
	ChangeChannel
	ChangeCable
)

func (t Type) String() string {
	switch t {
	case ChangeAddress:
		return "address"
	case ChangeChannel:
		return "channel"
	case ChangeCable:
		return "cable"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

func (t Type) field() address.Field {
	switch t {
	case ChangeChannel:
		return address.FieldChannel
	case ChangeCable:
		return address.FieldCable
	default:
		return address.FieldNote
	}
}

// ParseType parses "address", "channel" or "cable"
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "address", "note":
		return ChangeAddress, nil
	case "channel":
		return ChangeChannel, nil
	case "cable", "cn", "cablenb":
		return ChangeCable, nil
	default:
		return ChangeAddress, fmt.Errorf("bank: unknown bank type %q", s)
	}
}

// OutputConfig binds an element to a bank
type OutputConfig struct {
	Bank *Bank
	Type Type
}
