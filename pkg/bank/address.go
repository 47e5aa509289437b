package bank

import (
	"errors"
	"fmt"

	"github.com/james-see/chordbutton/pkg/address"
)

var (
	ErrAlreadyLocked = errors.New("bank: address locked twice without unlock")
	ErrNotLocked     = errors.New("bank: address unlocked while not locked")
)

// Address is a base address that follows the bank selection. While locked
// it keeps resolving to the selection captured by Lock, so a note-off always
// goes to the address of its note-on.
type Address struct {
	config OutputConfig
	base   address.Address
	policy address.Overflow

	locked    bool
	lockedSel int
}

// NewAddress creates a bankable address. A nil bank resolves to base.
func NewAddress(config OutputConfig, base address.Address, policy address.Overflow) *Address {
	return &Address{config: config, base: base, policy: policy}
}

// Lock freezes the current bank selection. Locking twice panics.
func (a *Address) Lock() {
	if a.locked {
		panic(fmt.Errorf("%w (%v)", ErrAlreadyLocked, a.base))
	}
	a.lockedSel = a.liveSelection()
	a.locked = true
}

// Unlock releases the frozen selection. Unlocking while unlocked panics.
func (a *Address) Unlock() {
	if !a.locked {
		panic(fmt.Errorf("%w (%v)", ErrNotLocked, a.base))
	}
	a.locked = false
}

// Resolve returns the concrete address for the locked or live selection
func (a *Address) Resolve() address.Address {
	sel := a.lockedSel
	if !a.locked {
		sel = a.liveSelection()
	}
	if a.config.Bank == nil {
		return a.base
	}
	return a.base.Shift(a.config.Type.field(), a.config.Bank.Offset(sel), a.policy)
}

// Locked reports whether a press holds the bank selection
func (a *Address) Locked() bool { return a.locked }

// Base returns the address for bank 0
func (a *Address) Base() address.Address { return a.base }

func (a *Address) liveSelection() int {
	if a.config.Bank == nil {
		return 0
	}
	return a.config.Bank.Selection()
}
