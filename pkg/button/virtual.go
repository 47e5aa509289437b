package button

import "sync/atomic"

// VirtualPin is a software input line wired like a pull-up switch: it reads
// high until pressed. It is safe to drive from any goroutine.
type VirtualPin struct {
	low        atomic.Bool
	configured atomic.Bool
}

// NewVirtualPin creates a released VirtualPin
func NewVirtualPin() *VirtualPin {
	return &VirtualPin{}
}

func (p *VirtualPin) Configure() error {
	p.configured.Store(true)
	return nil
}

func (p *VirtualPin) Read() bool {
	return !p.low.Load()
}

// Press pulls the line low
func (p *VirtualPin) Press() { p.low.Store(true) }

// Release lets the pull-up take the line high
func (p *VirtualPin) Release() { p.low.Store(false) }

// Held reports whether the line is currently pulled low
func (p *VirtualPin) Held() bool { return p.low.Load() }

// Configured reports whether Configure has been called
func (p *VirtualPin) Configured() bool { return p.configured.Load() }
