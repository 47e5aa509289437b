package button

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestButton(t *testing.T, opts ...Option) (*Button, *VirtualPin, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Unix(0, 0)}
	pin := NewVirtualPin()
	b := New(pin, append([]Option{WithClock(clock.now)}, opts...)...)
	require.NoError(t, b.Begin())
	clock.advance(time.Second)
	return b, pin, clock
}

func TestBeginConfiguresPin(t *testing.T) {
	_, pin, _ := newTestButton(t)
	assert.True(t, pin.Configured())
}

type brokenPin struct{}

func (brokenPin) Configure() error { return errors.New("no such pin") }
func (brokenPin) Read() bool       { return true }

func TestBeginReportsPinError(t *testing.T) {
	err := New(brokenPin{}).Begin()
	assert.ErrorContains(t, err, "no such pin")
}

func TestPressAndRelease(t *testing.T) {
	b, pin, clock := newTestButton(t)

	assert.Equal(t, Released, b.State())

	pin.Press()
	assert.Equal(t, Falling, b.State())
	clock.advance(time.Millisecond)
	assert.Equal(t, Pressed, b.State())

	clock.advance(100 * time.Millisecond)
	pin.Release()
	assert.Equal(t, Rising, b.State())
	clock.advance(time.Millisecond)
	assert.Equal(t, Released, b.State())
}

func TestBouncesAreIgnored(t *testing.T) {
	b, pin, clock := newTestButton(t, WithDebounce(10*time.Millisecond))

	pin.Press()
	require.Equal(t, Falling, b.State())

	// contact bounce within the debounce window
	for i := 0; i < 5; i++ {
		clock.advance(time.Millisecond)
		if i%2 == 0 {
			pin.Release()
		} else {
			pin.Press()
		}
		assert.Equal(t, Pressed, b.State(), "bounce %d", i)
	}

	pin.Press()
	clock.advance(20 * time.Millisecond)
	assert.Equal(t, Pressed, b.State())

	clock.advance(20 * time.Millisecond)
	pin.Release()
	assert.Equal(t, Rising, b.State())
}

func TestEdgesReportedOnce(t *testing.T) {
	b, pin, clock := newTestButton(t)

	var falling, rising int
	for cycle := 0; cycle < 3; cycle++ {
		pin.Press()
		for i := 0; i < 50; i++ {
			if b.State() == Falling {
				falling++
			}
			clock.advance(time.Millisecond)
		}
		pin.Release()
		for i := 0; i < 50; i++ {
			if b.State() == Rising {
				rising++
			}
			clock.advance(time.Millisecond)
		}
	}
	assert.Equal(t, 3, falling)
	assert.Equal(t, 3, rising)
}

func TestInverted(t *testing.T) {
	b, pin, clock := newTestButton(t, Inverted())

	// active-high: the idle pull-up level reads as pressed
	assert.Equal(t, Falling, b.State())
	clock.advance(time.Second)
	pin.Press()
	assert.Equal(t, Rising, b.State())

	clock.advance(time.Second)
	b.Invert()
	assert.Equal(t, Falling, b.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Falling", Falling.String())
	assert.Equal(t, "State(7)", State(7).String())
}
