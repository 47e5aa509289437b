package bank

import (
	"testing"

	"github.com/james-see/chordbutton/pkg/address"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsEmptyBank(t *testing.T) {
	_, err := New(0, 4)
	assert.ErrorIs(t, err, ErrBankSize)

	_, err = New(12, 0)
	assert.ErrorIs(t, err, ErrBankSize)
}

func TestSelect(t *testing.T) {
	b, err := New(12, 4)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(0, b.Selection())
	assert.NoError(b.Select(3))
	assert.Equal(3, b.Selection())
	assert.Equal(36, b.Offset(b.Selection()))
	assert.Equal(12, b.TracksPerBank())
	assert.Equal(4, b.NumBanks())
	assert.ErrorIs(b.Select(4), ErrBankRange)
	assert.ErrorIs(b.Select(-1), ErrBankRange)
	assert.Equal(3, b.Selection())
}

func TestResolveFollowsBankWhenUnlocked(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		want address.Address
	}{
		{"address", ChangeAddress, address.Address{Note: 72, Channel: address.Channel1}},
		{"channel", ChangeChannel, address.Address{Note: 60, Channel: address.Channel13}},
		{"cable", ChangeCable, address.Address{Note: 60, Channel: address.Channel1, Cable: 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(12, 2)
			require.NoError(t, err)
			addr := NewAddress(OutputConfig{Bank: b, Type: tt.typ}, address.Must(60, 1, 0), address.Wrap)

			assert.Equal(t, address.Must(60, 1, 0), addr.Resolve())
			require.NoError(t, b.Select(1))
			assert.Equal(t, tt.want, addr.Resolve())
		})
	}
}

func TestLockFreezesResolution(t *testing.T) {
	b, err := New(8, 4)
	require.NoError(t, err)
	addr := NewAddress(OutputConfig{Bank: b}, address.Must(40, 2, 0), address.Wrap)

	require.NoError(t, b.Select(1))
	addr.Lock()
	frozen := addr.Resolve()
	assert.Equal(t, uint8(48), frozen.Note)

	require.NoError(t, b.Select(3))
	assert.Equal(t, frozen, addr.Resolve(), "locked address must ignore bank changes")
	assert.True(t, addr.Locked())

	addr.Unlock()
	assert.Equal(t, uint8(64), addr.Resolve().Note)
	assert.False(t, addr.Locked())
}

func TestLockMisusePanics(t *testing.T) {
	addr := NewAddress(OutputConfig{}, address.Must(60, 1, 0), address.Wrap)

	assert.Panics(t, addr.Unlock, "unlock without lock")
	addr.Lock()
	assert.Panics(t, addr.Lock, "double lock")
}

func TestNilBankResolvesToBase(t *testing.T) {
	base := address.Must(60, 1, 0)
	addr := NewAddress(OutputConfig{}, base, address.Clamp)
	assert.Equal(t, base, addr.Resolve())
	assert.Equal(t, base, addr.Base())
}

func TestParseType(t *testing.T) {
	for in, want := range map[string]Type{"address": ChangeAddress, "Channel": ChangeChannel, "cable": ChangeCable} {
		got, err := ParseType(in)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseType("program")
	assert.Error(t, err)
}
