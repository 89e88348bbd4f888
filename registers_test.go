package hyperloglog

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistersSize(t *testing.T) {
	for _, tc := range []struct {
		count uint32
		want  int
	}{
		{1, 1},
		{2, 2},
		{3, 3},
		{4, 3},
		{16, 12},
		{100, 75},
		{2048, 1536},
		{1 << 16, 49152},
	} {
		t.Run(fmt.Sprintf("count=%d", tc.count), func(t *testing.T) {
			require.Equal(t, tc.want, RegistersSize(tc.count))
			require.Len(t, NewRegisters(tc.count).Bytes(), tc.want)
		})
	}
}

func TestRegistersZeroValued(t *testing.T) {
	r := NewRegisters(100)
	for i := uint32(0); i < 100; i++ {
		require.Zero(t, r.Get(i))
	}
}

// Registers straddle byte boundaries at every second index; writing all
// of them with distinct values and reading everything back catches any
// bleed between neighbours.
func TestRegistersPacking(t *testing.T) {
	const count = 100

	r := NewRegisters(count)
	for i := uint32(0); i < count; i++ {
		require.True(t, r.UpdateIfGreater(i, uint8(i%registerMax)+1))
	}
	for i := uint32(0); i < count; i++ {
		require.Equal(t, uint8(i%registerMax)+1, r.Get(i))
	}
}

func TestRegistersUpdateIfGreater(t *testing.T) {
	r := NewRegisters(16)

	require.True(t, r.UpdateIfGreater(3, 5))
	require.Equal(t, uint8(5), r.Get(3))

	require.False(t, r.UpdateIfGreater(3, 4))
	require.False(t, r.UpdateIfGreater(3, 5))
	require.Equal(t, uint8(5), r.Get(3))

	require.True(t, r.UpdateIfGreater(3, 6))
	require.Equal(t, uint8(6), r.Get(3))

	// Neighbours are untouched.
	require.Zero(t, r.Get(2))
	require.Zero(t, r.Get(4))
}

func TestRegistersClamp(t *testing.T) {
	r := NewRegisters(4)

	require.True(t, r.UpdateIfGreater(0, 200))
	require.Equal(t, uint8(registerMax), r.Get(0))

	// Saturated means saturated: the clamped value is not an update.
	require.False(t, r.UpdateIfGreater(0, registerMax))
	require.False(t, r.UpdateIfGreater(0, 255))
}

func TestRegistersMerge(t *testing.T) {
	a := NewRegisters(64)
	b := NewRegisters(64)
	for i := uint32(0); i < 64; i++ {
		a.UpdateIfGreater(i, uint8(rand.Intn(registerMax+1)))
		b.UpdateIfGreater(i, uint8(rand.Intn(registerMax+1)))
	}

	want := make([]uint8, 64)
	for i := uint32(0); i < 64; i++ {
		want[i] = max(a.Get(i), b.Get(i))
	}

	require.NoError(t, a.Merge(b))
	for i := uint32(0); i < 64; i++ {
		require.Equal(t, want[i], a.Get(i))
	}
}

func TestRegistersMergeSizeMismatch(t *testing.T) {
	a := NewRegisters(64)
	a.UpdateIfGreater(7, 9)
	before := a.Bytes()

	err := a.Merge(NewRegisters(128))
	require.ErrorIs(t, err, ErrIncompatibleSize)
	require.Equal(t, before, a.Bytes())
}

func TestRegistersBytesRoundTrip(t *testing.T) {
	r := NewRegisters(100)
	for i := uint32(0); i < 100; i++ {
		r.UpdateIfGreater(i, uint8(rand.Intn(registerMax+1)))
	}

	restored, err := NewRegistersFromBytes(100, r.Bytes())
	require.NoError(t, err)
	for i := uint32(0); i < 100; i++ {
		require.Equal(t, r.Get(i), restored.Get(i))
	}
	require.Equal(t, r.Bytes(), restored.Bytes())
}

func TestRegistersFromBytesBadLength(t *testing.T) {
	_, err := NewRegistersFromBytes(100, make([]byte, 74))
	require.ErrorIs(t, err, ErrMalformedInput)

	_, err = NewRegistersFromBytes(100, make([]byte, 76))
	require.ErrorIs(t, err, ErrMalformedInput)
}

func TestRegistersBytesIsACopy(t *testing.T) {
	r := NewRegisters(8)
	r.UpdateIfGreater(0, 1)

	b := r.Bytes()
	b[0] = 0xff
	require.Equal(t, uint8(1), r.Get(0))
}

func TestRegistersClone(t *testing.T) {
	r := NewRegisters(8)
	r.UpdateIfGreater(5, 11)

	c := r.Clone()
	require.Equal(t, r.Bytes(), c.Bytes())

	c.UpdateIfGreater(5, 30)
	require.Equal(t, uint8(11), r.Get(5))
	require.Equal(t, uint8(30), c.Get(5))
}
