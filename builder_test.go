package hyperloglog

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilderSizeInBytes(t *testing.T) {
	for _, precision := range []uint8{0, 1, 4, 11, 16} {
		t.Run(fmt.Sprintf("precision=%d", precision), func(t *testing.T) {
			b, err := NewBuilder(precision)
			require.NoError(t, err)

			h := b.Build()
			data, err := h.MarshalBinary()
			require.NoError(t, err)
			require.Equal(t, b.SizeInBytes(), len(data))
		})
	}
}

func TestBuilderInvalidPrecision(t *testing.T) {
	_, err := NewBuilder(31)
	require.ErrorIs(t, err, ErrInvalidPrecision)
}

func TestBuilderForRSD(t *testing.T) {
	b, err := NewBuilderForRSD(0.05)
	require.NoError(t, err)
	require.Equal(t, uint8(8), b.Build().Precision())

	_, err = NewBuilderForRSD(0)
	require.ErrorIs(t, err, ErrInvalidPrecision)
}

func TestBuilderBuildsIndependentSketches(t *testing.T) {
	b, err := NewBuilder(12)
	require.NoError(t, err)

	h1 := b.Build()
	h2 := b.Build()
	for i := 0; i < 1000; i++ {
		h1.InsertHash64(rand.Uint64())
	}
	require.NotZero(t, h1.Count())
	require.Zero(t, h2.Count())
}

func TestBuildFromBytes(t *testing.T) {
	b, err := NewBuilder(12)
	require.NoError(t, err)
	h := b.Build()
	for i := 0; i < 1000; i++ {
		h.InsertHash64(rand.Uint64())
	}

	data, err := h.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, b.SizeInBytes())

	out, err := BuildFromBytes(data)
	require.NoError(t, err)
	require.Equal(t, h.Count(), out.Count())

	_, err = BuildFromBytes(data[:4])
	require.ErrorIs(t, err, ErrMalformedInput)
}
