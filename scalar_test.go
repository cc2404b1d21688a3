package occablas

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, Single, KindOf[float32]())
	assert.Equal(t, Double, KindOf[float64]())
	assert.Equal(t, SingleComplex, KindOf[complex64]())
	assert.Equal(t, DoubleComplex, KindOf[complex128]())
}

func TestNeedsDouble(t *testing.T) {
	assert.False(t, NeedsDouble[float32]())
	assert.True(t, NeedsDouble[float64]())
	assert.False(t, NeedsDouble[complex64]())
	assert.True(t, NeedsDouble[complex128]())
}

func TestSizeOf(t *testing.T) {
	assert.Equal(t, int64(4), SizeOf[float32]())
	assert.Equal(t, int64(8), SizeOf[float64]())
	assert.Equal(t, int64(8), SizeOf[complex64]())
	assert.Equal(t, int64(16), SizeOf[complex128]())
}

func TestNaNSentinel(t *testing.T) {
	assert.True(t, IsNaN(NaN[float32]()))
	assert.True(t, IsNaN(NaN[float64]()))
	assert.True(t, IsNaN(NaN[complex64]()))
	assert.True(t, IsNaN(NaN[complex128]()))

	assert.False(t, IsNaN(float32(1.5)))
	assert.False(t, IsNaN(complex128(complex(0, 1))))

	// A single poisoned component is enough to flag the element
	assert.True(t, IsNaN(complex(real(NaN[complex128]()), 0.0)))
}

func TestConj(t *testing.T) {
	assert.Equal(t, float32(2), Conj(float32(2)))
	assert.Equal(t, 3.5, Conj(3.5))
	assert.Equal(t, complex64(complex(1, -2)), Conj(complex64(complex(1, 2))))
	assert.Equal(t, complex(4.0, 5.0), Conj(complex(4.0, -5.0)))
}

func TestFromComplex(t *testing.T) {
	assert.Equal(t, float32(1.5), FromComplex[float32](complex(1.5, 9)))
	assert.Equal(t, 1.5, FromComplex[float64](complex(1.5, 9)))
	assert.Equal(t, complex64(complex(1.5, 9)), FromComplex[complex64](complex(1.5, 9)))
	assert.Equal(t, complex(1.5, 9.0), FromComplex[complex128](complex(1.5, 9)))
}

func TestComponents(t *testing.T) {
	re, im := Components(complex64(complex(1, -2)))
	assert.Equal(t, 1.0, re)
	assert.Equal(t, -2.0, im)

	re, im = Components(float64(7))
	assert.Equal(t, 7.0, re)
	assert.Equal(t, 0.0, im)
}

func TestRandomDeterminism(t *testing.T) {
	draw := func(seed int64) []complex128 {
		rng := rand.New(rand.NewSource(seed))
		out := make([]complex128, 8)
		for i := range out {
			out[i] = Random[complex128](rng)
		}
		return out
	}
	assert.Equal(t, draw(42), draw(42))
	assert.NotEqual(t, draw(42), draw(43))
}

func TestRandomStaysOnGrid(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		v := Random[complex128](rng)
		for _, part := range []float64{real(v), imag(v)} {
			assert.LessOrEqual(t, part, 4.0)
			assert.GreaterOrEqual(t, part, -4.0)
			assert.Equal(t, part, float64(int(part*4))/4)
		}
	}
}
