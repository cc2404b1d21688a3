package harness

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/blas"

	"github.com/notargets/occablas"
)

func TestSetNaNs(t *testing.T) {
	buf := make([]complex64, 16)
	SetNaNs(buf)
	for i, v := range buf {
		assert.True(t, occablas.IsNaN(v), "index %d", i)
	}
}

func TestSetVectorNaNs(t *testing.T) {
	// off=2, inc=3, length=3: active positions are 2, 5, 8
	v := make([]float64, 12)
	for i := range v {
		v[i] = 1
	}
	SetVectorNaNs(2, 3, v, 3)

	for p := range v {
		if p == 2 || p == 5 || p == 8 {
			assert.Equal(t, 1.0, v[p], "position %d", p)
		} else {
			assert.True(t, occablas.IsNaN(v[p]), "position %d", p)
		}
	}
}

func TestRandomGemvInputsSentinelLayout(t *testing.T) {
	p := TestParams{
		Order: occablas.ColMajor,
		TransA: blas.NoTrans,
		M: 4, N: 3, Lda: 6, // two padding rows per column
		OffA: 5, OffX: 2, OffY: 1,
		IncX: 2, IncY: 1,
		Seed: 7,
	}
	require.NoError(t, p.Validate())

	lenX, lenY := p.VectorLens()
	a := make([]complex128, p.SizeA())
	x := make([]complex128, VectorSize(p.OffX, lenX, p.IncX))
	y := make([]complex128, VectorSize(p.OffY, lenY, p.IncY))

	rng := rand.New(rand.NewSource(p.Seed))
	RandomGemvInputs(rng, p, a, x, y)

	// Offset region of A keeps its markers
	for i := 0; i < p.OffA; i++ {
		assert.True(t, occablas.IsNaN(a[i]), "A offset index %d", i)
	}
	// Active elements are real values, padding rows stay marked
	for j := 0; j < p.N; j++ {
		for i := 0; i < p.Lda; i++ {
			v := a[p.OffA+i+j*p.Lda]
			if i < p.M {
				assert.False(t, occablas.IsNaN(v), "A(%d,%d)", i, j)
			} else {
				assert.True(t, occablas.IsNaN(v), "A padding (%d,%d)", i, j)
			}
		}
	}
	// Strided gaps of x stay marked
	assert.NoError(t, CheckVectorSentinels(p.OffX, lenX, 2, x))
	assert.NoError(t, CheckVectorSentinels(p.OffY, lenY, 1, y))
	for i := 0; i < lenX; i++ {
		assert.False(t, occablas.IsNaN(x[p.OffX+i*2]))
	}
}

func TestRandomGemvInputsDeterminism(t *testing.T) {
	p := TestParams{
		Order: occablas.RowMajor, TransA: blas.NoTrans,
		M: 8, N: 8, Lda: 8, IncX: 1, IncY: 1, Seed: 42,
	}
	gen := func() ([]float32, float32, float32) {
		a := make([]float32, p.SizeA())
		x := make([]float32, VectorSize(0, 8, 1))
		y := make([]float32, VectorSize(0, 8, 1))
		alpha, beta := RandomGemvInputs(rand.New(rand.NewSource(p.Seed)), p, a, x, y)
		return a, alpha, beta
	}
	a1, al1, b1 := gen()
	a2, al2, b2 := gen()
	assert.Equal(t, a1, a2)
	assert.Equal(t, al1, al2)
	assert.Equal(t, b1, b2)
}

func TestRandomGemvInputsFixedMultipliers(t *testing.T) {
	p := TestParams{
		Order: occablas.RowMajor, TransA: blas.NoTrans,
		M: 2, N: 2, Lda: 2, IncX: 1, IncY: 1, Seed: 1,
		UseAlpha: true, Alpha: complex(2.5, 0),
		UseBeta:  true, Beta: complex(-1, 0),
	}
	a := make([]float64, p.SizeA())
	x := make([]float64, 2)
	y := make([]float64, 2)
	alpha, beta := RandomGemvInputs(rand.New(rand.NewSource(p.Seed)), p, a, x, y)
	assert.Equal(t, 2.5, alpha)
	assert.Equal(t, -1.0, beta)
}

func TestRandomHerInputsDiagonalIsReal(t *testing.T) {
	for _, order := range []occablas.Order{occablas.RowMajor, occablas.ColMajor} {
		for _, uplo := range []blas.Uplo{blas.Upper, blas.Lower} {
			p := TestParams{
				Order: order, Uplo: uplo,
				N: 6, OffA: 3, IncX: 1, Seed: 9,
			}
			ap := make([]complex64, p.PackedSize())
			x := make([]complex64, VectorSize(0, p.N, 1))
			RandomHerInputs(rand.New(rand.NewSource(p.Seed)), p, ap, x)

			for j := 0; j < p.N; j++ {
				di := p.OffA + packedDiagIndex(order, uplo, p.N, j)
				assert.Zero(t, imag(ap[di]), "order=%v uplo=%v j=%d", order, uplo, j)
				assert.False(t, occablas.IsNaN(ap[di]))
			}
			for i := 0; i < p.OffA; i++ {
				assert.True(t, occablas.IsNaN(ap[i]))
			}
		}
	}
}
