package ref

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/blas"

	"github.com/notargets/occablas"
)

func TestGemvRowMajorKnownValues(t *testing.T) {
	// A = [1 2 3; 4 5 6], x = [1 1 1], y = alpha*A*x + beta*y
	a := []float64{1, 2, 3, 4, 5, 6}
	x := []float64{1, 1, 1}
	y := []float64{10, 20}

	Gemv(occablas.RowMajor, blas.NoTrans, 2, 3, 2.0, a, 0, 3, x, 0, 1, 0.5, y, 0, 1)

	assert.Equal(t, []float64{17, 40}, y)
}

func TestGemvColMajorMatchesRowMajor(t *testing.T) {
	const m, n = 5, 7
	rng := rand.New(rand.NewSource(1))

	// Same logical matrix laid out both ways, with padded leading dimensions.
	logical := make([]float64, m*n)
	for i := range logical {
		logical[i] = occablas.Random[float64](rng)
	}
	ldaRow, ldaCol := n+2, m+3
	rowA := make([]float64, m*ldaRow)
	colA := make([]float64, n*ldaCol)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			rowA[i*ldaRow+j] = logical[i*n+j]
			colA[j*ldaCol+i] = logical[i*n+j]
		}
	}

	for _, trans := range []blas.Transpose{blas.NoTrans, blas.Trans} {
		lenX, lenY := n, m
		if trans != blas.NoTrans {
			lenX, lenY = m, n
		}
		x := make([]float64, lenX)
		for i := range x {
			x[i] = occablas.Random[float64](rng)
		}
		yRow := make([]float64, lenY)
		for i := range yRow {
			yRow[i] = occablas.Random[float64](rng)
		}
		yCol := append([]float64(nil), yRow...)

		Gemv(occablas.RowMajor, trans, m, n, 1.25, rowA, 0, ldaRow, x, 0, 1, 0.75, yRow, 0, 1)
		Gemv(occablas.ColMajor, trans, m, n, 1.25, colA, 0, ldaCol, x, 0, 1, 0.75, yCol, 0, 1)

		assert.Equal(t, yRow, yCol, "trans=%v", trans)
	}
}

func TestGemvConjTransComplex(t *testing.T) {
	// y = conj(A)^T * x against a hand-rolled loop
	const m, n = 3, 4
	rng := rand.New(rand.NewSource(7))

	a := make([]complex128, m*n)
	for i := range a {
		a[i] = occablas.Random[complex128](rng)
	}
	x := make([]complex128, m)
	for i := range x {
		x[i] = occablas.Random[complex128](rng)
	}

	want := make([]complex128, n)
	for j := 0; j < n; j++ {
		var sum complex128
		for i := 0; i < m; i++ {
			sum += occablas.Conj(a[i*n+j]) * x[i]
		}
		want[j] = sum
	}

	got := make([]complex128, n)
	Gemv(occablas.RowMajor, blas.ConjTrans, m, n, complex(1, 0), a, 0, n,
		x, 0, 1, complex(0, 0), got, 0, 1)

	for j := range want {
		assert.InDelta(t, real(want[j]), real(got[j]), 1e-12)
		assert.InDelta(t, imag(want[j]), imag(got[j]), 1e-12)
	}
}

func TestGemvNegativeIncrement(t *testing.T) {
	// incX = -1 traverses x in reverse
	a := []float64{1, 2, 3, 4} // 2x2 row-major
	x := []float64{10, 1}
	forward := []float64{0, 0}
	reverse := []float64{0, 0}

	Gemv(occablas.RowMajor, blas.NoTrans, 2, 2, 1.0, a, 0, 2, x, 0, 1, 0.0, forward, 0, 1)
	Gemv(occablas.RowMajor, blas.NoTrans, 2, 2, 1.0, a, 0, 2, x, 0, -1, 0.0, reverse, 0, 1)

	assert.Equal(t, []float64{12, 34}, forward)
	assert.Equal(t, []float64{21, 43}, reverse)
}

func TestGemvQuickReturnLeavesYUntouched(t *testing.T) {
	// n of zero returns before the beta scaling, so y keeps its values.
	y := []float64{5, 6}
	Gemv(occablas.RowMajor, blas.NoTrans, 2, 0, 2.0, nil, 0, 1,
		[]float64{0}, 0, 1, 3.0, y, 0, 1)
	assert.Equal(t, []float64{5, 6}, y)

	Gemv(occablas.ColMajor, blas.Trans, 0, 2, 2.0, nil, 0, 1,
		[]float64{0}, 0, 1, 3.0, y, 0, 1)
	assert.Equal(t, []float64{5, 6}, y)
}

func TestHprQuickReturn(t *testing.T) {
	Hpr(occablas.ColMajor, blas.Upper, 0, 1.5, []complex128{0}, 0, 1, nil, 0)
}

func TestGemvDeterminism(t *testing.T) {
	run := func() []float64 {
		rng := rand.New(rand.NewSource(42))
		a := make([]float64, 64*64)
		x := make([]float64, 64)
		y := make([]float64, 64)
		for i := range a {
			a[i] = occablas.Random[float64](rng)
		}
		for i := range x {
			x[i] = occablas.Random[float64](rng)
			y[i] = occablas.Random[float64](rng)
		}
		Gemv(occablas.ColMajor, blas.NoTrans, 64, 64, 1.0, a, 0, 64, x, 0, 1, 1.0, y, 0, 1)
		return y
	}
	assert.Equal(t, run(), run())
}

// unpackHermitian expands a packed triangle into the full logical matrix.
func unpackHermitian(order occablas.Order, uplo blas.Uplo, n int, ap []complex128) []complex128 {
	full := make([]complex128, n*n)
	at := func(i, j int) complex128 {
		switch {
		case order == occablas.ColMajor && uplo == blas.Upper:
			return ap[i+j*(j+1)/2]
		case order == occablas.ColMajor && uplo == blas.Lower:
			return ap[i-j+j*(2*n-j+1)/2]
		case order == occablas.RowMajor && uplo == blas.Upper:
			return ap[j-i+i*(2*n-i+1)/2]
		default:
			return ap[j+i*(i+1)/2]
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			stored := (uplo == blas.Upper && i <= j) || (uplo == blas.Lower && i >= j)
			if stored {
				full[i*n+j] = at(i, j)
			} else {
				full[i*n+j] = occablas.Conj(at(j, i))
			}
		}
	}
	return full
}

func TestHprAllLayouts(t *testing.T) {
	const n = 8
	incs := []int{1, 2, -1}
	orders := []occablas.Order{occablas.RowMajor, occablas.ColMajor}
	uplos := []blas.Uplo{blas.Upper, blas.Lower}
	const alpha = 1.5

	for _, inc := range incs {
		incAbs := inc
		if incAbs < 0 {
			incAbs = -incAbs
		}
		for _, order := range orders {
			for _, uplo := range uplos {
				rng := rand.New(rand.NewSource(11))

				x := make([]complex128, 1+(n-1)*incAbs)
				for i := range x {
					x[i] = occablas.Random[complex128](rng)
				}

				packed := n * (n + 1) / 2
				ap := make([]complex128, packed)
				for i := range ap {
					ap[i] = occablas.Random[complex128](rng)
				}
				// Hermitian packed input: diagonal imaginary parts are zero
				for j := 0; j < n; j++ {
					var di int
					switch {
					case order == occablas.ColMajor && uplo == blas.Upper:
						di = j + j*(j+1)/2
					case order == occablas.ColMajor && uplo == blas.Lower:
						di = j * (2*n - j + 1) / 2
					case order == occablas.RowMajor && uplo == blas.Upper:
						di = j * (2*n - j + 1) / 2
					default:
						di = j + j*(j+1)/2
					}
					ap[di] = complex(real(ap[di]), 0)
				}

				before := unpackHermitian(order, uplo, n, ap)

				// Logical x in forward index order
				xl := make([]complex128, n)
				for i := 0; i < n; i++ {
					pos := i * incAbs
					if inc < 0 {
						pos = (n - 1 - i) * incAbs
					}
					xl[i] = x[pos]
				}

				Hpr(order, uplo, n, alpha, x, 0, inc, ap, 0)

				after := unpackHermitian(order, uplo, n, ap)
				for i := 0; i < n; i++ {
					for j := 0; j < n; j++ {
						want := before[i*n+j] + complex(alpha, 0)*xl[i]*occablas.Conj(xl[j])
						if i == j {
							want = complex(real(want), 0)
						}
						got := after[i*n+j]
						require.InDelta(t, real(want), real(got), 1e-12,
							"order=%v uplo=%v inc=%d (%d,%d)", order, uplo, inc, i, j)
						require.InDelta(t, imag(want), imag(got), 1e-12,
							"order=%v uplo=%v inc=%d (%d,%d)", order, uplo, inc, i, j)
					}
				}
			}
		}
	}
}

func TestHprSingleComplexSmoke(t *testing.T) {
	x := []complex64{complex(1, 1), complex(2, -1)}
	ap := []complex64{complex(1, 0), complex(0, 0), complex(2, 0)}

	// A += x*x^H, row-major upper: ap = [A00 A01; A11]
	Hpr(occablas.RowMajor, blas.Upper, 2, 1.0, x, 0, 1, ap, 0)

	assert.Equal(t, complex64(complex(3, 0)), ap[0]) // 1 + |1+i|^2
	assert.Equal(t, complex64(complex(1, 3)), ap[1]) // (1+i)*conj(2-i)
	assert.Equal(t, complex64(complex(7, 0)), ap[2]) // 2 + |2-i|^2
}
