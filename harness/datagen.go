package harness

import (
	"math/rand"

	"gonum.org/v1/gonum/blas"

	"github.com/notargets/occablas"
)

// SetNaNs pre-fills an entire buffer with sentinel markers so any read or
// write outside the declared active region is detectable downstream.
func SetNaNs[T occablas.Scalar](buf []T) {
	nan := occablas.NaN[T]()
	for i := range buf {
		buf[i] = nan
	}
}

// SetVectorNaNs re-applies sentinel markers to every position of v that is
// not an active strided element: active positions are off + i*incAbs for
// i in [0, length).
func SetVectorNaNs[T occablas.Scalar](off, incAbs int, v []T, length int) {
	nan := occablas.NaN[T]()
	for p := range v {
		if !activePosition(p, off, incAbs, length) {
			v[p] = nan
		}
	}
}

func activePosition(p, off, incAbs, length int) bool {
	if p < off {
		return false
	}
	d := p - off
	return d%incAbs == 0 && d/incAbs < length
}

// fillVector writes random values at the active strided positions.
func fillVector[T occablas.Scalar](rng *rand.Rand, v []T, off, incAbs, length int) {
	for i := 0; i < length; i++ {
		v[off+i*incAbs] = occablas.Random[T](rng)
	}
}

// RandomGemvInputs fills the A, x and y containers for one GEMV case. All
// three are sentinel-filled first; only the active regions receive values,
// so padding rows of A (between the logical dimension and lda) and strided
// gaps of the vectors keep their markers. Returns the alpha and beta
// multipliers, drawn from the same seeded stream when not fixed by the
// params.
func RandomGemvInputs[T occablas.Scalar](rng *rand.Rand, p TestParams, a, x, y []T) (alpha, beta T) {
	alpha = multiplier[T](rng, p.UseAlpha, p.Alpha)
	beta = multiplier[T](rng, p.UseBeta, p.Beta)

	SetNaNs(a)
	SetNaNs(x)
	SetNaNs(y)

	for i := 0; i < p.M; i++ {
		for j := 0; j < p.N; j++ {
			a[p.OffA+matIndex(p.Order, i, j, p.Lda)] = occablas.Random[T](rng)
		}
	}

	lenX, lenY := p.VectorLens()
	fillVector(rng, x, p.OffX, absInc(p.IncX), lenX)
	fillVector(rng, y, p.OffY, absInc(p.IncY), lenY)
	return alpha, beta
}

func matIndex(order occablas.Order, i, j, lda int) int {
	if order == occablas.ColMajor {
		return i + j*lda
	}
	return i*lda + j
}

// RandomHerInputs fills the packed AP and x containers for one HPR case.
// Diagonal elements of the packed Hermitian triangle get zero imaginary
// parts, matching what the routines assume on input.
func RandomHerInputs[T occablas.Complex](rng *rand.Rand, p TestParams, ap, x []T) (alpha float64) {
	a := multiplier[T](rng, p.UseAlpha, p.Alpha)
	re, _ := occablas.Components(a)
	alpha = re

	SetNaNs(ap)
	SetNaNs(x)

	for i := p.OffA; i < p.PackedSize(); i++ {
		ap[i] = occablas.Random[T](rng)
	}
	for j := 0; j < p.N; j++ {
		di := p.OffA + packedDiagIndex(p.Order, p.Uplo, p.N, j)
		r, _ := occablas.Components(ap[di])
		ap[di] = occablas.FromComplex[T](complex(r, 0))
	}

	fillVector(rng, x, p.OffX, absInc(p.IncX), p.N)
	return alpha
}

func packedDiagIndex(order occablas.Order, uplo blas.Uplo, n, j int) int {
	colUpper := (order == occablas.ColMajor) == (uplo == blas.Upper)
	if colUpper {
		return j + j*(j+1)/2
	}
	return j * (2*n - j + 1) / 2
}

func multiplier[T occablas.Scalar](rng *rand.Rand, fixed bool, v complex128) T {
	if fixed {
		return occablas.FromComplex[T](v)
	}
	return occablas.Random[T](rng)
}
