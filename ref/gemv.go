// Package ref executes BLAS operations on host memory through gonum,
// producing the expected results the device routines are verified against.
// gonum is row-major native; column-major requests are reordered (GEMV) or
// conjugate-transformed (HPR) before the call so that the output is
// interpretable in the originally requested layout.
package ref

import (
	"gonum.org/v1/gonum/blas"
	blasimpl "gonum.org/v1/gonum/blas/gonum"

	"github.com/notargets/occablas"
)

var impl blasimpl.Implementation

// Gemv computes y = alpha*op(A)*x + beta*y on host memory. A is an m x n
// matrix stored with leading dimension lda at element offset offA in the
// given order. Increments may be negative for reverse traversal.
func Gemv[T occablas.Scalar](order occablas.Order, trans blas.Transpose,
	m, n int, alpha T, a []T, offA, lda int,
	x []T, offX, incX int, beta T, y []T, offY, incY int) {

	// BLAS quick return: an empty dimension leaves y untouched, beta
	// scaling included.
	if m == 0 || n == 0 {
		return
	}

	sub := a[offA:]
	effLda := lda
	if order == occablas.ColMajor {
		// gonum only accepts row-major data; reorder the active region.
		sub = colToRowMajor(sub, m, n, lda)
		effLda = n
		if effLda < 1 {
			effLda = 1
		}
	}
	gemv(trans, m, n, alpha, sub, effLda, x[offX:], incX, beta, y[offY:], incY)
}

// colToRowMajor compacts a column-major m x n matrix with leading dimension
// lda into a freshly allocated row-major matrix with leading dimension n.
// Padding elements outside the active region are never read.
func colToRowMajor[T occablas.Scalar](a []T, m, n, lda int) []T {
	out := make([]T, m*n)
	for j := 0; j < n; j++ {
		col := j * lda
		for i := 0; i < m; i++ {
			out[i*n+j] = a[col+i]
		}
	}
	return out
}

func gemv[T occablas.Scalar](tA blas.Transpose, m, n int, alpha T, a []T,
	lda int, x []T, incX int, beta T, y []T, incY int) {

	switch a := any(a).(type) {
	case []float32:
		impl.Sgemv(tA, m, n, any(alpha).(float32), a, lda,
			any(x).([]float32), incX, any(beta).(float32), any(y).([]float32), incY)
	case []float64:
		impl.Dgemv(tA, m, n, any(alpha).(float64), a, lda,
			any(x).([]float64), incX, any(beta).(float64), any(y).([]float64), incY)
	case []complex64:
		impl.Cgemv(tA, m, n, any(alpha).(complex64), a, lda,
			any(x).([]complex64), incX, any(beta).(complex64), any(y).([]complex64), incY)
	case []complex128:
		impl.Zgemv(tA, m, n, any(alpha).(complex128), a, lda,
			any(x).([]complex128), incX, any(beta).(complex128), any(y).([]complex128), incY)
	}
}
