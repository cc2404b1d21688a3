package ref

import (
	"gonum.org/v1/gonum/blas"

	"github.com/notargets/occablas"
)

// Hpr performs the Hermitian packed rank-1 update A += alpha*x*x^H on host
// memory. AP holds the packed triangle of A at element offset offAP in the
// given order.
//
// A column-major packed triangle occupies exactly the same slots as the
// row-major packed opposite triangle of the conjugated matrix. The
// column-major path therefore flips uplo and conjugates x before calling the
// row-major gonum routine; because A is Hermitian the buffer then holds the
// requested column-major result without further fixup.
func Hpr[T occablas.Complex](order occablas.Order, uplo blas.Uplo, n int,
	alpha float64, x []T, offX, incX int, ap []T, offAP int) {

	if n == 0 {
		return
	}

	xs := x[offX:]
	apSub := ap[offAP:]

	if order == occablas.RowMajor {
		hpr(uplo, n, alpha, xs, incX, apSub)
		return
	}

	incAbs := incX
	if incAbs < 0 {
		incAbs = -incAbs
	}
	need := 1
	if n > 0 {
		need = 1 + (n-1)*incAbs
	}
	conj := make([]T, need)
	copy(conj, xs[:need])
	for i := range conj {
		conj[i] = occablas.Conj(conj[i])
	}

	flip := blas.Upper
	if uplo == blas.Upper {
		flip = blas.Lower
	}
	hpr(flip, n, alpha, conj, incX, apSub)
}

func hpr[T occablas.Complex](uplo blas.Uplo, n int, alpha float64,
	x []T, incX int, ap []T) {

	switch x := any(x).(type) {
	case []complex64:
		impl.Chpr(uplo, n, float32(alpha), x, incX, any(ap).([]complex64))
	case []complex128:
		impl.Zhpr(uplo, n, alpha, x, incX, any(ap).([]complex128))
	}
}
