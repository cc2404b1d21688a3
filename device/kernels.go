package device

import (
	"strconv"
	"strings"

	"gonum.org/v1/gonum/blas"

	"github.com/notargets/occablas"
)

// Kernel sources are naive OKL translations of the routine definitions; the
// harness measures them relative to the reference implementation rather than
// against an absolute performance target. Complex elements are stored
// interleaved (re, im) and expanded into real arithmetic in the kernel body.

const laneWidth = 32

func cTypeFor(kind occablas.Kind) string {
	if kind == occablas.Single || kind == occablas.SingleComplex {
		return "float"
	}
	return "double"
}

func gemvKernelName(kind occablas.Kind) string {
	return "gemv_" + string(kind)
}

const gemvRealTemplate = `
@kernel void KERNEL(const int lenX,
                    const real_t alpha, const real_t beta,
                    const real_t *A, const int offA, const int rs, const int cs,
                    const real_t *X, const int x0, const int incx,
                    real_t *Y, const int y0, const int incy,
                    const int rowStart, const int rowEnd) {
	for (int b = rowStart; b < rowEnd; b += LANES; @outer) {
		for (int t = 0; t < LANES; ++t; @inner) {
			const int i = b + t;
			if (i < rowEnd) {
				real_t sum = 0;
				for (int j = 0; j < lenX; ++j) {
					sum += A[offA + i * rs + j * cs] * X[x0 + j * incx];
				}
				Y[y0 + i * incy] = alpha * sum + beta * Y[y0 + i * incy];
			}
		}
	}
}`

const gemvComplexTemplate = `
@kernel void KERNEL(const int lenX,
                    const real_t alphaRe, const real_t alphaIm,
                    const real_t betaRe, const real_t betaIm,
                    const real_t *A, const int offA, const int rs, const int cs,
                    const int conjA,
                    const real_t *X, const int x0, const int incx,
                    real_t *Y, const int y0, const int incy,
                    const int rowStart, const int rowEnd) {
	for (int b = rowStart; b < rowEnd; b += LANES; @outer) {
		for (int t = 0; t < LANES; ++t; @inner) {
			const int i = b + t;
			if (i < rowEnd) {
				real_t sumRe = 0;
				real_t sumIm = 0;
				for (int j = 0; j < lenX; ++j) {
					const int ai = 2 * (offA + i * rs + j * cs);
					const real_t aRe = A[ai];
					const real_t aIm = conjA ? -A[ai + 1] : A[ai + 1];
					const int xi = 2 * (x0 + j * incx);
					const real_t xRe = X[xi];
					const real_t xIm = X[xi + 1];
					sumRe += aRe * xRe - aIm * xIm;
					sumIm += aRe * xIm + aIm * xRe;
				}
				const int yi = 2 * (y0 + i * incy);
				const real_t yRe = Y[yi];
				const real_t yIm = Y[yi + 1];
				Y[yi]     = alphaRe * sumRe - alphaIm * sumIm + betaRe * yRe - betaIm * yIm;
				Y[yi + 1] = alphaRe * sumIm + alphaIm * sumRe + betaRe * yIm + betaIm * yRe;
			}
		}
	}
}`

func gemvSource(kind occablas.Kind) string {
	tmpl := gemvRealTemplate
	if kind == occablas.SingleComplex || kind == occablas.DoubleComplex {
		tmpl = gemvComplexTemplate
	}
	return renderKernel(tmpl, kind, gemvKernelName(kind), nil)
}

// hprKernelName encodes the packed layout into the kernel name so each
// (kind, order, uplo) combination compiles once.
func hprKernelName(kind occablas.Kind, order occablas.Order, uplo blas.Uplo) string {
	name := "hpr_" + string(kind) + "_"
	if order == occablas.ColMajor {
		name += "c"
	} else {
		name += "r"
	}
	if uplo == blas.Upper {
		name += "u"
	} else {
		name += "l"
	}
	return name
}

// The packed index expression and triangle bounds are baked into the source
// per layout: PACK_IDX maps a stored (i, j) element to its slot, I_LOW/I_HIGH
// bound the stored rows of column j.
const hprTemplate = `
@kernel void KERNEL(const int n, const real_t alpha,
                    const real_t *X, const int x0, const int incx,
                    real_t *AP, const int offAP,
                    const int colStart, const int colEnd) {
	for (int j = colStart; j < colEnd; ++j; @outer) {
		for (int t = 0; t < LANES; ++t; @inner) {
			const int xj = 2 * (x0 + j * incx);
			const real_t xjRe = X[xj];
			const real_t xjIm = X[xj + 1];
			for (int i = (I_LOW) + t; i < (I_HIGH); i += LANES) {
				const int idx = 2 * (offAP + (PACK_IDX));
				const int xi = 2 * (x0 + i * incx);
				const real_t xiRe = X[xi];
				const real_t xiIm = X[xi + 1];
				if (i == j) {
					AP[idx] += alpha * (xiRe * xiRe + xiIm * xiIm);
					AP[idx + 1] = 0;
				} else {
					AP[idx]     += alpha * (xiRe * xjRe + xiIm * xjIm);
					AP[idx + 1] += alpha * (xiIm * xjRe - xiRe * xjIm);
				}
			}
		}
	}
}`

func hprSource(kind occablas.Kind, order occablas.Order, uplo blas.Uplo) string {
	var packIdx, iLow, iHigh string
	switch {
	case order == occablas.ColMajor && uplo == blas.Upper:
		packIdx, iLow, iHigh = "i + (j * (j + 1)) / 2", "0", "j + 1"
	case order == occablas.ColMajor && uplo == blas.Lower:
		packIdx, iLow, iHigh = "i - j + (j * (2 * n - j + 1)) / 2", "j", "n"
	case order == occablas.RowMajor && uplo == blas.Upper:
		packIdx, iLow, iHigh = "j - i + (i * (2 * n - i + 1)) / 2", "0", "j + 1"
	default: // RowMajor Lower
		packIdx, iLow, iHigh = "j + (i * (i + 1)) / 2", "j", "n"
	}
	return renderKernel(hprTemplate, kind, hprKernelName(kind, order, uplo), map[string]string{
		"PACK_IDX": packIdx,
		"I_LOW":    iLow,
		"I_HIGH":   iHigh,
	})
}

func renderKernel(tmpl string, kind occablas.Kind, name string, subst map[string]string) string {
	src := "typedef " + cTypeFor(kind) + " real_t;\n" + tmpl
	src = strings.ReplaceAll(src, "KERNEL", name)
	src = strings.ReplaceAll(src, "LANES", strconv.Itoa(laneWidth))
	for k, v := range subst {
		src = strings.ReplaceAll(src, k, v)
	}
	return src
}
