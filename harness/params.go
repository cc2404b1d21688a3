// Package harness generates reproducible test data, drives the reference and
// device execution paths for one test case, and compares their results. Test
// cases are described by an immutable TestParams value and run against an
// injected device.Context, so suites stay composable and independently
// runnable.
package harness

import (
	"fmt"

	"gonum.org/v1/gonum/blas"

	"github.com/notargets/occablas"
)

// TestParams describes one test case. Populate once, then treat as
// read-only.
type TestParams struct {
	Order  occablas.Order
	TransA blas.Transpose
	Uplo   blas.Uplo

	M, N int
	Lda  int

	// Element offsets into the containing buffers
	OffA, OffX, OffY int

	// Vector increments; negative values traverse in reverse
	IncX, IncY int

	// Fixed scalar multipliers, used when the matching flag is set;
	// otherwise the data generator draws them from the seeded stream.
	Alpha, Beta       complex128
	UseAlpha, UseBeta bool

	Seed      int64
	NumQueues int
}

// VectorLens returns the active lengths of x and y for GEMV under TransA.
func (p TestParams) VectorLens() (lenX, lenY int) {
	if p.TransA == blas.NoTrans {
		return p.N, p.M
	}
	return p.M, p.N
}

// SizeA returns the element count of the buffer containing matrix A.
func (p TestParams) SizeA() int {
	if p.Order == occablas.ColMajor {
		return p.OffA + p.Lda*p.N
	}
	return p.OffA + p.Lda*p.M
}

// VectorSize returns the element count of a buffer containing a vector of
// the given active length and increment at the given offset.
func VectorSize(off, length, inc int) int {
	if inc < 0 {
		inc = -inc
	}
	if length == 0 {
		return off + 1
	}
	return off + 1 + (length-1)*inc
}

// PackedSize returns the element count of the buffer containing the packed
// triangle for HPR.
func (p TestParams) PackedSize() int {
	return p.OffA + p.N*(p.N+1)/2
}

// Validate rejects configurations the routines cannot address.
func (p TestParams) Validate() error {
	if p.M < 0 || p.N < 0 {
		return fmt.Errorf("negative dimensions M=%d N=%d", p.M, p.N)
	}
	if p.IncX == 0 || p.IncY == 0 {
		return fmt.Errorf("zero increment incX=%d incY=%d", p.IncX, p.IncY)
	}
	// Lda only constrains params with a matrix operand; packed routines
	// leave it zero.
	if p.M > 0 && p.N > 0 {
		minLda := p.N
		if p.Order == occablas.ColMajor {
			minLda = p.M
		}
		if minLda < 1 {
			minLda = 1
		}
		if p.Lda < minLda {
			return fmt.Errorf("lda=%d below minimum %d for %v", p.Lda, minLda, p.Order)
		}
	}
	if p.OffA < 0 || p.OffX < 0 || p.OffY < 0 {
		return fmt.Errorf("negative offset")
	}
	return nil
}

func absInc(inc int) int {
	if inc < 0 {
		return -inc
	}
	return inc
}
