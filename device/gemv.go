package device

import (
	"fmt"

	"gonum.org/v1/gonum/blas"

	"github.com/notargets/occablas"
)

// startIndex returns the element index of the logically first vector element,
// accounting for reverse traversal under negative increments.
func startIndex(off, length, inc int) int {
	if inc < 0 && length > 0 {
		return off + (length-1)*(-inc)
	}
	return off
}

// strides maps (order, trans) to element strides over op(A): row i, column j
// of op(A) lives at offA + i*rs + j*cs.
func strides(order occablas.Order, trans blas.Transpose, lda int) (rs, cs int) {
	noTrans := trans == blas.NoTrans
	if order == occablas.ColMajor {
		if noTrans {
			return 1, lda
		}
		return lda, 1
	}
	if noTrans {
		return lda, 1
	}
	return 1, lda
}

// splitRange divides [0, n) into count contiguous chunks.
func splitRange(n, count int) [][2]int {
	ranges := make([][2]int, count)
	chunk := (n + count - 1) / count
	for i := range ranges {
		start := i * chunk
		end := start + chunk
		if start > n {
			start = n
		}
		if end > n {
			end = n
		}
		ranges[i] = [2]int{start, end}
	}
	return ranges
}

// noopEvents returns one already-submitted empty task per queue.
func noopEvents(queues []*Queue) []*Event {
	events := make([]*Event, len(queues))
	for i, q := range queues {
		events[i] = q.Enqueue(func() error { return nil })
	}
	return events
}

// scalarArg marshals a scalar component for a kernel whose real_t matches T.
func scalarArg[T occablas.Scalar](v float64) interface{} {
	switch occablas.KindOf[T]() {
	case occablas.Single, occablas.SingleComplex:
		return float32(v)
	default:
		return v
	}
}

// Gemv enqueues y = alpha*op(A)*x + beta*y across the given command queues,
// splitting the output rows between them, and returns one completion event
// per queue. Results are defined only after all events have been waited on.
func Gemv[T occablas.Scalar](ctx *Context, order occablas.Order, trans blas.Transpose,
	m, n int, alpha T, bufA *Buffer, offA, lda int,
	bufX *Buffer, offX, incX int, beta T, bufY *Buffer, offY, incY int,
	queues []*Queue) ([]*Event, error) {

	if len(queues) == 0 {
		return nil, fmt.Errorf("device: gemv requires at least one command queue")
	}
	// Quick return: no kernel launch and no buffer access for an empty
	// dimension, so callers may pass placeholder buffers.
	if m == 0 || n == 0 {
		return noopEvents(queues), nil
	}

	lenX, lenY := n, m
	if trans != blas.NoTrans {
		lenX, lenY = m, n
	}

	rs, cs := strides(order, trans, lda)
	conjA := 0
	if trans == blas.ConjTrans && occablas.IsComplex[T]() {
		conjA = 1
	}
	x0 := startIndex(offX, lenX, incX)
	y0 := startIndex(offY, lenY, incY)

	kind := occablas.KindOf[T]()
	kernel, err := ctx.kernel(gemvKernelName(kind), func() string { return gemvSource(kind) })
	if err != nil {
		return nil, err
	}

	alphaRe, alphaIm := occablas.Components(alpha)
	betaRe, betaIm := occablas.Components(beta)
	isComplex := occablas.IsComplex[T]()

	events := make([]*Event, len(queues))
	for qi, r := range splitRange(lenY, len(queues)) {
		rowStart, rowEnd := r[0], r[1]
		if rowStart == rowEnd {
			events[qi] = queues[qi].Enqueue(func() error { return nil })
			continue
		}
		events[qi] = queues[qi].Enqueue(func() error {
			return ctx.withDevice(func() error {
				var args []interface{}
				if isComplex {
					args = []interface{}{
						lenX,
						scalarArg[T](alphaRe), scalarArg[T](alphaIm),
						scalarArg[T](betaRe), scalarArg[T](betaIm),
						bufA.Mem(), offA, rs, cs, conjA,
						bufX.Mem(), x0, incX,
						bufY.Mem(), y0, incY,
						rowStart, rowEnd,
					}
				} else {
					args = []interface{}{
						lenX,
						scalarArg[T](alphaRe), scalarArg[T](betaRe),
						bufA.Mem(), offA, rs, cs,
						bufX.Mem(), x0, incX,
						bufY.Mem(), y0, incY,
						rowStart, rowEnd,
					}
				}
				if err := kernel.RunWithArgs(args...); err != nil {
					return fmt.Errorf("gemv kernel execution failed: %w", err)
				}
				ctx.device.Finish()
				return nil
			})
		})
	}
	return events, nil
}
