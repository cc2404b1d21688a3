package device

import (
	"fmt"

	"gonum.org/v1/gonum/blas"

	"github.com/notargets/occablas"
)

// Hpr enqueues the Hermitian packed rank-1 update A += alpha*x*x^H across the
// given command queues, splitting the update columns between them, and
// returns one completion event per queue. Stored elements are disjoint per
// column, so the queue split never races.
func Hpr[T occablas.Complex](ctx *Context, order occablas.Order, uplo blas.Uplo,
	n int, alpha float64, bufX *Buffer, offX, incX int,
	bufAP *Buffer, offAP int, queues []*Queue) ([]*Event, error) {

	if len(queues) == 0 {
		return nil, fmt.Errorf("device: hpr requires at least one command queue")
	}
	if n == 0 {
		return noopEvents(queues), nil
	}

	x0 := startIndex(offX, n, incX)

	kind := occablas.KindOf[T]()
	name := hprKernelName(kind, order, uplo)
	kernel, err := ctx.kernel(name, func() string { return hprSource(kind, order, uplo) })
	if err != nil {
		return nil, err
	}

	events := make([]*Event, len(queues))
	for qi, r := range splitRange(n, len(queues)) {
		colStart, colEnd := r[0], r[1]
		if colStart == colEnd {
			events[qi] = queues[qi].Enqueue(func() error { return nil })
			continue
		}
		events[qi] = queues[qi].Enqueue(func() error {
			return ctx.withDevice(func() error {
				err := kernel.RunWithArgs(
					n, scalarArg[T](alpha),
					bufX.Mem(), x0, incX,
					bufAP.Mem(), offAP,
					colStart, colEnd,
				)
				if err != nil {
					return fmt.Errorf("hpr kernel execution failed: %w", err)
				}
				ctx.device.Finish()
				return nil
			})
		})
	}
	return events, nil
}
