package perf

import (
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/blas"

	"github.com/notargets/occablas"
	"github.com/notargets/occablas/device"
	"github.com/notargets/occablas/harness"
	"github.com/notargets/occablas/ref"
)

// GemvCase times the general matrix-vector multiply. Only y is written by the
// routine, so only y is restored between timed invocations.
type GemvCase[T occablas.Scalar] struct {
	Params harness.TestParams

	ctx    *device.Context
	queues []*device.Queue

	a, x, y, backY []T
	alpha, beta    T

	bufA, bufX, bufY *device.Buffer
}

func (c *GemvCase[T]) Name() string {
	return fmt.Sprintf("%sgemv m=%d n=%d %v %s", occablas.KindOf[T](),
		c.Params.M, c.Params.N, c.Params.Order, transName(c.Params.TransA))
}

func (c *GemvCase[T]) Prepare(ctx *device.Context) error {
	p := c.Params
	if err := p.Validate(); err != nil {
		return err
	}
	if occablas.NeedsDouble[T]() && !ctx.SupportsDouble() {
		return fmt.Errorf("%w: no native double precision", device.ErrOutOfResources)
	}

	lenX, lenY := p.VectorLens()
	elem := occablas.SizeOf[T]()
	aBytes := int64(p.SizeA()) * elem
	xBytes := int64(harness.VectorSize(p.OffX, lenX, p.IncX)) * elem
	yBytes := int64(harness.VectorSize(p.OffY, lenY, p.IncY)) * elem
	if err := checkResources(ctx.Limits(), aBytes, xBytes, yBytes); err != nil {
		return err
	}

	c.ctx = ctx
	c.queues = selectQueues(ctx, p.NumQueues)
	c.a = make([]T, p.SizeA())
	c.x = make([]T, harness.VectorSize(p.OffX, lenX, p.IncX))
	c.y = make([]T, harness.VectorSize(p.OffY, lenY, p.IncY))

	rng := rand.New(rand.NewSource(p.Seed))
	c.alpha, c.beta = harness.RandomGemvInputs(rng, p, c.a, c.x, c.y)
	c.backY = make([]T, len(c.y))
	copy(c.backY, c.y)

	var err error
	c.bufA, err = device.NewBuffer(ctx, c.a, int64(p.OffA)*elem, device.ReadOnly)
	if err != nil {
		return err
	}
	c.bufX, err = device.NewBuffer(ctx, c.x, 0, device.ReadOnly)
	if err != nil {
		return err
	}
	c.bufY, err = device.NewBuffer(ctx, c.y, 0, device.ReadWrite)
	if err != nil {
		return err
	}
	return nil
}

func (c *GemvCase[T]) EtalonSingle() (time.Duration, error) {
	p := c.Params
	copy(c.y, c.backY)
	start := time.Now()
	ref.Gemv(p.Order, p.TransA, p.M, p.N, c.alpha, c.a, p.OffA, p.Lda,
		c.x, p.OffX, p.IncX, c.beta, c.y, p.OffY, p.IncY)
	return time.Since(start), nil
}

// DeviceRun restores y once, enqueues iters back-to-back invocations and
// waits for the whole block; the mean per invocation is returned.
func (c *GemvCase[T]) DeviceRun(iters int) (time.Duration, error) {
	p := c.Params
	if iters < 1 {
		iters = 1
	}
	if err := device.Upload(c.bufY, c.backY, 0); err != nil {
		return 0, err
	}
	start := time.Now()
	var pending []*device.Event
	for i := 0; i < iters; i++ {
		events, err := device.Gemv(c.ctx, p.Order, p.TransA, p.M, p.N, c.alpha,
			c.bufA, p.OffA, p.Lda, c.bufX, p.OffX, p.IncX, c.beta,
			c.bufY, p.OffY, p.IncY, c.queues)
		if err != nil {
			return 0, err
		}
		pending = append(pending, events...)
	}
	if err := device.WaitAll(pending); err != nil {
		return 0, err
	}
	return time.Since(start) / time.Duration(iters), nil
}

func (c *GemvCase[T]) Flops() float64 {
	f := 2 * float64(c.Params.M) * float64(c.Params.N)
	if occablas.IsComplex[T]() {
		f *= 4
	}
	return f
}

func (c *GemvCase[T]) Free() {
	c.bufA.Free()
	c.bufX.Free()
	c.bufY.Free()
	c.bufA, c.bufX, c.bufY = nil, nil, nil
}

// selectQueues picks the case's command queues; zero means all of them.
func selectQueues(ctx *device.Context, numQueues int) []*device.Queue {
	queues := ctx.Queues()
	if numQueues > 0 && numQueues < len(queues) {
		queues = queues[:numQueues]
	}
	return queues
}

// checkResources verifies the case's buffers fit the context's memory limits
// before anything is allocated, so a too-big case skips cleanly instead of
// failing halfway through buffer creation.
func checkResources(limits device.MemoryLimits, byteSizes ...int64) error {
	var total int64
	for _, s := range byteSizes {
		if limits.MaxAllocSize > 0 && s > limits.MaxAllocSize {
			return fmt.Errorf("%w: buffer of %d bytes exceeds max alloc size %d",
				device.ErrOutOfResources, s, limits.MaxAllocSize)
		}
		total += s
	}
	if limits.GlobalMemSize > 0 && total > limits.GlobalMemSize {
		return fmt.Errorf("%w: %d bytes of buffers exceed global memory %d",
			device.ErrOutOfResources, total, limits.GlobalMemSize)
	}
	return nil
}

func uploName(uplo blas.Uplo) string {
	if uplo == blas.Lower {
		return "lower"
	}
	return "upper"
}

func transName(trans blas.Transpose) string {
	switch trans {
	case blas.Trans:
		return "trans"
	case blas.ConjTrans:
		return "conjtrans"
	default:
		return "notrans"
	}
}
