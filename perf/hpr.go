package perf

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/notargets/occablas"
	"github.com/notargets/occablas/device"
	"github.com/notargets/occablas/harness"
	"github.com/notargets/occablas/ref"
)

// HprCase times the Hermitian packed rank-1 update. The packed matrix is
// restored from a pristine host copy before every timed invocation, since the
// routine updates it in place.
type HprCase[T occablas.Complex] struct {
	Params harness.TestParams

	ctx    *device.Context
	queues []*device.Queue

	ap, backAP, x []T
	alpha         float64

	bufAP, bufX *device.Buffer
}

func (c *HprCase[T]) Name() string {
	return fmt.Sprintf("%shpr n=%d %v %s", occablas.KindOf[T](),
		c.Params.N, c.Params.Order, uploName(c.Params.Uplo))
}

func (c *HprCase[T]) Prepare(ctx *device.Context) error {
	p := c.Params
	if p.IncY == 0 {
		p.IncY = 1
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if occablas.NeedsDouble[T]() && !ctx.SupportsDouble() {
		return fmt.Errorf("%w: no native double precision", device.ErrOutOfResources)
	}

	elem := occablas.SizeOf[T]()
	apBytes := int64(p.PackedSize()) * elem
	xBytes := int64(harness.VectorSize(p.OffX, p.N, p.IncX)) * elem
	if err := checkResources(ctx.Limits(), apBytes, xBytes); err != nil {
		return err
	}

	c.ctx = ctx
	c.queues = selectQueues(ctx, p.NumQueues)
	c.ap = make([]T, p.PackedSize())
	c.x = make([]T, harness.VectorSize(p.OffX, p.N, p.IncX))

	rng := rand.New(rand.NewSource(p.Seed))
	c.alpha = harness.RandomHerInputs(rng, p, c.ap, c.x)
	c.backAP = make([]T, len(c.ap))
	copy(c.backAP, c.ap)

	var err error
	c.bufAP, err = device.NewBuffer(ctx, c.ap, 0, device.ReadWrite)
	if err != nil {
		return err
	}
	c.bufX, err = device.NewBuffer(ctx, c.x, 0, device.ReadOnly)
	if err != nil {
		return err
	}
	return nil
}

func (c *HprCase[T]) EtalonSingle() (time.Duration, error) {
	p := c.Params
	copy(c.ap, c.backAP)
	start := time.Now()
	ref.Hpr(p.Order, p.Uplo, p.N, c.alpha, c.x, p.OffX, p.IncX, c.ap, p.OffA)
	return time.Since(start), nil
}

// DeviceRun restores AP once, then enqueues iters back-to-back updates and
// waits for the whole block; the mean per invocation is returned. The updates
// accumulate into AP, which does not affect the timing.
func (c *HprCase[T]) DeviceRun(iters int) (time.Duration, error) {
	p := c.Params
	if iters < 1 {
		iters = 1
	}
	if err := device.Upload(c.bufAP, c.backAP, 0); err != nil {
		return 0, err
	}
	start := time.Now()
	var pending []*device.Event
	for i := 0; i < iters; i++ {
		events, err := device.Hpr[T](c.ctx, p.Order, p.Uplo, p.N, c.alpha,
			c.bufX, p.OffX, p.IncX, c.bufAP, p.OffA, c.queues)
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

// Flops counts 10 real operations per updated triangle element: one complex
// multiply, a real scale and a complex add.
func (c *HprCase[T]) Flops() float64 {
	n := float64(c.Params.N)
	return 5 * n * (n + 1)
}

func (c *HprCase[T]) Free() {
	c.bufAP.Free()
	c.bufX.Free()
	c.bufAP, c.bufX = nil, nil
}
