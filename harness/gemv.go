package harness

import (
	"math/rand"
	"testing"

	"github.com/notargets/occablas"
	"github.com/notargets/occablas/device"
	"github.com/notargets/occablas/ref"
)

// RunGemvCorrectness generates one GEMV case from p, executes the reference
// and device paths, and compares the active result elements exactly.
//
// Failure taxonomy: missing fp64 support and buffer allocation failures skip
// the test; a failed enqueue, wait or mismatch fails it. Buffers are
// defer-released so every path, including skips and fatals, cleans up.
func RunGemvCorrectness[T occablas.Scalar](t testing.TB, ctx *device.Context, p TestParams) {
	t.Helper()

	if occablas.NeedsDouble[T]() && !ctx.SupportsDouble() {
		t.Skipf("target device lacks native double precision arithmetic, test skipped")
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("invalid test parameters: %v", err)
	}

	lenX, lenY := p.VectorLens()
	a := make([]T, p.SizeA())
	x := make([]T, VectorSize(p.OffX, lenX, p.IncX))
	refY := make([]T, VectorSize(p.OffY, lenY, p.IncY))
	devY := make([]T, len(refY))

	rng := rand.New(rand.NewSource(p.Seed))
	alpha, beta := RandomGemvInputs(rng, p, a, x, refY)
	copy(devY, refY)

	ref.Gemv(p.Order, p.TransA, p.M, p.N, alpha, a, p.OffA, p.Lda,
		x, p.OffX, p.IncX, beta, refY, p.OffY, p.IncY)

	if p.M == 0 || p.N == 0 {
		// Empty dimensions are a no-op; nothing reaches the device and the
		// y container comes back untouched.
		if err := CompareVectors(p.OffY, lenY, absInc(p.IncY), refY, devY); err != nil {
			t.Fatalf("gemv result mismatch: %v", err)
		}
		return
	}

	elem := occablas.SizeOf[T]()
	bufA, err := device.NewBuffer(ctx, a, int64(p.OffA)*elem, device.ReadOnly)
	if err != nil {
		skipAlloc(t, "matrix A", err)
	}
	defer bufA.Free()
	bufX, err := device.NewBuffer(ctx, x, 0, device.ReadOnly)
	if err != nil {
		skipAlloc(t, "vector x", err)
	}
	defer bufX.Free()
	bufY, err := device.NewBuffer(ctx, devY, 0, device.ReadWrite)
	if err != nil {
		skipAlloc(t, "vector y", err)
	}
	defer bufY.Free()

	events, err := device.Gemv(ctx, p.Order, p.TransA, p.M, p.N, alpha,
		bufA, p.OffA, p.Lda, bufX, p.OffX, p.IncX, beta,
		bufY, p.OffY, p.IncY, caseQueues(ctx, p))
	if err != nil {
		t.Fatalf("device gemv failed: %v", err)
	}
	if err := device.WaitAll(events); err != nil {
		t.Fatalf("wait for successful finish failed: %v", err)
	}
	if err := device.ReadBack(bufY, devY); err != nil {
		t.Fatalf("result read back failed: %v", err)
	}

	if err := CompareVectors(p.OffY, lenY, absInc(p.IncY), refY, devY); err != nil {
		t.Fatalf("gemv result mismatch: %v", err)
	}
	if err := CheckVectorSentinels(p.OffY, lenY, absInc(p.IncY), devY); err != nil {
		t.Errorf("gemv wrote outside the active region: %v", err)
	}
}

// caseQueues selects the command queues for a case; NumQueues of zero means
// all of the context's queues.
func caseQueues(ctx *device.Context, p TestParams) []*device.Queue {
	queues := ctx.Queues()
	if p.NumQueues > 0 && p.NumQueues < len(queues) {
		queues = queues[:p.NumQueues]
	}
	return queues
}

// skipAlloc skips the test on buffer creation failure. The most probable
// reason is data too big for the device, which is a capability gap rather
// than a defect.
func skipAlloc(t testing.TB, what string, err error) {
	t.Helper()
	t.Skipf("failed to create device buffer for %s (%v), test skipped", what, err)
}
