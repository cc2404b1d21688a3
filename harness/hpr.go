package harness

import (
	"math/rand"
	"testing"

	"github.com/notargets/occablas"
	"github.com/notargets/occablas/device"
	"github.com/notargets/occablas/ref"
)

// RunHprCorrectness generates one Hermitian packed rank-1 update case from p,
// executes the reference and device paths, and compares the packed result
// exactly. Skip and failure semantics match RunGemvCorrectness.
func RunHprCorrectness[T occablas.Complex](t testing.TB, ctx *device.Context, p TestParams) {
	t.Helper()

	if occablas.NeedsDouble[T]() && !ctx.SupportsDouble() {
		t.Skipf("target device lacks native double precision arithmetic, test skipped")
	}
	if p.IncY == 0 {
		// y is not part of this routine
		p.IncY = 1
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("invalid test parameters: %v", err)
	}

	refAP := make([]T, p.PackedSize())
	x := make([]T, VectorSize(p.OffX, p.N, p.IncX))
	devAP := make([]T, len(refAP))

	rng := rand.New(rand.NewSource(p.Seed))
	alpha := RandomHerInputs(rng, p, refAP, x)
	copy(devAP, refAP)

	ref.Hpr(p.Order, p.Uplo, p.N, alpha, x, p.OffX, p.IncX, refAP, p.OffA)

	if p.N == 0 {
		if err := ComparePacked(p.OffA, p.N, refAP, devAP); err != nil {
			t.Fatalf("hpr result mismatch: %v", err)
		}
		return
	}

	bufAP, err := device.NewBuffer(ctx, devAP, 0, device.ReadWrite)
	if err != nil {
		skipAlloc(t, "packed matrix AP", err)
	}
	defer bufAP.Free()
	bufX, err := device.NewBuffer(ctx, x, 0, device.ReadOnly)
	if err != nil {
		skipAlloc(t, "vector x", err)
	}
	defer bufX.Free()

	events, err := device.Hpr[T](ctx, p.Order, p.Uplo, p.N, alpha,
		bufX, p.OffX, p.IncX, bufAP, p.OffA, caseQueues(ctx, p))
	if err != nil {
		t.Fatalf("device hpr failed: %v", err)
	}
	if err := device.WaitAll(events); err != nil {
		t.Fatalf("wait for successful finish failed: %v", err)
	}
	if err := device.ReadBack(bufAP, devAP); err != nil {
		t.Fatalf("result read back failed: %v", err)
	}

	if err := ComparePacked(p.OffA, p.N, refAP, devAP); err != nil {
		t.Fatalf("hpr result mismatch: %v", err)
	}
	if err := CheckPrefixSentinels(p.OffA, devAP); err != nil {
		t.Errorf("hpr wrote into the offset region: %v", err)
	}
}
