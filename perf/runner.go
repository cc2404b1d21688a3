// Package perf times BLAS routines on the device against a host etalon. A
// Case prepares its own inputs and buffers and knows how to run one
// invocation of each path; the Runner repeats both, keeps the best times and
// classifies the outcome. A slower device run is reported, not failed: on
// small problems or emulated backends the host frequently wins.
package perf

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/notargets/occablas/device"
)

// Status classifies the outcome of one performance case.
type Status int

const (
	// StatusPass means the device path completed and was at least as fast
	// as the etalon.
	StatusPass Status = iota
	// StatusSoftSlower means the device path completed correctly but took
	// longer than the etalon. Informational, not a failure.
	StatusSoftSlower
	// StatusSkipped means the case could not run on this device, most
	// commonly for lack of memory.
	StatusSkipped
	// StatusFatal means a path failed outright.
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusSoftSlower:
		return "slower than etalon"
	case StatusSkipped:
		return "skipped"
	default:
		return "fatal"
	}
}

// Result carries the timing outcome of one case. DeviceTime is the mean per
// invocation over one block of back-to-back runs.
type Result struct {
	Case       string
	Status     Status
	EtalonTime time.Duration
	DeviceTime time.Duration
	// Ratio is etalon time over device time; above 1 the device won.
	Ratio  float64
	GFlops float64
	Err    error
}

// Case is one timed routine configuration. Prepare allocates host data and
// device buffers. EtalonSingle executes and times one host invocation.
// DeviceRun restores pristine inputs once, executes one block of iters
// back-to-back device invocations and returns the mean time per invocation,
// amortizing per-call dispatch overhead over the block. Free must be callable
// after a failed Prepare.
type Case interface {
	Name() string
	Prepare(ctx *device.Context) error
	EtalonSingle() (time.Duration, error)
	DeviceRun(iters int) (time.Duration, error)
	Flops() float64
	Free()
}

// DefaultIterations is the device block length and the etalon repetition
// count when the runner is not configured otherwise.
const DefaultIterations = 20

// Runner executes performance cases and logs their outcomes.
type Runner struct {
	Log        *zap.Logger
	Iterations int
}

func NewRunner(log *zap.Logger, iterations int) *Runner {
	if iterations < 1 {
		iterations = DefaultIterations
	}
	return &Runner{Log: log, Iterations: iterations}
}

// Run prepares and times one case. Resource exhaustion during Prepare skips
// the case; any execution error is fatal for the case but leaves the runner
// usable for the rest of the suite.
func (r *Runner) Run(ctx *device.Context, c Case) Result {
	res := Result{Case: c.Name()}
	defer c.Free()

	if err := c.Prepare(ctx); err != nil {
		if errors.Is(err, device.ErrOutOfResources) {
			res.Status = StatusSkipped
			res.Err = err
			r.Log.Warn("case skipped, insufficient device resources",
				zap.String("case", res.Case), zap.Error(err))
			return res
		}
		res.Status = StatusFatal
		res.Err = err
		r.Log.Error("case preparation failed",
			zap.String("case", res.Case), zap.Error(err))
		return res
	}

	etalon, err := r.best(c.EtalonSingle)
	if err != nil {
		res.Status = StatusFatal
		res.Err = err
		r.Log.Error("etalon run failed", zap.String("case", res.Case), zap.Error(err))
		return res
	}
	dev, err := c.DeviceRun(r.Iterations)
	if err != nil {
		res.Status = StatusFatal
		res.Err = err
		r.Log.Error("device run failed", zap.String("case", res.Case), zap.Error(err))
		return res
	}

	res.EtalonTime = etalon
	res.DeviceTime = dev
	if dev > 0 {
		res.Ratio = float64(etalon) / float64(dev)
		res.GFlops = c.Flops() / dev.Seconds() / 1e9
	}
	if etalon >= dev {
		res.Status = StatusPass
	} else {
		res.Status = StatusSoftSlower
	}

	r.Log.Info("case timed",
		zap.String("case", res.Case),
		zap.String("status", res.Status.String()),
		zap.Duration("etalon", res.EtalonTime),
		zap.Duration("device", res.DeviceTime),
		zap.Float64("ratio", res.Ratio),
		zap.Float64("gflops", res.GFlops))
	return res
}

// best runs single r.Iterations times and returns the minimum duration. The
// host etalon has no dispatch overhead to amortize, so the minimum just
// filters scheduler noise.
func (r *Runner) best(single func() (time.Duration, error)) (time.Duration, error) {
	var min time.Duration
	for i := 0; i < r.Iterations; i++ {
		d, err := single()
		if err != nil {
			return 0, err
		}
		if i == 0 || d < min {
			min = d
		}
	}
	return min, nil
}

// RunAll runs every case in order and reports whether any was fatal.
func (r *Runner) RunAll(ctx *device.Context, cases []Case) ([]Result, bool) {
	results := make([]Result, 0, len(cases))
	fatal := false
	for _, c := range cases {
		res := r.Run(ctx, c)
		if res.Status == StatusFatal {
			fatal = true
		}
		results = append(results, res)
	}
	return results, fatal
}
