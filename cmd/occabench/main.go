package main

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/notargets/gocca"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/notargets/occablas/config"
	"github.com/notargets/occablas/device"
	"github.com/notargets/occablas/harness"
	"github.com/notargets/occablas/logger"
	"github.com/notargets/occablas/perf"
	"github.com/notargets/occablas/utils"
)

func main() {
	var cfg *config.Config
	var log *zap.Logger

	app := &cli.App{
		Name:  "occabench",
		Usage: "Benchmark OCCA BLAS routines against a host etalon",
		Before: func(c *cli.Context) error {
			loaded, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return err
			}
			cfg = loaded
			verbosity := cfg.Logger.Verbosity
			if verbosity == "" {
				verbosity = "info"
			}
			zapLogger, err := logger.New(verbosity)
			if err != nil {
				return err
			}
			log = zapLogger.Named("bench")
			return nil
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "bench.yaml",
				Usage:   "Load benchmark configuration from `FILE`",
				EnvVars: []string{"OCCABENCH_CONFIG"},
			},
		},
		Action: func(c *cli.Context) error {
			banner := figure.NewFigure("occabench", "", true)
			banner.Print()
			return runBench(cfg, log)
		},
	}

	if err := app.Run(os.Args); err != nil {
		if log != nil {
			log.Fatal("benchmark failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func runBench(cfg *config.Config, log *zap.Logger) error {
	dev, err := openDevice(cfg.Device.Props)
	if err != nil {
		return err
	}
	defer dev.Free()
	log.Info("device ready", zap.String("mode", dev.Mode()))

	ctx := device.NewContext(dev, cfg.Device.Queues, device.MemoryLimits{
		GlobalMemSize: cfg.Device.GlobalMemSize,
		MaxAllocSize:  cfg.Device.MaxAllocSize,
	})
	defer ctx.Free()

	cases, err := buildCases(cfg.Bench.Cases)
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		return fmt.Errorf("no benchmark cases configured")
	}

	runner := perf.NewRunner(log, cfg.Bench.Iterations)
	_, fatal := runner.RunAll(ctx, cases)
	if fatal {
		return fmt.Errorf("one or more benchmark cases failed")
	}
	return nil
}

func openDevice(props string) (*gocca.OCCADevice, error) {
	if props == "" {
		return utils.CreateTestDevice(), nil
	}
	dev, err := gocca.NewDevice(props)
	if err != nil {
		return nil, fmt.Errorf("failed to create device from %s: %w", props, err)
	}
	return dev, nil
}

func buildCases(descs []config.Case) ([]perf.Case, error) {
	var cases []perf.Case
	for i, s := range descs {
		p, err := s.Params()
		if err != nil {
			return nil, fmt.Errorf("case %d: %w", i, err)
		}
		c, err := newCase(s.Routine, s.Type, p)
		if err != nil {
			return nil, fmt.Errorf("case %d: %w", i, err)
		}
		cases = append(cases, c)
	}
	return cases, nil
}

func newCase(routine, typ string, p harness.TestParams) (perf.Case, error) {
	switch routine {
	case "gemv":
		switch typ {
		case "s":
			return &perf.GemvCase[float32]{Params: p}, nil
		case "d":
			return &perf.GemvCase[float64]{Params: p}, nil
		case "c":
			return &perf.GemvCase[complex64]{Params: p}, nil
		case "z":
			return &perf.GemvCase[complex128]{Params: p}, nil
		}
		return nil, fmt.Errorf("unknown gemv element type %q", typ)
	case "hpr":
		switch typ {
		case "c":
			return &perf.HprCase[complex64]{Params: p}, nil
		case "z":
			return &perf.HprCase[complex128]{Params: p}, nil
		}
		return nil, fmt.Errorf("unknown hpr element type %q", typ)
	}
	return nil, fmt.Errorf("unknown routine %q", routine)
}
