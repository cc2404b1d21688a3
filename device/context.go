// Package device runs BLAS routines on an OCCA device through gocca. It
// provides the buffer, command-queue and completion-event plumbing the
// verification harness drives: buffers are created from host memory with a
// byte offset and access mode, routines are invoked asynchronously across one
// or more queues, and results become host-visible only after every returned
// event has been waited on.
package device

import (
	"errors"
	"fmt"
	"sync"

	"github.com/notargets/gocca"
)

// ErrOutOfResources marks device allocation failures. Harness code treats it
// as a skip condition rather than a test failure.
var ErrOutOfResources = errors.New("insufficient device resources")

// MemoryLimits bounds what a Context may allocate. Zero fields mean
// unlimited. Tests use tight limits to exercise the resource-exhaustion path
// deterministically.
type MemoryLimits struct {
	GlobalMemSize int64
	MaxAllocSize  int64
}

// Context owns the command queues and compiled kernels for one device. The
// underlying gocca device is created and freed by the caller; construct one
// Context per suite and inject it into each test case.
type Context struct {
	device *gocca.OCCADevice
	queues []*Queue
	limits MemoryLimits

	mu sync.Mutex // serializes all gocca calls

	allocMu   sync.Mutex
	allocated int64

	kernelMu sync.Mutex
	kernels  map[string]*gocca.OCCAKernel

	fp64Once sync.Once
	fp64     bool

	freed bool
}

// NewContext wraps dev with numQueues command queues and the given memory
// limits.
func NewContext(dev *gocca.OCCADevice, numQueues int, limits MemoryLimits) *Context {
	if dev == nil {
		panic("device: nil OCCA device")
	}
	if numQueues < 1 {
		numQueues = 1
	}
	c := &Context{
		device:  dev,
		limits:  limits,
		kernels: make(map[string]*gocca.OCCAKernel),
	}
	for i := 0; i < numQueues; i++ {
		c.queues = append(c.queues, newQueue(i))
	}
	return c
}

func (c *Context) Device() *gocca.OCCADevice { return c.device }

// Queues returns the command queues owned by this context.
func (c *Context) Queues() []*Queue { return c.queues }

func (c *Context) NumQueues() int { return len(c.queues) }

func (c *Context) Limits() MemoryLimits { return c.limits }

// AllocatedBytes reports the bytes currently reserved by live buffers.
func (c *Context) AllocatedBytes() int64 {
	c.allocMu.Lock()
	defer c.allocMu.Unlock()
	return c.allocated
}

// withDevice runs fn with exclusive access to the underlying device. gocca
// calls are not safe to interleave from multiple goroutines.
func (c *Context) withDevice(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn()
}

// Finish blocks until all device work has drained.
func (c *Context) Finish() {
	_ = c.withDevice(func() error {
		c.device.Finish()
		return nil
	})
}

// SupportsDouble probes the device once for native fp64 support by building a
// trivial double-precision kernel. Double and double-complex tests skip when
// this returns false.
func (c *Context) SupportsDouble() bool {
	c.fp64Once.Do(func() {
		const probe = `
@kernel void fp64Probe(double *out) {
	for (int b = 0; b < 1; ++b; @outer) {
		for (int t = 0; t < 1; ++t; @inner) {
			out[0] = 1.0;
		}
	}
}`
		c.mu.Lock()
		defer c.mu.Unlock()
		kernel, err := c.device.BuildKernelFromString(probe, "fp64Probe", nil)
		if err == nil && kernel != nil {
			c.fp64 = true
			kernel.Free()
		}
	})
	return c.fp64
}

// kernel returns the compiled kernel for name, building it from source on
// first use. Compiled kernels are cached for the lifetime of the context.
func (c *Context) kernel(name string, source func() string) (*gocca.OCCAKernel, error) {
	c.kernelMu.Lock()
	defer c.kernelMu.Unlock()

	if kernel, ok := c.kernels[name]; ok {
		return kernel, nil
	}

	var kernel *gocca.OCCAKernel
	var err error
	c.mu.Lock()
	if c.device.Mode() == "OpenMP" {
		// Workaround for OCCA bug: OpenMP doesn't get default -O3 flag
		props := gocca.JsonParse(`{"compiler_flags": "-O3"}`)
		kernel, err = c.device.BuildKernelFromString(source(), name, props)
		props.Free()
	} else {
		kernel, err = c.device.BuildKernelFromString(source(), name, nil)
	}
	c.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("failed to build kernel %s: %w", name, err)
	}
	if kernel == nil {
		return nil, fmt.Errorf("kernel build returned nil for %s", name)
	}
	c.kernels[name] = kernel
	return kernel, nil
}

func (c *Context) reserve(bytes int64) error {
	if c.limits.MaxAllocSize > 0 && bytes > c.limits.MaxAllocSize {
		return fmt.Errorf("%w: allocation of %d bytes exceeds max alloc size %d",
			ErrOutOfResources, bytes, c.limits.MaxAllocSize)
	}
	c.allocMu.Lock()
	defer c.allocMu.Unlock()
	if c.limits.GlobalMemSize > 0 && c.allocated+bytes > c.limits.GlobalMemSize {
		return fmt.Errorf("%w: %d bytes requested with %d of %d already allocated",
			ErrOutOfResources, bytes, c.allocated, c.limits.GlobalMemSize)
	}
	c.allocated += bytes
	return nil
}

func (c *Context) releaseBytes(bytes int64) {
	c.allocMu.Lock()
	c.allocated -= bytes
	c.allocMu.Unlock()
}

// Free drains the queues and releases compiled kernels. Safe to call more
// than once. Buffers are owned by their creators; the gocca device is owned
// by the caller.
func (c *Context) Free() {
	if c.freed {
		return
	}
	c.freed = true
	for _, q := range c.queues {
		q.close()
	}
	c.kernelMu.Lock()
	for _, kernel := range c.kernels {
		kernel.Free()
	}
	c.kernels = make(map[string]*gocca.OCCAKernel)
	c.kernelMu.Unlock()
}
