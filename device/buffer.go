package device

import (
	"fmt"
	"unsafe"

	"github.com/notargets/gocca"

	"github.com/notargets/occablas"
)

// AccessMode declares how the device routine may touch a buffer.
type AccessMode int

const (
	ReadOnly AccessMode = iota
	ReadWrite
)

func (m AccessMode) String() string {
	if m == ReadOnly {
		return "ReadOnly"
	}
	return "ReadWrite"
}

// Buffer is a handle to device-resident memory created from a host slice.
// The creator owns it exclusively and must Free it on every control path.
type Buffer struct {
	ctx   *Context
	mem   *gocca.OCCAMemory
	bytes int64
	mode  AccessMode
	freed bool
}

// NewBuffer allocates device memory sized to host and uploads the host data
// starting at offsetBytes (bytes before the offset are left undefined on the
// device, matching create-and-enqueue buffer semantics). Returns an error
// wrapping ErrOutOfResources when the context's memory limits are exceeded,
// so callers can skip instead of fail.
func NewBuffer[T occablas.Scalar](c *Context, host []T, offsetBytes int64, mode AccessMode) (*Buffer, error) {
	if len(host) == 0 {
		return nil, fmt.Errorf("device: cannot create buffer from empty slice")
	}
	bytes := int64(len(host)) * occablas.SizeOf[T]()
	if offsetBytes < 0 || offsetBytes >= bytes {
		return nil, fmt.Errorf("device: buffer offset %d out of range [0, %d)", offsetBytes, bytes)
	}
	if err := c.reserve(bytes); err != nil {
		return nil, err
	}

	b := &Buffer{ctx: c, bytes: bytes, mode: mode}
	err := c.withDevice(func() error {
		b.mem = c.device.Malloc(bytes, nil, nil)
		if b.mem == nil {
			return fmt.Errorf("%w: Malloc of %d bytes failed", ErrOutOfResources, bytes)
		}
		ptr := unsafe.Add(unsafe.Pointer(&host[0]), uintptr(offsetBytes))
		b.mem.CopyFromWithOffset(ptr, bytes-offsetBytes, offsetBytes)
		return nil
	})
	if err != nil {
		c.releaseBytes(bytes)
		return nil, err
	}
	return b, nil
}

func (b *Buffer) Bytes() int64     { return b.bytes }
func (b *Buffer) Mode() AccessMode { return b.mode }

// Mem exposes the underlying gocca memory for kernel argument lists.
func (b *Buffer) Mem() *gocca.OCCAMemory { return b.mem }

// ReadBack copies the buffer contents synchronously into host. Call only
// after every event covering this buffer has been waited on.
func ReadBack[T occablas.Scalar](b *Buffer, host []T) error {
	if b == nil || b.freed {
		return fmt.Errorf("device: read back on released buffer")
	}
	bytes := int64(len(host)) * occablas.SizeOf[T]()
	if bytes > b.bytes {
		bytes = b.bytes
	}
	return b.ctx.withDevice(func() error {
		b.mem.CopyTo(unsafe.Pointer(&host[0]), bytes)
		return nil
	})
}

// Upload overwrites the buffer with host data starting at offsetBytes. Used
// by the performance harness to restore pristine inputs between timing runs.
func Upload[T occablas.Scalar](b *Buffer, host []T, offsetBytes int64) error {
	if b == nil || b.freed {
		return fmt.Errorf("device: upload to released buffer")
	}
	if b.mode == ReadOnly {
		return fmt.Errorf("device: upload to read-only buffer")
	}
	bytes := int64(len(host)) * occablas.SizeOf[T]()
	if bytes > b.bytes {
		bytes = b.bytes
	}
	if offsetBytes < 0 || offsetBytes >= bytes {
		return fmt.Errorf("device: upload offset %d out of range [0, %d)", offsetBytes, bytes)
	}
	return b.ctx.withDevice(func() error {
		ptr := unsafe.Add(unsafe.Pointer(&host[0]), uintptr(offsetBytes))
		b.mem.CopyFromWithOffset(ptr, bytes-offsetBytes, offsetBytes)
		return nil
	})
}

// Free releases the device memory. Safe to call on nil receivers and more
// than once, so cleanup paths can release unconditionally.
func (b *Buffer) Free() {
	if b == nil || b.freed {
		return
	}
	b.freed = true
	_ = b.ctx.withDevice(func() error {
		b.mem.Free()
		return nil
	})
	b.ctx.releaseBytes(b.bytes)
}
