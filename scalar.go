package occablas

import (
	"math"
	"math/rand"
	"unsafe"
)

// Scalar is the closed set of element types the BLAS routines operate on.
type Scalar interface {
	~float32 | ~float64 | ~complex64 | ~complex128
}

// Complex restricts Scalar to the complex kinds (used by HPR and friends).
type Complex interface {
	~complex64 | ~complex128
}

// Kind identifies an element type by its conventional BLAS prefix.
type Kind string

const (
	Single        Kind = "s"
	Double        Kind = "d"
	SingleComplex Kind = "c"
	DoubleComplex Kind = "z"
)

// KindOf returns the BLAS prefix for T.
func KindOf[T Scalar]() Kind {
	var z T
	switch any(z).(type) {
	case float32:
		return Single
	case float64:
		return Double
	case complex64:
		return SingleComplex
	default:
		return DoubleComplex
	}
}

// IsComplex reports whether T is a complex kind.
func IsComplex[T Scalar]() bool {
	k := KindOf[T]()
	return k == SingleComplex || k == DoubleComplex
}

// NeedsDouble reports whether T requires native fp64 support on the device.
func NeedsDouble[T Scalar]() bool {
	k := KindOf[T]()
	return k == Double || k == DoubleComplex
}

// SizeOf returns the element size of T in bytes.
func SizeOf[T Scalar]() int64 {
	var z T
	return int64(unsafe.Sizeof(z))
}

// NaN returns the sentinel marker for T. For complex kinds both parts are NaN.
func NaN[T Scalar]() T {
	var z T
	switch p := any(&z).(type) {
	case *float32:
		*p = float32(math.NaN())
	case *float64:
		*p = math.NaN()
	case *complex64:
		*p = complex(float32(math.NaN()), float32(math.NaN()))
	case *complex128:
		*p = complex(math.NaN(), math.NaN())
	}
	return z
}

// IsNaN reports whether v carries the sentinel marker in any component.
func IsNaN[T Scalar](v T) bool {
	switch v := any(v).(type) {
	case float32:
		return math.IsNaN(float64(v))
	case float64:
		return math.IsNaN(v)
	case complex64:
		return math.IsNaN(float64(real(v))) || math.IsNaN(float64(imag(v)))
	case complex128:
		return math.IsNaN(real(v)) || math.IsNaN(imag(v))
	}
	return false
}

// Conj returns the complex conjugate of v. Real kinds pass through unchanged.
func Conj[T Scalar](v T) T {
	switch p := any(&v).(type) {
	case *complex64:
		*p = complex(real(*p), -imag(*p))
	case *complex128:
		*p = complex(real(*p), -imag(*p))
	}
	return v
}

// FromComplex converts a complex128 multiplier to T, dropping the imaginary
// part for real kinds.
func FromComplex[T Scalar](c complex128) T {
	var z T
	switch p := any(&z).(type) {
	case *float32:
		*p = float32(real(c))
	case *float64:
		*p = real(c)
	case *complex64:
		*p = complex64(c)
	case *complex128:
		*p = c
	}
	return z
}

// Components splits v into real and imaginary float64 parts for kernel
// argument marshaling.
func Components[T Scalar](v T) (re, im float64) {
	switch v := any(v).(type) {
	case float32:
		return float64(v), 0
	case float64:
		return v, 0
	case complex64:
		return float64(real(v)), float64(imag(v))
	case complex128:
		return real(v), imag(v)
	}
	return 0, 0
}

// Random returns a uniformly distributed element on a dyadic grid in
// [-4, 4] per component. Grid values keep products and moderate-length sums
// exactly representable in single precision, so reference and device
// arithmetic produce bit-equal results regardless of summation order.
func Random[T Scalar](rng *rand.Rand) T {
	re := float64(rng.Intn(33)-16) / 4
	im := float64(rng.Intn(33)-16) / 4
	return FromComplex[T](complex(re, im))
}
