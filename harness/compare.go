package harness

import (
	"fmt"

	"github.com/notargets/occablas"
)

// CompareVectors compares the active strided elements of two vector
// containers for exact equality. incAbs is the absolute increment; traversal
// direction does not change which positions are active. Returns a
// diagnostic error for the first mismatch.
func CompareVectors[T occablas.Scalar](off, length, incAbs int, expected, actual []T) error {
	for i := 0; i < length; i++ {
		idx := off + i*incAbs
		if expected[idx] != actual[idx] {
			return fmt.Errorf("element %d (buffer index %d): expected %v, got %v",
				i, idx, expected[idx], actual[idx])
		}
	}
	return nil
}

// ComparePacked compares the active packed-triangle region of two HPR
// result containers for exact equality.
func ComparePacked[T occablas.Scalar](off, n int, expected, actual []T) error {
	for i := 0; i < n*(n+1)/2; i++ {
		idx := off + i
		if expected[idx] != actual[idx] {
			return fmt.Errorf("packed element %d (buffer index %d): expected %v, got %v",
				i, idx, expected[idx], actual[idx])
		}
	}
	return nil
}

// CheckVectorSentinels verifies that every inactive position of a vector
// container still carries the sentinel marker, i.e. the routine under test
// never touched elements outside the declared active region.
func CheckVectorSentinels[T occablas.Scalar](off, length, incAbs int, buf []T) error {
	for p := range buf {
		if activePosition(p, off, incAbs, length) {
			continue
		}
		if !occablas.IsNaN(buf[p]) {
			return fmt.Errorf("inactive buffer index %d was modified: %v", p, buf[p])
		}
	}
	return nil
}

// CheckPrefixSentinels verifies that the first off elements of a container
// still carry the sentinel marker.
func CheckPrefixSentinels[T occablas.Scalar](off int, buf []T) error {
	for p := 0; p < off; p++ {
		if !occablas.IsNaN(buf[p]) {
			return fmt.Errorf("offset region index %d was modified: %v", p, buf[p])
		}
	}
	return nil
}
