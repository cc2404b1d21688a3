package occablas

// Order selects the memory layout of a matrix operand. The reference
// implementation (gonum) is row-major native; column-major data is reordered
// or conjugate-transformed before reference calls.
type Order int

const (
	RowMajor Order = iota
	ColMajor
)

func (o Order) String() string {
	if o == RowMajor {
		return "RowMajor"
	}
	return "ColMajor"
}
