package tensor

import "fmt"

// Shape represents the logical dimensions of a tensor.
// Zero extents are legal; negative extents are not.
type Shape []int

// NumElements returns the total number of logical elements.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that no dimension is negative.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be >= 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// EqualExcept checks if two shapes have the same rank and agree on every
// dimension other than dim. It returns the first mismatching dimension, or -1.
func (s Shape) EqualExcept(other Shape, dim int) (bool, int) {
	if len(s) != len(other) {
		return false, -1
	}
	for i := range s {
		if i != dim && s[i] != other[i] {
			return false, i
		}
	}
	return true, -1
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// String formats the shape as (d0, d1, ...).
func (s Shape) String() string {
	out := make([]byte, 0, 4*len(s)+2)
	out = append(out, '(')
	for i, d := range s {
		if i > 0 {
			out = append(out, ", "...)
		}
		out = fmt.Appendf(out, "%d", d)
	}
	return string(append(out, ')'))
}

// ceilDiv returns ceil(a/b) for non-negative a and positive b.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
