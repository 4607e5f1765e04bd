package layout

import "github.com/born-ml/blockcat/internal/tensor"

// Rows returns the number of innermost rows in shape: the product of every
// dim except the last. A zero extent anywhere yields zero rows.
func Rows(shape tensor.Shape) int {
	if len(shape) == 0 {
		return 0
	}
	if shape[len(shape)-1] == 0 {
		return 0
	}
	return shape[:len(shape)-1].NumElements()
}

// RowCoord writes the coordinate of the first element of row r into coord,
// leaving the innermost component at zero.
func RowCoord(shape tensor.Shape, r int, coord []int) {
	last := len(shape) - 1
	coord[last] = 0
	for d := last - 1; d >= 0; d-- {
		coord[d] = r % shape[d]
		r /= shape[d]
	}
}

// ForEachCoord calls fn for every logical coordinate of shape in row-major
// order. The coordinate slice is reused between calls.
func ForEachCoord(shape tensor.Shape, fn func(coord []int)) {
	if len(shape) == 0 || shape.NumElements() == 0 {
		return
	}
	coord := make([]int, len(shape))
	for {
		fn(coord)
		d := len(shape) - 1
		for ; d >= 0; d-- {
			coord[d]++
			if coord[d] < shape[d] {
				break
			}
			coord[d] = 0
		}
		if d < 0 {
			return
		}
	}
}
