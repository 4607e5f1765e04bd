package concat

import (
	"math"

	"github.com/pkg/errors"

	"github.com/born-ml/blockcat/internal/layout"
	"github.com/born-ml/blockcat/internal/tensor"
)

// Verify checks a materialized concatenation.
//
// Every destination logical coordinate must hold, bit for bit, the value of
// the source covering that axis sub-range, and every destination padding cell
// must be zero.
func Verify(srcs []*tensor.Buffer, dst *tensor.Buffer, axis int) error {
	dstDesc := dst.Descriptor()
	dstMap := layout.New(dstDesc)
	dstCoord := make([]int, dstDesc.Rank())

	acc := 0
	for i, src := range srcs {
		srcDesc := src.Descriptor()
		srcMap := layout.New(srcDesc)

		var mismatch error
		layout.ForEachCoord(srcDesc.Shape, func(coord []int) {
			if mismatch != nil {
				return
			}
			copy(dstCoord, coord)
			dstCoord[axis] += acc
			so, do := srcMap.Offset(coord), dstMap.Offset(dstCoord)
			if src.Bits(so) != dst.Bits(do) {
				mismatch = errors.Errorf("source %d at %v: got %v, want %v",
					i, coord, dst.Float(do), src.Float(so))
			}
		})
		if mismatch != nil {
			return mismatch
		}
		acc += srcDesc.Shape[axis]
	}

	return VerifyPadding(dst)
}

// VerifyPadding checks that every padding cell of a buffer is zero.
func VerifyPadding(buf *tensor.Buffer) error {
	m := layout.New(buf.Descriptor())
	for r := 0; r < m.PaddingRuns(); r++ {
		start, length := m.PaddingRun(r)
		for o := start; o < start+length; o++ {
			if buf.Bits(o) != 0 {
				return errors.Errorf("padding cell %d is %v, want 0", o, buf.Float(o))
			}
		}
	}
	return nil
}

// FillPattern writes a deterministic, position-dependent value into every
// logical element of buf and leaves padding untouched. Different seeds give
// different tensors.
func FillPattern(buf *tensor.Buffer, seed int) {
	desc := buf.Descriptor()
	m := layout.New(desc)
	i := 0
	layout.ForEachCoord(desc.Shape, func(coord []int) {
		buf.SetFloat(m.Offset(coord), patternValue(desc.DType, i, seed))
		i++
	})
}

// FillPhysical overwrites every physical cell of buf, padding included, with a
// non-zero value. It models an uninitialised destination.
func FillPhysical(buf *tensor.Buffer, v float32) {
	for i := 0; i < buf.Len(); i++ {
		buf.SetFloat(i, v)
	}
}

func patternValue(dt tensor.DataType, i, seed int) float32 {
	if dt == tensor.Int8 {
		// Skip 0 so a copied value is never mistaken for cleared memory.
		v := (i*7+seed*13)%250 - 125
		if v == 0 {
			v = 1
		}
		return float32(v)
	}
	v := float32(math.Sin(float64(i)*0.37+float64(seed))) * 100
	if v == 0 {
		v = 0.5
	}
	return v
}
