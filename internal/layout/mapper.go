// Package layout maps logical tensor coordinates to physical element offsets.
//
// A Mapper is a closed tagged variant over the three format kinds
// (channels-first, channels-last, blocked). The kind is resolved once when the
// Mapper is built; OffsetFunc hands the copy loop a kind-specialised closure so
// the hot path carries no per-element format branches.
package layout

import (
	"fmt"

	"github.com/born-ml/blockcat/internal/tensor"
)

const channel = tensor.ChannelAxis

// Mapper converts logical coordinates to physical offsets for one descriptor.
type Mapper struct {
	kind  tensor.Kind
	rank  int
	block int
	size  int
	dims  [tensor.MaxRank]int
	// strides[d] is the physical stride of logical dim d. For blocked formats
	// strides[channel] is the stride of the channel block index.
	strides [tensor.MaxRank]int
	spatial int
}

// New builds a Mapper for a validated descriptor.
// It panics if the descriptor is invalid.
func New(desc tensor.Descriptor) Mapper {
	if err := desc.Validate(); err != nil {
		panic(fmt.Sprintf("layout: %v", err))
	}

	m := Mapper{
		kind:    desc.Format.Kind(),
		rank:    desc.Rank(),
		block:   desc.BlockSize(),
		size:    desc.PhysicalSize(),
		spatial: desc.SpatialSize(),
	}
	copy(m.dims[:], desc.Shape)

	last := m.rank - 1
	switch m.kind {
	case tensor.KindChannelsFirst:
		copy(m.strides[:], desc.Shape.ComputeStrides())
	case tensor.KindChannelsLast:
		c := m.dims[channel]
		m.strides[channel] = 1
		m.strides[last] = c
		for d := last - 1; d > channel; d-- {
			m.strides[d] = m.strides[d+1] * m.dims[d+1]
		}
		m.strides[0] = c * m.spatial
	case tensor.KindBlocked:
		m.strides[last] = m.block
		for d := last - 1; d > channel; d-- {
			m.strides[d] = m.strides[d+1] * m.dims[d+1]
		}
		m.strides[channel] = m.block * m.spatial
		m.strides[0] = desc.PaddedChannels() * m.spatial
	default:
		panic(fmt.Sprintf("layout: unsupported format kind %s", m.kind))
	}
	return m
}

// Kind returns the format kind the mapper was built for.
func (m Mapper) Kind() tensor.Kind {
	return m.kind
}

// Rank returns the logical rank.
func (m Mapper) Rank() int {
	return m.rank
}

// Size returns the physical element count, padding included.
func (m Mapper) Size() int {
	return m.size
}

// Stride returns the physical stride of logical dim d and whether the dim is
// addressed linearly. The channel dim of a blocked format is not linear.
func (m Mapper) Stride(d int) (int, bool) {
	if m.kind == tensor.KindBlocked && d == channel {
		return 0, false
	}
	return m.strides[d], true
}

// InnerStride returns the stride of the innermost logical dim, which is linear
// in every supported format.
func (m Mapper) InnerStride() int {
	s, ok := m.Stride(m.rank - 1)
	if !ok {
		panic("layout: innermost dim is not linear")
	}
	return s
}

// Offset returns the physical offset of a logical coordinate.
func (m Mapper) Offset(coord []int) int {
	if m.kind == tensor.KindBlocked {
		return m.blockedOffset(coord)
	}
	return m.plainOffset(coord)
}

// OffsetFunc returns an offset function specialised for the mapper's kind.
func (m Mapper) OffsetFunc() func(coord []int) int {
	if m.kind == tensor.KindBlocked {
		return m.blockedOffset
	}
	return m.plainOffset
}

func (m Mapper) plainOffset(coord []int) int {
	off := 0
	for d := 0; d < m.rank; d++ {
		off += coord[d] * m.strides[d]
	}
	return off
}

func (m Mapper) blockedOffset(coord []int) int {
	c := coord[channel]
	off := coord[0]*m.strides[0] + (c/m.block)*m.strides[channel] + c%m.block
	for d := channel + 1; d < m.rank; d++ {
		off += coord[d] * m.strides[d]
	}
	return off
}

// Coord inverts Offset. It returns false when offset lies in a padding cell or
// outside the buffer.
func (m Mapper) Coord(offset int) ([]int, bool) {
	if offset < 0 || offset >= m.size {
		return nil, false
	}
	coord := make([]int, m.rank)
	rem := offset

	switch m.kind {
	case tensor.KindChannelsFirst:
		for d := 0; d < m.rank; d++ {
			coord[d] = rem / m.strides[d]
			rem %= m.strides[d]
		}
	case tensor.KindChannelsLast:
		coord[0] = rem / m.strides[0]
		rem %= m.strides[0]
		for d := channel + 1; d < m.rank; d++ {
			coord[d] = rem / m.strides[d]
			rem %= m.strides[d]
		}
		coord[channel] = rem
	case tensor.KindBlocked:
		coord[0] = rem / m.strides[0]
		rem %= m.strides[0]
		cb := rem / m.strides[channel]
		rem %= m.strides[channel]
		for d := channel + 1; d < m.rank; d++ {
			coord[d] = rem / m.strides[d]
			rem %= m.strides[d]
		}
		coord[channel] = cb*m.block + rem
		if coord[channel] >= m.dims[channel] {
			return nil, false
		}
	}
	return coord, true
}

// PaddingRuns returns the number of contiguous padding spans in the buffer.
// Only blocked formats whose channel count is not a multiple of the block
// size have padding; there is one span per (n, spatial) position.
func (m Mapper) PaddingRuns() int {
	if m.kind != tensor.KindBlocked || m.dims[channel]%m.block == 0 {
		return 0
	}
	return m.dims[0] * m.spatial
}

// PaddingRun returns the start offset and length of padding span r,
// for 0 <= r < PaddingRuns().
func (m Mapper) PaddingRun(r int) (start, length int) {
	c := m.dims[channel]
	tail := c % m.block
	n, s := r/m.spatial, r%m.spatial
	lastBlock := (c - 1) / m.block
	start = n*m.strides[0] + lastBlock*m.strides[channel] + s*m.block + tail
	return start, m.block - tail
}
