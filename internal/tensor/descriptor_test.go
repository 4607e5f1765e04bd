package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDescriptor(t *testing.T) {
	shape := Shape{4, 25, 5, 5}
	d, err := NewDescriptor(shape, Float32, NChw16c)
	require.NoError(t, err)

	shape[1] = 1
	assert.Equal(t, 25, d.Channels(), "descriptor must own its shape")

	tests := []struct {
		name   string
		shape  Shape
		dtype  DataType
		format Format
	}{
		{"NegativeExtent", Shape{4, -1, 5, 5}, Float32, NCHW},
		{"BadDType", Shape{4, 1, 5, 5}, DataType(9), NCHW},
		{"AnyFormat", Shape{4, 1, 5, 5}, Float32, Any},
		{"RankMismatch", Shape{4, 1, 5}, Float32, NCHW},
		{"BlockedRank2", Shape{4, 1}, Float32, NChw8c},
		{"SizeOverflow", Shape{2, math.MaxInt/2 + 1, 1, 1}, Int8, NCHW},
		{"PaddingOverflow", Shape{1, math.MaxInt - 4, 1, 1}, Int8, NChw16c},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDescriptor(tt.shape, tt.dtype, tt.format)
			assert.Error(t, err)
		})
	}

	assert.Panics(t, func() { MustDescriptor(Shape{1}, Float32, NC) })
}

func TestDescriptorSizes(t *testing.T) {
	tests := []struct {
		name     string
		desc     Descriptor
		padded   int
		logical  int
		physical int
		dims     Shape
	}{
		{
			name:     "Plain",
			desc:     MustDescriptor(Shape{2, 3, 4, 5}, Float32, NCHW),
			padded:   3,
			logical:  120,
			physical: 120,
			dims:     Shape{2, 3, 4, 5},
		},
		{
			name:     "ChannelsLast",
			desc:     MustDescriptor(Shape{2, 3, 4, 5}, Int8, NHWC),
			padded:   3,
			logical:  120,
			physical: 120,
			dims:     Shape{2, 4, 5, 3},
		},
		{
			name:     "Blocked16",
			desc:     MustDescriptor(Shape{4, 25, 5, 5}, Float32, NChw16c),
			padded:   32,
			logical:  2500,
			physical: 3200,
			dims:     Shape{4, 2, 5, 5, 16},
		},
		{
			name:     "Blocked8Exact",
			desc:     MustDescriptor(Shape{2, 16, 3}, BFloat16, NCw8c),
			padded:   16,
			logical:  96,
			physical: 96,
			dims:     Shape{2, 2, 3, 8},
		},
		{
			name:     "ZeroChannels",
			desc:     MustDescriptor(Shape{4, 0, 5, 5}, Float32, NChw16c),
			padded:   0,
			logical:  0,
			physical: 0,
			dims:     Shape{4, 0, 5, 5, 16},
		},
		{
			name:     "Blocked5D",
			desc:     MustDescriptor(Shape{1, 3, 2, 2, 2}, Float16, NCdhw8c),
			padded:   8,
			logical:  24,
			physical: 64,
			dims:     Shape{1, 1, 2, 2, 2, 8},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.padded, tt.desc.PaddedChannels())
			assert.Equal(t, tt.logical, tt.desc.LogicalSize())
			assert.Equal(t, tt.physical, tt.desc.PhysicalSize())
			assert.Equal(t, tt.physical*tt.desc.DType.Size(), tt.desc.PhysicalBytes())
			assert.Equal(t, tt.dims, tt.desc.PhysicalDims())
		})
	}
}

func TestDescriptorString(t *testing.T) {
	d := MustDescriptor(Shape{4, 25, 5, 5}, Float32, NChw16c)
	assert.Equal(t, "f32:nChw16c(4, 25, 5, 5)", d.String())

	other := MustDescriptor(Shape{4, 25, 5, 5}, Float32, NChw16c)
	assert.True(t, d.Equal(other))
	other.Format = NChw8c
	assert.False(t, d.Equal(other))
}

func TestShapeEqualExcept(t *testing.T) {
	ok, dim := Shape{2, 3, 4}.EqualExcept(Shape{2, 7, 4}, 1)
	assert.True(t, ok)
	assert.Equal(t, -1, dim)

	ok, dim = Shape{2, 3, 4}.EqualExcept(Shape{2, 7, 5}, 1)
	assert.False(t, ok)
	assert.Equal(t, 2, dim)

	ok, _ = Shape{2, 3}.EqualExcept(Shape{2, 3, 4}, 1)
	assert.False(t, ok)
}

func TestDescriptorCheckSize(t *testing.T) {
	d := Descriptor{Shape: Shape{2, math.MaxInt/8 + 1, 1, 1}, DType: Float32, Format: NCHW}
	assert.Error(t, d.CheckSize(), "f32 bytes overflow")

	d.DType = Int8
	assert.NoError(t, d.CheckSize(), "s8 bytes fit")

	d = Descriptor{Shape: Shape{1, math.MaxInt - 4, 1, 1}, DType: Int8, Format: NCHW}
	assert.NoError(t, d.CheckSize())
	d.Format = NChw8c
	assert.Error(t, d.CheckSize(), "padding to a multiple of 8 overflows")

	d = Descriptor{Shape: Shape{0, math.MaxInt, math.MaxInt}, DType: Float32, Format: NCW}
	assert.NoError(t, d.CheckSize(), "zero volume")
}

func TestShapeHelpers(t *testing.T) {
	assert.Equal(t, []int{12, 4, 1}, Shape{2, 3, 4}.ComputeStrides())
	assert.Equal(t, "(2, 3, 4)", Shape{2, 3, 4}.String())
	assert.Nil(t, Shape(nil).Clone())
	assert.Error(t, Shape{1, -2}.Validate())
	assert.NoError(t, Shape{1, 0}.Validate())
}
