package tensor

import (
	"fmt"
	"math"
)

// Descriptor describes a tensor's logical shape, element type and physical memory format.
//
// A Descriptor is a value type. It is safe to copy and must not be mutated once
// it takes part in a concatenation.
type Descriptor struct {
	Shape  Shape    `json:"shape"`
	DType  DataType `json:"dtype"`
	Format Format   `json:"format"`
}

// NewDescriptor creates a validated descriptor.
//
// The format must be concrete (not Any) and match the rank of the shape.
// Zero extents are accepted; negative extents are not.
func NewDescriptor(shape Shape, dtype DataType, format Format) (Descriptor, error) {
	d := Descriptor{Shape: shape.Clone(), DType: dtype, Format: format}
	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// MustDescriptor is like NewDescriptor but panics on error.
func MustDescriptor(shape Shape, dtype DataType, format Format) Descriptor {
	d, err := NewDescriptor(shape, dtype, format)
	if err != nil {
		panic(err)
	}
	return d
}

// Validate checks the descriptor is self-consistent.
func (d Descriptor) Validate() error {
	if err := d.Shape.Validate(); err != nil {
		return fmt.Errorf("invalid shape %v: %w", d.Shape, err)
	}
	if !d.DType.Valid() {
		return fmt.Errorf("invalid data type %d", int(d.DType))
	}
	if !d.Format.Valid() || d.Format == Any {
		return fmt.Errorf("format %s is not a concrete memory format", d.Format)
	}
	if d.Format.Rank() != len(d.Shape) {
		return fmt.Errorf("format %s requires rank %d, shape %v has rank %d",
			d.Format, d.Format.Rank(), d.Shape, len(d.Shape))
	}
	return d.CheckSize()
}

// CheckSize reports an error if the physical buffer size in bytes, padding
// included, does not fit in an int. Tensors with a zero extent always fit.
// The shape must have no negative extents.
func (d Descriptor) CheckSize() error {
	for _, dim := range d.Shape {
		if dim == 0 {
			return nil
		}
	}
	n := d.DType.Size()
	for i, dim := range d.Shape {
		if i == ChannelAxis {
			b := d.BlockSize()
			dim = dim/b + min(dim%b, 1)
			if n > math.MaxInt/b {
				return fmt.Errorf("shape %v in format %s overflows the addressable size", d.Shape, d.Format)
			}
			n *= b
		}
		if n > math.MaxInt/dim {
			return fmt.Errorf("shape %v in format %s overflows the addressable size", d.Shape, d.Format)
		}
		n *= dim
	}
	return nil
}

// Rank returns the number of logical dimensions.
func (d Descriptor) Rank() int {
	return len(d.Shape)
}

// Channels returns the logical channel count.
func (d Descriptor) Channels() int {
	if len(d.Shape) <= ChannelAxis {
		return 0
	}
	return d.Shape[ChannelAxis]
}

// BlockSize returns the channel block size (1 for plain formats).
func (d Descriptor) BlockSize() int {
	return d.Format.BlockSize()
}

// PaddedChannels returns ceil(C/B)*B, the channel count including padding.
func (d Descriptor) PaddedChannels() int {
	b := d.BlockSize()
	return ceilDiv(d.Channels(), b) * b
}

// SpatialSize returns the product of the dimensions after the channel axis.
func (d Descriptor) SpatialSize() int {
	if len(d.Shape) <= ChannelAxis+1 {
		return 1
	}
	return d.Shape[ChannelAxis+1:].NumElements()
}

// LogicalSize returns the number of logical elements implied by the shape.
func (d Descriptor) LogicalSize() int {
	return d.Shape.NumElements()
}

// PhysicalSize returns the number of allocated elements, including padding.
func (d Descriptor) PhysicalSize() int {
	return d.PaddedDims().NumElements()
}

// PhysicalBytes returns the buffer size in bytes required by the descriptor.
func (d Descriptor) PhysicalBytes() int {
	return d.PhysicalSize() * d.DType.Size()
}

// PaddedDims returns the logical-order dims with channels rounded up to the block size.
func (d Descriptor) PaddedDims() Shape {
	dims := d.Shape.Clone()
	if len(dims) > ChannelAxis {
		dims[ChannelAxis] = d.PaddedChannels()
	}
	return dims
}

// PhysicalDims returns the dims in memory order, outermost first.
//
//	nchw    -> [N, C, H, W]
//	nhwc    -> [N, H, W, C]
//	nChw16c -> [N, ceil(C/16), H, W, 16]
func (d Descriptor) PhysicalDims() Shape {
	rank := len(d.Shape)
	if rank == 0 {
		return Shape{}
	}
	switch d.Format.Kind() {
	case KindChannelsLast:
		dims := make(Shape, 0, rank)
		dims = append(dims, d.Shape[0])
		dims = append(dims, d.Shape[ChannelAxis+1:]...)
		return append(dims, d.Shape[ChannelAxis])
	case KindBlocked:
		b := d.BlockSize()
		dims := make(Shape, 0, rank+1)
		dims = append(dims, d.Shape[0], ceilDiv(d.Channels(), b))
		dims = append(dims, d.Shape[ChannelAxis+1:]...)
		return append(dims, b)
	default:
		return d.Shape.Clone()
	}
}

// Equal reports whether two descriptors are identical.
func (d Descriptor) Equal(other Descriptor) bool {
	return d.DType == other.DType && d.Format == other.Format && d.Shape.Equal(other.Shape)
}

// String formats the descriptor as "f32:nChw16c(4, 25, 5, 5)".
func (d Descriptor) String() string {
	return fmt.Sprintf("%s:%s%s", d.DType, d.Format, d.Shape)
}
