package tensor

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/x448/float16"
)

// Buffer is raw tensor storage sized to the padded physical layout of its descriptor.
//
// The buffer is exclusively owned by whoever allocated it; the concatenation
// engine never reallocates it. Typed views share memory with the buffer.
type Buffer struct {
	data []byte
	desc Descriptor
}

// NewBuffer allocates a zero-filled buffer for the descriptor.
func NewBuffer(desc Descriptor) (*Buffer, error) {
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid descriptor: %w", err)
	}
	return &Buffer{
		data: make([]byte, desc.PhysicalBytes()),
		desc: Descriptor{Shape: desc.Shape.Clone(), DType: desc.DType, Format: desc.Format},
	}, nil
}

// WrapBuffer adopts caller-owned bytes as a buffer for the descriptor.
// The byte length must equal desc.PhysicalBytes().
func WrapBuffer(desc Descriptor, data []byte) (*Buffer, error) {
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid descriptor: %w", err)
	}
	if want := desc.PhysicalBytes(); len(data) != want {
		return nil, fmt.Errorf("buffer for %s holds %d bytes, want %d", desc, len(data), want)
	}
	desc.Shape = desc.Shape.Clone()
	return &Buffer{data: data, desc: desc}, nil
}

// Descriptor returns the buffer's descriptor.
func (b *Buffer) Descriptor() Descriptor {
	return b.desc
}

// DType returns the element data type.
func (b *Buffer) DType() DataType {
	return b.desc.DType
}

// Len returns the number of physical elements, padding included.
func (b *Buffer) Len() int {
	return len(b.data) / b.desc.DType.Size()
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (b *Buffer) Data() []byte {
	return b.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the buffer's dtype is not Float32.
func (b *Buffer) AsFloat32() []float32 {
	if b.desc.DType != Float32 {
		panic(fmt.Sprintf("buffer dtype is %s, not f32", b.desc.DType))
	}
	return viewAs[float32](b.data, 4)
}

// AsInt8 interprets the data as []int8.
// Panics if the buffer's dtype is not Int8.
func (b *Buffer) AsInt8() []int8 {
	if b.desc.DType != Int8 {
		panic(fmt.Sprintf("buffer dtype is %s, not s8", b.desc.DType))
	}
	return viewAs[int8](b.data, 1)
}

// AsBits16 interprets the data as raw 16-bit words.
// Panics if the buffer's dtype is not a 16-bit type.
func (b *Buffer) AsBits16() []uint16 {
	if b.desc.DType.Size() != 2 {
		panic(fmt.Sprintf("buffer dtype is %s, not a 16-bit type", b.desc.DType))
	}
	return viewAs[uint16](b.data, 2)
}

// AsBFloat16 interprets the data as []bfloat16.BFloat16.
// Panics if the buffer's dtype is not BFloat16.
func (b *Buffer) AsBFloat16() []bfloat16.BFloat16 {
	if b.desc.DType != BFloat16 {
		panic(fmt.Sprintf("buffer dtype is %s, not bf16", b.desc.DType))
	}
	return viewAs[bfloat16.BFloat16](b.data, 2)
}

// AsFloat16 interprets the data as []float16.Float16.
// Panics if the buffer's dtype is not Float16.
func (b *Buffer) AsFloat16() []float16.Float16 {
	if b.desc.DType != Float16 {
		panic(fmt.Sprintf("buffer dtype is %s, not f16", b.desc.DType))
	}
	return viewAs[float16.Float16](b.data, 2)
}

// Float returns the physical element at index i widened to float32.
func (b *Buffer) Float(i int) float32 {
	switch b.desc.DType {
	case Float32:
		return b.AsFloat32()[i]
	case Int8:
		return float32(b.AsInt8()[i])
	case BFloat16:
		return b.AsBFloat16()[i].Float32()
	case Float16:
		return b.AsFloat16()[i].Float32()
	default:
		panic(fmt.Sprintf("unsupported dtype %s", b.desc.DType))
	}
}

// SetFloat stores v at physical index i, narrowing to the buffer's dtype.
// Int8 values are truncated toward zero and saturated.
func (b *Buffer) SetFloat(i int, v float32) {
	switch b.desc.DType {
	case Float32:
		b.AsFloat32()[i] = v
	case Int8:
		b.AsInt8()[i] = saturateInt8(v)
	case BFloat16:
		b.AsBFloat16()[i] = bfloat16.FromFloat32(v)
	case Float16:
		b.AsFloat16()[i] = float16.Fromfloat32(v)
	default:
		panic(fmt.Sprintf("unsupported dtype %s", b.desc.DType))
	}
}

// Bits returns the raw bit pattern of the physical element at index i,
// zero-extended to 32 bits. Comparing bits makes equality checks exact
// for every dtype, including NaN payloads.
func (b *Buffer) Bits(i int) uint32 {
	switch b.desc.DType {
	case Float32:
		return math.Float32bits(b.AsFloat32()[i])
	case Int8:
		return uint32(uint8(b.AsInt8()[i]))
	case BFloat16, Float16:
		return uint32(b.AsBits16()[i])
	default:
		panic(fmt.Sprintf("unsupported dtype %s", b.desc.DType))
	}
}

func saturateInt8(v float32) int8 {
	switch {
	case v >= 127:
		return 127
	case v <= -128:
		return -128
	default:
		return int8(v)
	}
}

// viewAs reinterprets a byte slice as a slice of T without copying.
func viewAs[T any](data []byte, size int) []T {
	if len(data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, length derived from byte size
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), len(data)/size)
}
