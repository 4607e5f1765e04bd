// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/blockcat/internal/tensor"
)

// DataType represents the element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32  DataType = tensor.Float32
	Int8     DataType = tensor.Int8
	BFloat16 DataType = tensor.BFloat16
	Float16  DataType = tensor.Float16
)

// Shape represents the logical dimensions of a tensor.
// Example: Shape{4, 25, 5, 5} is N=4, C=25, H=5, W=5.
type Shape = tensor.Shape

// Format identifies a physical memory format.
type Format = tensor.Format

// Memory format constants.
const (
	Any      Format = tensor.Any
	NC       Format = tensor.NC
	NCW      Format = tensor.NCW
	NWC      Format = tensor.NWC
	NCHW     Format = tensor.NCHW
	NHWC     Format = tensor.NHWC
	NCDHW    Format = tensor.NCDHW
	NDHWC    Format = tensor.NDHWC
	NCw8c    Format = tensor.NCw8c
	NCw16c   Format = tensor.NCw16c
	NChw8c   Format = tensor.NChw8c
	NChw16c  Format = tensor.NChw16c
	NCdhw8c  Format = tensor.NCdhw8c
	NCdhw16c Format = tensor.NCdhw16c
)

// Descriptor describes a tensor's shape, element type and memory format.
type Descriptor = tensor.Descriptor

// Buffer is raw tensor storage in physical layout, padding included.
type Buffer = tensor.Buffer

// NewDescriptor creates a validated descriptor.
func NewDescriptor(shape Shape, dtype DataType, format Format) (Descriptor, error) {
	return tensor.NewDescriptor(shape, dtype, format)
}

// NewBuffer allocates a zero-filled buffer for desc.
func NewBuffer(desc Descriptor) (*Buffer, error) {
	return tensor.NewBuffer(desc)
}

// WrapBuffer adopts caller-owned bytes. len(data) must equal desc.PhysicalBytes().
func WrapBuffer(desc Descriptor, data []byte) (*Buffer, error) {
	return tensor.WrapBuffer(desc, data)
}

// ParseDataType parses names such as "f32", "s8", "bf16" or "f16".
func ParseDataType(s string) (DataType, error) {
	return tensor.ParseDataType(s)
}

// ParseFormat parses names such as "nchw" or "nChw16c".
func ParseFormat(s string) (Format, error) {
	return tensor.ParseFormat(s)
}

// Formats returns every concrete memory format.
func Formats() []Format {
	return tensor.Formats()
}
