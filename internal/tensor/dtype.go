// Package tensor provides descriptors and raw buffers for blocked and plain tensor layouts.
package tensor

import (
	"fmt"
	"strings"
)

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32  DataType = iota // 32-bit IEEE float
	Int8                     // 8-bit signed integer
	BFloat16                 // 16-bit brain float
	Float16                  // 16-bit IEEE half float
)

var dataTypeNames = [...]string{
	Float32:  "f32",
	Int8:     "s8",
	BFloat16: "bf16",
	Float16:  "f16",
}

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case BFloat16, Float16:
		return 2
	case Int8:
		return 1
	default:
		panic(fmt.Sprintf("unknown data type %d", int(dt)))
	}
}

// Valid reports whether dt is one of the supported data types.
func (dt DataType) Valid() bool {
	return dt >= Float32 && dt <= Float16
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	if !dt.Valid() {
		return "unknown"
	}
	return dataTypeNames[dt]
}

// MarshalText implements encoding.TextMarshaler.
func (dt DataType) MarshalText() ([]byte, error) {
	if !dt.Valid() {
		return nil, fmt.Errorf("invalid data type %d", int(dt))
	}
	return []byte(dt.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (dt *DataType) UnmarshalText(text []byte) error {
	parsed, err := ParseDataType(string(text))
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}

// ParseDataType parses a data type name. Both short ("f32", "s8", "bf16", "f16")
// and Go-style ("float32", "int8", "bfloat16", "float16") names are accepted.
func ParseDataType(s string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "f32", "float32":
		return Float32, nil
	case "s8", "i8", "int8":
		return Int8, nil
	case "bf16", "bfloat16":
		return BFloat16, nil
	case "f16", "float16", "half":
		return Float16, nil
	default:
		return 0, fmt.Errorf("unknown data type %q", s)
	}
}
