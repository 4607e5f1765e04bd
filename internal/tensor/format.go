package tensor

import (
	"fmt"
	"strings"
)

// Format identifies how a logical shape maps onto physical memory.
type Format int

// Supported memory formats.
//
// Plain formats store dimensions in a fixed nested order without padding.
// Blocked formats split channels into ceil(C/B) blocks of B channels; the
// tail of the last block is padding and always holds zeros.
const (
	Any Format = iota // unspecified, only meaningful when building a destination

	NC    // 2D, channels-first
	NCW   // 3D, channels-first
	NWC   // 3D, channels-last
	NCHW  // 4D, channels-first
	NHWC  // 4D, channels-last
	NCDHW // 5D, channels-first
	NDHWC // 5D, channels-last

	NCw8c    // 3D, 8-channel blocks
	NCw16c   // 3D, 16-channel blocks
	NChw8c   // 4D, 8-channel blocks
	NChw16c  // 4D, 16-channel blocks
	NCdhw8c  // 5D, 8-channel blocks
	NCdhw16c // 5D, 16-channel blocks

	numFormats
)

// ChannelAxis is the logical index of the channel dimension in every format.
const ChannelAxis = 1

// Rank limits for supported formats.
const (
	MinRank = 2
	MaxRank = 5
)

// Kind groups formats by how the Index Mapper addresses them.
type Kind int

// Format kinds.
const (
	KindUndef         Kind = iota
	KindChannelsFirst      // N, C, spatial...
	KindChannelsLast       // N, spatial..., C
	KindBlocked            // N, C/B, spatial..., B
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindChannelsFirst:
		return "channels-first"
	case KindChannelsLast:
		return "channels-last"
	case KindBlocked:
		return "blocked"
	default:
		return "undef"
	}
}

type formatInfo struct {
	name  string
	rank  int
	kind  Kind
	block int
}

var formatTable = [numFormats]formatInfo{
	Any:      {"any", 0, KindUndef, 1},
	NC:       {"nc", 2, KindChannelsFirst, 1},
	NCW:      {"ncw", 3, KindChannelsFirst, 1},
	NWC:      {"nwc", 3, KindChannelsLast, 1},
	NCHW:     {"nchw", 4, KindChannelsFirst, 1},
	NHWC:     {"nhwc", 4, KindChannelsLast, 1},
	NCDHW:    {"ncdhw", 5, KindChannelsFirst, 1},
	NDHWC:    {"ndhwc", 5, KindChannelsLast, 1},
	NCw8c:    {"nCw8c", 3, KindBlocked, 8},
	NCw16c:   {"nCw16c", 3, KindBlocked, 16},
	NChw8c:   {"nChw8c", 4, KindBlocked, 8},
	NChw16c:  {"nChw16c", 4, KindBlocked, 16},
	NCdhw8c:  {"nCdhw8c", 5, KindBlocked, 8},
	NCdhw16c: {"nCdhw16c", 5, KindBlocked, 16},
}

// Formats returns every concrete (non-Any) format in declaration order.
func Formats() []Format {
	out := make([]Format, 0, numFormats-1)
	for f := NC; f < numFormats; f++ {
		out = append(out, f)
	}
	return out
}

// Valid reports whether f is a known format, including Any.
func (f Format) Valid() bool {
	return f >= Any && f < numFormats
}

// Rank returns the tensor rank the format describes, or 0 for Any.
func (f Format) Rank() int {
	if !f.Valid() {
		return 0
	}
	return formatTable[f].rank
}

// Kind returns the addressing family of the format.
func (f Format) Kind() Kind {
	if !f.Valid() {
		return KindUndef
	}
	return formatTable[f].kind
}

// IsBlocked reports whether channels are stored in padded blocks.
func (f Format) IsBlocked() bool {
	return f.Kind() == KindBlocked
}

// BlockSize returns the channel block size (1 for plain formats).
func (f Format) BlockSize() int {
	if !f.Valid() {
		return 1
	}
	return formatTable[f].block
}

// String returns the conventional format name, e.g. "nChw16c".
func (f Format) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatTable[f].name
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("invalid format %d", int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseFormat parses a format name. Matching is exact first, then
// case-insensitive, so both "nChw16c" and "nchw16c" resolve.
func ParseFormat(s string) (Format, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "undef") {
		return Any, nil
	}
	for f := Any; f < numFormats; f++ {
		if formatTable[f].name == s {
			return f, nil
		}
	}
	for f := Any; f < numFormats; f++ {
		if strings.EqualFold(formatTable[f].name, s) {
			return f, nil
		}
	}
	return Any, fmt.Errorf("unknown memory format %q", s)
}

// PlainFormat returns the channels-first plain format for a rank, or Any.
func PlainFormat(rank int) Format {
	switch rank {
	case 2:
		return NC
	case 3:
		return NCW
	case 4:
		return NCHW
	case 5:
		return NCDHW
	default:
		return Any
	}
}
