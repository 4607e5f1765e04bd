package concat

import (
	"github.com/born-ml/blockcat/internal/tensor"
)

// spliceGranularity lists, per destination channel block size, the channel
// granularity at which the engine can start a new source inside a block.
// Block sizes that are not listed have no channel splice path at all.
//
// A 16-channel destination block can be entered at its start or half way,
// so sources may begin at any multiple of 8 channels. Anything else would
// land a source boundary mid-way through an 8-channel half block.
var spliceGranularity = map[int]int{
	8:  8,
	16: 8,
}

// SpliceGranularity returns the channel granularity at which sources may start
// in a destination with the given block size, and whether the block size is
// supported as a channel concatenation target.
func SpliceGranularity(block int) (int, bool) {
	if block == 1 {
		return 1, true
	}
	g, ok := spliceGranularity[block]
	return g, ok
}

// checkBlocking enforces the channel splice table for blocked destinations.
// Empty sources start no region and are skipped; the last source may end
// anywhere inside a block because its tail is destination padding.
func checkBlocking(p Plan) error {
	dst := p.Destination
	if p.Axis != tensor.ChannelAxis || !dst.Format.IsBlocked() {
		return nil
	}

	block := dst.BlockSize()
	granularity, ok := SpliceGranularity(block)
	if !ok {
		return fail(RuleBlocking, Destination,
			"no channel splice path into %s (block size %d)", dst.Format, block)
	}

	offsets := p.AxisOffsets()
	for i, src := range p.Sources {
		if src.LogicalSize() == 0 {
			continue
		}
		if offsets[i]%granularity != 0 {
			return fail(RuleBlocking, i,
				"%s starts at channel %d of %s destination, which is not a multiple of %d",
				src.Format, offsets[i], dst.Format, granularity)
		}
	}
	return nil
}
