// Package concattest provides concatenation scenarios shared by the
// validator and engine tests.
package concattest

import (
	"fmt"
	"math"
	"strings"

	"github.com/born-ml/blockcat/internal/concat"
	"github.com/born-ml/blockcat/internal/tensor"
)

// Case is one concatenation scenario.
type Case struct {
	Axis       int
	SrcFormats []tensor.Format
	DstFormat  tensor.Format
	SrcShapes  []tensor.Shape
	DstShape   tensor.Shape
	// Err is nil for accepted plans, otherwise concat.ErrInvalidArgument or
	// concat.ErrUnimplemented.
	Err error
	// Rule is the rule an invalid plan violates.
	Rule concat.Rule
}

// Name describes the case, e.g. "axis1_nChw8c[4,0,5,5]+nChw8c[4,5,5,5]->nChw8c".
func (c Case) Name() string {
	parts := make([]string, len(c.SrcFormats))
	for i, f := range c.SrcFormats {
		parts[i] = fmt.Sprintf("%s%v", f, []int(c.SrcShapes[i]))
	}
	name := fmt.Sprintf("axis%d_%s->%s", c.Axis, strings.Join(parts, "+"), c.DstFormat)
	return strings.ReplaceAll(name, " ", ",")
}

// Plan returns the case as an unvalidated plan with every tensor of type dt.
func (c Case) Plan(dt tensor.DataType) concat.Plan {
	srcs := make([]tensor.Descriptor, len(c.SrcShapes))
	for i, s := range c.SrcShapes {
		srcs[i] = tensor.Descriptor{Shape: s.Clone(), DType: dt, Format: c.SrcFormats[i]}
	}
	return concat.Plan{
		Sources:     srcs,
		Destination: tensor.Descriptor{Shape: c.DstShape.Clone(), DType: dt, Format: c.DstFormat},
		Axis:        c.Axis,
	}
}

func pair(axis int, s0, s1, d tensor.Format, sh0, sh1, dsh tensor.Shape) Case {
	return Case{
		Axis:       axis,
		SrcFormats: []tensor.Format{s0, s1},
		DstFormat:  d,
		SrcShapes:  []tensor.Shape{sh0, sh1},
		DstShape:   dsh,
	}
}

func unimplemented(c Case) Case {
	c.Err = concat.ErrUnimplemented
	c.Rule = concat.RuleBlocking
	return c
}

func invalid(rule concat.Rule, c Case) Case {
	c.Err = concat.ErrInvalidArgument
	c.Rule = rule
	return c
}

// huge is a channel extent whose element count overflows int once doubled.
const huge = math.MaxInt/2 + 1

const (
	nc       = tensor.NC
	ncw      = tensor.NCW
	nwc      = tensor.NWC
	nchw     = tensor.NCHW
	nhwc     = tensor.NHWC
	ncdhw    = tensor.NCDHW
	ndhwc    = tensor.NDHWC
	nCw8c    = tensor.NCw8c
	nCw16c   = tensor.NCw16c
	nChw8c   = tensor.NChw8c
	nChw16c  = tensor.NChw16c
	nCdhw8c  = tensor.NCdhw8c
	nCdhw16c = tensor.NCdhw16c
)

type shape = tensor.Shape

// Accepted lists plans that must validate and copy correctly.
func Accepted() []Case {
	return []Case{
		// Zero extents.
		pair(1, nChw8c, nChw8c, nChw8c, shape{4, 0, 5, 5}, shape{4, 5, 5, 5}, shape{4, 5, 5, 5}),
		pair(1, nChw8c, nChw8c, nChw8c, shape{4, 4, 5, 5}, shape{4, 0, 5, 5}, shape{4, 4, 5, 5}),
		pair(1, nhwc, nhwc, nhwc, shape{0, 4, 5, 5}, shape{0, 2, 5, 5}, shape{0, 6, 5, 5}),
		pair(1, nhwc, nhwc, nhwc, shape{2, 4, 0, 5}, shape{2, 2, 0, 5}, shape{2, 6, 0, 5}),
		pair(1, nchw, nchw, nchw, shape{0, 4, 5, 5}, shape{0, 2, 5, 5}, shape{0, 6, 5, 5}),
		pair(1, nchw, nchw, nchw, shape{2, 4, 0, 5}, shape{2, 2, 0, 5}, shape{2, 6, 0, 5}),
		pair(1, nChw8c, nChw16c, nchw, shape{4, 0, 5, 5}, shape{4, 5, 5, 5}, shape{4, 5, 5, 5}),
		pair(1, nChw8c, nChw16c, nchw, shape{4, 4, 5, 5}, shape{4, 0, 5, 5}, shape{4, 4, 5, 5}),
		pair(1, nChw8c, nChw16c, nchw, shape{0, 4, 5, 5}, shape{0, 2, 5, 5}, shape{0, 6, 5, 5}),
		pair(1, nChw8c, nChw16c, nchw, shape{2, 4, 0, 5}, shape{2, 2, 0, 5}, shape{2, 6, 0, 5}),

		// Padded channel blocks.
		pair(1, nChw16c, nChw16c, nChw16c, shape{4, 16, 5, 5}, shape{4, 3, 5, 5}, shape{4, 19, 5, 5}),
		pair(1, nChw8c, nChw8c, nChw8c, shape{4, 8, 5, 5}, shape{4, 3, 5, 5}, shape{4, 11, 5, 5}),
		pair(1, nChw16c, nChw16c, nchw, shape{4, 25, 5, 5}, shape{4, 45, 5, 5}, shape{4, 70, 5, 5}),
		pair(1, nChw8c, nChw8c, nchw, shape{4, 25, 5, 5}, shape{4, 45, 5, 5}, shape{4, 70, 5, 5}),
		pair(1, nChw16c, nChw8c, nchw, shape{4, 25, 5, 5}, shape{4, 45, 5, 5}, shape{4, 70, 5, 5}),
		pair(1, nChw8c, nChw16c, nchw, shape{4, 25, 5, 5}, shape{4, 45, 5, 5}, shape{4, 70, 5, 5}),
		pair(1, nChw16c, nChw16c, nchw, shape{4, 4, 5, 5}, shape{4, 6, 5, 5}, shape{4, 10, 5, 5}),
		pair(1, nchw, nChw16c, nchw, shape{4, 25, 5, 5}, shape{4, 45, 5, 5}, shape{4, 70, 5, 5}),
		pair(1, nChw16c, nChw16c, nChw8c, shape{4, 16, 5, 5}, shape{4, 3, 5, 5}, shape{4, 19, 5, 5}),
		pair(1, nChw8c, nChw16c, nChw16c, shape{4, 8, 5, 5}, shape{4, 3, 5, 5}, shape{4, 11, 5, 5}),
		pair(2, nChw16c, nChw16c, nchw, shape{4, 25, 5, 5}, shape{4, 25, 5, 5}, shape{4, 25, 10, 5}),
		pair(2, nChw8c, nChw8c, nchw, shape{4, 25, 5, 5}, shape{4, 25, 5, 5}, shape{4, 25, 10, 5}),
		pair(2, nChw8c, nChw16c, nchw, shape{4, 25, 5, 5}, shape{4, 25, 5, 5}, shape{4, 25, 10, 5}),

		// 5D.
		pair(0, ncdhw, ncdhw, ncdhw, shape{2, 8, 3, 4, 5}, shape{2, 8, 3, 4, 5}, shape{4, 8, 3, 4, 5}),
		pair(1, ncdhw, ncdhw, ncdhw, shape{2, 8, 3, 4, 5}, shape{2, 8, 3, 4, 5}, shape{2, 16, 3, 4, 5}),
		pair(2, ncdhw, ncdhw, ncdhw, shape{2, 8, 3, 4, 5}, shape{2, 8, 3, 4, 5}, shape{2, 8, 6, 4, 5}),
		pair(3, ncdhw, ncdhw, ncdhw, shape{2, 8, 3, 4, 5}, shape{2, 8, 3, 4, 5}, shape{2, 8, 3, 8, 5}),
		pair(4, ncdhw, ncdhw, ncdhw, shape{2, 8, 3, 4, 5}, shape{2, 8, 3, 4, 5}, shape{2, 8, 3, 4, 10}),
		pair(0, nCdhw8c, nCdhw8c, nCdhw8c, shape{2, 8, 3, 4, 5}, shape{2, 8, 3, 4, 5}, shape{4, 8, 3, 4, 5}),
		pair(1, nCdhw8c, nCdhw8c, nCdhw8c, shape{2, 8, 3, 4, 5}, shape{2, 8, 3, 4, 5}, shape{2, 16, 3, 4, 5}),
		pair(2, nCdhw8c, nCdhw8c, nCdhw8c, shape{2, 8, 3, 4, 5}, shape{2, 8, 3, 4, 5}, shape{2, 8, 6, 4, 5}),
		pair(3, nCdhw8c, nCdhw8c, nCdhw8c, shape{2, 8, 3, 4, 5}, shape{2, 8, 3, 4, 5}, shape{2, 8, 3, 8, 5}),
		pair(4, nCdhw8c, nCdhw8c, nCdhw8c, shape{2, 8, 3, 4, 5}, shape{2, 8, 3, 4, 5}, shape{2, 8, 3, 4, 10}),
		pair(1, nCdhw8c, ncdhw, nCdhw8c, shape{2, 8, 3, 4, 5}, shape{2, 8, 3, 4, 5}, shape{2, 16, 3, 4, 5}),
		pair(1, ncdhw, ncdhw, nCdhw8c, shape{2, 8, 3, 4, 5}, shape{2, 8, 3, 4, 5}, shape{2, 16, 3, 4, 5}),
		pair(1, ndhwc, nCdhw16c, nCdhw16c, shape{1, 16, 2, 2, 3}, shape{1, 5, 2, 2, 3}, shape{1, 21, 2, 2, 3}),

		// 4D.
		pair(1, nchw, nchw, nchw, shape{2, 8, 3, 4}, shape{2, 8, 3, 4}, shape{2, 16, 3, 4}),
		pair(1, nChw8c, nChw8c, nChw8c, shape{2, 16, 1, 1}, shape{2, 16, 1, 1}, shape{2, 32, 1, 1}),
		pair(1, nhwc, nhwc, nhwc, shape{2, 16, 1, 1}, shape{2, 16, 1, 1}, shape{2, 32, 1, 1}),
		pair(1, nhwc, nhwc, nhwc, shape{2, 8, 3, 4}, shape{2, 8, 3, 4}, shape{2, 16, 3, 4}),
		pair(0, nchw, nchw, nchw, shape{2, 8, 3, 4}, shape{2, 8, 3, 4}, shape{4, 8, 3, 4}),
		pair(0, nChw8c, nChw8c, nChw8c, shape{2, 16, 1, 1}, shape{2, 16, 1, 1}, shape{4, 16, 1, 1}),
		pair(1, nChw8c, nChw8c, nChw8c, shape{2, 8, 1, 1}, shape{2, 8, 1, 1}, shape{2, 16, 1, 1}),
		pair(1, nchw, nchw, nChw8c, shape{2, 16, 1, 1}, shape{2, 16, 1, 1}, shape{2, 32, 1, 1}),
		pair(1, nChw8c, nChw8c, nchw, shape{2, 16, 1, 1}, shape{2, 16, 1, 1}, shape{2, 32, 1, 1}),
		pair(0, nchw, nchw, nChw8c, shape{2, 16, 1, 1}, shape{2, 16, 1, 1}, shape{4, 16, 1, 1}),
		pair(0, nChw8c, nChw8c, nchw, shape{2, 16, 1, 1}, shape{2, 16, 1, 1}, shape{4, 16, 1, 1}),
		pair(1, nChw8c, nChw16c, nChw8c, shape{2, 8, 1, 1}, shape{2, 16, 1, 1}, shape{2, 24, 1, 1}),
		pair(3, nhwc, nChw16c, nChw8c, shape{2, 19, 3, 2}, shape{2, 19, 3, 5}, shape{2, 19, 3, 7}),

		// 3D and 2D.
		pair(1, ncw, nCw8c, nCw16c, shape{2, 8, 7}, shape{2, 9, 7}, shape{2, 17, 7}),
		pair(2, nwc, nCw16c, nCw8c, shape{3, 13, 2}, shape{3, 13, 4}, shape{3, 13, 6}),
		pair(0, nCw16c, ncw, nwc, shape{1, 5, 3}, shape{2, 5, 3}, shape{3, 5, 3}),
		pair(1, nc, nc, nc, shape{3, 4}, shape{3, 7}, shape{3, 11}),
		pair(0, nc, nc, nc, shape{3, 4}, shape{0, 4}, shape{3, 4}),
	}
}

// Unimplemented lists legal plans with no channel splice path.
func Unimplemented() []Case {
	return []Case{
		unimplemented(pair(1, nChw16c, nChw16c, nChw16c, shape{4, 4, 5, 5}, shape{4, 6, 5, 5}, shape{4, 10, 5, 5})),
		unimplemented(pair(1, nChw16c, nChw16c, nChw16c, shape{4, 25, 5, 5}, shape{4, 45, 5, 5}, shape{4, 70, 5, 5})),
		unimplemented(pair(1, nchw, nChw16c, nChw16c, shape{4, 25, 5, 5}, shape{4, 45, 5, 5}, shape{4, 70, 5, 5})),
		unimplemented(pair(1, nChw8c, nChw8c, nChw8c, shape{2, 3, 1, 1}, shape{2, 5, 1, 1}, shape{2, 8, 1, 1})),
		unimplemented(pair(1, ncw, ncw, nCw8c, shape{1, 12, 2}, shape{1, 4, 2}, shape{1, 16, 2})),
	}
}

// Invalid lists plans that violate the concatenation contract.
func Invalid() []Case {
	return []Case{
		invalid(concat.RuleAxisSum, pair(1, nChw8c, nChw16c, nchw, shape{4, 2, 5, 5}, shape{4, 5, 5, 5}, shape{4, 5, 5, 5})),
		invalid(concat.RuleShape, pair(2, nChw8c, nChw16c, nchw, shape{4, 2, 5, 5}, shape{4, 3, 5, 5}, shape{4, 5, 5, 5})),
		invalid(concat.RuleAxis, pair(5, nChw8c, nChw16c, nchw, shape{4, 4, 5, 5}, shape{4, 0, 5, 5}, shape{4, 4, 5, 5})),
		invalid(concat.RuleExtent, pair(1, nChw8c, nChw8c, nChw8c, shape{4, -1, 5, 5}, shape{4, 5, 5, 5}, shape{4, 5, 5, 5})),
		invalid(concat.RuleAxisSum, pair(1, nChw8c, nChw8c, nChw8c, shape{4, 4, 5, 5}, shape{4, 4, 5, 5}, shape{4, 4, 5, 5})),
		invalid(concat.RuleAxisSum, pair(1, nChw8c, nChw16c, nchw, shape{0, 4, 5, 5}, shape{0, 4, 5, 5}, shape{0, 6, 5, 5})),
		invalid(concat.RuleShape, pair(1, nChw8c, nChw16c, nchw, shape{2, 4, 2, 5}, shape{2, 2, 1, 5}, shape{2, 6, 2, 5})),
		invalid(concat.RuleAxisSum, pair(1, nhwc, nhwc, nhwc, shape{1, 4, 5, 5}, shape{1, 2, 5, 5}, shape{1, 7, 5, 5})),
		invalid(concat.RuleShape, pair(1, nchw, nchw, nchw, shape{1, 4, 5, 5}, shape{1, 2, 5, 5}, shape{1, 6, 6, 5})),
		invalid(concat.RuleAxis, pair(-1, nchw, nchw, nchw, shape{1, 4, 5, 5}, shape{1, 2, 5, 5}, shape{1, 6, 5, 5})),
		invalid(concat.RuleRank, pair(1, nchw, ncw, nchw, shape{1, 4, 5, 5}, shape{1, 2, 5}, shape{1, 6, 5, 5})),
		invalid(concat.RuleFormat, pair(1, nchw, nChw8c, tensor.Any, shape{1, 4, 5, 5}, shape{1, 2, 5, 5}, shape{1, 6, 5, 5})),
		invalid(concat.RuleFormat, pair(1, nchw, ncw, nchw, shape{1, 4, 5, 5}, shape{1, 2, 5, 5}, shape{1, 6, 5, 5})),
		invalid(concat.RuleExtent, pair(1, nchw, nchw, nchw, shape{1, 4, 5, 5}, shape{1, 2, 5, 5}, shape{1, 6, -5, 5})),
		invalid(concat.RuleExtent, pair(0, nchw, nchw, nchw, shape{2, huge, 1, 1}, shape{0, huge, 1, 1}, shape{2, huge, 1, 1})),
		invalid(concat.RuleExtent, pair(1, nChw16c, nchw, nChw16c, shape{1, math.MaxInt - 4, 1, 1}, shape{1, 0, 1, 1}, shape{1, math.MaxInt - 4, 1, 1})),
		invalid(concat.RuleAxisSum, pair(1, nchw, nchw, nchw, shape{0, math.MaxInt, 1, 1}, shape{0, 1, 1, 1}, shape{0, 0, 1, 1})),
	}
}
