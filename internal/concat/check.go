package concat

import (
	"math"

	"github.com/pkg/errors"

	"github.com/born-ml/blockcat/internal/tensor"
)

// Validate checks that the plan's sources can be concatenated into its
// destination along its axis.
//
// Rules are applied in a fixed order and the first failure is returned as a
// *ValidationError that unwraps to ErrInvalidArgument or ErrUnimplemented.
func Validate(p Plan) error {
	if len(p.Sources) == 0 {
		return fail(RuleNoSources, noTensor, "at least one source is required")
	}

	// Negative extents are reported before anything that would compare them.
	for i, src := range p.Sources {
		if err := src.Shape.Validate(); err != nil {
			return fail(RuleExtent, i, "%v", err)
		}
	}
	if err := p.Destination.Shape.Validate(); err != nil {
		return fail(RuleExtent, Destination, "%v", err)
	}

	if err := checkRanksAndFormats(p); err != nil {
		return err
	}

	for i, src := range p.Sources {
		if err := src.CheckSize(); err != nil {
			return fail(RuleExtent, i, "%v", err)
		}
	}
	if err := p.Destination.CheckSize(); err != nil {
		return fail(RuleExtent, Destination, "%v", err)
	}

	rank := p.Destination.Rank()
	if p.Axis < 0 || p.Axis >= rank {
		return fail(RuleAxis, noTensor, "axis %d out of range for rank %d", p.Axis, rank)
	}

	dtype := p.Sources[0].DType
	for i, src := range p.Sources {
		if src.DType != dtype {
			return fail(RuleDataType, i, "dtype %s, expected %s", src.DType, dtype)
		}
	}
	if p.Destination.DType != dtype {
		return fail(RuleDataType, Destination, "dtype %s, expected %s", p.Destination.DType, dtype)
	}

	sum := 0
	for i, src := range p.Sources {
		if ok, d := src.Shape.EqualExcept(p.Destination.Shape, p.Axis); !ok {
			return fail(RuleShape, i, "dimension %d is %d, destination has %d (shapes %v vs %v)",
				d, src.Shape[d], p.Destination.Shape[d], src.Shape, p.Destination.Shape)
		}
		if src.Shape[p.Axis] > math.MaxInt-sum {
			return fail(RuleAxisSum, i, "axis %d extents overflow", p.Axis)
		}
		sum += src.Shape[p.Axis]
	}
	if got := p.Destination.Shape[p.Axis]; got != sum {
		return fail(RuleAxisSum, Destination, "axis %d extent is %d, sources sum to %d", p.Axis, got, sum)
	}

	return checkBlocking(p)
}

func checkRanksAndFormats(p Plan) error {
	rank := len(p.Sources[0].Shape)
	if rank < tensor.MinRank || rank > tensor.MaxRank {
		return fail(RuleRank, 0, "rank %d not in [%d, %d]", rank, tensor.MinRank, tensor.MaxRank)
	}
	for i, src := range p.Sources {
		if len(src.Shape) != rank {
			return fail(RuleRank, i, "rank %d, expected %d", len(src.Shape), rank)
		}
	}
	if len(p.Destination.Shape) != rank {
		return fail(RuleRank, Destination, "rank %d, expected %d", len(p.Destination.Shape), rank)
	}

	for i, src := range p.Sources {
		if err := checkFormat(src, rank); err != nil {
			return fail(RuleFormat, i, "%v", err)
		}
	}
	if err := checkFormat(p.Destination, rank); err != nil {
		return fail(RuleFormat, Destination, "%v", err)
	}
	return nil
}

func checkFormat(d tensor.Descriptor, rank int) error {
	if !d.DType.Valid() {
		return errors.Errorf("unknown dtype %d", int(d.DType))
	}
	if d.Format == tensor.Any || !d.Format.Valid() {
		return errors.Errorf("format %s is not concrete", d.Format)
	}
	if d.Format.Rank() != rank {
		return errors.Errorf("format %s describes rank %d tensors, got rank %d", d.Format, d.Format.Rank(), rank)
	}
	return nil
}
