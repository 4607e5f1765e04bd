package concat

import (
	"github.com/born-ml/blockcat/internal/tensor"
)

// BuildOption customizes destination synthesis.
type BuildOption func(*buildOptions)

type buildOptions struct {
	format tensor.Format
}

// WithFormat requests a destination memory format. tensor.Any keeps the default
// (the first source's format).
func WithFormat(f tensor.Format) BuildOption {
	return func(o *buildOptions) {
		o.format = f
	}
}

// Build synthesizes a destination descriptor for concatenating srcs along axis
// and validates the resulting plan.
//
// The destination shape is the sources' shared shape with the axis extent
// summed, the data type is the sources' common type, and the format is the
// requested one or, by default, the first source's format.
func Build(srcs []tensor.Descriptor, axis int, opts ...BuildOption) (tensor.Descriptor, error) {
	p, err := BuildPlan(srcs, axis, opts...)
	if err != nil {
		return tensor.Descriptor{}, err
	}
	return p.Destination, nil
}

// BuildPlan is like Build but returns the whole validated plan.
func BuildPlan(srcs []tensor.Descriptor, axis int, opts ...BuildOption) (Plan, error) {
	o := buildOptions{format: tensor.Any}
	for _, opt := range opts {
		opt(&o)
	}

	if len(srcs) == 0 {
		return Plan{}, fail(RuleNoSources, noTensor, "at least one source is required")
	}

	first := srcs[0]
	shape := first.Shape.Clone()
	format := o.format
	if format == tensor.Any {
		format = first.Format
	}

	// Leave the shape as-is when the axis is out of range; Validate reports it.
	if axis >= 0 && axis < len(shape) {
		sum := 0
		for _, src := range srcs {
			if axis < len(src.Shape) {
				sum += src.Shape[axis]
			}
		}
		shape[axis] = sum
	}

	p := Plan{
		Sources:     srcs,
		Destination: tensor.Descriptor{Shape: shape, DType: first.DType, Format: format},
		Axis:        axis,
	}
	if err := Validate(p); err != nil {
		return Plan{}, err
	}
	return p, nil
}

// Resolve completes a partially specified destination. A nil shape is derived
// from the sources, data type included; an Any format defaults to the first
// source's format. A destination with a shape keeps its data type and is
// validated as given.
func Resolve(srcs []tensor.Descriptor, dst tensor.Descriptor, axis int) (Plan, error) {
	if dst.Shape == nil {
		return BuildPlan(srcs, axis, WithFormat(dst.Format))
	}
	if dst.Format == tensor.Any && len(srcs) > 0 {
		dst.Format = srcs[0].Format
	}
	return NewPlan(srcs, dst, axis)
}
