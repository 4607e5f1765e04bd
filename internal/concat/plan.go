// Package concat validates and plans multi-format tensor concatenation.
//
// A Plan joins source descriptors into a destination descriptor along one
// axis. Validate applies the compatibility rules, Build derives a destination,
// and Verify checks a materialized result against its sources.
package concat

import (
	"github.com/born-ml/blockcat/internal/tensor"
)

// Plan describes one concatenation. It is created per call and not retained.
type Plan struct {
	Sources     []tensor.Descriptor `json:"sources"`
	Destination tensor.Descriptor   `json:"destination"`
	Axis        int                 `json:"axis"`
}

// NewPlan creates a plan and validates it.
func NewPlan(srcs []tensor.Descriptor, dst tensor.Descriptor, axis int) (Plan, error) {
	p := Plan{Sources: srcs, Destination: dst, Axis: axis}
	if err := Validate(p); err != nil {
		return Plan{}, err
	}
	return p, nil
}

// AxisOffsets returns the running offset at which each source starts along
// the axis in the destination.
func (p Plan) AxisOffsets() []int {
	offsets := make([]int, len(p.Sources))
	acc := 0
	for i, src := range p.Sources {
		offsets[i] = acc
		acc += src.Shape[p.Axis]
	}
	return offsets
}
