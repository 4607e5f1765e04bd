package main

import (
	"os"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/born-ml/blockcat/internal/concat"
	"github.com/born-ml/blockcat/internal/tensor"
)

// PlanFile is the YAML form of a concatenation.
//
//	axis: 1
//	dtype: bf16
//	sources:
//	  - {shape: [4, 16, 5, 5], format: nChw16c}
//	  - {shape: [4, 3, 5, 5], format: nchw}
//	destination:
//	  format: nChw8c
//
// The destination shape is optional and derived from the sources when absent.
// The dtype defaults to f32.
type PlanFile struct {
	Axis        int             `json:"axis"`
	DType       tensor.DataType `json:"dtype"`
	Sources     []TensorSpec    `json:"sources"`
	Destination TensorSpec      `json:"destination"`
}

// TensorSpec is one tensor of a plan file.
type TensorSpec struct {
	Shape  tensor.Shape  `json:"shape,omitempty"`
	Format tensor.Format `json:"format"`
}

// LoadPlanFile reads and decodes a plan file. Unknown fields are rejected.
func LoadPlanFile(path string) (*PlanFile, error) {
	//nolint:gosec // G304: plan path is chosen by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read plan file")
	}
	return ParsePlanFile(data)
}

// ParsePlanFile decodes YAML (or JSON) plan data.
func ParsePlanFile(data []byte) (*PlanFile, error) {
	var pf PlanFile
	if err := yaml.UnmarshalStrict(data, &pf); err != nil {
		return nil, errors.Wrap(err, "parse plan file")
	}
	return &pf, nil
}

// Plan resolves the file into a validated plan.
func (pf *PlanFile) Plan() (concat.Plan, error) {
	srcs := make([]tensor.Descriptor, len(pf.Sources))
	for i, s := range pf.Sources {
		srcs[i] = tensor.Descriptor{Shape: s.Shape, DType: pf.DType, Format: s.Format}
	}
	dst := tensor.Descriptor{
		Shape:  pf.Destination.Shape,
		DType:  pf.DType,
		Format: pf.Destination.Format,
	}
	return concat.Resolve(srcs, dst, pf.Axis)
}

// TensorReport describes a resolved tensor for the plan command.
type TensorReport struct {
	Format        tensor.Format   `json:"format"`
	DType         tensor.DataType `json:"dtype"`
	Shape         tensor.Shape    `json:"shape"`
	PhysicalDims  tensor.Shape    `json:"physicalDims"`
	PhysicalBytes int             `json:"physicalBytes"`
	AxisOffset    *int            `json:"axisOffset,omitempty"`
}

// PlanReport is the YAML printed by the plan command.
type PlanReport struct {
	Axis        int            `json:"axis"`
	Sources     []TensorReport `json:"sources"`
	Destination TensorReport   `json:"destination"`
}

func report(d tensor.Descriptor) TensorReport {
	return TensorReport{
		Format:        d.Format,
		DType:         d.DType,
		Shape:         d.Shape,
		PhysicalDims:  d.PhysicalDims(),
		PhysicalBytes: d.PhysicalBytes(),
	}
}

// NewPlanReport summarizes a validated plan.
func NewPlanReport(p concat.Plan) PlanReport {
	r := PlanReport{Axis: p.Axis, Destination: report(p.Destination)}
	offsets := p.AxisOffsets()
	for i, s := range p.Sources {
		tr := report(s)
		tr.AxisOffset = &offsets[i]
		r.Sources = append(r.Sources, tr)
	}
	return r
}
