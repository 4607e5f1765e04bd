package cpu

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/blockcat/internal/concat"
	"github.com/born-ml/blockcat/internal/layout"
	"github.com/born-ml/blockcat/internal/parallel"
	"github.com/born-ml/blockcat/internal/tensor"
)

// element is the set of Go types a copy loop moves. Both 16-bit float types
// travel as raw uint16 words, so the copy is bit-exact.
type element interface {
	~float32 | ~int8 | ~uint16
}

// Concat joins the plan's source buffers into dst along plan.Axis.
//
// Each buffer's length must equal the physical byte size of its descriptor.
// The plan is fully validated before anything is written: a rejected call
// leaves dst untouched. On success every destination padding cell is zero.
//
// Example:
//
//	plan, _ := concat.NewPlan(srcDescs, dstDesc, 1)
//	err := backend.Concat(plan, [][]byte{a, b}, out)
func (cpu *CPUBackend) Concat(plan concat.Plan, srcs [][]byte, dst []byte) error {
	if err := concat.Validate(plan); err != nil {
		cpu.reject(plan, err)
		return errors.Wrap(err, "concat")
	}
	if len(srcs) != len(plan.Sources) {
		err := concat.BufferCountError(len(srcs), len(plan.Sources))
		cpu.reject(plan, err)
		return errors.Wrap(err, "concat")
	}

	srcBufs := make([]*tensor.Buffer, len(srcs))
	for i, data := range srcs {
		buf, err := tensor.WrapBuffer(plan.Sources[i], data)
		if err != nil {
			err = concat.BufferSizeError(i, len(data), plan.Sources[i].PhysicalBytes())
			cpu.reject(plan, err)
			return errors.Wrap(err, "concat")
		}
		srcBufs[i] = buf
	}
	dstBuf, err := tensor.WrapBuffer(plan.Destination, dst)
	if err != nil {
		err = concat.BufferSizeError(concat.Destination, len(dst), plan.Destination.PhysicalBytes())
		cpu.reject(plan, err)
		return errors.Wrap(err, "concat")
	}

	cpu.run(plan, srcBufs, dstBuf)
	return nil
}

// ConcatBuffers joins srcs into dst along axis, taking descriptors from the buffers.
func (cpu *CPUBackend) ConcatBuffers(srcs []*tensor.Buffer, dst *tensor.Buffer, axis int) error {
	descs := make([]tensor.Descriptor, len(srcs))
	for i, src := range srcs {
		descs[i] = src.Descriptor()
	}
	plan := concat.Plan{Sources: descs, Destination: dst.Descriptor(), Axis: axis}
	if err := concat.Validate(plan); err != nil {
		cpu.reject(plan, err)
		return errors.Wrap(err, "concat")
	}

	cpu.run(plan, srcs, dst)
	return nil
}

func (cpu *CPUBackend) reject(plan concat.Plan, err error) {
	cpu.log.V(1).Info("concat plan rejected",
		"rule", concat.RuleOf(err).String(),
		"sources", len(plan.Sources),
		"axis", plan.Axis,
		"error", err.Error())
}

// run executes a validated plan. Dispatch on dtype happens once here.
func (cpu *CPUBackend) run(plan concat.Plan, srcs []*tensor.Buffer, dst *tensor.Buffer) {
	cpu.log.V(1).Info("concat plan accepted",
		"sources", len(plan.Sources),
		"axis", plan.Axis,
		"destination", plan.Destination.String())

	switch plan.Destination.DType {
	case tensor.Float32:
		concatTyped(cpu, plan, views(srcs, (*tensor.Buffer).AsFloat32), dst.AsFloat32())
	case tensor.Int8:
		concatTyped(cpu, plan, views(srcs, (*tensor.Buffer).AsInt8), dst.AsInt8())
	case tensor.BFloat16, tensor.Float16:
		concatTyped(cpu, plan, views(srcs, (*tensor.Buffer).AsBits16), dst.AsBits16())
	default:
		panic(fmt.Sprintf("concat: unsupported dtype %s", plan.Destination.DType))
	}
}

func views[T element](bufs []*tensor.Buffer, as func(*tensor.Buffer) []T) [][]T {
	out := make([][]T, len(bufs))
	for i, b := range bufs {
		out[i] = as(b)
	}
	return out
}

// concatTyped clears destination padding, then copies every source into its
// axis sub-range. Sources write disjoint regions and run concurrently.
func concatTyped[T element](cpu *CPUBackend, plan concat.Plan, srcs [][]T, dst []T) {
	dstMap := layout.New(plan.Destination)
	zeroPadding(dst, dstMap, cpu.parallel)

	offsets := plan.AxisOffsets()
	_ = parallel.Each(len(srcs), func(i int) error {
		desc := plan.Sources[i]
		copySource(srcs[i], dst, desc, layout.New(desc), dstMap, plan.Axis, offsets[i], cpu.parallel)
		cpu.log.V(2).Info("source copied",
			"index", i,
			"source", desc.String(),
			"axisOffset", offsets[i])
		return nil
	}, cpu.parallel)
}

// zeroPadding clears exactly the padding spans of a blocked destination.
// Padding and data cells are disjoint, so this never races with copySource.
func zeroPadding[T element](dst []T, m layout.Mapper, cfg parallel.Config) {
	parallel.For(m.PaddingRuns(), func(r int) {
		start, length := m.PaddingRun(r)
		clear(dst[start : start+length])
	}, cfg)
}

// copySource moves one source into dst with its axis coordinate shifted by
// shift. Work is split into rows over every logical dim but the innermost,
// whose stride is linear in both layouts.
func copySource[T element](src, dst []T, desc tensor.Descriptor, srcMap, dstMap layout.Mapper,
	axis, shift int, cfg parallel.Config) {
	shape := desc.Shape
	rows := layout.Rows(shape)
	if rows == 0 {
		return
	}

	rank := len(shape)
	width := shape[rank-1]
	srcOffset, dstOffset := srcMap.OffsetFunc(), dstMap.OffsetFunc()
	srcStep, dstStep := srcMap.InnerStride(), dstMap.InnerStride()

	parallel.For(rows, func(r int) {
		var buf [tensor.MaxRank]int
		coord := buf[:rank]
		layout.RowCoord(shape, r, coord)

		s := srcOffset(coord)
		coord[axis] += shift
		d := dstOffset(coord)

		if srcStep == 1 && dstStep == 1 {
			copy(dst[d:d+width], src[s:s+width])
			return
		}
		for w := 0; w < width; w++ {
			dst[d+w*dstStep] = src[s+w*srcStep]
		}
	}, cfg)
}
