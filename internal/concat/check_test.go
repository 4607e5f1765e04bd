package concat_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/blockcat/internal/concat"
	"github.com/born-ml/blockcat/internal/concat/concattest"
	"github.com/born-ml/blockcat/internal/tensor"
)

var dtypes = []tensor.DataType{tensor.Float32, tensor.Int8, tensor.BFloat16, tensor.Float16}

func TestValidateAccepted(t *testing.T) {
	for _, c := range concattest.Accepted() {
		t.Run(c.Name(), func(t *testing.T) {
			for _, dt := range dtypes {
				assert.NoError(t, concat.Validate(c.Plan(dt)), dt.String())
			}
		})
	}
}

func TestValidateUnimplemented(t *testing.T) {
	for _, c := range concattest.Unimplemented() {
		t.Run(c.Name(), func(t *testing.T) {
			err := concat.Validate(c.Plan(tensor.BFloat16))
			require.Error(t, err)
			assert.ErrorIs(t, err, concat.ErrUnimplemented)
			assert.NotErrorIs(t, err, concat.ErrInvalidArgument)
			assert.Equal(t, concat.RuleBlocking, concat.RuleOf(err))
		})
	}
}

func TestValidateInvalid(t *testing.T) {
	for _, c := range concattest.Invalid() {
		t.Run(c.Name(), func(t *testing.T) {
			err := concat.Validate(c.Plan(tensor.BFloat16))
			require.Error(t, err)
			assert.ErrorIs(t, err, concat.ErrInvalidArgument)
			assert.Equal(t, c.Rule, concat.RuleOf(err), err.Error())
		})
	}
}

func TestValidateNoSources(t *testing.T) {
	err := concat.Validate(concat.Plan{
		Destination: tensor.MustDescriptor(tensor.Shape{1, 1}, tensor.Float32, tensor.NC),
		Axis:        1,
	})
	assert.ErrorIs(t, err, concat.ErrInvalidArgument)
	assert.Equal(t, concat.RuleNoSources, concat.RuleOf(err))
}

func TestValidateDataTypeMismatch(t *testing.T) {
	p := concattest.Accepted()[0].Plan(tensor.Float32)
	p.Sources[1].DType = tensor.Int8

	err := concat.Validate(p)
	assert.Equal(t, concat.RuleDataType, concat.RuleOf(err))

	var verr *concat.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 1, verr.Source)

	p = concattest.Accepted()[0].Plan(tensor.Float32)
	p.Destination.DType = tensor.BFloat16
	err = concat.Validate(p)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, concat.RuleDataType, verr.Rule)
	assert.Equal(t, concat.Destination, verr.Source)
	assert.Contains(t, err.Error(), "destination")
}

func TestValidateRankLimits(t *testing.T) {
	one := tensor.Descriptor{Shape: tensor.Shape{4}, DType: tensor.Float32, Format: tensor.NC}
	err := concat.Validate(concat.Plan{Sources: []tensor.Descriptor{one}, Destination: one})
	assert.Equal(t, concat.RuleRank, concat.RuleOf(err))
}

func TestValidateSingleSource(t *testing.T) {
	src := tensor.MustDescriptor(tensor.Shape{2, 19, 3}, tensor.Float32, tensor.NCw16c)
	dst := tensor.MustDescriptor(tensor.Shape{2, 19, 3}, tensor.Float32, tensor.NCw8c)
	assert.NoError(t, concat.Validate(concat.Plan{Sources: []tensor.Descriptor{src}, Destination: dst, Axis: 1}))
}

func TestErrorMessage(t *testing.T) {
	c := concattest.Unimplemented()[0]
	err := concat.Validate(c.Plan(tensor.Float32))
	assert.Equal(t,
		"unimplemented: unsupported_blocking: source 1: nChw16c starts at channel 4 of nChw16c destination, which is not a multiple of 8",
		err.Error())

	err = concat.BufferCountError(1, 2)
	assert.ErrorIs(t, err, concat.ErrInvalidArgument)
	assert.Equal(t, "invalid argument: buffer_size_mismatch: 1 source buffers for 2 source descriptors", err.Error())
	assert.Equal(t, "rule(99)", concat.Rule(99).String())
}

func TestSpliceGranularity(t *testing.T) {
	g, ok := concat.SpliceGranularity(1)
	assert.True(t, ok)
	assert.Equal(t, 1, g)

	g, ok = concat.SpliceGranularity(16)
	assert.True(t, ok)
	assert.Equal(t, 8, g)

	_, ok = concat.SpliceGranularity(4)
	assert.False(t, ok)
}

func TestAxisOffsets(t *testing.T) {
	p := concat.Plan{
		Sources: []tensor.Descriptor{
			tensor.MustDescriptor(tensor.Shape{2, 3}, tensor.Float32, tensor.NC),
			tensor.MustDescriptor(tensor.Shape{2, 0}, tensor.Float32, tensor.NC),
			tensor.MustDescriptor(tensor.Shape{2, 5}, tensor.Float32, tensor.NC),
		},
		Axis: 1,
	}
	assert.Equal(t, []int{0, 3, 3}, p.AxisOffsets())
}
