package cpu

import (
	"bytes"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/blockcat/internal/concat"
	"github.com/born-ml/blockcat/internal/concat/concattest"
	"github.com/born-ml/blockcat/internal/parallel"
	"github.com/born-ml/blockcat/internal/tensor"
)

var dtypes = []tensor.DataType{tensor.Float32, tensor.Int8, tensor.BFloat16, tensor.Float16}

// configs run every scenario inline and with small chunks so rows of one
// source are split across goroutines.
var configs = map[string]parallel.Config{
	"sequential": parallel.Sequential(),
	"parallel":   {Enabled: true, NumWorkers: 4, MinChunkSize: 1},
}

// buffers allocates the plan's tensors, fills sources with distinct patterns
// and poisons every destination cell, padding included.
func buffers(t *testing.T, p concat.Plan) ([]*tensor.Buffer, *tensor.Buffer) {
	t.Helper()
	srcs := make([]*tensor.Buffer, len(p.Sources))
	for i, d := range p.Sources {
		buf, err := tensor.NewBuffer(d)
		require.NoError(t, err)
		concat.FillPattern(buf, i+1)
		srcs[i] = buf
	}
	dst, err := tensor.NewBuffer(p.Destination)
	require.NoError(t, err)
	concat.FillPhysical(dst, 42)
	return srcs, dst
}

func rawData(bufs []*tensor.Buffer) [][]byte {
	out := make([][]byte, len(bufs))
	for i, b := range bufs {
		out[i] = b.Data()
	}
	return out
}

func TestConcat_Accepted(t *testing.T) {
	for cfgName, cfg := range configs {
		backend := New(WithParallel(cfg))
		for _, c := range concattest.Accepted() {
			for _, dt := range dtypes {
				t.Run(cfgName+"/"+dt.String()+"/"+c.Name(), func(t *testing.T) {
					p := c.Plan(dt)
					srcs, dst := buffers(t, p)
					require.NoError(t, backend.Concat(p, rawData(srcs), dst.Data()))
					assert.NoError(t, concat.Verify(srcs, dst, p.Axis))
				})
			}
		}
	}
}

func TestConcat_Rejected(t *testing.T) {
	backend := New()
	cases := append(concattest.Invalid(), concattest.Unimplemented()...)
	for _, c := range cases {
		t.Run(c.Name(), func(t *testing.T) {
			p := c.Plan(tensor.BFloat16)

			// Invalid descriptors cannot be allocated; use any non-empty bytes.
			srcs := make([][]byte, len(p.Sources))
			for i := range srcs {
				srcs[i] = []byte{1, 2}
			}
			dst := bytes.Repeat([]byte{0xAB}, 64)
			before := bytes.Clone(dst)

			err := backend.Concat(p, srcs, dst)
			require.Error(t, err)
			assert.ErrorIs(t, err, c.Err)
			assert.Equal(t, c.Rule, concat.RuleOf(err))
			assert.Equal(t, before, dst, "rejected plan must not write")
		})
	}
}

func TestConcat_OverflowingShape(t *testing.T) {
	desc := tensor.Descriptor{Shape: tensor.Shape{2, math.MaxInt/8 + 1, 1, 1}, DType: tensor.Float32, Format: tensor.NCHW}
	p := concat.Plan{Sources: []tensor.Descriptor{desc}, Destination: desc, Axis: 0}

	var err error
	require.NotPanics(t, func() { err = New().Concat(p, [][]byte{{}}, []byte{}) })
	assert.ErrorIs(t, err, concat.ErrInvalidArgument)
	assert.Equal(t, concat.RuleExtent, concat.RuleOf(err))
}

func TestConcat_ZeroChannelSource(t *testing.T) {
	p := concat.Plan{
		Sources: []tensor.Descriptor{
			tensor.MustDescriptor(tensor.Shape{4, 0, 5, 5}, tensor.BFloat16, tensor.NChw8c),
			tensor.MustDescriptor(tensor.Shape{4, 5, 5, 5}, tensor.BFloat16, tensor.NChw8c),
		},
		Destination: tensor.MustDescriptor(tensor.Shape{4, 5, 5, 5}, tensor.BFloat16, tensor.NChw8c),
		Axis:        1,
	}
	srcs, dst := buffers(t, p)
	require.Empty(t, srcs[0].Data())

	require.NoError(t, New().Concat(p, rawData(srcs), dst.Data()))
	// Same descriptor as the non-empty source: the destination is a byte copy,
	// padding included, since NewBuffer zeroed the source padding.
	assert.Equal(t, srcs[1].Data(), dst.Data())
}

func TestConcat_SourceOrder(t *testing.T) {
	backend := New()
	a := tensor.MustDescriptor(tensor.Shape{2, 8, 3}, tensor.Float32, tensor.NCW)
	b := tensor.MustDescriptor(tensor.Shape{2, 8, 3}, tensor.Float32, tensor.NCw8c)
	dst := tensor.MustDescriptor(tensor.Shape{2, 16, 3}, tensor.Float32, tensor.NCw16c)

	p := concat.Plan{Sources: []tensor.Descriptor{a, b}, Destination: dst, Axis: 1}
	srcs, out := buffers(t, p)
	require.NoError(t, backend.Concat(p, rawData(srcs), out.Data()))

	swapped := concat.Plan{Sources: []tensor.Descriptor{b, a}, Destination: dst, Axis: 1}
	_, out2 := buffers(t, swapped)
	require.NoError(t, backend.Concat(swapped, [][]byte{srcs[1].Data(), srcs[0].Data()}, out2.Data()))

	assert.NotEqual(t, out.Data(), out2.Data())
	assert.NoError(t, concat.Verify([]*tensor.Buffer{srcs[1], srcs[0]}, out2, 1))
}

func TestConcat_BufferSizes(t *testing.T) {
	backend := New()
	c := concattest.Accepted()[10]
	p := c.Plan(tensor.Float32)
	srcs, dst := buffers(t, p)

	err := backend.Concat(p, rawData(srcs)[:1], dst.Data())
	assert.ErrorIs(t, err, concat.ErrInvalidArgument)
	assert.Equal(t, concat.RuleBuffer, concat.RuleOf(err))

	short := rawData(srcs)
	short[1] = short[1][:len(short[1])-4]
	err = backend.Concat(p, short, dst.Data())
	assert.Equal(t, concat.RuleBuffer, concat.RuleOf(err))
	assert.Contains(t, err.Error(), "source 1")

	before := bytes.Clone(dst.Data())
	err = backend.Concat(p, rawData(srcs), dst.Data()[:8])
	assert.Equal(t, concat.RuleBuffer, concat.RuleOf(err))
	assert.Contains(t, err.Error(), "destination")
	assert.Equal(t, before, dst.Data())
}

func TestConcatBuffers(t *testing.T) {
	backend := New(WithParallel(configs["parallel"]))
	for _, c := range concattest.Accepted() {
		t.Run(c.Name(), func(t *testing.T) {
			p := c.Plan(tensor.Int8)
			srcs, dst := buffers(t, p)
			require.NoError(t, backend.ConcatBuffers(srcs, dst, p.Axis))
			assert.NoError(t, concat.Verify(srcs, dst, p.Axis))
		})
	}

	c := concattest.Unimplemented()[0]
	p := c.Plan(tensor.Int8)
	srcs, dst := buffers(t, p)
	before := bytes.Clone(dst.Data())
	err := backend.ConcatBuffers(srcs, dst, p.Axis)
	assert.ErrorIs(t, err, concat.ErrUnimplemented)
	assert.Equal(t, before, dst.Data())
}

func TestConcat_Concurrent(t *testing.T) {
	backend := New()
	c := concattest.Accepted()[12]

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := c.Plan(tensor.Float32)
			srcs, dst := buffers(t, p)
			if err := backend.Concat(p, rawData(srcs), dst.Data()); err != nil {
				errs[i] = err
				return
			}
			errs[i] = concat.Verify(srcs, dst, p.Axis)
		}()
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestConcat_Logging(t *testing.T) {
	var mu sync.Mutex
	var lines []string
	log := funcr.New(func(prefix, args string) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, args)
	}, funcr.Options{Verbosity: 2})

	backend := New(WithLogger(log), WithParallel(parallel.Sequential()))

	p := concattest.Unimplemented()[0].Plan(tensor.Float32)
	_ = backend.Concat(p, nil, nil)

	p = concattest.Accepted()[10].Plan(tensor.Float32)
	srcs, dst := buffers(t, p)
	require.NoError(t, backend.Concat(p, rawData(srcs), dst.Data()))

	out := strings.Join(lines, "\n")
	assert.Contains(t, out, `"msg"="concat plan rejected"`)
	assert.Contains(t, out, `"rule"="unsupported_blocking"`)
	assert.Contains(t, out, `"msg"="concat plan accepted"`)
	assert.Equal(t, 2, strings.Count(out, `"msg"="source copied"`))
}
