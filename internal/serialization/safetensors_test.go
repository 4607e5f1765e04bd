package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/blockcat/internal/tensor"
)

func newBuffer(t *testing.T, shape tensor.Shape, dt tensor.DataType, f tensor.Format) *tensor.Buffer {
	t.Helper()
	buf, err := tensor.NewBuffer(tensor.MustDescriptor(shape, dt, f))
	require.NoError(t, err)
	for i := 0; i < buf.Len(); i++ {
		buf.SetFloat(i, float32(i%17+1))
	}
	return buf
}

func TestSafeTensorsHeader(t *testing.T) {
	blocked := newBuffer(t, tensor.Shape{2, 19, 3, 3}, tensor.Float32, tensor.NChw16c)
	plain := newBuffer(t, tensor.Shape{2, 3}, tensor.Int8, tensor.NC)

	var out bytes.Buffer
	w := NewSafeTensorsStream(&out)
	require.NoError(t, w.WriteBuffers(map[string]*tensor.Buffer{
		"dst": blocked,
		"a":   plain,
	}, map[string]string{"axis": "1"}))
	require.NoError(t, w.Close())

	raw := out.Bytes()
	size := binary.LittleEndian.Uint64(raw[:8])
	var header map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw[8:8+size], &header))

	var dst SafeTensorHeader
	require.NoError(t, json.Unmarshal(header["dst"], &dst))
	assert.Equal(t, "F32", dst.DType)
	assert.Equal(t, []int64{2, 2, 3, 3, 16}, dst.Shape)

	var a SafeTensorHeader
	require.NoError(t, json.Unmarshal(header["a"], &a))
	assert.Equal(t, "I8", a.DType)
	// Alphabetical order: "a" comes first.
	assert.Equal(t, [2]int64{0, 6}, a.DataOffsets)
	assert.Equal(t, [2]int64{6, 6 + int64(blocked.Len()*4)}, dst.DataOffsets)

	var meta map[string]string
	require.NoError(t, json.Unmarshal(header[MetadataKey], &meta))
	assert.Equal(t, "1", meta["axis"])
	assert.Equal(t, "nChw16c", meta["dst.format"])
	assert.Equal(t, "[2,19,3,3]", meta["dst.shape"])
	assert.Equal(t, ComputeChecksum(blocked.Data()), meta["dst.sha256"])

	assert.Len(t, raw, 8+int(size)+6+blocked.Len()*4)
}

func TestSafeTensorsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.safetensors")
	bufs := map[string]*tensor.Buffer{
		"f32":  newBuffer(t, tensor.Shape{1, 9, 2}, tensor.Float32, tensor.NCw8c),
		"bf16": newBuffer(t, tensor.Shape{2, 3, 2, 2}, tensor.BFloat16, tensor.NHWC),
		"f16":  newBuffer(t, tensor.Shape{1, 17, 1, 1, 2}, tensor.Float16, tensor.NCdhw16c),
		"s8":   newBuffer(t, tensor.Shape{3, 0}, tensor.Int8, tensor.NC),
	}
	require.NoError(t, WriteSafeTensors(path, bufs, nil))

	f, err := ReadSafeTensors(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"bf16", "f16", "f32", "s8"}, f.Names())
	for name, want := range bufs {
		got := f.Buffers[name]
		require.NotNil(t, got, name)
		assert.True(t, want.Descriptor().Equal(got.Descriptor()), name)
		assert.Equal(t, want.Data(), got.Data(), name)
	}
}

func TestSafeTensorsEmptyTensor(t *testing.T) {
	var out bytes.Buffer
	empty := newBuffer(t, tensor.Shape{4, 0, 5, 5}, tensor.BFloat16, tensor.NChw16c)
	require.NoError(t, NewSafeTensorsStream(&out).WriteBuffers(map[string]*tensor.Buffer{"empty": empty}, nil))

	f, err := ReadSafeTensorsFrom(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	got := f.Buffers["empty"]
	require.NotNil(t, got)
	assert.NotNil(t, got.Data())
	assert.Empty(t, got.Data())
	assert.Equal(t, empty.Data(), got.Data())
}

func TestSafeTensorsChecksumMismatch(t *testing.T) {
	buf := newBuffer(t, tensor.Shape{2, 2}, tensor.Float32, tensor.NC)
	var out bytes.Buffer
	require.NoError(t, NewSafeTensorsStream(&out).WriteBuffers(map[string]*tensor.Buffer{"x": buf}, nil))

	raw := out.Bytes()
	raw[len(raw)-1] ^= 0xff

	_, err := ReadSafeTensorsFrom(bytes.NewReader(raw))
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestSafeTensorsInvalidName(t *testing.T) {
	buf := newBuffer(t, tensor.Shape{1, 1}, tensor.Float32, tensor.NC)
	err := NewSafeTensorsStream(&bytes.Buffer{}).WriteBuffers(map[string]*tensor.Buffer{MetadataKey: buf}, nil)
	assert.ErrorIs(t, err, ErrInvalidTensorName)
}

func TestSafeTensorsClosedWriter(t *testing.T) {
	w := NewSafeTensorsStream(&bytes.Buffer{})
	require.NoError(t, w.Close())
	assert.Error(t, w.WriteBuffers(nil, nil))
}
