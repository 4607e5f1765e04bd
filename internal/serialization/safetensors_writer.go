package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/born-ml/blockcat/internal/tensor"
)

// MetadataKey is the reserved header entry holding string metadata.
const MetadataKey = "__metadata__"

// SafeTensorHeader represents a tensor in the SafeTensors header.
type SafeTensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// SafeTensorsWriter writes buffers in SafeTensors format.
type SafeTensorsWriter struct {
	w      io.Writer
	closer io.Closer
	closed bool
}

// NewSafeTensorsWriter creates a new SafeTensors file writer.
func NewSafeTensorsWriter(path string) (*SafeTensorsWriter, error) {
	//nolint:gosec // G304: output path is chosen by the caller
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file")
	}
	return &SafeTensorsWriter{w: file, closer: file}, nil
}

// NewSafeTensorsStream wraps an io.Writer. Close does not close w.
func NewSafeTensorsStream(w io.Writer) *SafeTensorsWriter {
	return &SafeTensorsWriter{w: w}
}

// WriteSafeTensors writes buffers to a SafeTensors file.
//
// Tensors are written in alphabetical order by name.
func WriteSafeTensors(path string, buffers map[string]*tensor.Buffer, metadata map[string]string) error {
	writer, err := NewSafeTensorsWriter(path)
	if err != nil {
		return err
	}
	if err := writer.WriteBuffers(buffers, metadata); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

// WriteBuffers writes the header and the physical bytes of every buffer.
// User metadata is merged with the per-tensor format, shape and checksum keys.
func (w *SafeTensorsWriter) WriteBuffers(buffers map[string]*tensor.Buffer, metadata map[string]string) error {
	if w.closed {
		return errors.New("writer is closed")
	}

	names := make([]string, 0, len(buffers))
	for name := range buffers {
		if name == "" || name == MetadataKey {
			return errors.Wrapf(ErrInvalidTensorName, "%q", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	meta := make(map[string]string, len(metadata)+3*len(names))
	for k, v := range metadata {
		meta[k] = v
	}

	header := make(map[string]any, len(names)+1)
	var offset int64
	for _, name := range names {
		buf := buffers[name]
		desc := buf.Descriptor()
		size := int64(len(buf.Data()))

		header[name] = SafeTensorHeader{
			DType:       dtypeToSafeTensors(desc.DType),
			Shape:       toInt64(desc.PhysicalDims()),
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size

		logical, err := json.Marshal(desc.Shape)
		if err != nil {
			return errors.Wrapf(err, "tensor %s: marshal shape", name)
		}
		meta[name+".format"] = desc.Format.String()
		meta[name+".shape"] = string(logical)
		meta[name+".sha256"] = ComputeChecksum(buf.Data())
	}
	header[MetadataKey] = meta

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "failed to marshal header")
	}

	bw := bufio.NewWriter(w.w)
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return errors.Wrap(err, "failed to write header size")
	}
	if _, err := bw.Write(headerJSON); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	for _, name := range names {
		if _, err := bw.Write(buffers[name].Data()); err != nil {
			return errors.Wrapf(err, "failed to write tensor %s", name)
		}
	}
	return errors.Wrap(bw.Flush(), "failed to flush")
}

// Close closes the writer and the underlying file, if it owns one.
func (w *SafeTensorsWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

func toInt64(s tensor.Shape) []int64 {
	out := make([]int64, len(s))
	for i, d := range s {
		out[i] = int64(d)
	}
	return out
}

// dtypeToSafeTensors converts tensor.DataType to SafeTensors dtype string.
func dtypeToSafeTensors(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return "F32"
	case tensor.Int8:
		return "I8"
	case tensor.BFloat16:
		return "BF16"
	case tensor.Float16:
		return "F16"
	default:
		return ""
	}
}

func dtypeFromSafeTensors(s string) (tensor.DataType, error) {
	switch s {
	case "F32":
		return tensor.Float32, nil
	case "I8":
		return tensor.Int8, nil
	case "BF16":
		return tensor.BFloat16, nil
	case "F16":
		return tensor.Float16, nil
	default:
		return 0, errors.Wrapf(ErrUnknownDType, "%q", s)
	}
}
