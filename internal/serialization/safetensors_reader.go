package serialization

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/born-ml/blockcat/internal/tensor"
)

// File is a decoded SafeTensors file.
type File struct {
	Metadata map[string]string
	Buffers  map[string]*tensor.Buffer
}

// Names returns the tensor names in alphabetical order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Buffers))
	for name := range f.Buffers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReadSafeTensors loads a file written by WriteSafeTensors.
func ReadSafeTensors(path string) (*File, error) {
	//nolint:gosec // G304: input path is chosen by the caller
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer func() {
		_ = file.Close()
	}()
	return ReadSafeTensorsFrom(file)
}

// ReadSafeTensorsFrom decodes a SafeTensors stream.
//
// Tensors without format metadata are read as plain layouts with the stored
// shape. Checksums, when present, are verified.
func ReadSafeTensorsFrom(r io.Reader) (*File, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, errors.Wrap(err, "failed to read header size")
	}
	if headerSize > MaxHeaderSize {
		return nil, ErrHeaderTooLarge
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerBytes, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse header JSON")
	}

	out := &File{Metadata: map[string]string{}, Buffers: map[string]*tensor.Buffer{}}
	if m, ok := raw[MetadataKey]; ok {
		if err := json.Unmarshal(m, &out.Metadata); err != nil {
			return nil, errors.Wrap(err, "failed to parse metadata")
		}
		delete(raw, MetadataKey)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read tensor data")
	}

	for name, msg := range raw {
		var h SafeTensorHeader
		if err := json.Unmarshal(msg, &h); err != nil {
			return nil, errors.Wrapf(err, "tensor %s: parse entry", name)
		}
		buf, err := out.decode(name, h, data)
		if err != nil {
			return nil, err
		}
		out.Buffers[name] = buf
	}
	return out, nil
}

func (f *File) decode(name string, h SafeTensorHeader, data []byte) (*tensor.Buffer, error) {
	dtype, err := dtypeFromSafeTensors(h.DType)
	if err != nil {
		return nil, errors.Wrapf(err, "tensor %s", name)
	}
	start, end := h.DataOffsets[0], h.DataOffsets[1]
	if start < 0 || end < start || end > int64(len(data)) {
		return nil, &ValidationError{Type: "out_of_bounds", Tensor: name,
			Details: ErrOutOfBounds.Error()}
	}
	payload := data[start:end]
	if err := ValidateChecksum(payload, f.Metadata[name+".sha256"]); err != nil {
		return nil, errors.Wrapf(err, "tensor %s", name)
	}

	shape := make(tensor.Shape, len(h.Shape))
	for i, d := range h.Shape {
		shape[i] = int(d)
	}
	format := tensor.PlainFormat(len(shape))
	if s, ok := f.Metadata[name+".format"]; ok {
		if format, err = tensor.ParseFormat(s); err != nil {
			return nil, &ValidationError{Type: "metadata", Tensor: name, Details: err.Error()}
		}
	}
	if s, ok := f.Metadata[name+".shape"]; ok {
		if err := json.Unmarshal([]byte(s), &shape); err != nil {
			return nil, &ValidationError{Type: "metadata", Tensor: name, Details: err.Error()}
		}
	}

	desc, err := tensor.NewDescriptor(shape, dtype, format)
	if err != nil {
		return nil, errors.Wrapf(err, "tensor %s", name)
	}
	payloadCopy := make([]byte, len(payload))
	copy(payloadCopy, payload)
	buf, err := tensor.WrapBuffer(desc, payloadCopy)
	if err != nil {
		return nil, errors.Wrapf(err, "tensor %s", name)
	}
	return buf, nil
}
