package weights

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
)

// The container is the safetensors layout: an 8-byte little-endian header
// length, a JSON header, then the packed tensor bytes. A PyTorch state dict
// exported with safetensors.torch.save_file loads directly.

// #region header
const metadataKey = "__metadata__"

// maxHeaderBytes bounds the JSON header read from untrusted input.
const maxHeaderBytes = 64 << 20

// maxDataBytes bounds the tensor payload a header may claim.
const maxDataBytes = 4 << 30

type headerEntry struct {
	DType       string   `json:"dtype"`
	Shape       []int    `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

func dtypeSize(dtype string) (int, error) {
	switch dtype {
	case "F32":
		return 4, nil
	case "F64", "I64":
		return 8, nil
	}
	return 0, fmt.Errorf("unsupported dtype %s", dtype)
}

// #endregion header

// #region decode
// Decode reads a parameter blob. Structural problems surface as IncompatibleError.
func Decode(r io.Reader) (*Set, error) {
	var lenBuf [8]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("read header length: %w", err)
	}
	hlen := binary.LittleEndian.Uint64(lenBuf[:])
	if hlen == 0 || hlen > maxHeaderBytes {
		return nil, &IncompatibleError{Reason: fmt.Sprintf("header length %d out of range", hlen)}
	}
	headerBytes := make([]byte, hlen)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerBytes, &raw); err != nil {
		return nil, &IncompatibleError{Reason: fmt.Sprintf("parse header: %v", err)}
	}

	set := NewSet()
	set.Metadata = map[string]string{}
	if m, ok := raw[metadataKey]; ok {
		if err := json.Unmarshal(m, &set.Metadata); err != nil {
			return nil, &IncompatibleError{Reason: fmt.Sprintf("parse metadata: %v", err)}
		}
		delete(raw, metadataKey)
	}

	entries := make(map[string]headerEntry, len(raw))
	var dataLen int64
	for name, msg := range raw {
		var e headerEntry
		if err := json.Unmarshal(msg, &e); err != nil {
			return nil, &IncompatibleError{Name: name, Reason: fmt.Sprintf("parse entry: %v", err)}
		}
		size, err := dtypeSize(e.DType)
		if err != nil {
			return nil, &IncompatibleError{Name: name, Reason: err.Error()}
		}
		nbytes := int64(size)
		for _, d := range e.Shape {
			if d < 0 {
				return nil, &IncompatibleError{Name: name, Got: e.Shape, Reason: "negative dimension"}
			}
			if d > 0 && nbytes > maxDataBytes/int64(d) {
				return nil, &IncompatibleError{Name: name, Got: e.Shape, Reason: "tensor too large"}
			}
			nbytes *= int64(d)
		}
		start, end := e.DataOffsets[0], e.DataOffsets[1]
		if start < 0 || end < start || end > maxDataBytes || end-start != nbytes {
			return nil, &IncompatibleError{Name: name, Got: e.Shape, Reason: "data offsets do not match shape"}
		}
		if e.DataOffsets[1] > dataLen {
			dataLen = e.DataOffsets[1]
		}
		entries[name] = e
	}

	data := make([]byte, dataLen)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read tensor data: %w", err)
	}

	for name, e := range entries {
		buf := data[e.DataOffsets[0]:e.DataOffsets[1]]
		set.Put(name, e.Shape, decodeValues(e.DType, buf))
	}
	return set, nil
}

func decodeValues(dtype string, buf []byte) []float64 {
	switch dtype {
	case "F32":
		out := make([]float64, len(buf)/4)
		for i := range out {
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])))
		}
		return out
	case "F64":
		out := make([]float64, len(buf)/8)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
		}
		return out
	default: // I64
		out := make([]float64, len(buf)/8)
		for i := range out {
			out[i] = float64(int64(binary.LittleEndian.Uint64(buf[i*8:])))
		}
		return out
	}
}

// Load opens and decodes a parameter file.
func Load(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open weights %s: %w", path, err)
	}
	defer f.Close()
	set, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decode weights %s: %w", path, err)
	}
	return set, nil
}

// #endregion decode

// #region encode
// Encode writes every tensor as F32 in sorted name order.
func Encode(w io.Writer, s *Set) error {
	header := make(map[string]any, len(s.tensors)+1)
	if len(s.Metadata) > 0 {
		header[metadataKey] = s.Metadata
	}
	var offset int64
	names := s.Names()
	for _, name := range names {
		t := s.tensors[name]
		end := offset + int64(len(t.Values))*4
		header[name] = headerEntry{DType: "F32", Shape: t.Shape, DataOffsets: [2]int64{offset, end}}
		offset = end
	}
	headerBytes, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshal header: %w", err)
	}
	// safetensors pads the header with spaces to an 8-byte boundary.
	for len(headerBytes)%8 != 0 {
		headerBytes = append(headerBytes, ' ')
	}

	bw := bufio.NewWriter(w)
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(headerBytes)))
	if _, err := bw.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("write header length: %w", err)
	}
	if _, err := bw.Write(headerBytes); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	var buf [4]byte
	for _, name := range names {
		for _, v := range s.tensors[name].Values {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(float32(v)))
			if _, err := bw.Write(buf[:]); err != nil {
				return fmt.Errorf("write tensor %s: %w", name, err)
			}
		}
	}
	return bw.Flush()
}

// Save writes the set to path.
func Save(path string, s *Set) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create weights %s: %w", path, err)
	}
	if err := Encode(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// #endregion encode
