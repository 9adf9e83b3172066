package tensor

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// #region format
// Raw cube files: "HLCB", uint32 version, uint32 bands, height, width, then
// bands*height*width little-endian float32 values.
const (
	rawMagic   = "HLCB"
	rawVersion = 1

	// maxRawElements guards against allocating for a corrupt header.
	maxRawElements = 1 << 28
)

// #endregion format

// #region write
// WriteRaw encodes c to w.
func WriteRaw(w io.Writer, c *Cube) error {
	bw := bufio.NewWriter(w)
	header := make([]byte, 20)
	copy(header, rawMagic)
	binary.LittleEndian.PutUint32(header[4:], rawVersion)
	binary.LittleEndian.PutUint32(header[8:], uint32(c.Bands))
	binary.LittleEndian.PutUint32(header[12:], uint32(c.Height))
	binary.LittleEndian.PutUint32(header[16:], uint32(c.Width))
	if _, err := bw.Write(header); err != nil {
		return fmt.Errorf("write cube header: %w", err)
	}
	buf := make([]byte, 4)
	for _, f := range c.Data {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("write cube data: %w", err)
		}
	}
	return bw.Flush()
}

// SaveRaw writes c to a file at path.
func SaveRaw(path string, c *Cube) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create cube %s: %w", path, err)
	}
	if err := WriteRaw(f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// #endregion write

// #region read
// ReadRaw decodes a cube written by WriteRaw.
func ReadRaw(r io.Reader) (*Cube, error) {
	header := make([]byte, 20)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read cube header: %w", err)
	}
	if string(header[:4]) != rawMagic {
		return nil, fmt.Errorf("read cube header: bad magic %q", header[:4])
	}
	if v := binary.LittleEndian.Uint32(header[4:]); v != rawVersion {
		return nil, fmt.Errorf("read cube header: unsupported version %d", v)
	}
	shape := []int{
		int(binary.LittleEndian.Uint32(header[8:])),
		int(binary.LittleEndian.Uint32(header[12:])),
		int(binary.LittleEndian.Uint32(header[16:])),
	}
	n, ok := elementCount(shape)
	if !ok {
		return nil, &ShapeError{Got: shape, Reason: "raw cube header has an unusable element count"}
	}

	payload := make([]byte, n*4)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read cube data: %w", err)
	}
	data := make([]float32, n)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:]))
	}
	return NewCube(shape, data)
}

// LoadRaw reads a cube file from path.
func LoadRaw(path string) (*Cube, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cube %s: %w", path, err)
	}
	defer f.Close()
	return ReadRaw(bufio.NewReader(f))
}

// #endregion read
