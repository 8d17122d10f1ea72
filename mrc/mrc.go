package mrc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/janelia-flyem/tomoprep/tomo"
)

var (
	// ErrBadHeader is returned when an MRC header is missing, truncated or inconsistent.
	ErrBadHeader = errors.New("corrupt MRC header")

	// ErrUnsupportedMode is returned for voxel modes tomoprep cannot handle.
	ErrUnsupportedMode = errors.New("unsupported MRC mode")

	// ErrTruncated is returned when the voxel payload is shorter than the header declares.
	ErrTruncated = errors.New("truncated MRC voxel data")
)

// File is a decoded MRC volume.  Data always holds little-endian voxels with x
// varying fastest, whatever the byte order on disk.
type File struct {
	Header   *Header
	Extended []byte
	Data     []byte
}

// New returns a zeroed MRC volume of the given size and voxel type.
func New(size tomo.Point3d, t tomo.DataType) (*File, error) {
	mode, err := ModeFor(t)
	if err != nil {
		return nil, err
	}
	nbytes, ok := size.ProdScaled(int64(tomo.DataTypeBytes(t)))
	if !ok || size[0] <= 0 || size[1] <= 0 || size[2] <= 0 {
		return nil, fmt.Errorf("%w: can't create volume of size %s", ErrBadHeader, size)
	}
	f := &File{Header: NewHeader(size, mode)}
	f.Data = make([]byte, nbytes)
	return f, nil
}

// DataType returns the voxel data type of the payload.
func (f *File) DataType() tomo.DataType {
	t, _ := f.Header.Mode().DataType() // checked on decode
	return t
}

// payloadSize returns the number of bytes of voxel data the header declares.
func payloadSize(h *Header) (int64, error) {
	t, err := h.Mode().DataType()
	if err != nil {
		return 0, err
	}
	size := h.Size()
	n, ok := size.ProdScaled(int64(tomo.DataTypeBytes(t)))
	if !ok {
		return 0, fmt.Errorf("%w: volume %s of %s is too large", ErrBadHeader, size, t)
	}
	return n, nil
}

// Decode parses an uncompressed MRC file.
func Decode(b []byte) (*File, error) {
	h, err := parseHeader(b)
	if err != nil {
		return nil, err
	}
	nsymbt := int64(h.ExtendedHeaderSize())
	nbytes, err := payloadSize(h)
	if err != nil {
		return nil, err
	}
	if nbytes > int64(len(b)) {
		return nil, fmt.Errorf("%w: %s needs %d bytes, file has %d", ErrTruncated, h, nbytes, len(b))
	}
	avail := int64(len(b)) - HeaderSize
	if avail < nsymbt {
		return nil, fmt.Errorf("%w: extended header needs %d bytes, only %d available", ErrBadHeader, nsymbt, avail)
	}
	avail -= nsymbt
	if avail < nbytes {
		return nil, fmt.Errorf("%w: %s needs %d bytes, only %d available", ErrTruncated, h, nbytes, avail)
	}
	if avail > nbytes {
		tomo.Warningf("Ignoring %d trailing bytes after MRC voxel data\n", avail-nbytes)
	}

	f := &File{Header: h}
	start := int64(HeaderSize)
	if nsymbt > 0 {
		f.Extended = bytes.Clone(b[start : start+nsymbt])
	}
	start += nsymbt
	f.Data = bytes.Clone(b[start : start+nbytes])
	if h.ByteOrder() == binary.BigEndian {
		swapBytes(f.Data, int(tomo.DataTypeBytes(f.DataType())))
	}
	return f, nil
}

// Encode returns the MRC file bytes, converting voxels back to the header's byte order.
func (f *File) Encode() ([]byte, error) {
	if f.Header == nil {
		return nil, fmt.Errorf("%w: no header to encode", ErrBadHeader)
	}
	nbytes, err := payloadSize(f.Header)
	if err != nil {
		return nil, err
	}
	if int64(len(f.Data)) != nbytes {
		return nil, fmt.Errorf("voxel data has %d bytes but header %s requires %d", len(f.Data), f.Header, nbytes)
	}
	if int(f.Header.ExtendedHeaderSize()) != len(f.Extended) {
		return nil, fmt.Errorf("extended header has %d bytes but NSYMBT is %d", len(f.Extended), f.Header.ExtendedHeaderSize())
	}
	out := make([]byte, 0, HeaderSize+int64(len(f.Extended))+nbytes)
	out = append(out, f.Header.raw[:]...)
	out = append(out, f.Extended...)
	start := len(out)
	out = append(out, f.Data...)
	if f.Header.ByteOrder() == binary.BigEndian {
		swapBytes(out[start:], int(tomo.DataTypeBytes(f.DataType())))
	}
	return out, nil
}

// IsGzipped returns true if the file name denotes a gzip-compressed MRC file.
func IsGzipped(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".gz")
}

// IsMRC returns true if the file name has an MRC extension, compressed or not.
func IsMRC(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".mrc") || strings.HasSuffix(lower, ".mrc.gz")
}

// Unmarshal decodes the named MRC file contents, decompressing ".gz" files.
func Unmarshal(name string, b []byte) (*File, error) {
	if IsGzipped(name) {
		zr, err := gzip.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("can't open gzip MRC %q: %w", name, err)
		}
		defer zr.Close()
		if b, err = io.ReadAll(zr); err != nil {
			return nil, fmt.Errorf("can't decompress MRC %q: %w", name, err)
		}
	}
	f, err := Decode(b)
	if err != nil {
		return nil, fmt.Errorf("MRC file %q: %w", name, err)
	}
	return f, nil
}

// Marshal encodes the MRC file for storage under the given name, compressing ".gz" files.
func Marshal(name string, f *File) ([]byte, error) {
	b, err := f.Encode()
	if err != nil {
		return nil, fmt.Errorf("MRC file %q: %w", name, err)
	}
	if !IsGzipped(name) {
		return b, nil
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UpdateStatistics recomputes the header's min, max, mean and rms deviation from
// the voxel data.
func (f *File) UpdateStatistics() {
	t := f.DataType()
	bpv := int(tomo.DataTypeBytes(t))
	n := len(f.Data) / bpv
	if n == 0 {
		f.Header.SetStatistics(0, 0, 0, 0)
		return
	}
	min := math.Inf(1)
	max := math.Inf(-1)
	var sum float64
	for i := 0; i < n; i++ {
		v := voxelValue(f.Data[i*bpv:], t)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	mean := sum / float64(n)
	var sumSq float64
	for i := 0; i < n; i++ {
		d := voxelValue(f.Data[i*bpv:], t) - mean
		sumSq += d * d
	}
	rms := math.Sqrt(sumSq / float64(n))
	f.Header.SetStatistics(float32(min), float32(max), float32(mean), float32(rms))
}

func voxelValue(b []byte, t tomo.DataType) float64 {
	switch t {
	case tomo.T_int8:
		return float64(int8(b[0]))
	case tomo.T_int16:
		return float64(int16(binary.LittleEndian.Uint16(b)))
	case tomo.T_uint16:
		return float64(binary.LittleEndian.Uint16(b))
	case tomo.T_float32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	}
	return 0
}

// swapBytes reverses the byte order of each element in place.
func swapBytes(b []byte, width int) {
	switch width {
	case 2:
		for i := 0; i+1 < len(b); i += 2 {
			b[i], b[i+1] = b[i+1], b[i]
		}
	case 4:
		for i := 0; i+3 < len(b); i += 4 {
			b[i], b[i+1], b[i+2], b[i+3] = b[i+3], b[i+2], b[i+1], b[i]
		}
	}
}
