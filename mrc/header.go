/*
	Package mrc reads and writes the MRC2014 volume format used for electron
	microscopy maps, tomograms and segmentation masks.  A file is a 1024-byte main
	header, an optional extended header, and a dense voxel payload with x varying
	fastest.
*/
package mrc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/janelia-flyem/tomoprep/tomo"
)

// HeaderSize is the number of bytes in the main MRC header.
const HeaderSize = 1024

// byte offsets of the header words used by tomoprep.
const (
	offNX      = 0
	offNY      = 4
	offNZ      = 8
	offMode    = 12
	offMX      = 28
	offMY      = 32
	offMZ      = 36
	offCellA   = 40
	offCellB   = 52
	offMapC    = 64
	offMapR    = 68
	offMapS    = 72
	offDMin    = 76
	offDMax    = 80
	offDMean   = 84
	offISPG    = 88
	offNSymBT  = 92
	offExtType = 104
	offNVers   = 108
	offMap     = 208
	offMachSt  = 212
	offRMS     = 216
	offNLabl   = 220
	offLabels  = 224

	labelSize = 80
	maxLabels = 10
)

var (
	stampLittle = [4]byte{0x44, 0x44, 0x00, 0x00}
	stampBig    = [4]byte{0x11, 0x11, 0x00, 0x00}
)

// Mode is the MRC voxel data type code.
type Mode int32

const (
	ModeInt8    Mode = 0
	ModeInt16   Mode = 1
	ModeFloat32 Mode = 2
	ModeUint16  Mode = 6
)

// DataType returns the voxel data type for a supported mode.
func (m Mode) DataType() (tomo.DataType, error) {
	switch m {
	case ModeInt8:
		return tomo.T_int8, nil
	case ModeInt16:
		return tomo.T_int16, nil
	case ModeFloat32:
		return tomo.T_float32, nil
	case ModeUint16:
		return tomo.T_uint16, nil
	}
	return 0, fmt.Errorf("%w %d", ErrUnsupportedMode, int32(m))
}

// ModeFor returns the MRC mode that stores the given voxel data type.
func ModeFor(t tomo.DataType) (Mode, error) {
	switch t {
	case tomo.T_int8:
		return ModeInt8, nil
	case tomo.T_int16:
		return ModeInt16, nil
	case tomo.T_float32:
		return ModeFloat32, nil
	case tomo.T_uint16:
		return ModeUint16, nil
	}
	return 0, fmt.Errorf("%w for data type %s", ErrUnsupportedMode, t)
}

// Header is the main MRC header.  The raw bytes are kept so that fields tomoprep
// does not interpret survive a read/write cycle unchanged.
type Header struct {
	raw   [HeaderSize]byte
	order binary.ByteOrder
}

// NewHeader returns a little-endian header for a volume of the given size and
// mode with unit voxel spacing.
func NewHeader(size tomo.Point3d, mode Mode) *Header {
	h := &Header{order: binary.LittleEndian}
	for dim := 0; dim < 3; dim++ {
		h.putInt32(offNX+4*dim, size[dim])
		h.putInt32(offMX+4*dim, size[dim])
		h.putFloat32(offCellA+4*dim, float32(size[dim]))
		h.putFloat32(offCellB+4*dim, 90)
		h.putInt32(offMapC+4*dim, int32(dim+1))
	}
	h.putInt32(offMode, int32(mode))
	h.putInt32(offISPG, 1)
	h.putInt32(offNVers, 20140)
	copy(h.raw[offMap:], "MAP ")
	copy(h.raw[offMachSt:], stampLittle[:])
	return h
}

// parseHeader checks the main header and returns it.  The byte order is taken
// from the machine stamp.
func parseHeader(b []byte) (*Header, error) {
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("%w: need %d header bytes, got %d", ErrBadHeader, HeaderSize, len(b))
	}
	h := &Header{}
	copy(h.raw[:], b[:HeaderSize])

	var stamp [4]byte
	copy(stamp[:], h.raw[offMachSt:offMachSt+4])
	switch {
	case stamp[0] == stampLittle[0]:
		h.order = binary.LittleEndian
	case stamp[0] == stampBig[0]:
		h.order = binary.BigEndian
	default:
		tomo.Warningf("Unrecognized MRC machine stamp %x, assuming little endian\n", stamp)
		h.order = binary.LittleEndian
	}

	if string(h.raw[offMap:offMap+4]) != "MAP " {
		tomo.Warningf("MRC header missing MAP identifier (found %q); reading anyway\n",
			string(h.raw[offMap:offMap+4]))
	}
	size := h.Size()
	if size[0] <= 0 || size[1] <= 0 || size[2] <= 0 {
		return nil, fmt.Errorf("%w: bad dimensions %s", ErrBadHeader, size)
	}
	if _, err := h.Mode().DataType(); err != nil {
		return nil, err
	}
	if h.ExtendedHeaderSize() < 0 {
		return nil, fmt.Errorf("%w: negative extended header size %d", ErrBadHeader, h.ExtendedHeaderSize())
	}
	return h, nil
}

func (h *Header) int32At(off int) int32 {
	return int32(h.order.Uint32(h.raw[off : off+4]))
}

func (h *Header) float32At(off int) float32 {
	return math.Float32frombits(h.order.Uint32(h.raw[off : off+4]))
}

func (h *Header) putInt32(off int, v int32) {
	h.order.PutUint32(h.raw[off:off+4], uint32(v))
}

func (h *Header) putFloat32(off int, v float32) {
	h.order.PutUint32(h.raw[off:off+4], math.Float32bits(v))
}

// ByteOrder returns the byte order of the header and voxel payload on disk.
func (h *Header) ByteOrder() binary.ByteOrder {
	return h.order
}

// Size returns (NX, NY, NZ).
func (h *Header) Size() tomo.Point3d {
	return tomo.Point3d{h.int32At(offNX), h.int32At(offNY), h.int32At(offNZ)}
}

func (h *Header) Mode() Mode {
	return Mode(h.int32At(offMode))
}

// ExtendedHeaderSize returns NSYMBT, the number of bytes following the main header.
func (h *Header) ExtendedHeaderSize() int32 {
	return h.int32At(offNSymBT)
}

// ExtendedHeaderType returns the EXTTYP identifier, e.g., "FEI1", or "" if unset.
func (h *Header) ExtendedHeaderType() string {
	return strings.TrimRight(string(h.raw[offExtType:offExtType+4]), "\x00 ")
}

// VoxelSize returns the cell dimensions divided by the sampling, usually in Angstroms.
func (h *Header) VoxelSize() [3]float32 {
	var vs [3]float32
	for dim := 0; dim < 3; dim++ {
		m := h.int32At(offMX + 4*dim)
		if m != 0 {
			vs[dim] = h.float32At(offCellA+4*dim) / float32(m)
		}
	}
	return vs
}

// Labels returns the text labels stored in the header.
func (h *Header) Labels() []string {
	n := int(h.int32At(offNLabl))
	if n > maxLabels {
		n = maxLabels
	}
	var labels []string
	for i := 0; i < n; i++ {
		start := offLabels + i*labelSize
		labels = append(labels, strings.TrimRight(string(h.raw[start:start+labelSize]), "\x00 "))
	}
	return labels
}

// Statistics returns the header's DMIN, DMAX, DMEAN and RMS.
func (h *Header) Statistics() (min, max, mean, rms float32) {
	return h.float32At(offDMin), h.float32At(offDMax), h.float32At(offDMean), h.float32At(offRMS)
}

// SetStatistics sets DMIN, DMAX, DMEAN and RMS.
func (h *Header) SetStatistics(min, max, mean, rms float32) {
	h.putFloat32(offDMin, min)
	h.putFloat32(offDMax, max)
	h.putFloat32(offDMean, mean)
	h.putFloat32(offRMS, rms)
}

// Bytes returns a copy of the raw header.
func (h *Header) Bytes() []byte {
	return bytes.Clone(h.raw[:])
}

func (h *Header) String() string {
	vs := h.VoxelSize()
	str := fmt.Sprintf("MRC %s mode %d, %s, voxel %gx%gx%g", h.Size(), h.Mode(), h.order, vs[0], vs[1], vs[2])
	if n := h.ExtendedHeaderSize(); n != 0 {
		if exttyp := h.ExtendedHeaderType(); exttyp != "" {
			str += fmt.Sprintf(", %s extended header of %d bytes", exttyp, n)
		} else {
			str += fmt.Sprintf(", extended header of %d bytes", n)
		}
	}
	return str
}
