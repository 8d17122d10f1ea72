/*
	Package labels holds dense label volumes and the painting of point
	annotations into them.
*/
package labels

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/janelia-flyem/tomoprep/tomo"
)

// Volume is a dense 3d array of voxel values with x varying fastest.  Values are
// stored little endian in a byte slice so that a volume can wrap a decoded MRC
// payload without copying.
type Volume struct {
	size  tomo.Point3d
	dtype tomo.DataType
	bpv   int64
	data  []byte
}

// NewVolume returns a zeroed volume of the given size and data type.
func NewVolume(size tomo.Point3d, dtype tomo.DataType) (*Volume, error) {
	if err := checkShape(size, dtype); err != nil {
		return nil, err
	}
	bpv := int64(tomo.DataTypeBytes(dtype))
	nbytes, _ := size.ProdScaled(bpv) // checked by checkShape
	return &Volume{
		size:  size,
		dtype: dtype,
		bpv:   bpv,
		data:  make([]byte, nbytes),
	}, nil
}

// NewVolumeFromBytes returns a volume that uses the passed data as its voxel storage.
// Changes to the volume are visible in data.
func NewVolumeFromBytes(size tomo.Point3d, dtype tomo.DataType, data []byte) (*Volume, error) {
	if err := checkShape(size, dtype); err != nil {
		return nil, err
	}
	bpv := int64(tomo.DataTypeBytes(dtype))
	if expected, _ := size.ProdScaled(bpv); int64(len(data)) != expected {
		return nil, fmt.Errorf("volume %s of %s needs %d bytes, got %d", size, dtype, expected, len(data))
	}
	return &Volume{size: size, dtype: dtype, bpv: bpv, data: data}, nil
}

func checkShape(size tomo.Point3d, dtype tomo.DataType) error {
	if !dtype.Valid() {
		return fmt.Errorf("bad voxel data type %s", dtype)
	}
	if _, ok := size.ProdScaled(int64(tomo.DataTypeBytes(dtype))); !ok {
		return fmt.Errorf("bad volume size %s", size)
	}
	return nil
}

func (v *Volume) Size() tomo.Point3d {
	return v.size
}

func (v *Volume) DataType() tomo.DataType {
	return v.dtype
}

// Bytes returns the underlying voxel storage.
func (v *Volume) Bytes() []byte {
	return v.data
}

func (v *Volume) NumVoxels() int64 {
	n, _ := v.size.ProdScaled(1) // checked on creation
	return n
}

// Extents returns the inclusive voxel bounds of the volume.
func (v *Volume) Extents() tomo.Extents {
	return tomo.NewExtentsFromSize(v.size)
}

// Contains returns true if the voxel lies within the volume.
func (v *Volume) Contains(p tomo.Point3d) bool {
	return v.Extents().Contains(p)
}

// CanHold returns true if the label can be stored in the volume's data type without loss.
func (v *Volume) CanHold(label int64) bool {
	return v.dtype.CanHold(label)
}

// offset returns the byte offset of a voxel without bounds checking.
func (v *Volume) offset(x, y, z int64) int64 {
	nx := int64(v.size[0])
	ny := int64(v.size[1])
	return (z*ny*nx + y*nx + x) * v.bpv
}

// Label returns the value at the given voxel.  Float voxels are truncated.
func (v *Volume) Label(p tomo.Point3d) (int64, error) {
	if !v.Contains(p) {
		return 0, fmt.Errorf("voxel %s is outside volume of size %s", p, v.size)
	}
	return v.get(v.offset(int64(p[0]), int64(p[1]), int64(p[2]))), nil
}

// SetLabel sets the value at the given voxel.
func (v *Volume) SetLabel(p tomo.Point3d, label int64) error {
	if !v.Contains(p) {
		return fmt.Errorf("voxel %s is outside volume of size %s", p, v.size)
	}
	if !v.CanHold(label) {
		return fmt.Errorf("label %d cannot be stored as %s", label, v.dtype)
	}
	v.put(v.offset(int64(p[0]), int64(p[1]), int64(p[2])), label)
	return nil
}

func (v *Volume) get(off int64) int64 {
	b := v.data[off:]
	switch v.dtype {
	case tomo.T_uint8:
		return int64(b[0])
	case tomo.T_int8:
		return int64(int8(b[0]))
	case tomo.T_uint16:
		return int64(binary.LittleEndian.Uint16(b))
	case tomo.T_int16:
		return int64(int16(binary.LittleEndian.Uint16(b)))
	case tomo.T_uint32:
		return int64(binary.LittleEndian.Uint32(b))
	case tomo.T_int32:
		return int64(int32(binary.LittleEndian.Uint32(b)))
	case tomo.T_float32:
		return int64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	}
	return 0
}

func (v *Volume) put(off int64, label int64) {
	b := v.data[off:]
	switch v.dtype {
	case tomo.T_uint8, tomo.T_int8:
		b[0] = byte(label)
	case tomo.T_uint16, tomo.T_int16:
		binary.LittleEndian.PutUint16(b, uint16(label))
	case tomo.T_uint32, tomo.T_int32:
		binary.LittleEndian.PutUint32(b, uint32(label))
	case tomo.T_float32:
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(label)))
	}
}

// Counts returns the number of voxels holding each label.
func (v *Volume) Counts() map[int64]int64 {
	counts := make(map[int64]int64)
	for off := int64(0); off < int64(len(v.data)); off += v.bpv {
		counts[v.get(off)]++
	}
	return counts
}
