package tomo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Point3d is an ordered list of three 32-bit signed integers giving a voxel
// coordinate in (x, y, z) order.
type Point3d [3]int32

// AddScalar adds a scalar value to this point.
func (p Point3d) AddScalar(value int32) Point3d {
	return Point3d{p[0] + value, p[1] + value, p[2] + value}
}

// SetMinimum sets the point to the minimum elements of current and passed points.
func (p *Point3d) SetMinimum(p2 Point3d) {
	if p[0] > p2[0] {
		p[0] = p2[0]
	}
	if p[1] > p2[1] {
		p[1] = p2[1]
	}
	if p[2] > p2[2] {
		p[2] = p2[2]
	}
}

// SetMaximum sets the point to the maximum elements of current and passed points.
func (p *Point3d) SetMaximum(p2 Point3d) {
	if p[0] < p2[0] {
		p[0] = p2[0]
	}
	if p[1] < p2[1] {
		p[1] = p2[1]
	}
	if p[2] < p2[2] {
		p[2] = p2[2]
	}
}

// DistanceSq returns the squared euclidean distance between two points.
// It is computed in 64 bits so it is exact for any pair of int32 points.
func (p Point3d) DistanceSq(p2 Point3d) int64 {
	dx := int64(p[0]) - int64(p2[0])
	dy := int64(p[1]) - int64(p2[1])
	dz := int64(p[2]) - int64(p2[2])
	return dx*dx + dy*dy + dz*dz
}

// ProdScaled returns the product of the point elements and scale.  It returns
// false if any factor is negative or the product does not fit in an int64.
func (p Point3d) ProdScaled(scale int64) (int64, bool) {
	if scale < 0 {
		return 0, false
	}
	n := scale
	for dim := 0; dim < 3; dim++ {
		v := int64(p[dim])
		if v < 0 {
			return 0, false
		}
		if v != 0 && n > math.MaxInt64/v {
			return 0, false
		}
		n *= v
	}
	return n, true
}

func (p Point3d) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p[0], p[1], p[2])
}

// StringToPoint3d parses a string of form "x<sep>y<sep>z", e.g., "96,96,96".
func StringToPoint3d(str, separator string) (Point3d, error) {
	elems := strings.Split(str, separator)
	if len(elems) != 3 {
		return Point3d{}, fmt.Errorf("cannot convert %q into a 3d point", str)
	}
	var p Point3d
	for i, elem := range elems {
		v, err := strconv.ParseInt(strings.TrimSpace(elem), 10, 32)
		if err != nil {
			return Point3d{}, fmt.Errorf("cannot parse %q as a 3d point: %v", str, err)
		}
		p[i] = int32(v)
	}
	return p, nil
}

// Extents holds the inclusive min and max points of a 3d region.
type Extents struct {
	MinPoint Point3d
	MaxPoint Point3d
}

// NewExtentsFromSize returns extents that cover a volume of the given size
// starting at the origin.
func NewExtentsFromSize(size Point3d) Extents {
	return Extents{
		MinPoint: Point3d{0, 0, 0},
		MaxPoint: size.AddScalar(-1),
	}
}

// NewExtentsAround returns the cube of voxels within halfWidth of center along
// each axis, saturated at the int32 coordinate limits.
func NewExtentsAround(center Point3d, halfWidth int32) Extents {
	var ext Extents
	for dim := 0; dim < 3; dim++ {
		c, h := int64(center[dim]), int64(halfWidth)
		ext.MinPoint[dim] = int32(max(c-h, math.MinInt32))
		ext.MaxPoint[dim] = int32(min(c+h, math.MaxInt32))
	}
	return ext
}

// Empty returns true if the extents hold no voxels.
func (ext Extents) Empty() bool {
	return ext.MaxPoint[0] < ext.MinPoint[0] ||
		ext.MaxPoint[1] < ext.MinPoint[1] ||
		ext.MaxPoint[2] < ext.MinPoint[2]
}

// Contains returns true if the point lies within the extents.
func (ext Extents) Contains(p Point3d) bool {
	for dim := 0; dim < 3; dim++ {
		if p[dim] < ext.MinPoint[dim] || p[dim] > ext.MaxPoint[dim] {
			return false
		}
	}
	return true
}

// Intersect returns the overlap of the two extents, which may be Empty.
func (ext Extents) Intersect(ext2 Extents) Extents {
	result := ext
	result.MinPoint.SetMaximum(ext2.MinPoint)
	result.MaxPoint.SetMinimum(ext2.MaxPoint)
	return result
}

func (ext Extents) String() string {
	return fmt.Sprintf("%s -> %s", ext.MinPoint, ext.MaxPoint)
}
