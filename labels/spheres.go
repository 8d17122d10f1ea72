package labels

import (
	"fmt"

	"github.com/janelia-flyem/tomoprep/tomo"
)

// InsertSpheres paints a ball of the given label around each point.  A voxel v is
// set when its euclidean distance to the point is strictly less than radius, so
// voxels exactly radius away are left alone.  Balls that extend past the volume
// are clipped to it.  Points are painted in order and later writes replace
// earlier ones.  It returns the number of voxel writes made.
func InsertSpheres(vol *Volume, points []tomo.Point3d, radius int32, label int64) (written int64, err error) {
	if vol == nil {
		return 0, fmt.Errorf("no volume given for sphere insertion")
	}
	if !vol.CanHold(label) {
		return 0, fmt.Errorf("label %d cannot be stored in %s volume", label, vol.DataType())
	}
	if radius <= 0 {
		return 0, nil
	}
	r := int64(radius)
	rSq := r * r
	bounds := vol.Extents()
	for _, p := range points {
		box := tomo.NewExtentsAround(p, radius-1).Intersect(bounds)
		if box.Empty() {
			continue
		}
		// Partial sums are checked against rSq before adding the next term, so they stay within int64.
		px, py, pz := int64(p[0]), int64(p[1]), int64(p[2])
		for z := int64(box.MinPoint[2]); z <= int64(box.MaxPoint[2]); z++ {
			dzSq := (z - pz) * (z - pz)
			if dzSq >= rSq {
				continue
			}
			for y := int64(box.MinPoint[1]); y <= int64(box.MaxPoint[1]); y++ {
				dy := y - py
				dyzSq := dy*dy + dzSq
				if dyzSq >= rSq {
					continue
				}
				for x := int64(box.MinPoint[0]); x <= int64(box.MaxPoint[0]); x++ {
					dx := x - px
					if dx*dx+dyzSq < rSq {
						vol.put(vol.offset(x, y, z), label)
						written++
					}
				}
			}
		}
	}
	return written, nil
}

// InsertClass paints the points with the class's label and radius.
func InsertClass(vol *Volume, points []tomo.Point3d, cl Class) (int64, error) {
	written, err := InsertSpheres(vol, points, cl.Radius, cl.Value)
	if err != nil {
		return 0, fmt.Errorf("label class %s: %w", cl, err)
	}
	return written, nil
}
