/*
	Package annotation reads point annotations stored as newline-delimited JSON,
	one record per line, e.g.,

		{"type": "orientedPoint", "location": {"x": 418.2, "y": 77.9, "z": 120}, "instance_id": 3}

	Only the location is used.
*/
package annotation

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/janelia-flyem/tomoprep/tomo"
)

// MalformedRecordError reports an annotation line that can't be used as a point.
type MalformedRecordError struct {
	Line int
	Err  error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed annotation record at line %d: %v", e.Line, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// Location is the real-valued position of a point annotation in voxel units.
type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Voxel returns the voxel holding the location, truncating each coordinate toward zero.
func (loc Location) Voxel() (tomo.Point3d, error) {
	var p tomo.Point3d
	for dim, v := range [3]float64{loc.X, loc.Y, loc.Z} {
		t := math.Trunc(v)
		if math.IsNaN(t) || t < math.MinInt32 || t > math.MaxInt32 {
			return tomo.Point3d{}, fmt.Errorf("coordinate %g of %s can't be a voxel index", v, loc)
		}
		p[dim] = int32(t)
	}
	return p, nil
}

func (loc Location) String() string {
	return fmt.Sprintf("(%g, %g, %g)", loc.X, loc.Y, loc.Z)
}

// ReadPoints reads line-delimited JSON records and returns their locations in file
// order.  Blank lines are skipped.  A record without numeric location.x, .y and .z
// fails with a *MalformedRecordError.
func ReadPoints(r io.Reader) ([]Location, error) {
	br := bufio.NewReader(r)
	var locs []Location
	for lineNum := 1; ; lineNum++ {
		line, err := br.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("error reading annotation line %d: %w", lineNum, err)
		}
		if trimmed := bytes.TrimSpace(line); len(trimmed) != 0 {
			loc, perr := parseRecord(trimmed)
			if perr != nil {
				return nil, &MalformedRecordError{Line: lineNum, Err: perr}
			}
			locs = append(locs, loc)
		}
		if err == io.EOF {
			return locs, nil
		}
	}
}

func parseRecord(line []byte) (Location, error) {
	var record interface{}
	if err := json.Unmarshal(line, &record); err != nil {
		return Location{}, err
	}
	if err := recordSchema.Validate(record); err != nil {
		return Location{}, err
	}
	obj := record.(map[string]interface{})
	location := obj["location"].(map[string]interface{})
	var coords [3]float64
	for i, key := range []string{"x", "y", "z"} {
		v, ok := location[key].(float64)
		if !ok {
			return Location{}, fmt.Errorf("location.%s is not a number", key)
		}
		coords[i] = v
	}
	loc := Location{X: coords[0], Y: coords[1], Z: coords[2]}
	if _, err := loc.Voxel(); err != nil {
		return Location{}, err
	}
	return loc, nil
}

// Voxels converts locations to voxel coordinates.
func Voxels(locs []Location) ([]tomo.Point3d, error) {
	pts := make([]tomo.Point3d, len(locs))
	for i, loc := range locs {
		p, err := loc.Voxel()
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		pts[i] = p
	}
	return pts, nil
}

// IsMalformed returns true if the error came from an unusable annotation record.
func IsMalformed(err error) bool {
	var merr *MalformedRecordError
	return errors.As(err, &merr)
}
