package annotation

import (
	"errors"
	"strings"
	"testing"

	. "github.com/janelia-flyem/go/gocheck"

	"github.com/janelia-flyem/tomoprep/tomo"
)

func Test(t *testing.T) { TestingT(t) }

type PointsSuite struct{}

var _ = Suite(&PointsSuite{})

const goodRecords = `{"type": "orientedPoint", "location": {"x": 418.7, "y": 77.2, "z": 120}, "xyz_rotation_matrix": [[1,0,0],[0,1,0],[0,0,1]]}
{"location": {"x": 0.99, "y": 1, "z": 2.5}}

{"location": {"z": 3, "y": 2, "x": 1}, "instance_id": 7}
`

func (s *PointsSuite) TestReadPoints(c *C) {
	locs, err := ReadPoints(strings.NewReader(goodRecords))
	c.Assert(err, IsNil)
	c.Assert(locs, DeepEquals, []Location{
		{X: 418.7, Y: 77.2, Z: 120},
		{X: 0.99, Y: 1, Z: 2.5},
		{X: 1, Y: 2, Z: 3},
	})

	pts, err := Voxels(locs)
	c.Assert(err, IsNil)
	c.Assert(pts, DeepEquals, []tomo.Point3d{{418, 77, 120}, {0, 1, 2}, {1, 2, 3}})
}

func (s *PointsSuite) TestNoTrailingNewline(c *C) {
	locs, err := ReadPoints(strings.NewReader(`{"location": {"x": 1, "y": 2, "z": 3}}`))
	c.Assert(err, IsNil)
	c.Assert(locs, HasLen, 1)

	locs, err = ReadPoints(strings.NewReader(""))
	c.Assert(err, IsNil)
	c.Assert(locs, HasLen, 0)
}

func (s *PointsSuite) TestLongLine(c *C) {
	record := `{"location": {"x": 5, "y": 6, "z": 7}, "note": "` + strings.Repeat("a", 200000) + `"}`
	locs, err := ReadPoints(strings.NewReader(record + "\n"))
	c.Assert(err, IsNil)
	c.Assert(locs, DeepEquals, []Location{{X: 5, Y: 6, Z: 7}})
}

func (s *PointsSuite) TestMalformed(c *C) {
	bad := []struct {
		input string
		line  int
	}{
		{`{"location": {"x": 1, "y": 2}}`, 1},
		{"{\"location\": {\"x\": 1, \"y\": 2, \"z\": 3}}\n{\"position\": {\"x\": 1, \"y\": 2, \"z\": 3}}", 2},
		{"\n\n{\"location\": {\"x\": \"1\", \"y\": 2, \"z\": 3}}", 3},
		{`{"location": {"x": null, "y": 2, "z": 3}}`, 1},
		{`{"location": [1, 2, 3]}`, 1},
		{`[1, 2, 3]`, 1},
		{`{"location": {"x": 1, "y": 2, "z": 3}`, 1},
		{`{"location": {"x": 1e12, "y": 2, "z": 3}}`, 1},
	}
	for _, tc := range bad {
		_, err := ReadPoints(strings.NewReader(tc.input))
		c.Assert(err, NotNil)
		c.Assert(IsMalformed(err), Equals, true)
		var merr *MalformedRecordError
		c.Assert(errors.As(err, &merr), Equals, true)
		c.Assert(merr.Line, Equals, tc.line)
		c.Assert(strings.HasPrefix(err.Error(), "malformed annotation record"), Equals, true)
	}
}

func (s *PointsSuite) TestVoxelTruncation(c *C) {
	p, err := Location{X: -0.5, Y: 9.999, Z: -1.5}.Voxel()
	c.Assert(err, IsNil)
	c.Assert(p, Equals, tomo.Point3d{0, 9, -1})

	_, err = Location{X: 3e9, Y: 0, Z: 0}.Voxel()
	c.Assert(err, NotNil)

	_, err = Voxels([]Location{{X: 1, Y: 1, Z: 1}, {X: -3e9}})
	c.Assert(err, NotNil)
	c.Assert(IsMalformed(nil), Equals, false)
}
