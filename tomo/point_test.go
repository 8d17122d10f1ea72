package tomo

import (
	. "github.com/janelia-flyem/go/gocheck"
)

func (s *DataSuite) TestPoint3d(c *C) {
	a := Point3d{10, 21, 837821}
	b := Point3d{78312, -200, 40123}
	d := Point3d{1, 1, 1}
	e := Point3d{4, 4, 4}
	c.Assert(d.DistanceSq(e), Equals, int64(27))

	c.Assert(a.String(), Equals, "(10,21,837821)")
	c.Assert(a.AddScalar(10), Equals, Point3d{20, 31, 837831})

	min := a
	min.SetMinimum(b)
	c.Assert(min, Equals, Point3d{10, -200, 40123})
	max := a
	max.SetMaximum(b)
	c.Assert(max, Equals, Point3d{78312, 21, 837821})
}

func (s *DataSuite) TestProdScaled(c *C) {
	n, ok := Point3d{10, 20, 30}.ProdScaled(4)
	c.Assert(ok, Equals, true)
	c.Assert(n, Equals, int64(24000))

	n, ok = Point3d{0, 2147483647, 2147483647}.ProdScaled(4)
	c.Assert(ok, Equals, true)
	c.Assert(n, Equals, int64(0))

	n, ok = Point3d{1 << 20, 1 << 20, 1 << 20}.ProdScaled(4)
	c.Assert(ok, Equals, true)
	c.Assert(n, Equals, int64(1)<<62)

	// 2^63 wraps to a negative int64 if multiplied blindly.
	_, ok = Point3d{1 << 21, 1 << 21, 1 << 21}.ProdScaled(1)
	c.Assert(ok, Equals, false)
	_, ok = Point3d{2147483647, 2147483647, 2147483647}.ProdScaled(1)
	c.Assert(ok, Equals, false)
	_, ok = Point3d{1 << 20, 1 << 20, 1 << 20}.ProdScaled(8)
	c.Assert(ok, Equals, false)
	_, ok = Point3d{4, -1, 4}.ProdScaled(1)
	c.Assert(ok, Equals, false)
}

func (s *DataSuite) TestDistanceSqNoOverflow(c *C) {
	a := Point3d{-2147483648, 0, 0}
	b := Point3d{2147483647, 0, 0}
	c.Assert(a.DistanceSq(b), Equals, int64(4294967295)*int64(4294967295))
}

func (s *DataSuite) TestStringToPoint3d(c *C) {
	p, err := StringToPoint3d("96, 48,16", ",")
	c.Assert(err, IsNil)
	c.Assert(p, Equals, Point3d{96, 48, 16})

	_, err = StringToPoint3d("96,48", ",")
	c.Assert(err, NotNil)
	_, err = StringToPoint3d("96,a,3", ",")
	c.Assert(err, NotNil)
}

func (s *DataSuite) TestExtents(c *C) {
	ext := NewExtentsFromSize(Point3d{10, 20, 30})
	c.Assert(ext.MinPoint, Equals, Point3d{0, 0, 0})
	c.Assert(ext.MaxPoint, Equals, Point3d{9, 19, 29})
	c.Assert(ext.Empty(), Equals, false)
	c.Assert(ext.Contains(Point3d{9, 19, 29}), Equals, true)
	c.Assert(ext.Contains(Point3d{10, 0, 0}), Equals, false)
	c.Assert(ext.Contains(Point3d{0, -1, 0}), Equals, false)

	other := Extents{MinPoint: Point3d{5, -5, 25}, MaxPoint: Point3d{15, 5, 35}}
	overlap := ext.Intersect(other)
	c.Assert(overlap.MinPoint, Equals, Point3d{5, 0, 25})
	c.Assert(overlap.MaxPoint, Equals, Point3d{9, 5, 29})

	far := Extents{MinPoint: Point3d{50, 50, 50}, MaxPoint: Point3d{60, 60, 60}}
	c.Assert(ext.Intersect(far).Empty(), Equals, true)

	c.Assert(NewExtentsFromSize(Point3d{0, 4, 4}).Empty(), Equals, true)
}

func (s *DataSuite) TestExtentsAround(c *C) {
	ext := NewExtentsAround(Point3d{5, 0, -3}, 2)
	c.Assert(ext.MinPoint, Equals, Point3d{3, -2, -5})
	c.Assert(ext.MaxPoint, Equals, Point3d{7, 2, -1})

	ext = NewExtentsAround(Point3d{2147483647, -2147483648, 0}, 2147483647)
	c.Assert(ext.MinPoint, Equals, Point3d{0, -2147483648, -2147483647})
	c.Assert(ext.MaxPoint, Equals, Point3d{2147483647, -1, 2147483647})
	c.Assert(ext.Empty(), Equals, false)
}
