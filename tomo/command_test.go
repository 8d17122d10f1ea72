package tomo

import (
	"path/filepath"

	. "github.com/janelia-flyem/go/gocheck"
)

func (s *DataSuite) TestCommand(c *C) {
	cmd := Command{"MERGE", "base=/data", "extra1", "output=merged", "extra2", "extra3"}
	c.Assert(cmd.Name(), Equals, "merge")
	c.Assert(cmd.String(), Equals, "MERGE base=/data extra1 output=merged extra2 extra3")

	value, found := cmd.Parameter(KeyBase)
	c.Assert(found, Equals, true)
	c.Assert(value, Equals, "/data")
	_, found = cmd.Parameter("nothere")
	c.Assert(found, Equals, false)

	var first, second string
	overflow := cmd.CommandArgs(&first, &second)
	c.Assert(first, Equals, "extra1")
	c.Assert(second, Equals, "extra2")
	c.Assert(overflow, DeepEquals, []string{"extra3"})

	var empty string
	Command{"about"}.CommandArgs(&empty)
	c.Assert(empty, Equals, "")
}

func (s *DataSuite) TestConvertToAbsolute(c *C) {
	abs, err := ConvertToAbsolute("data", "/etc/tomoprep")
	c.Assert(err, IsNil)
	c.Assert(abs, Equals, filepath.Join("/etc/tomoprep", "data"))

	abs, err = ConvertToAbsolute("/already/abs", "/etc")
	c.Assert(err, IsNil)
	c.Assert(abs, Equals, "/already/abs")

	abs, err = ConvertToAbsolute("gs://bucket/prefix", "/etc")
	c.Assert(err, IsNil)
	c.Assert(abs, Equals, "gs://bucket/prefix")

	c.Assert(IsURL("mem://"), Equals, true)
	c.Assert(IsURL("./data"), Equals, false)
	c.Assert(IsURL("a b://x"), Equals, false)
}

func (s *DataSuite) TestVersion(c *C) {
	c.Assert(Version().String(), Equals, versionString)
}
