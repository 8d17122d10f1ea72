package tomo

import (
	"encoding/json"

	. "github.com/janelia-flyem/go/gocheck"
)

func (s *DataSuite) TestDataTypeRange(c *C) {
	c.Assert(T_int8.CanHold(127), Equals, true)
	c.Assert(T_int8.CanHold(128), Equals, false)
	c.Assert(T_int8.CanHold(-128), Equals, true)
	c.Assert(T_uint16.CanHold(-1), Equals, false)
	c.Assert(T_uint16.CanHold(65535), Equals, true)
	c.Assert(T_float32.CanHold(1<<24), Equals, true)
	c.Assert(T_float32.CanHold(1<<24+1), Equals, false)
	c.Assert(DataType(99).CanHold(0), Equals, false)

	c.Assert(DataTypeBytes(T_int16), Equals, int32(2))
	c.Assert(DataTypeBytes(T_float32), Equals, int32(4))
	c.Assert(T_uint8.Valid(), Equals, true)
	c.Assert(DataType(99).Valid(), Equals, false)
}

func (s *DataSuite) TestDataTypeJSON(c *C) {
	b, err := json.Marshal(T_int16)
	c.Assert(err, IsNil)
	c.Assert(string(b), Equals, `"int16"`)

	var t DataType
	c.Assert(json.Unmarshal([]byte(`"float32"`), &t), IsNil)
	c.Assert(t, Equals, T_float32)
	c.Assert(json.Unmarshal([]byte(`"complex64"`), &t), NotNil)
}
