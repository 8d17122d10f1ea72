/*
   This file handles the layout of a voxel's value within a slice of bytes.
*/

package tomo

import (
	"encoding/json"
	"fmt"
	"math"
)

// DataType is a unique ID for each type of voxel data, e.g., an int8 or a float32.
type DataType uint8

const (
	T_uint8 DataType = iota
	T_int8
	T_uint16
	T_int16
	T_uint32
	T_int32
	T_float32
)

var typeBytes = map[DataType]int32{
	T_uint8:   1,
	T_int8:    1,
	T_uint16:  2,
	T_int16:   2,
	T_uint32:  4,
	T_int32:   4,
	T_float32: 4,
}

var typeNames = map[DataType]string{
	T_uint8:   "uint8",
	T_int8:    "int8",
	T_uint16:  "uint16",
	T_int16:   "int16",
	T_uint32:  "uint32",
	T_int32:   "int32",
	T_float32: "float32",
}

// DataTypeBytes returns the # of bytes for a given type.  Unknown types return 0.
func DataTypeBytes(t DataType) int32 {
	return typeBytes[t]
}

func (t DataType) String() string {
	name, found := typeNames[t]
	if !found {
		return fmt.Sprintf("unknown data type %d", uint8(t))
	}
	return name
}

// Valid returns true if the data type is one of the known voxel types.
func (t DataType) Valid() bool {
	_, found := typeBytes[t]
	return found
}

// Range returns the smallest and largest integer that can be stored exactly
// by the data type.  For float32 this is the range of consecutive integers.
func (t DataType) Range() (min, max int64) {
	switch t {
	case T_uint8:
		return 0, math.MaxUint8
	case T_int8:
		return math.MinInt8, math.MaxInt8
	case T_uint16:
		return 0, math.MaxUint16
	case T_int16:
		return math.MinInt16, math.MaxInt16
	case T_uint32:
		return 0, math.MaxUint32
	case T_int32:
		return math.MinInt32, math.MaxInt32
	case T_float32:
		return -(1 << 24), 1 << 24
	}
	return 0, -1
}

// CanHold returns true if the integer value can be stored by the data type without loss.
func (t DataType) CanHold(value int64) bool {
	min, max := t.Range()
	return value >= min && value <= max
}

// MarshalJSON implements the json.Marshaler interface.
func (t DataType) MarshalJSON() ([]byte, error) {
	name, found := typeNames[t]
	if !found {
		return nil, fmt.Errorf("cannot marshal unknown data type %d", uint8(t))
	}
	return json.Marshal(name)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *DataType) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	for dt, dtName := range typeNames {
		if dtName == name {
			*t = dt
			return nil
		}
	}
	return fmt.Errorf("unknown data type %q", name)
}
