package annotation

import "github.com/santhosh-tekuri/jsonschema/v5"

// recordSchemaJSON describes one line of a point annotation file.  Only the
// location is required; other fields are allowed and ignored.
const recordSchemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title": "Point annotation record",
	"type": "object",
	"required": ["location"],
	"properties": {
		"location": {
			"type": "object",
			"required": ["x", "y", "z"],
			"properties": {
				"x": {"type": "number"},
				"y": {"type": "number"},
				"z": {"type": "number"}
			}
		}
	}
}`

var recordSchema = jsonschema.MustCompileString("point_annotation.json", recordSchemaJSON)
