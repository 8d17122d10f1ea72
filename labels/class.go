package labels

import (
	"fmt"
	"strings"
)

// Class is a named label with the value and sphere radius used when painting
// its point annotations.
type Class struct {
	Name   string `toml:"name" json:"name"`
	Value  int64  `toml:"value" json:"value"`
	Radius int32  `toml:"radius" json:"radius"`
}

func (cl Class) String() string {
	return fmt.Sprintf("%s (value %d, radius %d)", cl.Name, cl.Value, cl.Radius)
}

// Table is an ordered list of label classes.  Order is the painting order, so
// where spheres overlap the later class wins.
type Table []Class

// DefaultTable holds the particle classes annotated in the tomography datasets.
var DefaultTable = Table{
	{Name: "ribosome", Value: 20, Radius: 6},
	{Name: "fatty_acid_synthase", Value: 21, Radius: 8},
}

// Validate checks for empty or duplicate class names and negative radii.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("label table has no classes")
	}
	seen := make(map[string]bool, len(t))
	for i, cl := range t {
		if cl.Name == "" {
			return fmt.Errorf("label class %d has no name", i)
		}
		if seen[cl.Name] {
			return fmt.Errorf("label class %q is listed more than once", cl.Name)
		}
		seen[cl.Name] = true
		if cl.Radius < 0 {
			return fmt.Errorf("label class %q has negative radius %d", cl.Name, cl.Radius)
		}
	}
	return nil
}

// Match returns the first class, in table order, whose name occurs in the
// given file name.
func (t Table) Match(filename string) (Class, bool) {
	for _, cl := range t {
		if strings.Contains(filename, cl.Name) {
			return cl, true
		}
	}
	return Class{}, false
}

// Names returns the class names in table order.
func (t Table) Names() []string {
	names := make([]string, len(t))
	for i, cl := range t {
		names[i] = cl.Name
	}
	return names
}
