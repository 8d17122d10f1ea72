/*
	Package config loads tomoprep settings from a TOML file.  Every setting has a
	default, so a run without a configuration file reproduces the standard
	particle merge and training setup.
*/
package config

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/janelia-flyem/tomoprep/labels"
	"github.com/janelia-flyem/tomoprep/tomo"
	"github.com/janelia-flyem/tomoprep/train"
)

const (
	// DefaultBase is where datasets are found if no base is configured.
	DefaultBase = "./data"

	// DefaultAnnotations is the directory under the base holding one directory per dataset.
	DefaultAnnotations = "annotations"

	// DefaultOutput is the name, without extension, of the merged volume written per dataset.
	DefaultOutput = "merged_point_annotations"
)

// MergeConfig locates the datasets and names the merged output.
type MergeConfig struct {
	Base        string
	Annotations string
	Output      string
}

// Config is the parsed TOML configuration.
type Config struct {
	Merge   MergeConfig
	Labels  labels.Table `toml:"label"`
	Logging tomo.LogConfig
	Train   train.Config

	// location of the TOML file or "" for built-in defaults.
	location string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Merge: MergeConfig{
			Base:        DefaultBase,
			Annotations: DefaultAnnotations,
			Output:      DefaultOutput,
		},
		Labels: append(labels.Table(nil), labels.DefaultTable...),
		Train:  train.DefaultConfig(),
	}
}

// LoadConfig loads configuration from a TOML file.  Settings missing from the
// file keep their defaults.  An empty filename returns the defaults.
func LoadConfig(filename string) (*Config, error) {
	c := Default()
	if filename == "" {
		return c, c.Validate()
	}
	// Decode label classes into an empty table so the file replaces rather than
	// patches the default classes.
	c.Labels = nil
	md, err := toml.DecodeFile(filename, c)
	if err != nil {
		return nil, fmt.Errorf("could not decode TOML config %q: %v", filename, err)
	}
	if !md.IsDefined("label") {
		c.Labels = append(labels.Table(nil), labels.DefaultTable...)
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		tomo.Warningf("Ignoring unknown settings in %q: %v\n", filename, undecoded)
	}
	c.location = filename
	if err := c.convertPathsToAbsolute(filename); err != nil {
		return nil, fmt.Errorf("could not convert relative paths to absolute paths in TOML config: %v", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("bad configuration in %q: %v", filename, err)
	}
	tomo.Debugf("tomlConfig: %v\n", *c)
	return c, nil
}

// Location returns the TOML file the configuration was loaded from, if any.
func (c *Config) Location() string {
	return c.location
}

// Some settings in the TOML can be given as relative paths.
// This function converts them in-place to absolute paths,
// assuming the given paths were relative to the TOML file's own directory.
func (c *Config) convertPathsToAbsolute(configPath string) error {
	var err error

	configDir := filepath.Dir(configPath)

	// [merge].base
	if c.Merge.Base, err = tomo.ConvertToAbsolute(c.Merge.Base, configDir); err != nil {
		return fmt.Errorf("error converting merge base to absolute path")
	}

	// [logging].logfile
	if c.Logging.Logfile, err = tomo.ConvertToAbsolute(c.Logging.Logfile, configDir); err != nil {
		return fmt.Errorf("error converting logfile setting to absolute path")
	}

	// [train] glob patterns and checkpoint directory
	if c.Train.Train.GlobPattern, err = tomo.ConvertToAbsolute(c.Train.Train.GlobPattern, configDir); err != nil {
		return fmt.Errorf("error converting training glob pattern to absolute path")
	}
	if c.Train.Val.GlobPattern, err = tomo.ConvertToAbsolute(c.Train.Val.GlobPattern, configDir); err != nil {
		return fmt.Errorf("error converting validation glob pattern to absolute path")
	}
	if c.Train.Checkpoint.Dir, err = tomo.ConvertToAbsolute(c.Train.Checkpoint.Dir, configDir); err != nil {
		return fmt.Errorf("error converting checkpoint dir to absolute path")
	}
	return nil
}

// Validate checks settings needed for merging.  Training settings are checked
// when a training manifest is built.
func (c *Config) Validate() error {
	if c.Merge.Base == "" {
		return fmt.Errorf("no merge base given")
	}
	if c.Merge.Output == "" {
		return fmt.Errorf("no merge output name given")
	}
	return c.Labels.Validate()
}
