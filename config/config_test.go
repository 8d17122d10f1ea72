package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/janelia-flyem/go/gocheck"

	"github.com/janelia-flyem/tomoprep/labels"
	"github.com/janelia-flyem/tomoprep/tomo"
)

func Test(t *testing.T) { TestingT(t) }

type ConfigSuite struct {
	dir string
}

var _ = Suite(&ConfigSuite{})

func (s *ConfigSuite) SetUpSuite(c *C) {
	tomo.SetLogMode(tomo.ErrorMode)
}

func (s *ConfigSuite) SetUpTest(c *C) {
	s.dir = c.MkDir()
}

func (s *ConfigSuite) writeTOML(c *C, contents string) string {
	filename := filepath.Join(s.dir, "tomoprep.toml")
	c.Assert(os.WriteFile(filename, []byte(contents), 0644), IsNil)
	return filename
}

func (s *ConfigSuite) TestDefaults(c *C) {
	cfg, err := LoadConfig("")
	c.Assert(err, IsNil)
	c.Assert(cfg.Merge.Base, Equals, DefaultBase)
	c.Assert(cfg.Merge.Annotations, Equals, DefaultAnnotations)
	c.Assert(cfg.Merge.Output, Equals, DefaultOutput)
	c.Assert(cfg.Labels, DeepEquals, labels.DefaultTable)
	c.Assert(cfg.Train.Seed, Equals, int64(42))
	c.Assert(cfg.Location(), Equals, "")

	// Changing a loaded table must not touch the defaults.
	cfg.Labels[0].Value = 99
	c.Assert(labels.DefaultTable[0].Value, Equals, int64(20))
}

func (s *ConfigSuite) TestOverrides(c *C) {
	filename := s.writeTOML(c, `
[merge]
base = "data"
output = "painted"

[[label]]
name = "proteasome"
value = 3
radius = 4

[logging]
logfile = "logs/tomoprep.log"
max_log_size = 10
max_log_age = 2

[train]
seed = 7
batch_size = 2
patch_shape = [64, 64, 64]
pad_size = [64, 64, 64]
patch_stride = [32, 32, 32]

[train.train]
glob_pattern = "h5/*.h5"
`)
	cfg, err := LoadConfig(filename)
	c.Assert(err, IsNil)
	c.Assert(cfg.Location(), Equals, filename)
	c.Assert(cfg.Merge.Base, Equals, filepath.Join(s.dir, "data"))
	c.Assert(cfg.Merge.Annotations, Equals, DefaultAnnotations)
	c.Assert(cfg.Merge.Output, Equals, "painted")
	c.Assert(cfg.Labels, DeepEquals, labels.Table{{Name: "proteasome", Value: 3, Radius: 4}})
	c.Assert(cfg.Logging.Logfile, Equals, filepath.Join(s.dir, "logs", "tomoprep.log"))
	c.Assert(cfg.Logging.MaxSize, Equals, 10)
	c.Assert(cfg.Logging.MaxAge, Equals, 2)

	c.Assert(cfg.Train.Seed, Equals, int64(7))
	c.Assert(cfg.Train.BatchSize, Equals, 2)
	c.Assert(cfg.Train.PatchShape, Equals, tomo.Point3d{64, 64, 64})
	c.Assert(cfg.Train.Train.GlobPattern, Equals, filepath.Join(s.dir, "h5", "*.h5"))
	c.Assert(cfg.Train.Train.SlackAcceptance, Equals, 0.01)
	c.Assert(cfg.Train.Val.GlobPattern, Equals, "")
	c.Assert(cfg.Train.Checkpoint.Dir, Equals, filepath.Join(s.dir, "points_checkpoints"))
	c.Assert(cfg.Train.Validate(), IsNil)
}

func (s *ConfigSuite) TestMissingSectionsKeepDefaults(c *C) {
	filename := s.writeTOML(c, `
[logging]
max_log_size = 5
`)
	cfg, err := LoadConfig(filename)
	c.Assert(err, IsNil)
	c.Assert(cfg.Labels, DeepEquals, labels.DefaultTable)
	c.Assert(cfg.Merge.Base, Equals, filepath.Join(s.dir, "data"))
	c.Assert(cfg.Logging.Logfile, Equals, "")
	c.Assert(cfg.Logging.MaxSize, Equals, 5)
}

func (s *ConfigSuite) TestURLBase(c *C) {
	filename := s.writeTOML(c, `
[merge]
base = "gs://tomo-bucket/data"
`)
	cfg, err := LoadConfig(filename)
	c.Assert(err, IsNil)
	c.Assert(cfg.Merge.Base, Equals, "gs://tomo-bucket/data")
}

func (s *ConfigSuite) TestBadConfigs(c *C) {
	bad := []string{
		"[merge\nbase = 1",
		"[merge]\noutput = \"\"",
		"[[label]]\nname = \"\"\nvalue = 1\nradius = 2",
		"[[label]]\nname = \"a\"\nvalue = 1\nradius = -2",
		"[[label]]\nname = \"a\"\nvalue = 1\nradius = 2\n[[label]]\nname = \"a\"\nvalue = 2\nradius = 2",
	}
	for _, contents := range bad {
		_, err := LoadConfig(s.writeTOML(c, contents))
		c.Assert(err, NotNil)
	}

	_, err := LoadConfig(filepath.Join(s.dir, "missing.toml"))
	c.Assert(err, NotNil)
}
