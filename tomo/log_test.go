package tomo

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"

	. "github.com/janelia-flyem/go/gocheck"
)

func captureLog(c *C, logMode ModeFlag, f func()) string {
	var buf bytes.Buffer
	oldMode, oldFlags := LogMode(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	SetLogMode(logMode)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(oldFlags)
		SetLogMode(oldMode)
	}()
	f()
	return buf.String()
}

func (s *DataSuite) TestLogModes(c *C) {
	out := captureLog(c, WarningMode, func() {
		Debugf("debug %d\n", 1)
		Infof("info %d\n", 2)
		Warningf("warning %d\n", 3)
		Errorf("error %d\n", 4)
		Criticalf("critical %d\n", 5)
	})
	c.Assert(out, Equals, " WARNING warning 3\n   ERROR error 4\nCRITICAL critical 5\n")

	out = captureLog(c, SilentMode, func() {
		Criticalf("critical\n")
	})
	c.Assert(out, Equals, "")

	out = captureLog(c, DebugMode, func() {
		Debugf("painted %s\n", "ribosome")
	})
	c.Assert(out, Equals, "   DEBUG painted ribosome\n")
}

func (s *DataSuite) TestTimeLog(c *C) {
	out := captureLog(c, InfoMode, func() {
		timedLog := NewTimeLog()
		timedLog.Debugf("hidden")
		timedLog.Infof("merged %d datasets", 3)
	})
	c.Assert(strings.HasPrefix(out, "    INFO merged 3 datasets: "), Equals, true)
	c.Assert(strings.Count(out, "\n"), Equals, 1)
	c.Assert(ModeFlag(42).String(), Equals, "UNKNOWN")
}

func (s *DataSuite) TestLogFile(c *C) {
	filename := filepath.Join(c.MkDir(), "tomoprep.log")
	oldMode, oldLogger := LogMode(), logger
	defer func() {
		log.SetOutput(os.Stderr)
		logger = oldLogger
		SetLogMode(oldMode)
	}()
	SetLogMode(InfoMode)
	config := LogConfig{Logfile: filename, MaxSize: 1, MaxAge: 1}
	config.SetLogger()
	Infof("written to file\n")
	Shutdown()

	b, err := os.ReadFile(filename)
	c.Assert(err, IsNil)
	c.Assert(strings.Contains(string(b), "    INFO written to file"), Equals, true)
}
