package tomo

import (
	"fmt"
	"log"

	"github.com/natefinch/lumberjack"
)

// fileLogger writes through the standard log package, rotating a log file if one is set.
type fileLogger struct {
	file *lumberjack.Logger
}

var logger Logger = &fileLogger{}

// LogConfig sets where log messages go.  With no Logfile, messages are sent
// to the standard log output.
type LogConfig struct {
	Logfile string
	MaxSize int `toml:"max_log_size"`
	MaxAge  int `toml:"max_log_age"`
}

// SetLogger sends log messages to a rotating log file if one is configured.
func (c *LogConfig) SetLogger() {
	if c == nil || c.Logfile == "" {
		Debugf("Sending log messages to stdout since no log file specified.\n")
		return
	}
	fmt.Printf("Sending log messages to: %s\n", c.Logfile)
	l := &lumberjack.Logger{
		Filename: c.Logfile,
		MaxSize:  c.MaxSize, // megabytes
		MaxAge:   c.MaxAge,  // days
	}
	log.SetOutput(l)
	logger = &fileLogger{file: l}
}

func (fl *fileLogger) Logf(severity ModeFlag, format string, args ...interface{}) {
	log.Printf("%8s "+format, append([]interface{}{severity}, args...)...)
}

func (fl *fileLogger) Shutdown() {
	if fl.file != nil {
		log.Printf("Closing log file...\n")
		fl.file.Close()
	}
}
