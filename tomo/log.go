package tomo

import "time"

// ModeFlag is a log severity.  Messages below the current mode are dropped.
type ModeFlag uint

const (
	DebugMode ModeFlag = iota
	InfoMode
	WarningMode
	ErrorMode
	CriticalMode
	SilentMode
)

var modeNames = [...]string{
	DebugMode:    "DEBUG",
	InfoMode:     "INFO",
	WarningMode:  "WARNING",
	ErrorMode:    "ERROR",
	CriticalMode: "CRITICAL",
	SilentMode:   "SILENT",
}

func (m ModeFlag) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "UNKNOWN"
}

// mode is the minimum severity that will be logged.
var mode = InfoMode

// Logger writes formatted messages at a given severity.
type Logger interface {
	// Logf formats its arguments analogous to fmt.Printf and records the text as a
	// log message at the given severity.
	Logf(severity ModeFlag, format string, args ...interface{})

	// Shutdown makes sure logs are closed.
	Shutdown()
}

// SetLogMode sets the severity required for a log message to be printed.
// For example, SetLogMode(tomo.WarningMode) will log any calls using
// Warningf, Errorf, or Criticalf.  To turn off all logging, use SilentMode.
func SetLogMode(newMode ModeFlag) {
	mode = newMode
}

// LogMode returns the current severity threshold.
func LogMode() ModeFlag {
	return mode
}

func logf(severity ModeFlag, format string, args ...interface{}) {
	if severity >= mode && severity < SilentMode {
		logger.Logf(severity, format, args...)
	}
}

func Debugf(format string, args ...interface{}) { logf(DebugMode, format, args...) }

func Infof(format string, args ...interface{}) { logf(InfoMode, format, args...) }

func Warningf(format string, args ...interface{}) { logf(WarningMode, format, args...) }

func Errorf(format string, args ...interface{}) { logf(ErrorMode, format, args...) }

func Criticalf(format string, args ...interface{}) { logf(CriticalMode, format, args...) }

// Shutdown closes any log file in use.
func Shutdown() {
	logger.Shutdown()
}

// TimeLog adds elapsed time to logging.
// Example:
//     mylog := NewTimeLog()
//     ...
//     mylog.Infof("merged %d datasets", n)  // Appends elapsed time since NewTimeLog().
type TimeLog struct {
	start time.Time
}

func NewTimeLog() TimeLog {
	return TimeLog{time.Now()}
}

// Elapsed returns the time since the TimeLog was created.
func (t TimeLog) Elapsed() time.Duration {
	return time.Since(t.start)
}

func (t TimeLog) logf(severity ModeFlag, format string, args ...interface{}) {
	if severity >= mode {
		logf(severity, format+": %s\n", append(args, t.Elapsed())...)
	}
}

func (t TimeLog) Debugf(format string, args ...interface{}) { t.logf(DebugMode, format, args...) }

func (t TimeLog) Infof(format string, args ...interface{}) { t.logf(InfoMode, format, args...) }

func (t TimeLog) Warningf(format string, args ...interface{}) { t.logf(WarningMode, format, args...) }

func (t TimeLog) Errorf(format string, args ...interface{}) { t.logf(ErrorMode, format, args...) }
