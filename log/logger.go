package log

import (
	"io"
	"os"
	"sync"

	"github.com/op/go-logging"
)

type Level logging.Level

// The levels that can be passed to the SetLevel function.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

// The logger format
var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

// Log files do not get terminal color codes.
var fileFormat = logging.MustStringFormatter(
	`[%{time:2006-01-02 15:04:05.000}] [%{module}] [%{level}] %{message}`,
)

var (
	mu sync.Mutex

	// The internal leveled logger backend
	leveledBackend logging.LeveledBackend

	// The active sinks.
	sinkBackend logging.Backend
	fileBackend logging.Backend
	logFile     *os.File

	currentLevel = logging.NOTICE
)

// The logger interface
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// Create a new named logger.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// Override the backend output sink.
func SetSink(sink io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	backend := logging.NewLogBackend(sink, "", 0)
	sinkBackend = logging.NewBackendFormatter(backend, format)
	rebuildBackend()
}

// Append log output to the given file in addition to the current sink.
// The file is created if it does not exist. Passing an empty path closes
// any previously opened log file.
func SetLogFile(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
		fileBackend = nil
	}

	if path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		logFile = f
		fileBackend = logging.NewBackendFormatter(logging.NewLogBackend(f, "", 0), fileFormat)
	}

	rebuildBackend()
	return nil
}

// Set logger verbosity.
func SetLevel(level Level) {
	var loggerLevel logging.Level

	switch level {
	case Debug:
		loggerLevel = logging.DEBUG
	case Info:
		loggerLevel = logging.INFO
	case Notice:
		loggerLevel = logging.NOTICE
	case Warning:
		loggerLevel = logging.WARNING
	case Error:
		loggerLevel = logging.ERROR
	}

	mu.Lock()
	defer mu.Unlock()
	currentLevel = loggerLevel
	leveledBackend.SetLevel(loggerLevel, "")
}

// Set logger verbosity using a numeric level in the [0, 3] range where 0
// only reports errors and 3 enables debug output. Out of range values are
// clamped.
func SetVerbosity(verbosity int) {
	switch {
	case verbosity <= 0:
		SetLevel(Error)
	case verbosity == 1:
		SetLevel(Warning)
	case verbosity == 2:
		SetLevel(Info)
	default:
		SetLevel(Debug)
	}
}

// Combine the active sinks into a single leveled backend. Callers must
// hold mu.
func rebuildBackend() {
	var backend logging.Backend = sinkBackend
	if fileBackend != nil {
		backend = logging.MultiLogger(sinkBackend, fileBackend)
	}
	leveledBackend = logging.AddModuleLevel(backend)
	leveledBackend.SetLevel(currentLevel, "")
	logging.SetBackend(leveledBackend)
}

func init() {
	SetSink(os.Stdout)
	SetLevel(Notice)
}
