package logger

import (
	"sync"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	// globalLogger holds the singleton logger instance.
	globalLogger *Logger
	once         sync.Once
)

// Init returns a singleton logger configured with the provided level and an
// optional rotating log file (empty path means stdout only). The first call
// initializes the logger; subsequent calls ignore the arguments and return
// the already initialized instance.
func Init(level, filePath string) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(level, filePath)
	})
	return globalLogger
}

// Get returns the singleton logger, initializing it with defaults when Init
// has not been called yet.
func Get() *Logger {
	return Init(InfoLevel, "")
}
