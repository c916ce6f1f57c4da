package logger

import (
	"log"
	"os"
)

var std = log.New(os.Stdout, "", log.LstdFlags)

// Init initializes the plain boot logger. Called before config is loaded,
// so it cannot depend on anything configurable.
func Init() {
	std.SetOutput(os.Stdout)
}

// Info logs a printf-style informational message (boot phase)
func Info(format string, v ...interface{}) {
	std.Printf("[INFO] "+format, v...)
}

// Error logs a printf-style error message (boot phase)
func Error(format string, v ...interface{}) {
	std.Printf("[ERROR] "+format, v...)
}
