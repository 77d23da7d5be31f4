package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/logutils"
)

// Levels are the log levels the daemon is able to filter on. The ordering
// here matters; levels to the left are suppressed first.
var Levels = []logutils.LogLevel{"DEBUG", "INFO", "WARN", "ERR"}

var (
	filter *logutils.LevelFilter
	once   sync.Once
)

// setup installs the level filter in front of the standard logger. The filter
// defaults to INFO until SetLevel is called with the configured level.
func setup() {
	filter = &logutils.LevelFilter{
		Levels:   Levels,
		MinLevel: logutils.LogLevel("INFO"),
		Writer:   os.Stderr,
	}
	log.SetOutput(filter)
	log.SetFlags(log.LstdFlags)
}

// SetLevel sets the minimum level at which the daemon logs. Unknown levels
// fall back to INFO.
func SetLevel(level string) {
	once.Do(setup)

	l := logutils.LogLevel(strings.ToUpper(level))
	for _, valid := range Levels {
		if l == valid {
			filter.SetMinLevel(l)
			return
		}
	}
	filter.SetMinLevel(logutils.LogLevel("INFO"))
}

// Debug logs at the DEBUG level.
func Debug(format string, v ...interface{}) {
	once.Do(setup)
	log.Printf(fmt.Sprintf("[DEBUG] %s", format), v...)
}

// Info logs at the INFO level.
func Info(format string, v ...interface{}) {
	once.Do(setup)
	log.Printf(fmt.Sprintf("[INFO] %s", format), v...)
}

// Warning logs at the WARN level.
func Warning(format string, v ...interface{}) {
	once.Do(setup)
	log.Printf(fmt.Sprintf("[WARN] %s", format), v...)
}

// Error logs at the ERR level.
func Error(format string, v ...interface{}) {
	once.Do(setup)
	log.Printf(fmt.Sprintf("[ERR] %s", format), v...)
}
