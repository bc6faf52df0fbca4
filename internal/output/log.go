// Package output provides terminal output utilities.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// logger is the package logger. All log output goes to stderr so that
// command results on stdout stay machine-readable.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: false,
	ReportCaller:    false,
})

// stdout is where Print/Println write. Replaced in tests.
var stdout io.Writer = os.Stdout

// LogConfig controls logger setup.
type LogConfig struct {
	// Verbose enables debug level, caller reporting and forces timestamps on.
	Verbose bool

	// Timestamps overrides timestamp display. nil means the default (on).
	Timestamps *bool
}

// SetupLogging configures the package logger.
func SetupLogging(cfg LogConfig) {
	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}

	timestamps := true
	if cfg.Timestamps != nil {
		timestamps = *cfg.Timestamps
	}
	if cfg.Verbose {
		timestamps = true
	}

	logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: timestamps,
		ReportCaller:    cfg.Verbose,
		TimeFormat:      "15:04:05",
	})
}

// SetLogWriter redirects log output, e.g. to a buffer in tests.
func SetLogWriter(w io.Writer) {
	logger.SetOutput(w)
}

// Logger returns the package logger.
func Logger() *log.Logger {
	return logger
}

// EnvLogger returns a sub-logger prefixed with a short environment identity,
// e.g. "env:0123abcd". The prefix is styled as a noun.
func EnvLogger(id string) *log.Logger {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	l := logger.With()
	l.SetPrefix(StyleDim.Render("env:") + StyleNoun.Render(short))
	return l
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...interface{}) {
	logger.Debug(msg, keyvals...)
}

// Info logs an info message.
func Info(msg string, keyvals ...interface{}) {
	logger.Info(msg, keyvals...)
}

// Warn logs a warning message.
func Warn(msg string, keyvals ...interface{}) {
	logger.Warn(msg, keyvals...)
}

// Error logs an error message.
func Error(msg string, keyvals ...interface{}) {
	logger.Error(msg, keyvals...)
}

// Details prints multi-line detail text to stderr without log decoration.
func Details(text string) {
	fmt.Fprintln(os.Stderr, text)
}

// Prompt writes an interactive prompt to stderr without a trailing newline.
func Prompt(text string) {
	fmt.Fprint(os.Stderr, text)
}

// Print prints a message to stdout without any formatting.
func Print(msg string) {
	_, _ = io.WriteString(stdout, msg)
}

// Println prints a message to stdout with a newline.
func Println(msg string) {
	_, _ = io.WriteString(stdout, msg+"\n")
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}
