// Package logging holds the process-wide charmbracelet logger.
package logging

import (
	"fmt"
	"io"
	"os"

	clog "github.com/charmbracelet/log"
)

// L is the package-level logger. Callers should use the helper functions
// below unless they need structured key/value pairs.
var L = clog.NewWithOptions(os.Stderr, clog.Options{
	ReportTimestamp: true,
	Prefix:          "perflab",
})

// Setup points L at w and sets its level. An empty level means info.
func Setup(level string, w io.Writer) error {
	if level == "" {
		level = "info"
	}
	lvl, err := clog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	L.SetOutput(w)
	L.SetLevel(lvl)
	return nil
}

// OpenFile sets L up to append to path, for programs that own the terminal.
// An empty path discards all output. The returned closer is never nil.
func OpenFile(level, path string) (io.Closer, error) {
	if path == "" {
		return io.NopCloser(nil), Setup(level, io.Discard)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return io.NopCloser(nil), fmt.Errorf("open log file: %w", err)
	}
	if err := Setup(level, f); err != nil {
		_ = f.Close()
		return io.NopCloser(nil), err
	}
	return f, nil
}

// Debugf logs a debug-level formatted message.
func Debugf(format string, v ...any) {
	L.Debug(fmt.Sprintf(format, v...))
}

// Infof logs an info-level formatted message.
func Infof(format string, v ...any) {
	L.Info(fmt.Sprintf(format, v...))
}

// Warnf logs a warning-level formatted message.
func Warnf(format string, v ...any) {
	L.Warn(fmt.Sprintf(format, v...))
}

// Errorf logs an error-level formatted message.
func Errorf(format string, v ...any) {
	L.Error(fmt.Sprintf(format, v...))
}
