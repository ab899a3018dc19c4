// Package log is the process-wide structured logger. Messages take a message
// string followed by key/value pairs, e.g. log.Info("Probe started", "url", u).
package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"github.com/paularlott/logger"
	logzerolog "github.com/paularlott/logger/zerolog"
	"golang.org/x/term"
)

var (
	mu            sync.RWMutex
	output        io.Writer = os.Stderr
	level                   = "info"
	format                  = "console"
	defaultLogger           = newLogger()
)

// Configure sets the level (trace, debug, info, warn, error) and the format
// (console, json). Unknown levels fall back to info, unknown formats to console.
func Configure(logLevel, logFormat string) {
	mu.Lock()
	defer mu.Unlock()

	level = logLevel
	format = strings.ToLower(logFormat)
	defaultLogger = newLogger()
}

// SetOutput redirects log output, keeping the current level and format.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	output = w
	defaultLogger = newLogger()
}

// SetLogger replaces the logger outright until the next Configure or SetOutput.
func SetLogger(l logger.Logger) {
	mu.Lock()
	defer mu.Unlock()

	defaultLogger = l
}

// GetLogger returns the current logger
func GetLogger() logger.Logger {
	mu.RLock()
	defer mu.RUnlock()

	return defaultLogger
}

func Trace(msg string, keysAndValues ...any) { GetLogger().Trace(msg, keysAndValues...) }
func Debug(msg string, keysAndValues ...any) { GetLogger().Debug(msg, keysAndValues...) }
func Info(msg string, keysAndValues ...any)  { GetLogger().Info(msg, keysAndValues...) }
func Warn(msg string, keysAndValues ...any)  { GetLogger().Warn(msg, keysAndValues...) }
func Error(msg string, keysAndValues ...any) { GetLogger().Error(msg, keysAndValues...) }

func With(key string, value any) logger.Logger {
	return GetLogger().With(key, value)
}

func WithError(err error) logger.Logger {
	return GetLogger().WithError(err)
}

// newLogger must be called with mu held, or during package init.
func newLogger() logger.Logger {
	w := output
	logFormat := "console"
	if format == "json" {
		logFormat = "json"
	} else if !isTerminal(w) {
		w = plainWriter{w: w}
	}

	return logzerolog.New(logzerolog.Config{
		Level:  level,
		Format: logFormat,
		Writer: w,
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// plainWriter drops colour escapes from console output that is redirected to a
// file or pipe.
type plainWriter struct {
	w io.Writer
}

func (p plainWriter) Write(b []byte) (int, error) {
	if _, err := io.WriteString(p.w, ansi.Strip(string(b))); err != nil {
		return 0, err
	}
	return len(b), nil
}
