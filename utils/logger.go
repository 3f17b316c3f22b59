package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// Logger provides leveled, printf-style logging for every component.
// Messages are conventionally prefixed with the component in brackets,
// e.g. "[dvf] reference for %s".
type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
	debug *log.Logger

	debugEnabled bool
}

// NewLogger creates a Logger writing to stdout/stderr. Debug lines are only
// emitted when LOG_LEVEL=debug.
func NewLogger() *Logger {
	l := NewLoggerTo(os.Stdout, os.Stderr)
	l.debugEnabled = strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug")
	return l
}

// NewLoggerTo creates a Logger with explicit writers, mostly for tests.
func NewLoggerTo(out, errOut io.Writer) *Logger {
	return &Logger{
		info:  log.New(out, "", 0),
		warn:  log.New(out, "", 0),
		err:   log.New(errOut, "", 0),
		debug: log.New(out, "", 0),
	}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return NewLoggerTo(io.Discard, io.Discard)
}

// SetDebug toggles debug output.
func (l *Logger) SetDebug(enabled bool) {
	l.debugEnabled = enabled
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) Info(format string, args ...any) {
	l.info.Print(fmt.Sprintf("[%s] \033[32mINFO\033[0m  ", l.timestamp()) + fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...any) {
	l.warn.Print(fmt.Sprintf("[%s] \033[33mWARN\033[0m  ", l.timestamp()) + fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...any) {
	l.err.Print(fmt.Sprintf("[%s] \033[31mERROR\033[0m ", l.timestamp()) + fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...any) {
	if !l.debugEnabled {
		return
	}
	l.debug.Print(fmt.Sprintf("[%s] \033[36mDEBUG\033[0m ", l.timestamp()) + fmt.Sprintf(format, args...))
}
