// Package logging provides the leveled, optionally colored logger shared by
// the daemon and its rename tasks. Each line goes to stdout (stderr for
// ERROR) and, when configured, to an append-only log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/backmassage/clipnamer/internal/config"
	"github.com/backmassage/clipnamer/internal/term"
)

// sink is shared by a Logger and every prefixed child derived from it.
type sink struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	file   *os.File
}

// Logger writes timestamped lines with a level tag. Children created by
// [Logger.With] share the parent's outputs and add a prefix.
type Logger struct {
	s      *sink
	prefix string
}

// NewLogger configures colors from cfg and opens cfg.LogFile when set.
// Call Close when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)
	l := New(os.Stdout, os.Stderr)
	if cfg.LogFile == "" {
		return l, nil
	}
	path := config.ExpandTilde(cfg.LogFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	l.s.file = f
	return l, nil
}

// New returns a Logger writing to out (errOut for ERROR lines) without a
// file sink. Used by tests and by commands that never log to a file.
func New(out, errOut io.Writer) *Logger {
	return &Logger{s: &sink{out: out, errOut: errOut}}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger { return New(io.Discard, io.Discard) }

// With returns a child logger whose lines are prefixed with "[prefix]".
func (l *Logger) With(prefix string) *Logger {
	p := "[" + prefix + "] "
	return &Logger{s: l.s, prefix: l.prefix + p}
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if l.s.file == nil {
		return nil
	}
	err := l.s.file.Close()
	l.s.file = nil
	return err
}

func (l *Logger) line(level, color, text string) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	text = l.prefix + text
	plain := ts + " [" + level + "] " + text + "\n"

	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	out := l.s.out
	if level == "ERROR" {
		out = l.s.errOut
	}
	if color != "" {
		_, _ = io.WriteString(out, ts+" "+color+"["+level+"]"+term.NC+" "+text+"\n")
	} else {
		_, _ = io.WriteString(out, plain)
	}
	if l.s.file != nil {
		_, _ = io.WriteString(l.s.file, plain)
	}
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...any) {
	l.line("INFO", term.Blue, fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...any) {
	l.line("SUCCESS", term.Green, fmt.Sprintf(format, args...))
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...any) {
	l.line("WARN", term.Yellow, fmt.Sprintf(format, args...))
}

// Error logs at ERROR level (red) to the error stream.
func (l *Logger) Error(format string, args ...any) {
	l.line("ERROR", term.Red, fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level (cyan) only when enabled. Callers pass the debug
// flag from the config snapshot they are working with.
func (l *Logger) Debug(enabled bool, format string, args ...any) {
	if !enabled {
		return
	}
	l.line("DEBUG", term.Cyan, fmt.Sprintf(format, args...))
}
