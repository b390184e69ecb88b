// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logger configures the logrus logger shared by the CLI and the web server.
// Lines are formatted as "[TIME] [LEVL] [file:line] message key=value ...".
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/competitor-engine/pkg/types"
)

// Log is the process-wide logger. Init replaces it.
var Log = logrus.New()

// Formatter renders entries as a single bracketed line.
type Formatter struct{}

// Format implements logrus.Formatter.
func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	var fileLine string
	if entry.HasCaller() {
		fileLine = fmt.Sprintf("%s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line)
	}

	level := strings.ToUpper(entry.Level.String())
	if len(level) > 4 {
		level = level[:4]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] [%s] %s",
		entry.Time.Format("2006-01-02 15:04:05"), level, fileLine, entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// New builds a logger writing to out and, when cfg.File is set, appending to
// that file as well. An unknown level falls back to info.
func New(cfg types.LogConfig, out io.Writer) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetReportCaller(true)
	l.SetFormatter(&Formatter{})

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	writers := []io.Writer{out}
	if cfg.File != "" {
		if dir := filepath.Dir(cfg.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating log directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file %s: %w", cfg.File, err)
		}
		writers = append(writers, f)
	}
	l.SetOutput(io.MultiWriter(writers...))

	return l, nil
}

// Init replaces Log with a logger built from cfg that writes to stderr.
func Init(cfg types.LogConfig) error {
	l, err := New(cfg, os.Stderr)
	if err != nil {
		return err
	}
	Log = l
	return nil
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
