// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/competitor-engine/pkg/types"
)

func TestNewFormatsLine(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(types.LogConfig{Level: "debug"}, &buf)
	require.NoError(t, err)

	l.WithField("stage", "pricing").WithField("company", "Acme").Warn("stage failed")

	line := buf.String()
	assert.Regexp(t, regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] \[WARN\] \[logger_test\.go:\d+\] stage failed company=Acme stage=pricing\n$`), line)
}

func TestNewLevel(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"nonsense", logrus.InfoLevel},
		{"", logrus.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, err := New(types.LogConfig{Level: tt.level}, &bytes.Buffer{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, l.GetLevel())
		})
	}
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "engine.log")
	var buf bytes.Buffer
	l, err := New(types.LogConfig{Level: "info", File: path}, &buf)
	require.NoError(t, err)

	l.Info("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO]")
	assert.Contains(t, string(data), "hello")
	assert.Equal(t, buf.String(), string(data))
}
