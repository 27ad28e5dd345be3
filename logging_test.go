package reactor

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Contains(t, LogLevel(99).String(), "UNKNOWN")
}

func TestNoOpLogger(t *testing.T) {
	l := NewNoOpLogger()
	assert.False(t, l.IsEnabled(LevelError))
	l.Log(LogEntry{Level: LevelError, Message: "should be discarded"})
}

func TestWriterLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(LevelWarn, &buf)

	assert.False(t, l.IsEnabled(LevelDebug))
	assert.True(t, l.IsEnabled(LevelWarn))
	assert.True(t, l.IsEnabled(LevelError))

	l.Log(LogEntry{Level: LevelDebug, Category: "reactor", Message: "ignored"})
	assert.Empty(t, buf.String())

	l.Log(LogEntry{Level: LevelError, Category: "tcp", Message: "connect failed", SourceFD: 7})
	out := buf.String()
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "tcp")
	assert.Contains(t, out, "connect failed")
	assert.Contains(t, out, "fd=7")
}

func TestWriterLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(LevelError, &buf)
	l.SetLevel(LevelDebug)
	assert.True(t, l.IsEnabled(LevelDebug))
}

func TestSetLogger_GlobalDefault(t *testing.T) {
	var buf bytes.Buffer
	custom := NewWriterLogger(LevelDebug, &buf)
	SetLogger(custom)
	t.Cleanup(func() { SetLogger(nil) })

	assert.Same(t, custom, getGlobalLogger())
}

func TestGetGlobalLogger_DefaultsToNoOp(t *testing.T) {
	SetLogger(nil)
	_, isNoOp := getGlobalLogger().(*NoOpLogger)
	assert.True(t, isNoOp)
}
