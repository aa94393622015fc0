package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

// capture redirects output to a buffer with colours off and restores the
// package state afterwards.
func capture(t *testing.T, verboseMode bool) *bytes.Buffer {
	t.Helper()
	noColor := color.NoColor
	color.NoColor = true

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseMode)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
		color.NoColor = noColor
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())
	SetVerbose(true)
	assert.True(t, IsVerbose())
	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	buf := capture(t, true)
	Debug("test message %s", "arg")
	assert.Equal(t, "[DEBUG] test message arg\n", buf.String())
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)
	Debug("test message")
	Section("hidden")
	assert.Zero(t, buf.Len())
}

func TestSection(t *testing.T) {
	buf := capture(t, true)
	Section("Ingestion")
	assert.Equal(t, "\n=== Ingestion ===\n", buf.String())
}

func TestInfoWarnError_AlwaysWritten(t *testing.T) {
	buf := capture(t, false)
	Info("info message %d", 42)
	Warn("warning message")
	Error("failed: %v", "boom")
	assert.Equal(t, "[INFO] info message 42\n[WARN] warning message\n[ERROR] failed: boom\n", buf.String())
}
