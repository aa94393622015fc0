// Package logger provides leveled console logging for the heritage CLI.
// Debug output and section headers appear only in verbose mode; info,
// warnings and errors are always written.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

var (
	debugPrefix = color.New(color.FgHiBlack).SprintFunc()
	infoPrefix  = color.New(color.FgCyan).SprintFunc()
	warnPrefix  = color.New(color.FgYellow).SprintFunc()
	errorPrefix = color.New(color.FgRed, color.Bold).SprintFunc()
	sectionLine = color.New(color.FgMagenta).SprintFunc()
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func write(prefix, format string, args ...any) {
	fmt.Fprintf(output, prefix+" "+format+"\n", args...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		write(debugPrefix("[DEBUG]"), format, args...)
	}
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n%s\n", sectionLine("=== "+name+" ==="))
	}
}

func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	write(infoPrefix("[INFO]"), format, args...)
}

func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	write(warnPrefix("[WARN]"), format, args...)
}

func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	write(errorPrefix("[ERROR]"), format, args...)
}
