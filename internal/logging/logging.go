// Package logging sets up the file-backed logger. The TUI owns the
// terminal, so log output always goes to a file under the data directory.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// FileLogger bundles a logger with its file handle.
type FileLogger struct {
	Logger *log.Logger
	Path   string
	close  func() error
}

// Nop returns a logger that discards everything.
func Nop() *log.Logger {
	return log.New(io.Discard)
}

// NewFileLogger opens a log file under dataDir. When debug is false the
// returned logger discards everything and no file is created.
func NewFileLogger(dataDir string, debug bool) (*FileLogger, error) {
	if !debug {
		return &FileLogger{Logger: Nop(), close: func() error { return nil }}, nil
	}

	logDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(logDir, "datadeck.log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := log.NewWithOptions(file, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
		ReportCaller:    true,
	})

	return &FileLogger{Logger: logger, Path: path, close: file.Close}, nil
}

// Close releases the log file.
func (f *FileLogger) Close() error {
	return f.close()
}
