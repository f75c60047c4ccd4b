// Package logging writes debug logs to a per-run file so nothing ever
// interferes with the terminal UI.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger writes structured lines to a run-specific file under
// ~/.studyfocus/logs/.
type Logger struct {
	runID     string
	component string
	file      *os.File
	logger    *log.Logger
	mu        sync.Mutex
	logPath   string
	closeOnce sync.Once
}

var (
	runID     string
	runIDOnce sync.Once

	logDir   string
	initOnce sync.Once
	initErr  error
)

func getRunID() string {
	runIDOnce.Do(func() {
		runID = uuid.New().String()
	})
	return runID
}

func initLogDirectory() error {
	initOnce.Do(func() {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			initErr = fmt.Errorf("get home directory: %w", err)
			return
		}
		logDir = filepath.Join(homeDir, ".studyfocus", "logs")
		if err := os.MkdirAll(logDir, 0o750); err != nil {
			initErr = fmt.Errorf("create log directory: %w", err)
		}
	})
	return initErr
}

// New creates a logger for a component. All components of one run
// append to the same file. If the file cannot be opened the logger
// falls back to io.Discard rather than corrupting the TUI.
func New(component string) *Logger {
	if err := initLogDirectory(); err != nil {
		return discardLogger(component)
	}

	id := getRunID()
	logPath := filepath.Join(logDir, fmt.Sprintf("%s.log", id))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return discardLogger(component)
	}

	return &Logger{
		runID:     id,
		component: component,
		file:      file,
		logger:    log.New(file, "", 0),
		logPath:   logPath,
	}
}

func discardLogger(component string) *Logger {
	return &Logger{
		runID:     getRunID(),
		component: component,
		logger:    log.New(io.Discard, "", 0),
	}
}

func (l *Logger) write(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	l.logger.Printf("[%s] [%s] [%s] %s", timestamp, l.component, level, fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.write("DEBUG", format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.write("INFO", format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.write("WARN", format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.write("ERROR", format, args...) }

// LogPath returns the path of the log file; empty in fallback mode.
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}
