// Package debug is taskdeck's opt-in trace log. It stays silent unless the
// --debug flag (or TD_DEBUG) turns it on, then writes to
// ~/.taskdeck/debug.log, truncated on each launch.
//
// Callers prefix messages with their subsystem ("tree:", "views:",
// "watcher:", "app:", "main:") so a session transcript reads as one
// interleaved timeline across the hierarchy, the view partitions, and the
// file watcher.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// LogFileName is the name of the debug log file.
	LogFileName = "debug.log"
	// LogDirName is the directory under the user home holding the log,
	// shared with the default database location.
	LogDirName = ".taskdeck"
)

// sink is the active log destination. A nil file means logging is either
// disabled or discarded.
type sink struct {
	enabled bool
	logger  *log.Logger
	file    *os.File
}

var (
	mu  sync.RWMutex
	cur sink

	// getLogPath is a function variable to allow overriding in tests.
	getLogPath = defaultGetLogPath
)

// Init wires up the trace log. With enable false every Log call is a no-op.
// With enable true the log file is truncated and stamped with a session
// header, so one file always holds exactly one run.
func Init(enable bool) error {
	mu.Lock()
	defer mu.Unlock()

	if !enable {
		cur = sink{logger: log.New(io.Discard, "", 0)}
		return nil
	}

	logPath, err := getLogPath()
	if err != nil {
		return fmt.Errorf("determine log path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	cur = sink{
		enabled: true,
		logger:  log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds),
		file:    f,
	}
	cur.logger.Printf("taskdeck session started %s pid=%d", time.Now().Format(time.RFC3339), os.Getpid())
	return nil
}

// Close releases the log file. Safe to call when logging is disabled.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if cur.file != nil {
		_ = cur.file.Close()
		cur.file = nil
	}
}

// Log writes a trace message in the manner of fmt.Print.
func Log(v ...any) {
	mu.RLock()
	defer mu.RUnlock()

	if !cur.enabled || cur.logger == nil {
		return
	}
	cur.logger.Print(v...)
}

// Logf writes a formatted trace message in the manner of fmt.Printf.
func Logf(format string, v ...any) {
	mu.RLock()
	defer mu.RUnlock()

	if !cur.enabled || cur.logger == nil {
		return
	}
	cur.logger.Printf(format, v...)
}

// Enabled reports whether trace logging is on for this session.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return cur.enabled
}

func defaultGetLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, LogDirName, LogFileName), nil
}

// GetLogPath returns the path the trace log would be written to.
func GetLogPath() (string, error) {
	return getLogPath()
}

// resetForTest clears package state between tests.
func resetForTest() {
	mu.Lock()
	defer mu.Unlock()
	if cur.file != nil {
		_ = cur.file.Close()
	}
	cur = sink{}
}
