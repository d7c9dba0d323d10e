// Package logging wraps charmbracelet/log behind package-level helpers.
// The TUI owns the terminal, so the default sink is a dated file under the
// data directory. Before Init everything is discarded.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Retention is how many days of log files Init keeps.
const Retention = 7

const (
	filePrefix = "stockroom-"
	fileSuffix = ".log"
	dayLayout  = "2006-01-02"
)

var (
	mu   sync.RWMutex
	std  = discard()
	file *os.File
)

func discard() *log.Logger { return log.New(io.Discard) }

func current() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return std
}

// Dir returns the log directory under dataDir.
func Dir(dataDir string) string { return filepath.Join(dataDir, "logs") }

// FileName is the log file written on day.
func FileName(day time.Time) string {
	return filePrefix + day.Format(dayLayout) + fileSuffix
}

// Init appends to today's file under Dir(dataDir) and removes files older
// than Retention days.
func Init(dataDir, level string) error {
	dir := Dir(dataDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	now := time.Now()
	f, err := os.OpenFile(filepath.Join(dir, FileName(now)), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	mu.Lock()
	if file != nil {
		file.Close()
	}
	file = f
	mu.Unlock()

	InitWriter(f, level)
	removed := prune(dir, now)
	Info("stockroom started", "pid", os.Getpid(), "level", level, "pruned", removed)
	return nil
}

// InitWriter logs to w at level. An unknown level means info.
func InitWriter(w io.Writer, level string) {
	lvl, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           lvl,
	})
	mu.Lock()
	std = l
	mu.Unlock()
}

// prune deletes dated log files older than Retention days and returns how
// many it removed. Files it cannot parse are left alone.
func prune(dir string, now time.Time) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	cutoff := now.AddDate(0, 0, -Retention)
	removed := 0
	for _, e := range entries {
		name := e.Name()
		day, ok := strings.CutPrefix(name, filePrefix)
		if !ok || e.IsDir() {
			continue
		}
		day, ok = strings.CutSuffix(day, fileSuffix)
		if !ok {
			continue
		}
		t, err := time.ParseInLocation(dayLayout, day, now.Location())
		if err != nil || !t.Before(cutoff) {
			continue
		}
		if os.Remove(filepath.Join(dir, name)) == nil {
			removed++
		}
	}
	return removed
}

// Close flushes a final line, closes the file and goes back to discarding.
func Close() {
	Info("stockroom shutting down")
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
		file = nil
	}
	std = discard()
}

func Info(msg string, keyvals ...any)  { current().Info(msg, keyvals...) }
func Debug(msg string, keyvals ...any) { current().Debug(msg, keyvals...) }
func Warn(msg string, keyvals ...any)  { current().Warn(msg, keyvals...) }
func Error(msg string, keyvals ...any) { current().Error(msg, keyvals...) }

// WithPrefix returns a child logger tagged with prefix, e.g. "api".
func WithPrefix(prefix string) *log.Logger {
	return current().WithPrefix(prefix)
}
