// Package audit keeps the append-only record of every cleanup decision.
package audit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fenilsonani/stalesweep/internal/logging"
	"github.com/fenilsonani/stalesweep/internal/summary"
)

// TimestampLayout is the timestamp format used in log lines and messages
const TimestampLayout = "2006-01-02 15:04:05"

// ErrorRecorder receives sink failures. *summary.Aggregator implements it.
type ErrorRecorder interface {
	RecordError(category summary.Category, target, msg string) bool
}

// LogEntry is one recorded event
type LogEntry struct {
	Timestamp time.Time
	Message   string
}

// String formats the entry as written to the log file
func (e LogEntry) String() string {
	return fmt.Sprintf("[%s] %s", e.Timestamp.Format(TimestampLayout), e.Message)
}

// Options configures a file-backed Logger
type Options struct {
	Dir        string
	File       string
	MaxSizeMB  int
	MaxBackups int
	Logger     *zap.Logger
	Errors     ErrorRecorder
	Now        func() time.Time
}

// Logger appends timestamped entries to a file sink, memory and zap
type Logger struct {
	mu         sync.Mutex
	path       string
	sink       io.WriteCloser
	hasSink    bool
	sinkFailed bool
	entries    []LogEntry
	logger     *zap.Logger
	errs       ErrorRecorder
	now        func() time.Time
}

// Open prepares the audit log under opts.Dir. It never fails: when the
// directory cannot be created the failure is reported to opts.Errors and
// the logger records to memory and zap only.
func Open(opts Options) *Logger {
	l := newLogger(opts.Logger, opts.Errors, opts.Now)

	file := opts.File
	if file == "" {
		file = "cleanup.log"
	}
	l.path = filepath.Join(opts.Dir, file)

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		l.sinkFailed = true
		l.recordError(summary.CategoryLogDir, opts.Dir,
			fmt.Sprintf("Unable to create log directory '%s': %v", opts.Dir, err))
		return l
	}

	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}

	l.sink = &lumberjack.Logger{
		Filename:   l.path,
		MaxSize:    maxSize,
		MaxBackups: opts.MaxBackups,
		LocalTime:  true,
		Compress:   false,
	}
	l.hasSink = true

	return l
}

// Observer returns a logger without a file sink, used for dry-runs
func Observer(logger *zap.Logger, now func() time.Time) *Logger {
	return newLogger(logger, nil, now)
}

func newLogger(logger *zap.Logger, errs ErrorRecorder, now func() time.Time) *Logger {
	if now == nil {
		now = time.Now
	}
	return &Logger{
		logger:  logging.OrNop(logger),
		errs:    errs,
		now:     now,
		entries: []LogEntry{},
	}
}

// Record appends msg with the current timestamp
func (l *Logger) Record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := LogEntry{Timestamp: l.now(), Message: msg}
	l.entries = append(l.entries, entry)
	l.logger.Debug(msg, zap.String("component", "audit"))

	if l.sink == nil {
		return
	}

	if _, err := io.WriteString(l.sink, entry.String()+"\n"); err != nil {
		l.sinkFailed = true
		l.recordError(summary.CategoryLogWrite, l.path,
			fmt.Sprintf("Unable to write audit log '%s': %v", l.path, err))
	}
}

func (l *Logger) recordError(category summary.Category, target, msg string) {
	if l.errs != nil && !l.errs.RecordError(category, target, msg) {
		return
	}
	l.logger.Warn(msg)
}

// Entries returns a copy of everything recorded so far
func (l *Logger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Path returns the log file path, or "" when there is no healthy sink
func (l *Logger) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.hasSink || l.sinkFailed {
		return ""
	}
	return l.path
}

// Close flushes and closes the file sink
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sink == nil {
		return nil
	}
	err := l.sink.Close()
	l.sink = nil
	return err
}

// IdentifiedMessage is logged for every candidate before it is gated
func IdentifiedMessage(path string, lastWrite time.Time) string {
	return fmt.Sprintf("Identified for deletion: %s (LastWrite: %s)", path, lastWrite.Format(TimestampLayout))
}

// DeletedMessage is logged after a successful removal
func DeletedMessage(path string) string {
	return "DELETED: " + path
}

// SkippedMessage is logged when the gate declines a candidate
func SkippedMessage(path, reason string) string {
	return fmt.Sprintf("SKIPPED (%s): %s", reason, path)
}

// DeleteErrorMessage is logged when removal fails
func DeleteErrorMessage(path, cause string) string {
	return fmt.Sprintf("ERROR deleting '%s': %s", path, cause)
}
