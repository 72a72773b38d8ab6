// Package logging provides leveled console output for the matching engine.
// Output is key=value structured text meant for operators watching the
// process, not a machine-readable event stream.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger writes leveled, component-tagged log lines.
type Logger struct {
	mu        sync.Mutex
	output    io.Writer
	minLevel  Level
	component string
	requestID string
}

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// New creates a new Logger writing to stdout at INFO.
func New() *Logger {
	return &Logger{
		output:   os.Stdout,
		minLevel: LevelInfo,
	}
}

// WithComponent returns a new logger tagged with the given component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		output:    l.output,
		minLevel:  l.minLevel,
		component: component,
		requestID: l.requestID,
	}
}

// WithRequestID returns a new logger tagged with a request ID. Every line
// it writes carries request_id, so one analysis can be followed through
// the pipeline.
func (l *Logger) WithRequestID(id string) *Logger {
	return &Logger{
		output:    l.output,
		minLevel:  l.minLevel,
		component: l.component,
		requestID: id,
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.minLevel = level
}

// SetOutput sets the output writer (default: stdout).
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats a map of fields as key=value pairs.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	var parts []string
	for k, v := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return " " + strings.Join(parts, " ")
}

// log writes a log entry: LEVEL TIMESTAMP [component] message key=value ...
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	if levelPriority[level] < levelPriority[l.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if len(fields) > 0 && fields[0] != nil {
		fieldStr = formatFields(fields[0])
	}
	if l.requestID != "" {
		fieldStr += " request_id=" + l.requestID
	}

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write([]byte(line))
}

// --- Engine event helpers ---
// Called by the pipeline and server so the log vocabulary stays consistent.

// IndexBuilt logs a completed semantic index build.
func (l *Logger) IndexBuilt(entries int, duration time.Duration) {
	l.Info("index_built", map[string]interface{}{
		"entries":  entries,
		"duration": duration.String(),
	})
}

// IndexLoaded logs a successful index load from disk.
func (l *Logger) IndexLoaded(path string, entries int) {
	l.Info("index_loaded", map[string]interface{}{
		"path":    path,
		"entries": entries,
	})
}

// AnalyzeStart logs the start of a resume analysis.
func (l *Logger) AnalyzeStart(resumeChars, skillCount, topN int) {
	l.Info("analyze_start", map[string]interface{}{
		"resume_chars": resumeChars,
		"skills":       skillCount,
		"top_n":        topN,
	})
}

// AnalyzeComplete logs a finished analysis.
func (l *Logger) AnalyzeComplete(results int, duration time.Duration) {
	l.Info("analyze_complete", map[string]interface{}{
		"results":  results,
		"duration": duration.String(),
	})
}

// AnalyzeFailed logs a failed analysis.
func (l *Logger) AnalyzeFailed(err error, duration time.Duration) {
	l.Error("analyze_failed", map[string]interface{}{
		"error":    err.Error(),
		"duration": duration.String(),
	})
}

// SearchServed logs a keyword search request.
func (l *Logger) SearchServed(query string, hits int, duration time.Duration) {
	l.Debug("search_served", map[string]interface{}{
		"query":    query,
		"hits":     hits,
		"duration": duration.String(),
	})
}
