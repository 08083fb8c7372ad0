// Package logging provides config-driven categorized file-based logging for filelens.
// Logs are written to the configured log directory with separate files per category.
// Logging is controlled by debug_mode - when false, no logs are written and the
// terminal stays untouched so the TUI owns stdout.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup, config, shutdown
	CategorySource    Category = "source"    // Directory listing and file reads
	CategoryNavigator Category = "navigator" // Expand/collapse, stale result drops
	CategoryAPI       Category = "api"       // Language model calls
	CategoryUI        Category = "ui"        // Root controller transitions, picker
	CategoryWatch     Category = "watch"     // Filesystem watcher
)

// Options mirrors config.LoggingConfig to keep this package free of config imports.
type Options struct {
	DebugMode  bool
	Level      string // debug, info, warn, error
	JSONFormat bool
	Dir        string
	Categories map[string]bool
}

// Logger writes one category to its own file. A Logger with no backing
// sugared logger is a no-op.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex

	opts   Options
	level  = zapcore.InfoLevel
	optsMu sync.RWMutex
)

// Initialize applies logging options. Should be called once at startup.
// With debug mode off this is a silent no-op.
func Initialize(o Options) error {
	if o.DebugMode && o.Dir == "" {
		return fmt.Errorf("log directory required when debug mode is enabled")
	}
	CloseAll()

	optsMu.Lock()
	opts = o
	level = parseLevel(o.Level)
	optsMu.Unlock()

	if !o.DebugMode {
		return nil
	}
	if err := os.MkdirAll(o.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== filelens logging initialized ===")
	boot.Info("Logs directory: %s", o.Dir)
	boot.Info("Log level: %s", level)
	if len(o.Categories) == 0 {
		boot.Info("All categories enabled (no category filter)")
	}
	return InitAudit()
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	optsMu.RLock()
	defer optsMu.RUnlock()
	return opts.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	optsMu.RLock()
	defer optsMu.RUnlock()

	if !opts.DebugMode {
		return false
	}
	if opts.Categories == nil {
		return true
	}
	enabled, exists := opts.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	optsMu.RLock()
	dir, jsonFormat, lvl := opts.Dir, opts.JSONFormat, level
	optsMu.RUnlock()

	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(dir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if jsonFormat {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(file), lvl)
	l := &Logger{
		category: category,
		file:     file,
		sugar:    zap.New(core).Named(string(category)).Sugar(),
	}
	loggers[category] = l
	return l
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Debugf(format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Errorf(format, args...)
}

// With returns a logger that attaches the key/value pairs to every entry.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	if l.sugar == nil {
		return l
	}
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// CloseAll flushes and closes all open log files (call at shutdown)
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		if l.sugar != nil {
			_ = l.sugar.Sync()
		}
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
	CloseAudit()
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// These are no-ops if the category is disabled
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// BootDebug logs debug to the boot category
func BootDebug(format string, args ...interface{}) {
	Get(CategoryBoot).Debug(format, args...)
}

// Source logs to the source category
func Source(format string, args ...interface{}) {
	Get(CategorySource).Info(format, args...)
}

// SourceDebug logs debug to the source category
func SourceDebug(format string, args ...interface{}) {
	Get(CategorySource).Debug(format, args...)
}

// Navigator logs to the navigator category
func Navigator(format string, args ...interface{}) {
	Get(CategoryNavigator).Info(format, args...)
}

// NavigatorDebug logs debug to the navigator category
func NavigatorDebug(format string, args ...interface{}) {
	Get(CategoryNavigator).Debug(format, args...)
}

// API logs to the api category
func API(format string, args ...interface{}) {
	Get(CategoryAPI).Info(format, args...)
}

// APIDebug logs debug to the api category
func APIDebug(format string, args ...interface{}) {
	Get(CategoryAPI).Debug(format, args...)
}

// UI logs to the ui category
func UI(format string, args ...interface{}) {
	Get(CategoryUI).Info(format, args...)
}

// UIDebug logs debug to the ui category
func UIDebug(format string, args ...interface{}) {
	Get(CategoryUI).Debug(format, args...)
}

// Watch logs to the watch category
func Watch(format string, args ...interface{}) {
	Get(CategoryWatch).Info(format, args...)
}

// WatchDebug logs debug to the watch category
func WatchDebug(format string, args ...interface{}) {
	Get(CategoryWatch).Debug(format, args...)
}
