// Package logging provides config-driven categorized logging for musebot.
// All categories share one zap core writing to <state-dir>/logs/musebot.log;
// when debug mode is off, every category resolves to a no-op logger.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot     Category = "boot"     // Boot/initialization
	CategorySession  Category = "session"  // Session orchestration
	CategoryExtract  Category = "extract"  // Entity extraction from user text
	CategoryDialogue Category = "dialogue" // Dialogue policy decisions
	CategoryTemporal Category = "temporal" // Date/time normalization and validation
	CategoryStore    Category = "store"    // Conversation store operations
	CategoryConfig   Category = "config"   // Config load and hot reload
	CategoryFulfill  Category = "fulfill"  // Downstream fulfillment
)

// Options mirrors the relevant parts of config.LoggingConfig
// to avoid a circular import on the config package.
type Options struct {
	Dir        string          // State directory; logs land in Dir/logs
	DebugMode  bool            // When false, logging is a silent no-op
	JSONFormat bool            // Structured JSON output instead of console encoding
	Level      string          // debug/info/warn/error
	Categories map[string]bool // Per-category enablement; empty means all enabled
}

var (
	mu      sync.RWMutex
	root    = zap.NewNop()
	opts    Options
	loggers = make(map[Category]*zap.SugaredLogger)
	nop     = zap.NewNop().Sugar()
)

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

// Initialize sets up the shared log file and zap core.
// Should be called once at startup; before that, Get returns no-op loggers.
func Initialize(o Options) error {
	mu.Lock()
	defer mu.Unlock()

	opts = o
	loggers = make(map[Category]*zap.SugaredLogger)

	if !o.DebugMode {
		root = zap.NewNop()
		return nil
	}
	if o.Dir == "" {
		return fmt.Errorf("logging: state directory required")
	}

	logsDir := filepath.Join(o.Dir, "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(logsDir, "musebot.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if o.JSONFormat {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(f), parseLevel(o.Level))
	root = zap.New(core)

	boot := root.Named(string(CategoryBoot)).Sugar()
	boot.Infof("=== musebot logging initialized ===")
	boot.Infof("logs directory: %s", logsDir)
	boot.Infof("level: %s json: %v", o.Level, o.JSONFormat)
	return nil
}

// IsCategoryEnabled reports whether a category currently produces output.
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()

	if !opts.DebugMode {
		return false
	}
	if len(opts.Categories) == 0 {
		return true
	}
	enabled, ok := opts.Categories[string(category)]
	if !ok {
		return true // enabled by default if not listed
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode or the category is disabled.
func Get(category Category) *zap.SugaredLogger {
	if !IsCategoryEnabled(category) {
		return nop
	}

	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	l := root.Named(string(category)).Sugar()
	loggers[category] = l
	return l
}

// Sync flushes any buffered log output. Safe to call on a no-op logger.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = root.Sync()
}
