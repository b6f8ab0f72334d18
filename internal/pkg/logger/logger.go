// Package logger holds the seeder's process-wide zap logger.
//
// Entries go to stderr so stdout carries only the run summary. Every entry
// carries a run_id, which tells apart the output of seeders started against
// the same store at the same time.
//
// Import Path: kv-shepherd.io/adminseed/internal/pkg/logger
package logger

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global *zap.Logger
	level  zap.AtomicLevel
	runID  string
	once   sync.Once
)

// Init builds the global logger once per process. Later calls are no-ops
// that return the first call's error.
//
// level is a zap level name; format is "json" (default) or "console".
func Init(levelName, format string) error {
	var err error
	once.Do(func() {
		global, err = build(levelName, format)
	})
	return err
}

func build(levelName, format string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", levelName, err)
	}

	var cfg zap.Config
	switch format {
	case "", "json":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown log format %q (want json or console)", format)
	}
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}

	l, err := cfg.Build(zap.Fields(zap.String("run_id", id.String())))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	level, runID = lvl, id.String()
	return l, nil
}

// GetLevel reports the level the global logger was built with.
func GetLevel() zapcore.Level {
	return level.Level()
}

// RunID is the identifier stamped on every entry of this process.
func RunID() string {
	return runID
}

// L returns the global logger. Panics if Init has not succeeded.
func L() *zap.Logger {
	if global == nil {
		panic("logger.Init() must be called before logger.L()")
	}
	return global
}

// Info logs at InfoLevel on the global logger.
func Info(msg string, fields ...zap.Field) { L().Info(msg, fields...) }

// Error logs at ErrorLevel on the global logger.
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }

// Named returns a child logger for one component ("store", "seed").
func Named(component string) *zap.Logger {
	return L().Named(component)
}

// Sync flushes buffered entries. Safe before Init.
func Sync() error {
	if global == nil {
		return nil
	}
	return global.Sync()
}
