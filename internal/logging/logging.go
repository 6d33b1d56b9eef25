// Package logging is a thin structured-logging layer over zap that keeps
// the service-wide calling convention: one LoggerV2 per component and
// key/value Fields per call.
package logging

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields carries structured context for a single log line.
type Fields map[string]interface{}

var (
	baseMu sync.RWMutex
	base   *zap.Logger
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	base = newZap()
}

func newZap() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: falling back to no-op logger: %v\n", err)
		return zap.NewNop()
	}
	return logger
}

// SetLevel changes the level of every logger created by this package.
// Unknown names leave the level unchanged.
func SetLevel(name string) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return
	}
	level.SetLevel(l)
}

// SetBase replaces the underlying zap logger. Tests use zaptest or
// observer cores through it.
func SetBase(logger *zap.Logger) {
	baseMu.Lock()
	defer baseMu.Unlock()
	base = logger
}

func current() *zap.Logger {
	baseMu.RLock()
	defer baseMu.RUnlock()
	return base
}

// Sync flushes buffered entries.
func Sync() {
	_ = current().Sync()
}

// LoggerV2 is a named component logger.
type LoggerV2 struct {
	name string
}

// NewLoggerV2 creates a logger tagged with the component name.
func NewLoggerV2(name string) *LoggerV2 {
	return &LoggerV2{name: name}
}

func (l *LoggerV2) zap() *zap.Logger {
	return current().With(zap.String("component", l.name))
}

func (l *LoggerV2) Debug(msg string, fields ...Fields) {
	l.zap().Debug(msg, toZap(fields)...)
}

func (l *LoggerV2) Info(msg string, fields ...Fields) {
	l.zap().Info(msg, toZap(fields)...)
}

func (l *LoggerV2) Warn(msg string, fields ...Fields) {
	l.zap().Warn(msg, toZap(fields)...)
}

func (l *LoggerV2) Error(msg string, fields ...Fields) {
	l.zap().Error(msg, toZap(fields)...)
}

// Fatal logs and exits the process.
func (l *LoggerV2) Fatal(msg string, fields ...Fields) {
	l.zap().Fatal(msg, toZap(fields)...)
}

// Info logs through the root logger.
func Info(msg string, fields ...Fields) {
	current().Info(msg, toZap(fields)...)
}

// Infof logs a formatted message without structured fields.
// TODO(TEAM-PLATFORM): Migrate remaining startup lines to LoggerV2.
func Infof(format string, args ...interface{}) {
	current().Sugar().Infof(format, args...)
}

func toZap(fields []Fields) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields[0]))
	for _, f := range fields {
		keys := make([]string, 0, len(f))
		for k := range f {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err, ok := f[k].(error); ok {
				out = append(out, zap.NamedError(k, err))
				continue
			}
			out = append(out, zap.Any(k, f[k]))
		}
	}
	return out
}
