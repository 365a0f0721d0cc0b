package logger

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultLevel  = "info"
	defaultFormat = "json"
)

var (
	rootMu sync.RWMutex
	root   *zap.Logger
)

// Logger is a named sugared logger. It satisfies the printf and key/value
// logging interfaces used by the HTTP middlewares.
type Logger struct {
	*zap.SugaredLogger
}

// Root returns the process-wide logger. Until Configure runs it logs JSON at
// info level.
func Root() *zap.Logger {
	rootMu.RLock()
	l := root
	rootMu.RUnlock()
	if l != nil {
		return l
	}

	rootMu.Lock()
	defer rootMu.Unlock()
	if root == nil {
		built, err := build(defaultLevel, defaultFormat)
		if err != nil {
			built = zap.NewNop()
		}
		root = built
	}
	return root
}

// Configure rebuilds the process-wide logger with the given level (debug,
// info, warn, error) and format (json or console). Loggers obtained before
// keep their old configuration.
func Configure(level, format string) error {
	if _, err := zapcore.ParseLevel(strings.TrimSpace(level)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console":
	default:
		return fmt.Errorf("log format %q: want json or console", format)
	}
	built, err := build(level, format)
	if err != nil {
		return err
	}
	SetRoot(built)
	return nil
}

// SetRoot replaces the process-wide logger. Tests use it with zaptest or
// observer cores.
func SetRoot(l *zap.Logger) {
	rootMu.Lock()
	defer rootMu.Unlock()
	root = l
}

func Named(name string) (*Logger, error) {
	return &Logger{SugaredLogger: Root().Named(name).Sugar()}, nil
}

func MustNamed(name string) *Logger {
	l, err := Named(name)
	if err != nil {
		panic(err)
	}
	return l
}

func (l *Logger) Unwrap() *zap.SugaredLogger {
	return l.SugaredLogger
}

// Reflect builds a field that is serialized with reflection.
func (l *Logger) Reflect(key string, value any) zap.Field {
	return zap.Reflect(key, value)
}

func build(level, format string) (*zap.Logger, error) {
	atom := zap.NewAtomicLevel()
	if err := atom.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil || level == "" {
		_ = atom.UnmarshalText([]byte(defaultLevel))
	}

	encoderCfg := zapcore.EncoderConfig{
		MessageKey:    "message",
		TimeKey:       "timestamp",
		LevelKey:      "severity",
		NameKey:       "logger",
		CallerKey:     "caller",
		StacktraceKey: "stacktrace",
		EncodeTime:    zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}

	encoding := "json"
	if strings.EqualFold(strings.TrimSpace(format), "console") {
		encoding = "console"
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	cfg := zap.Config{
		Level:             atom,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
	}
	return cfg.Build()
}
