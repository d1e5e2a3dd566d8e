// Package logs builds the zap logger used across the engine.
//
// Console output is human readable; when a file is configured a second JSON
// core writes to a lumberjack-rotated file.
package logs

import (
	"errors"
	"os"
	"strings"
	"sync/atomic"

	"github.com/davecgh/go-spew/spew"
	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configures logging.
type Config struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
	Dev        bool   `mapstructure:"dev"`
}

// DefaultConfig returns info-level console logging.
func DefaultConfig() Config {
	return Config{Level: "info", MaxSize: 100}
}

var (
	global atomic.Pointer[zap.Logger]
	level  atomic.Pointer[zap.AtomicLevel]
)

func init() {
	global.Store(zap.NewNop())
}

// New builds a logger named appName.
func New(appName string, cfg Config) *zap.Logger {
	l, _ := build(appName, cfg)
	return l
}

func build(appName string, cfg Config) (*zap.Logger, zap.AtomicLevel) {
	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		lvl = zapcore.InfoLevel
	}

	level := zap.NewAtomicLevelAt(lvl)

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	consoleCfg := encoderCfg
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level)

	if cfg.File != "" {
		fileCfg := encoderCfg
		fileCfg.EncodeLevel = zapcore.CapitalLevelEncoder

		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    max(1, cfg.MaxSize),
			MaxBackups: max(0, cfg.MaxBackups),
			MaxAge:     max(0, cfg.MaxAge),
			Compress:   cfg.Compress,
		}

		// colored console, plain JSON file
		core = zapcore.NewTee(core, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(file), level))
	}

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Dev {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.WarnLevel))
	}

	return zap.New(core, opts...).Named(appName), level
}

// Init builds a logger and installs it as the process default.
func Init(appName string, cfg Config) *zap.Logger {
	l, lvl := build(appName, cfg)
	SetDefault(l)
	level.Store(&lvl)

	return l
}

// SetLevel changes the level of the logger installed by Init.
func SetLevel(s string) error {
	lvl := level.Load()
	if lvl == nil {
		return errors.New("logs: no logger installed by Init")
	}

	return lvl.UnmarshalText([]byte(strings.ToLower(s)))
}

// SetDefault replaces the process default logger. nil installs a no-op logger.
func SetDefault(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}

	if old := global.Swap(l); old != nil {
		_ = old.Sync()
	}
}

// L returns the process default logger.
func L() *zap.Logger {
	return global.Load()
}

// OrDefault returns l, or the process default when l is nil.
func OrDefault(l *zap.Logger) *zap.Logger {
	if l != nil {
		return l
	}

	return L()
}

var dumper = spew.ConfigState{
	Indent:                  " ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
	MaxDepth:                3,
}

// Dump renders v for debug fields.
func Dump(key string, v any) zap.Field {
	return zap.String(key, strings.TrimSpace(dumper.Sdump(v)))
}
