package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read, e.g. ENRICHER_EXECUTOR_MODE.
const EnvPrefix = "ENRICHER"

// flagKeys binds command line flags to configuration keys.
var flagKeys = map[string]string{
	"operations":  "operations",
	"mode":        "executor.mode",
	"batch-size":  "executor.batch_size",
	"max-depth":   "executor.max_depth",
	"parallelism": "executor.parallelism",
	"groups":      "executor.groups",
	"log-level":   "log.level",
	"log-file":    "log.file",
}

// Loader reads the configuration and can watch its file.
type Loader struct {
	v    *viper.Viper
	path string
}

// NewLoader creates a loader reading path, which may be empty, and the flags
// of fs named in flagKeys, which may be nil.
func NewLoader(path string, fs *pflag.FlagSet) (*Loader, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, Default())

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}

		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	return &Loader{v: v, path: path}, nil
}

// Load decodes and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	var cfg Config

	err := l.v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Watch reloads the configuration when its file changes and passes the
// result to onChange. It does nothing without a file.
func (l *Loader) Watch(onChange func(*Config, error)) {
	if l.path == "" {
		return
	}

	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		onChange(l.Load())
	})
	l.v.WatchConfig()
}

// Load reads the configuration from path and fs.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	l, err := NewLoader(path, fs)
	if err != nil {
		return nil, err
	}

	return l.Load()
}

// setDefaults registers every scalar key of cfg so that environment
// variables can override keys absent from the file.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("operations", cfg.Operations)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.max_size", cfg.Log.MaxSize)
	v.SetDefault("log.max_backups", cfg.Log.MaxBackups)
	v.SetDefault("log.max_age", cfg.Log.MaxAge)
	v.SetDefault("log.compress", cfg.Log.Compress)
	v.SetDefault("log.dev", cfg.Log.Dev)

	v.SetDefault("executor.mode", cfg.Executor.Mode)
	v.SetDefault("executor.batch_size", cfg.Executor.BatchSize)
	v.SetDefault("executor.max_depth", cfg.Executor.MaxDepth)
	v.SetDefault("executor.parallelism", cfg.Executor.Parallelism)
	v.SetDefault("executor.slow_threshold", cfg.Executor.SlowThreshold)
	v.SetDefault("executor.groups", cfg.Executor.Groups)

	v.SetDefault("cache.default_ttl", cfg.Cache.DefaultTTL)

	v.SetDefault("containers.mysql.dsn", "")
	v.SetDefault("containers.mongo.uri", "")
	v.SetDefault("containers.mongo.database", "")
}

// errorList collects validation failures.
type errorList []error

func (l *errorList) add(format string, args ...any) {
	*l = append(*l, fmt.Errorf(format, args...))
}

func (l errorList) err() error {
	return errors.Join(l...)
}
