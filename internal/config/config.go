// Package config loads the engine configuration from a file, ENRICHER_*
// environment variables and command line flags, in increasing precedence.
package config

import (
	"time"

	"enricher/internal/cache"
	"enricher/internal/datasource"
	"enricher/internal/logs"
)

// Config is the root configuration.
type Config struct {
	Log        logs.Config      `mapstructure:"log"`
	Executor   ExecutorConfig   `mapstructure:"executor"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Containers ContainersConfig `mapstructure:"containers"`
	// Operations is the path of the YAML operation definition file.
	Operations string `mapstructure:"operations"`
}

// ExecutorConfig configures the executor.
type ExecutorConfig struct {
	// Mode is one of disordered, ordered or concurrent.
	Mode          string        `mapstructure:"mode"`
	BatchSize     int           `mapstructure:"batch_size"`
	MaxDepth      int           `mapstructure:"max_depth"`
	Parallelism   int           `mapstructure:"parallelism"`
	SlowThreshold time.Duration `mapstructure:"slow_threshold"`
	// Groups restricts execution to operations of these groups.
	Groups []string `mapstructure:"groups"`
}

// CacheConfig configures container caches.
type CacheConfig struct {
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
	// Namespaces lists the cached containers.
	Namespaces []CachedNamespace `mapstructure:"namespaces"`
}

// CachedNamespace decorates one container with a cache.
type CachedNamespace struct {
	Namespace        string `mapstructure:"namespace"`
	cache.Definition `mapstructure:",squash"`
}

// ContainersConfig declares the containers to register.
type ContainersConfig struct {
	Static []StaticContainer `mapstructure:"static"`
	MySQL  MySQLContainers   `mapstructure:"mysql"`
	Mongo  MongoContainers   `mapstructure:"mongo"`
}

// StaticContainer serves the objects of a JSON file holding an object keyed
// by lookup key.
type StaticContainer struct {
	Namespace string `mapstructure:"namespace"`
	File      string `mapstructure:"file"`
	// KeyType converts the file's string keys, e.g. "int".
	KeyType string `mapstructure:"key_type"`
}

// MySQLContainers declares table containers sharing one connection.
type MySQLContainers struct {
	datasource.MySQLConfig `mapstructure:",squash"`
	Tables                 []datasource.TableDef `mapstructure:"tables"`
}

// MongoContainers declares collection containers sharing one client.
type MongoContainers struct {
	datasource.MongoConfig `mapstructure:",squash"`
	Collections            []datasource.CollectionDef `mapstructure:"collections"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Log: logs.DefaultConfig(),
		Executor: ExecutorConfig{
			Mode:        "disordered",
			Parallelism: 4,
		},
		Cache: CacheConfig{
			DefaultTTL: 5 * time.Minute,
		},
	}
}
