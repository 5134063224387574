package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Metadata MetadataConfig `mapstructure:"metadata"`
	Query    QueryConfig    `mapstructure:"query"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig: для sqlite URL означает папку с <schema>.db,
// пустой URL означает хранилище в памяти.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // "postgres" | "sqlite"
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type MetadataConfig struct {
	Source  string `mapstructure:"source"`  // "hq" | "catalog"
	Catalog string `mapstructure:"catalog"` // YAML-файл или папка
}

type QueryConfig struct {
	DefaultLimit     int           `mapstructure:"default_limit"`
	MaxLimit         int           `mapstructure:"max_limit"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
}

type CacheConfig struct {
	Driver    string        `mapstructure:"driver"` // "none" | "memory" | "redis"
	TTL       time.Duration `mapstructure:"ttl"`
	RedisAddr string        `mapstructure:"redis_addr"`
	RedisDB   int           `mapstructure:"redis_db"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" | "json"
}

const EnvPrefix = "SURVEYGRAPH"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("metadata.source", "hq")
	v.SetDefault("metadata.catalog", "")

	v.SetDefault("query.default_limit", 10)
	v.SetDefault("query.max_limit", 1000)
	v.SetDefault("query.statement_timeout", 30*time.Second)

	v.SetDefault("cache.driver", "none")
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// FlagKeys: флаг командной строки -> ключ конфигурации.
var FlagKeys = map[string]string{
	"port":       "server.port",
	"driver":     "database.driver",
	"db":         "database.url",
	"source":     "metadata.source",
	"catalog":    "metadata.catalog",
	"cache":      "cache.driver",
	"redis-addr": "cache.redis_addr",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// Load собирает конфигурацию: значения по умолчанию, затем файл
// (path или ./surveygraph.yaml, если есть), затем SURVEYGRAPH_* из
// окружения, затем явно заданные флаги.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("surveygraph")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate: все ошибки сразу, одной строкой.
func (c *Config) Validate() error {
	var errs []string
	add := func(format string, args ...any) { errs = append(errs, fmt.Sprintf(format, args...)) }

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		add("server.port: %d is out of range", c.Server.Port)
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" {
			add("database.url is required for the postgres driver")
		}
	case "sqlite":
	default:
		add("database.driver: unknown driver %q (allowed: postgres|sqlite)", c.Database.Driver)
	}
	switch c.Metadata.Source {
	case "hq":
		if c.Database.Driver != "postgres" {
			add("metadata.source hq needs the postgres driver")
		}
	case "catalog":
		if c.Metadata.Catalog == "" {
			add("metadata.catalog is required for the catalog source")
		}
	default:
		add("metadata.source: unknown source %q (allowed: hq|catalog)", c.Metadata.Source)
	}
	if c.Query.DefaultLimit <= 0 {
		add("query.default_limit must be positive")
	}
	if c.Query.MaxLimit <= 0 {
		add("query.max_limit must be positive")
	}
	if c.Query.DefaultLimit > c.Query.MaxLimit {
		add("query.default_limit %d exceeds query.max_limit %d", c.Query.DefaultLimit, c.Query.MaxLimit)
	}
	switch c.Cache.Driver {
	case "none", "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			add("cache.redis_addr is required for the redis cache")
		}
	default:
		add("cache.driver: unknown driver %q (allowed: none|memory|redis)", c.Cache.Driver)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		add("log.format: unknown format %q (allowed: console|json)", c.Log.Format)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Server.Port) }
