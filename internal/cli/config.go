package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/kindredtree/kindred/pkg/cache"
)

// Config holds user-level CLI configuration, loaded from
// ~/.config/kindred/config.toml and overridable via environment variables.
type Config struct {
	// URL is the default dataset location when a command gets no argument.
	URL string `toml:"url"`

	// Detailed includes life dates in rendered labels by default.
	Detailed bool `toml:"detailed"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	// Backend is one of "file" (default), "redis", "mongo", or "none".
	Backend string `toml:"backend"`

	// Prefix namespaces every cache key, for shared redis/mongo deployments.
	Prefix string `toml:"prefix"`

	// Dir overrides the file cache directory.
	Dir string `toml:"dir"`

	// RedisURL configures the redis backend (redis://host:port/db).
	RedisURL string `toml:"redis_url"`

	// MongoURI and friends configure the mongo backend.
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// LoadConfig reads the config file at path (or the default location when
// path is empty) and applies environment overrides. A missing file is not an
// error; the zero config works out of the box.
func LoadConfig(path string) (Config, error) {
	// .env files are a convenience for redis/mongo credentials in dev.
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		dir, err := configDir()
		if err == nil {
			path = filepath.Join(dir, "config.toml")
		}
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	if v := os.Getenv("KINDRED_URL"); v != "" {
		cfg.URL = v
	}
	if v := os.Getenv("KINDRED_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("KINDRED_CACHE_PREFIX"); v != "" {
		cfg.Cache.Prefix = v
	}
	if v := os.Getenv("KINDRED_REDIS_URL"); v != "" {
		cfg.Cache.RedisURL = v
	}
	if v := os.Getenv("KINDRED_MONGO_URI"); v != "" {
		cfg.Cache.MongoURI = v
	}
	if v := os.Getenv("KINDRED_ADDR"); v != "" {
		cfg.Server.Addr = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Cache.Backend == "" {
		c.Cache.Backend = "file"
	}
	if c.Cache.MongoDatabase == "" {
		c.Cache.MongoDatabase = appName
	}
	if c.Cache.MongoCollection == "" {
		c.Cache.MongoCollection = "cache"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

// newCache builds the configured cache backend. noCache forces the null
// backend regardless of configuration.
func (c *Config) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.Cache.Backend == "none" {
		return cache.NewNullCache(), nil
	}

	switch c.Cache.Backend {
	case "redis":
		return cache.NewRedisCache(ctx, c.Cache.RedisURL)
	case "mongo":
		return cache.NewMongoCache(ctx, c.Cache.MongoURI, c.Cache.MongoDatabase, c.Cache.MongoCollection)
	default:
		dir := c.Cache.Dir
		if dir == "" {
			var err error
			dir, err = cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	}
}

// configDir returns the config directory using XDG standard (~/.config/kindred/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
