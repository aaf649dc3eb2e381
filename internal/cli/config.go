package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/seatplan/internal/server"
	"github.com/matzehuels/seatplan/pkg/pipeline"
	"github.com/matzehuels/seatplan/pkg/placement"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the tool config file:
//
//	[placement]
//	formats = ["text", "svg"]
//	labels = "name"
//
//	[placement.thresholds]
//	accept = -50.0
//	candidate = 50.0
//	aggregate = 70.0
//
//	[cache]
//	backend = "redis"
//	url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
type Config struct {
	Placement pipeline.Options `toml:"placement"`
	Cache     CacheConfig      `toml:"cache"`
	Server    ServerConfig     `toml:"server"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend string `toml:"backend"` // file (default), redis or none
	Dir     string `toml:"dir"`     // file backend; default ~/.cache/seatplan
	URL     string `toml:"url"`     // redis backend
	Prefix  string `toml:"prefix"`  // key prefix, shared by both backends
}

// ServerConfig configures `seatplan serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// loadConfig reads the tool config at path. An empty path selects the
// default location, which may be missing.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return defaultConfig(), nil
		}
		path = filepath.Join(dir, configFileName)
	}

	cfg := defaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// defaultConfig seeds every setting a config file may leave out. Decoding
// only overwrites the keys the file sets, so a partial [placement.thresholds]
// table keeps the remaining defaults.
func defaultConfig() *Config {
	return &Config{
		Placement: pipeline.Options{Thresholds: placement.DefaultThresholds()},
		Cache:  CacheConfig{Backend: CacheFile},
		Server: ServerConfig{Addr: server.DefaultAddr},
	}
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case "":
		c.Cache.Backend = CacheFile
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.URL == "" {
			return errors.New("cache.url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Server.Addr == "" {
		c.Server.Addr = server.DefaultAddr
	}

	// Check a copy so flags can still override formats and thresholds.
	opts := c.Placement
	return opts.ValidateAndSetDefaults()
}
