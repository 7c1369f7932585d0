// Package config loads stackbump settings with viper.
//
// Settings come from stackbump.yaml (or .toml/.json) in the project
// directory, or from an explicit file, and can be overridden with
// STACKBUMP_-prefixed environment variables: STACKBUMP_WORKERS=4,
// STACKBUMP_CACHE_BACKEND=redis.
package config

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/matzehuels/stackbump/pkg/constraint"
	"github.com/matzehuels/stackbump/pkg/deps"
	bumperrors "github.com/matzehuels/stackbump/pkg/errors"
	"github.com/matzehuels/stackbump/pkg/updater"
	"github.com/matzehuels/stackbump/pkg/version"
)

// FileName is the configuration file name looked up in the project
// directory, without extension.
const FileName = "stackbump"

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "STACKBUMP"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config is the full configuration.
type Config struct {
	Ignore          []IgnoreRule `mapstructure:"ignore"`
	AdvisoriesFile  string       `mapstructure:"advisories_file"`
	OSV             OSVConfig    `mapstructure:"osv"`
	Cache           CacheConfig  `mapstructure:"cache"`
	Registries      Registries   `mapstructure:"registries"`
	Workers         int          `mapstructure:"workers"`
	Strategy        string       `mapstructure:"strategy"`
	AllowPrerelease bool         `mapstructure:"allow_prerelease"`
	FullUnlock      bool         `mapstructure:"full_unlock"`
}

// IgnoreRule excludes versions of matching dependencies. Dependency may be
// a glob ("org.springframework:*"); an empty Versions list ignores every
// version.
type IgnoreRule struct {
	Dependency string   `mapstructure:"dependency"`
	Versions   []string `mapstructure:"versions"`
}

// OSVConfig enables advisory lookups against OSV.dev.
type OSVConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend  string        `mapstructure:"backend"`
	TTL      time.Duration `mapstructure:"ttl"`
	Dir      string        `mapstructure:"dir"`
	RedisURL string        `mapstructure:"redis_url"`
	MongoURI string        `mapstructure:"mongo_uri"`
}

// Registries overrides registry base URLs, e.g. for a mirror.
type Registries struct {
	Maven   string `mapstructure:"maven"`
	Npm     string `mapstructure:"npm"`
	Goproxy string `mapstructure:"goproxy"`
	Crates  string `mapstructure:"crates"`
}

// URL returns the override for the named registry, or "".
func (r Registries) URL(name string) string {
	switch strings.ToLower(name) {
	case "maven", "maven-central":
		return r.Maven
	case "npm", "npmjs":
		return r.Npm
	case "goproxy", "go":
		return r.Goproxy
	case "crates", "crates.io":
		return r.Crates
	}
	return ""
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{}.WithDefaults()
}

// WithDefaults fills unset fields with their defaults.
func (c Config) WithDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = deps.DefaultWorkers
	}
	if c.Strategy == "" {
		c.Strategy = updater.StrategyBump.String()
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendFile
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = deps.DefaultCacheTTL
	}
	return c
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	if _, err := updater.ParseStrategy(c.Strategy); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return bumperrors.New(bumperrors.ErrCodeInvalidConfig, "cache backend redis needs cache.redis_url")
		}
	case BackendMongo:
		if c.Cache.MongoURI == "" {
			return bumperrors.New(bumperrors.ErrCodeInvalidConfig, "cache backend mongo needs cache.mongo_uri")
		}
	default:
		return bumperrors.New(bumperrors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	for name, u := range map[string]string{
		"maven":   c.Registries.Maven,
		"npm":     c.Registries.Npm,
		"goproxy": c.Registries.Goproxy,
		"crates":  c.Registries.Crates,
	} {
		if u == "" {
			continue
		}
		if err := bumperrors.ValidateURL(u); err != nil {
			return bumperrors.Wrap(bumperrors.ErrCodeInvalidConfig, err, "registries.%s", name)
		}
	}
	for _, r := range c.Ignore {
		if r.Dependency == "" {
			return bumperrors.New(bumperrors.ErrCodeInvalidConfig, "ignore rule without dependency")
		}
		if _, err := path.Match(r.Dependency, ""); err != nil {
			return bumperrors.Wrap(bumperrors.ErrCodeInvalidConfig, err, "ignore rule %q", r.Dependency)
		}
	}
	return nil
}

// UpdateStrategy returns the parsed requirements strategy.
func (c Config) UpdateStrategy() (updater.Strategy, error) {
	return updater.ParseStrategy(c.Strategy)
}

// IgnoredFor returns the ignore constraints that apply to the named
// dependency, parsed in family.
func (c Config) IgnoredFor(name string, family version.Family) ([]constraint.Constraint, error) {
	var out []constraint.Constraint
	for _, r := range c.Ignore {
		if ok, _ := path.Match(r.Dependency, name); !ok && r.Dependency != name {
			continue
		}
		if len(r.Versions) == 0 {
			out = append(out, constraint.Wildcard(family))
			continue
		}
		cs, err := constraint.ParseAll(r.Versions, family)
		if err != nil {
			return nil, fmt.Errorf("ignore rule for %s: %w", r.Dependency, err)
		}
		out = append(out, cs...)
	}
	return out, nil
}

// Load reads the configuration. An explicit file must exist; otherwise
// stackbump.{yaml,toml,json} is looked up in dir and a missing file means
// defaults. Environment variables override both.
func Load(dir, file string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindKeys(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, bumperrors.Wrap(bumperrors.ErrCodeInvalidConfig, err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, bumperrors.Wrap(bumperrors.ErrCodeInvalidConfig, err, "decode config")
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// bindKeys registers every scalar key so that AutomaticEnv overrides reach
// Unmarshal even when the file does not mention them.
func bindKeys(v *viper.Viper) {
	for _, key := range []string{
		"advisories_file",
		"osv.enabled", "osv.url",
		"cache.backend", "cache.ttl", "cache.dir", "cache.redis_url", "cache.mongo_uri",
		"registries.maven", "registries.npm", "registries.goproxy", "registries.crates",
		"workers", "strategy", "allow_prerelease", "full_unlock",
	} {
		_ = v.BindEnv(key)
	}
}
