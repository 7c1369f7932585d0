package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/stackbump/pkg/errors"
	"github.com/matzehuels/stackbump/pkg/updater"
	"github.com/matzehuels/stackbump/pkg/version"
)

const testYAML = `
workers: 4
strategy: widen
allow_prerelease: true
advisories_file: advisories.yaml
osv:
  enabled: true
cache:
  backend: redis
  ttl: 2h
  redis_url: redis://localhost:6379/0
registries:
  npm: https://npm.example.com
ignore:
  - dependency: com.google.guava:guava
    versions: ["[24,)"]
  - dependency: "org.springframework:*"
    versions: []
`

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return p
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "stackbump.yaml", testYAML)

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Workers != 4 || cfg.Strategy != "widen" || !cfg.AllowPrerelease || !cfg.OSV.Enabled {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.TTL != 2*time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if got := cfg.Registries.URL("npmjs"); got != "https://npm.example.com" {
		t.Errorf("Registries.URL(npmjs) = %q", got)
	}
	s, err := cfg.UpdateStrategy()
	if err != nil || s != updater.StrategyWiden {
		t.Errorf("UpdateStrategy() = %v, %v", s, err)
	}
	if len(cfg.Ignore) != 2 || cfg.Ignore[0].Dependency != "com.google.guava:guava" {
		t.Errorf("ignore = %+v", cfg.Ignore)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := Default()
	if cfg.Workers != want.Workers || cfg.Strategy != "bump" || cfg.Cache.Backend != BackendFile || cfg.Cache.TTL != want.Cache.TTL {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "stackbump.yaml", "workers: 4\n")
	t.Setenv("STACKBUMP_WORKERS", "16")
	t.Setenv("STACKBUMP_CACHE_BACKEND", "none")

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Workers != 16 || cfg.Cache.Backend != BackendNone {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	dir := t.TempDir()
	p := writeConfig(t, dir, "custom.toml", "workers = 2\nstrategy = \"bump_if_necessary\"\n")
	cfg, err := Load("", p)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Workers != 2 || cfg.Strategy != "bump_if_necessary" {
		t.Errorf("config = %+v", cfg)
	}

	if _, err := Load("", filepath.Join(dir, "missing.yaml")); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load(missing) error = %v, want INVALID_CONFIG", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"defaults", Default(), true},
		{"bad strategy", Config{Strategy: "lockfile_only"}.WithDefaults(), false},
		{"bad backend", Config{Cache: CacheConfig{Backend: "memcached"}}.WithDefaults(), false},
		{"redis without url", Config{Cache: CacheConfig{Backend: BackendRedis}}.WithDefaults(), false},
		{"mongo", Config{Cache: CacheConfig{Backend: BackendMongo, MongoURI: "mongodb://localhost"}}.WithDefaults(), true},
		{"bad glob", Config{Ignore: []IgnoreRule{{Dependency: "["}}}.WithDefaults(), false},
		{"mirror", Config{Registries: Registries{Npm: "https://npm.corp.example"}}.WithDefaults(), true},
		{"mirror without scheme", Config{Registries: Registries{Maven: "repo.corp.example/maven2"}}.WithDefaults(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() error = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestIgnoredFor(t *testing.T) {
	cfg := Config{Ignore: []IgnoreRule{
		{Dependency: "com.google.guava:guava", Versions: []string{"[24,)"}},
		{Dependency: "org.springframework:*"},
	}}

	guava, err := cfg.IgnoredFor("com.google.guava:guava", version.Maven)
	if err != nil || len(guava) != 1 {
		t.Fatalf("IgnoredFor(guava) = %v, %v", guava, err)
	}
	if !guava[0].Satisfies(version.MustParse("24.1-jre", version.Maven)) {
		t.Error("24.1-jre should be ignored")
	}

	spring, _ := cfg.IgnoredFor("org.springframework:spring-core", version.Maven)
	if len(spring) != 1 || !spring[0].Satisfies(version.MustParse("6.0.0", version.Maven)) {
		t.Errorf("spring ignores = %v", spring)
	}

	if other, _ := cfg.IgnoredFor("junit:junit", version.Maven); len(other) != 0 {
		t.Errorf("junit ignores = %v", other)
	}

	bad := Config{Ignore: []IgnoreRule{{Dependency: "a", Versions: []string{"[1.0"}}}}
	if _, err := bad.IgnoredFor("a", version.Maven); !errors.Is(err, errors.ErrCodeMalformedRequirement) {
		t.Errorf("IgnoredFor(bad) error = %v", err)
	}
}
