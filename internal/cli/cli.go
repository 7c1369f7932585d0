// Package cli implements the stackbump command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbump/pkg/advisory"
	"github.com/matzehuels/stackbump/pkg/buildinfo"
	"github.com/matzehuels/stackbump/pkg/cache"
	"github.com/matzehuels/stackbump/pkg/config"
	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/errors"
	"github.com/matzehuels/stackbump/pkg/integrations/maven"
	"github.com/matzehuels/stackbump/pkg/integrations/osv"
	"github.com/matzehuels/stackbump/pkg/pipeline"
	"github.com/matzehuels/stackbump/pkg/version"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "stackbump"

	// cacheNamespace scopes keys in shared cache backends.
	cacheNamespace = "stackbump"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configFile string
	noCache    bool
	verbose    bool
	out        io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output. Call it before RootCommand.
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Stackbump finds and applies dependency version updates",
		Long:         `Stackbump reads a project's dependency files (pom.xml, package.json, go.mod, Cargo.toml), decides which dependencies can move to newer versions, and rewrites the requirement texts in place without touching the rest of the file.`,
		Version:      buildinfo.ResolvedVersion(),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.out)
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: stackbump.yaml in the project directory)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable registry and parse caching")

	// Register all subcommands
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.bumpCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.satisfiesCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the configuration for a project directory.
func (c *CLI) loadConfig(dir string) (config.Config, error) {
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	cfg, err := config.Load(dir, c.configFile)
	if err != nil {
		return config.Config{}, err
	}
	if c.noCache {
		cfg.Cache.Backend = config.BackendNone
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config) (*pipeline.Runner, error) {
	backend, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(backend, cache.NewScopedKeyer(cache.NewDefaultKeyer(), cacheNamespace), c.Logger)
	r.Registries = map[string]string{
		"java":       cfg.Registries.URL("maven"),
		"javascript": cfg.Registries.URL("npm"),
		"go":         cfg.Registries.URL("goproxy"),
		"rust":       cfg.Registries.URL("crates"),
	}
	r.POMs = maven.NewClient(backend, cfg.Cache.TTL).WithBaseURL(cfg.Registries.Maven)
	if cfg.OSV.Enabled {
		r.Advisories = osv.NewClient(backend, cfg.Cache.TTL).WithBaseURL(cfg.OSV.URL)
	}
	return r, nil
}

func newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cfg.RedisURL, cacheNamespace)
	case config.BackendMongo:
		return cache.NewMongoCache(ctx, cfg.MongoURI, cacheNamespace)
	}
	dir := cfg.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// requestOptions turns configuration into pipeline options.
func requestOptions(cfg config.Config, family version.Family) (pipeline.Options, error) {
	strategy, err := cfg.UpdateStrategy()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{
		Strategy:        strategy,
		AllowPrerelease: cfg.AllowPrerelease,
		FullUnlock:      cfg.FullUnlock,
		Workers:         cfg.Workers,
		Ignore:          cfg,
	}
	if cfg.AdvisoriesFile != "" && family != 0 {
		entries, err := advisory.LoadFile(cfg.AdvisoriesFile, family)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.Advisories = entries
	}
	return opts, nil
}

// projectFamily returns the version family of the files' ecosystem.
func projectFamily(lang string, files []*deps.DependencyFile) version.Family {
	l, err := pipeline.DetectLanguage(lang, files)
	if err != nil {
		return 0
	}
	return l.Family
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory (~/.cache/stackbump/ on Linux,
// honoring XDG_CACHE_HOME).
func cacheDir() (string, error) {
	return cache.DefaultDir()
}

// projectDir returns the directory argument or the working directory.
func projectDir(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "get working directory")
	}
	return dir, nil
}
