package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbump/pkg/config"
	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/errors"
	"github.com/matzehuels/stackbump/pkg/pipeline"
	"github.com/matzehuels/stackbump/pkg/source/local"
	"github.com/matzehuels/stackbump/pkg/updater"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
)

// runFlags holds the flags shared by check and bump.
type runFlags struct {
	language     string
	dependencies []string
	strategy     string
	prerelease   bool
	fullUnlock   bool
	securityOnly bool
	refresh      bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.language, "language", "l", "", "ecosystem: java, javascript, go, rust (default: detected)")
	cmd.Flags().StringSliceVarP(&f.dependencies, "dependency", "d", nil, "restrict to these dependencies (repeatable)")
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "requirement strategy: bump, bump_if_necessary, widen")
	cmd.Flags().BoolVar(&f.prerelease, "prerelease", false, "consider pre-release versions")
	cmd.Flags().BoolVar(&f.fullUnlock, "full-unlock", false, "move dependencies that share a version property together")
	cmd.Flags().BoolVar(&f.securityOnly, "security-only", false, "only move vulnerable dependencies")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass cached registry responses")
}

// project is a loaded working tree together with its runner.
type project struct {
	root   string // Directory files are written back to
	cfg    config.Config
	files  []*deps.DependencyFile
	runner *pipeline.Runner
}

// openProject loads configuration and dependency files for the directory
// or file argument and builds a runner for them.
func (c *CLI) openProject(ctx context.Context, args []string, lang string) (*project, error) {
	dir, err := projectDir(args)
	if err != nil {
		return nil, err
	}
	root := dir
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		root = filepath.Dir(dir)
	}
	cfg, err := c.loadConfig(dir)
	if err != nil {
		return nil, err
	}
	files, err := local.Load(dir, lang)
	if err != nil {
		return nil, err
	}
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &project{root: root, cfg: cfg, files: files, runner: runner}, nil
}

// request builds a pipeline request from configuration and flags. Flags
// only ever switch options on; the config file cannot be overridden to off
// from the command line.
func (p *project) request(f runFlags) (pipeline.Request, error) {
	opts, err := requestOptions(p.cfg, projectFamily(f.language, p.files))
	if err != nil {
		return pipeline.Request{}, err
	}
	opts.Language = f.language
	if f.strategy != "" {
		s, err := updater.ParseStrategy(f.strategy)
		if err != nil {
			return pipeline.Request{}, err
		}
		opts.Strategy = s
	}
	opts.AllowPrerelease = opts.AllowPrerelease || f.prerelease
	opts.FullUnlock = opts.FullUnlock || f.fullUnlock
	opts.SecurityOnly = f.securityOnly
	opts.Refresh = f.refresh
	return pipeline.Request{Files: p.files, Dependencies: f.dependencies, Options: opts}, nil
}

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		flags  runFlags
		all    bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Show which dependencies can be updated",
		Long: `Check reads the dependency files under dir (default: the working directory),
looks up the versions each dependency's registry publishes, and prints the
decision reached for every dependency. No file is changed.`,
		Example: `  stackbump check
  stackbump check ./service --language java
  stackbump check -d lodash -d react --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatText && format != formatJSON {
				return errors.New(errors.ErrCodeInvalidInput, "unknown output format %q (available: text, json)", format)
			}
			return c.runCheck(cmd.Context(), cmd.OutOrStdout(), args, flags, all, format)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&all, "all", "a", false, "also list dependencies that are up to date")
	cmd.Flags().StringVarP(&format, "output", "o", formatText, "output format: text, json")

	return cmd
}

func (c *CLI) runCheck(ctx context.Context, w io.Writer, args []string, flags runFlags, all bool, format string) error {
	logger := loggerFromContext(ctx)

	p, err := c.openProject(ctx, args, flags.language)
	if err != nil {
		return err
	}
	defer p.runner.Close()

	req, err := p.request(flags)
	if err != nil {
		return err
	}
	req.Logger = logger

	prog := newProgress(logger)
	var spinner *Spinner
	if format == formatText {
		spinner = newSpinnerWithContext(ctx, os.Stderr, "Checking "+local.Describe(p.files)+"...")
		spinner.Start()
	}
	res, err := p.runner.Check(ctx, req)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	prog.done("Checked dependencies")

	if format == formatJSON {
		return writeJSON(w, res)
	}
	printKeyValue(w, "Language", res.Language)
	printKeyValue(w, "Files", local.Describe(p.files))
	printOutcomes(w, res.Outcomes, all)
	printFailures(w, res.Failures)
	printStats(w, res)
	if len(res.Updated()) > 0 {
		printNextStep(w, "Apply updates", "stackbump bump")
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
