package cli

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbump/pkg/errors"
	"github.com/matzehuels/stackbump/pkg/pipeline"
	"github.com/matzehuels/stackbump/pkg/source/local"
	"github.com/matzehuels/stackbump/pkg/version"
)

// bumpOptions holds bump-specific flags.
type bumpOptions struct {
	target      string
	dryRun      bool
	interactive bool
	format      string
}

// bumpCommand creates the bump command.
func (c *CLI) bumpCommand() *cobra.Command {
	var (
		flags runFlags
		opts  bumpOptions
	)

	cmd := &cobra.Command{
		Use:   "bump [dir]",
		Short: "Rewrite dependency files to newer versions",
		Long: `Bump moves dependencies to the versions check recommends and rewrites the
requirement texts in place. Only the version text changes; formatting,
comments and the order of entries are preserved.

With a single --dependency the command fails if that dependency cannot be
moved. Without one, every dependency is tried and failures are reported
per dependency.`,
		Example: `  stackbump bump
  stackbump bump -d org.springframework:spring-core --version 6.1.4
  stackbump bump -d lodash --interactive
  stackbump bump --security-only --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.target != "" && len(flags.dependencies) != 1 {
				return errors.New(errors.ErrCodeInvalidInput, "--version needs exactly one --dependency")
			}
			if opts.interactive && len(flags.dependencies) != 1 {
				return errors.New(errors.ErrCodeInvalidInput, "--interactive needs exactly one --dependency")
			}
			if opts.format != formatText && opts.format != formatJSON {
				return errors.New(errors.ErrCodeInvalidInput, "unknown output format %q (available: text, json)", opts.format)
			}
			return c.runBump(cmd.Context(), cmd.OutOrStdout(), args, flags, opts)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&opts.target, "version", "", "move the dependency to exactly this version")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "show what would change without writing files")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick the target version from a list")
	cmd.Flags().StringVarP(&opts.format, "output", "o", formatText, "output format: text, json")

	return cmd
}

func (c *CLI) runBump(ctx context.Context, w io.Writer, args []string, flags runFlags, opts bumpOptions) error {
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
	req.TargetVersion = opts.target

	if opts.interactive {
		picked, err := c.pickVersion(ctx, p, req)
		if err != nil {
			return err
		}
		if picked == nil {
			printInfo(w, "No version selected")
			return nil
		}
		req.TargetVersion = picked.String()
		req.AllowPrerelease = req.AllowPrerelease || picked.IsPrerelease()
	}

	prog := newProgress(logger)
	var spinner *Spinner
	if opts.format == formatText {
		spinner = newSpinnerWithContext(ctx, os.Stderr, "Updating "+local.Describe(p.files)+"...")
		spinner.Start()
	}
	var res *pipeline.Result
	if len(req.Dependencies) == 1 {
		res, err = p.runner.Update(ctx, req)
	} else {
		res, err = p.runner.Batch(ctx, req)
	}
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	prog.done("Updated dependencies")

	if !opts.dryRun && len(res.Files) > 0 {
		if err := local.Write(p.root, res.Files); err != nil {
			return err
		}
	}

	if opts.format == formatJSON {
		return writeJSON(w, res)
	}

	printOutcomes(w, res.Updated(), false)
	printFailures(w, res.Failures)
	switch {
	case len(res.Files) == 0:
		printInfo(w, "Nothing to change")
	case opts.dryRun:
		printWarning(w, "Dry run: %d files would change", len(res.Files))
		printChangedFiles(w, res)
	default:
		printSuccess(w, "Rewrote %d files", len(res.Files))
		printChangedFiles(w, res)
	}
	printStats(w, res)
	return nil
}

// pickVersion shows the interactive picker for the request's single
// dependency and returns the chosen version, or nil when none was chosen.
func (c *CLI) pickVersion(ctx context.Context, p *project, req pipeline.Request) (*version.Version, error) {
	checked, err := p.runner.Check(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(checked.Outcomes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "dependency %s not found", req.Dependencies[0])
	}
	out := checked.Outcomes[0]

	lang, err := pipeline.DetectLanguage(req.Language, p.files)
	if err != nil {
		return nil, err
	}
	available, err := p.runner.Resolver(lang).Versions(ctx, out.Dependency.Name, req.Refresh)
	if err != nil {
		return nil, err
	}

	recommended := ""
	if out.Decision.Target != nil {
		recommended = out.Decision.Target.String()
	}
	model := NewVersionPickerModel(out.Dependency.Name, out.Current, recommended, available)
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, err
	}
	if m, ok := final.(VersionPickerModel); ok && m.Selected != nil {
		return m.Selected, nil
	}
	return nil, nil
}
