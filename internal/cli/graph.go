package cli

import (
	"context"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbump/pkg/errors"
	"github.com/matzehuels/stackbump/pkg/pipeline"
	"github.com/matzehuels/stackbump/pkg/render/nodelink"
)

// graphOptions holds graph command flags.
type graphOptions struct {
	language string
	format   string
	detailed bool
	output   string
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOptions

	cmd := &cobra.Command{
		Use:   "graph [dir]",
		Short: "Draw how a project's dependency files inherit from each other",
		Long: `Graph parses the dependency files under dir and renders the inheritance
forest (Maven parents, workspace members) as Graphviz DOT or SVG. Files
fetched from a registry are drawn dashed; files whose parent could not be
found are outlined in red.`,
		Example: `  stackbump graph > modules.dot
  stackbump graph ./service --format svg -o modules.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != "dot" && opts.format != "svg" {
				return errors.New(errors.ErrCodeInvalidInput, "unknown graph format %q (available: dot, svg)", opts.format)
			}
			return c.runGraph(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "ecosystem (default: detected)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "dot", "output format: dot, svg")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with their metadata")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to this file instead of stdout")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, w io.Writer, args []string, opts graphOptions) error {
	p, err := c.openProject(ctx, args, opts.language)
	if err != nil {
		return err
	}
	defer p.runner.Close()

	proj, _, err := p.runner.Parse(ctx, p.files, pipeline.Options{Language: opts.language, Logger: loggerFromContext(ctx)})
	if err != nil {
		return err
	}

	out := []byte(proj.Graph.DOT(opts.detailed))
	if opts.format == "svg" {
		if out, err = nodelink.RenderSVG(ctx, string(out)); err != nil {
			return err
		}
	}

	if opts.output == "" {
		_, err = w.Write(out)
		return err
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", opts.output)
	}
	printSuccess(w, "Wrote inheritance graph")
	printFile(w, opts.output)
	forest := proj.Graph.Forest()
	printKeyValue(w, "Files", strconv.Itoa(forest.NodeCount()))
	printKeyValue(w, "Links", strconv.Itoa(forest.EdgeCount()))
	printKeyValue(w, "Leaves", strconv.Itoa(len(proj.Graph.Leaves())))
	return nil
}
