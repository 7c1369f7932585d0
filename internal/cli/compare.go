package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbump/pkg/constraint"
	"github.com/matzehuels/stackbump/pkg/errors"
	"github.com/matzehuels/stackbump/pkg/version"
)

// compareCommand creates the compare command.
func (c *CLI) compareCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <family> <a> <b>",
		Short: "Compare two versions of an ecosystem",
		Long: `Compare orders two versions using the rules of a version family
(maven, npm, gomod, cargo; ecosystem names such as java or rust also work)
and prints the relation between them.`,
		Example: `  stackbump compare maven 1.0-alpha 1.0
  stackbump compare npm 1.2.3-beta.2 1.2.3-beta.10`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			family, err := version.ParseFamily(args[0])
			if err != nil {
				return err
			}
			a, err := version.Parse(args[1], family)
			if err != nil {
				return err
			}
			b, err := version.Parse(args[2], family)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", a, relation(a.Compare(b)), b)
			return nil
		},
	}
}

func relation(cmp int) string {
	switch {
	case cmp < 0:
		return "<"
	case cmp > 0:
		return ">"
	}
	return "=="
}

// satisfiesCommand creates the satisfies command.
func (c *CLI) satisfiesCommand() *cobra.Command {
	var highest bool

	cmd := &cobra.Command{
		Use:   "satisfies <family> <requirement> <version>...",
		Short: "Test versions against a requirement",
		Long: `Satisfies parses a requirement in the grammar of a version family and
marks each version that matches it. The command fails when no version matches.`,
		Example: `  stackbump satisfies npm "^1.2.0 || ~2.0" 1.9.9 2.0.5 2.1.0
  stackbump satisfies maven "[1.0,2.0)" 1.5 2.0 --highest`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			family, err := version.ParseFamily(args[0])
			if err != nil {
				return err
			}
			req, err := constraint.Parse(args[1], family)
			if err != nil {
				return err
			}
			var matching []version.Version
			for _, raw := range args[2:] {
				v, err := version.Parse(raw, family)
				if err != nil {
					return err
				}
				if req.Satisfies(v) {
					matching = append(matching, v)
					if !highest {
						printSuccess(w, "%s", v)
					}
				} else if !highest {
					printError(w, "%s", v)
				}
			}
			if len(matching) == 0 {
				return errors.New(errors.ErrCodeNoResolvableVersion, "no version satisfies %s", req)
			}
			if highest {
				best, _ := version.Max(matching)
				fmt.Fprintln(w, best)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&highest, "highest", false, "print only the highest matching version")

	return cmd
}
