package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"recipebook/application/commands"
	"recipebook/application/queries"
	"recipebook/domain/recipeview"
)

// NewUnusedCommand creates the unused command.
func NewUnusedCommand(rootOpts *RootOptions) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:       "unused <ingredients|units|forms>",
		Short:     "List, or with --delete remove, entities no recipe references",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"ingredients", "units", "forms"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if remove {
				return runRemoveUnused(rootOpts, args[0], cmd)
			}
			return runListUnused(rootOpts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&remove, "delete", false, "delete the unused entities")
	return cmd
}

func runListUnused(rootOpts *RootOptions, kind string, cmd *cobra.Command) error {
	result, err := rootOpts.app.QueryBus.Ask(cmd.Context(), queries.ListUnusedQuery{Kind: kind})
	if err != nil {
		return err
	}

	unused, _ := result.([]recipeview.NamedEntity)
	return rootOpts.output(cmd.OutOrStdout(), unused, func(w io.Writer) error {
		for _, e := range unused {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", e.ID, e.Name); err != nil {
				return err
			}
		}
		return nil
	})
}

func runRemoveUnused(rootOpts *RootOptions, kind string, cmd *cobra.Command) error {
	app := rootOpts.app
	result, err := app.CommandBus.Send(cmd.Context(), commands.RemoveUnusedCommand{
		AdminAuth: commands.AdminAuth{Secret: app.AdminSecret},
		Kind:      kind,
	})
	if err != nil {
		return err
	}

	removed, _ := result.(commands.RemoveUnusedResult)
	return rootOpts.output(cmd.OutOrStdout(), removed, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "deleted %d unused %s\n", removed.DeletedCount, kind)
		return err
	})
}
