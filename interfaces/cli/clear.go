package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"recipebook/application/commands"
)

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every pairing, recipe, ingredient, form and unit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear the catalog without --yes")
			}
			return runClear(rootOpts, cmd)
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func runClear(rootOpts *RootOptions, cmd *cobra.Command) error {
	app := rootOpts.app
	result, err := app.CommandBus.Send(cmd.Context(), commands.ClearAllDataCommand{
		AdminAuth: commands.AdminAuth{Secret: app.AdminSecret},
	})
	if err != nil {
		return err
	}

	counts, _ := result.(commands.ClearAllDataResult)
	return rootOpts.output(cmd.OutOrStdout(), counts, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "deleted %d pairings, %d recipes, %d ingredients, %d forms, %d units\n",
			counts.Pairings, counts.Recipes, counts.Ingredients, counts.Forms, counts.Units)
		return err
	})
}
