package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"recipebook/application/commands"
	"recipebook/application/services"
)

type importOptions struct {
	ingredients string
	recipes     string
	pairings    string
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load seed files into the catalog",
		Long: `Load ingredients, recipes and pairings from seed files.

Files ending in .jsonl hold one record per line; .json and .yaml/.yml
files hold a list. Ingredients are loaded first so their protein values
are set before recipes reference them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ingredients, "ingredients", "", "ingredient seed file")
	cmd.Flags().StringVar(&opts.recipes, "recipes", "", "recipe seed file")
	cmd.Flags().StringVar(&opts.pairings, "pairings", "", "pairing seed file")
	cmd.MarkFlagsOneRequired("ingredients", "recipes", "pairings")

	return cmd
}

func runImport(rootOpts *RootOptions, opts *importOptions, cmd *cobra.Command) error {
	var seed services.Seed
	var err error

	if seed.Ingredients, err = readSeedFile[services.SeedIngredient](opts.ingredients); err != nil {
		return err
	}
	if seed.Recipes, err = readSeedFile[services.SeedRecipe](opts.recipes); err != nil {
		return err
	}
	if seed.Pairings, err = readSeedFile[services.SeedPairing](opts.pairings); err != nil {
		return err
	}

	app := rootOpts.app
	result, err := app.CommandBus.Send(cmd.Context(), commands.ImportSeedCommand{
		AdminAuth: commands.AdminAuth{Secret: app.AdminSecret},
		Seed:      seed,
	})
	if err != nil {
		return err
	}

	imported, _ := result.(services.ImportResult)
	return rootOpts.output(cmd.OutOrStdout(), imported, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "imported %d ingredients, %d recipes, %d pairings (%d skipped)\n",
			imported.Ingredients, imported.Recipes, imported.Pairings, imported.Skipped)
		return err
	})
}

func readSeedFile[T any](path string) ([]T, error) {
	if path == "" {
		return nil, nil
	}
	format, err := services.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := services.DecodeRecords[T](f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}
