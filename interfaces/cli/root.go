// Package cli implements recipectl, the maintenance command line. Every
// subcommand goes through the same command and query buses as the HTTP
// surface.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"recipebook/application/commands/bus"
	querybus "recipebook/application/queries/bus"
)

// App is what the subcommands run against.
type App struct {
	CommandBus  *bus.CommandBus
	QueryBus    *querybus.QueryBus
	AdminSecret string
}

// AppFactory builds the App once flags are parsed. The returned function
// releases it.
type AppFactory func(ctx context.Context) (*App, func(), error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format string // "json" | "text"
	Secret string

	factory AppFactory
	app     *App
	release func()
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Execute runs recipectl with args and releases the App afterwards, also
// when the subcommand failed.
func Execute(ctx context.Context, factory AppFactory, args []string, stdout io.Writer) error {
	cmd, opts := newRootCommand(factory)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	defer opts.close()
	return cmd.ExecuteContext(ctx)
}

// NewRootCommand creates the root command for recipectl.
func NewRootCommand(factory AppFactory) *cobra.Command {
	cmd, _ := newRootCommand(factory)
	return cmd
}

func newRootCommand(factory AppFactory) (*cobra.Command, *RootOptions) {
	opts := &RootOptions{factory: factory}

	cmd := &cobra.Command{
		Use:   "recipectl",
		Short: "Recipe catalog maintenance",
		Long:  "Import seed data, clear the catalog and prune unused ingredients, units and forms.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			app, release, err := opts.factory(cmd.Context())
			if err != nil {
				return err
			}
			if opts.Secret != "" {
				app.AdminSecret = opts.Secret
			}
			opts.app, opts.release = app, release
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Secret, "secret", "", "admin secret (defaults to ADMIN_SECRET)")

	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))
	cmd.AddCommand(NewUnusedCommand(opts))

	return cmd, opts
}

func (o *RootOptions) close() {
	if o.release != nil {
		o.release()
		o.release = nil
	}
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// output writes v as JSON, or calls text for the text format.
func (o *RootOptions) output(w io.Writer, v interface{}, text func(io.Writer) error) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(w)
}
