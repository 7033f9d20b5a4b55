package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool             `help:"Enable debug logging."`
		Version kong.VersionFlag `help:"Print the version."`

		Import  ImportCmd  `cmd:"" help:"Import tramites from a CSV file."`
		Export  ExportCmd  `cmd:"" help:"Export dependencias, or the import template."`
		Tree    TreeCmd    `cmd:"" help:"Print the dependencia tree."`
		Token   TokenCmd   `cmd:"" help:"Issue an API token for a user."`
		Migrate MigrateCmd `cmd:"" help:"Create the database tables."`
	}
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("catalog"),
		kong.Description("Maintenance tasks for the tramites catalog."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
