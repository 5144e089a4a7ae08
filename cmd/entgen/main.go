// Package main contains the cli implementation of the generator. It
// uses the cobra package for the command tree; the generate command
// drives a full reverse-engineering run.
package main

import (
	"os"

	"entgen/internal/analyze"
	"entgen/internal/config"
	"entgen/internal/emit"
	"entgen/internal/introspect"
	"entgen/internal/logging"

	// Dialect readers register themselves with the introspect factory.
	_ "entgen/internal/introspect/mysql"
	_ "entgen/internal/introspect/postgres"
	_ "entgen/internal/introspect/sqlserver"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "entgen",
		Short:         "Reverse-engineer a relational database into entity sources",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(generateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	var flags config.Settings
	var pluralize, dataAnnotations bool
	var configPath string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate entity classes, configurations and a context from a live database",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.Pluralize = &pluralize
			flags.DataAnnotations = &dataAnnotations

			settings, err := config.Load(configPath)
			if err != nil {
				// The log sink is not up yet for config failures.
				cmd.PrintErrln(err)
				return err
			}
			settings.Merge(flags, cmd.Flags().Changed)
			if err := settings.Finalize(); err != nil {
				cmd.PrintErrln(err)
				return err
			}

			log, closeLog, err := logging.New(".")
			if err != nil {
				cmd.PrintErrln(err)
				return err
			}
			defer closeLog()

			if err := run(cmd, settings, log); err != nil {
				log.Exception("Generation failed", err)
				return err
			}
			log.Infof("Generation complete: output written to %s", settings.Output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.Connection, "connection", "c", "", "database connection string")
	cmd.Flags().StringVarP(&flags.Provider, "provider", "p", "", "database provider (SqlServer, MySql, PostgreSql)")
	cmd.Flags().StringVarP(&flags.Namespace, "namespace", "n", "", "namespace for emitted code")
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "output directory")
	cmd.Flags().BoolVar(&pluralize, "pluralize", true, "pluralize collection names")
	cmd.Flags().BoolVar(&dataAnnotations, "data-annotations", true, "emit validation annotations")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a config file (default appsettings.json)")

	return cmd
}

func run(cmd *cobra.Command, settings *config.Settings, log *logging.Logger) error {
	provider := config.ProviderName(settings.Provider)
	reader, err := introspect.NewReader(provider, introspect.Config{
		DSN:    settings.Connection,
		Logger: log,
	})
	if err != nil {
		return err
	}

	log.Infof("Reading schema using provider %s", provider)
	tables, err := reader.ReadTables(cmd.Context())
	if err != nil {
		return err
	}

	analyzer := analyze.New(log)
	rels := analyzer.AnalyzeSchema(tables)
	log.Infof("Classified %d relationships across %d tables", len(rels), len(tables))

	emitter := emit.New(emit.Options{
		Namespace:       settings.Namespace,
		OutputDir:       settings.Output,
		Pluralize:       *settings.Pluralize,
		DataAnnotations: *settings.DataAnnotations,
	}, log)
	return emitter.Emit(tables, rels)
}
