package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diachron-labs/driftd/internal/config"
	"github.com/diachron-labs/driftd/internal/db"
	"github.com/diachron-labs/driftd/internal/version"
)

func main() {
	root := &cobra.Command{
		Use:           "driftd",
		Short:         "Temporal term versioning and semantic drift provenance service",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version.Version, version.Commit, version.Date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.GetEnv())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			// Open runs migrations as part of connecting.
			database, err := db.Open(db.Config{
				Path:          cfg.Database.Path,
				BusyTimeoutMS: cfg.Database.BusyTimeoutMS,
			})
			if err != nil {
				return err
			}
			defer database.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "schema applied to %s\n", cfg.Database.Path)
			return nil
		},
	}
}
