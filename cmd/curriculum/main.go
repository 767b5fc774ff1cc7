package main

import (
	"os"

	"github.com/spf13/cobra"

	"curriculum/internal/interfaces/cli/audit"
	"curriculum/internal/interfaces/cli/importer"
	"curriculum/internal/interfaces/cli/migrate"
	"curriculum/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "curriculum",
		Short: "Curriculum content import and synchronization engine",
		Long:  `curriculum imports course documents into relational storage, replaces them atomically and audits the result.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		importer.NewCommand(),
		audit.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
