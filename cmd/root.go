package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "orcify",
	Short: "Orcify plans and publishes Avro to ORC conversions for Hive tables.",
	Long:  `Orcify plans and publishes Avro to ORC conversions for Hive tables.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
