package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/orcify/orcify/internal/wizard"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively create orcify.toml and an environment file",
	Run:   runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	result, err := wizard.Run()
	if err != nil {
		log.Fatalf("Init failed: %v", err)
	}
	if result == nil {
		// Wizard was quit before finishing.
		return
	}

	fmt.Fprintf(os.Stderr, "\nNext steps:\n")
	fmt.Fprintf(os.Stderr, "  orcify plan --source <database.table> --out plan.json\n")
	fmt.Fprintf(os.Stderr, "  orcify publish plan.json\n")
}
