package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/orcify/orcify/internal/state"
)

var validateCmd = &cobra.Command{
	Use:   "validate <plan-file>",
	Short: "Validate a publish plan file without executing it",
	Example: `  # Check a plan file before handing it to publish
  orcify validate plan.json

  # Machine-readable output for CI
  orcify validate plan.json --output json`,
	Args: cobra.ExactArgs(1),
	Run:  runValidate,
}

var validateOutput string

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateOutput, "output", "", "Output format: json")
}

func runValidate(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Fatalf("Failed to read plan file: %v", err)
	}

	validationErr := state.Validate(data)

	if validateOutput == "json" {
		result := map[string]interface{}{"valid": validationErr == nil}
		if validationErr != nil {
			result["error"] = validationErr.Error()
		}
		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("Failed to marshal result: %v", err)
		}
		fmt.Println(string(jsonBytes))
		if validationErr != nil {
			os.Exit(1)
		}
		return
	}

	if validationErr != nil {
		fmt.Fprintf(os.Stderr, "❌ %s is not a valid publish plan\n\n", args[0])
		fmt.Fprintf(os.Stderr, "%v\n", validationErr)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "✓ %s is a valid publish plan\n", args[0])
}
