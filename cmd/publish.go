package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/orcify/orcify/hive/metastore"
	"github.com/orcify/orcify/internal/config"
	"github.com/orcify/orcify/internal/executor"
	"github.com/orcify/orcify/internal/localfs"
	"github.com/orcify/orcify/internal/state"
)

var publishCmd = &cobra.Command{
	Use:   "publish <plan-file>",
	Short: "Execute a publish plan written by 'orcify plan'",
	Long: `Execute a publish plan: run its publish statements, swap the staged
directories into the final location, then clean up the staging table and
directories.

Run this after the staging statements from 'orcify plan' have completed
and the staged ORC data has been verified.`,
	Example: `  # Publish a previously planned conversion
  orcify publish plan.json

  # Publish against the production metastore
  orcify publish plan.json --environment production`,
	Args: cobra.ExactArgs(1),
	Run:  runPublish,
}

var (
	publishEnvironment string
	publishVerbose     bool
)

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().StringVar(&publishEnvironment, "environment", "", "Environment from orcify.toml providing the metastore connection")
	publishCmd.Flags().BoolVarP(&publishVerbose, "verbose", "v", false, "Enable verbose logging")
}

func runPublish(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	plan, err := state.Load(args[0])
	if err != nil {
		log.Fatalf("Failed to load publish plan: %v", err)
	}
	if publishVerbose {
		fmt.Fprintf(os.Stderr, "Publishing %s (%s) staged in %s\n", plan.Dataset, plan.Format, plan.StagingTable)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config file: %v", err)
	}
	resolved, err := config.ResolveEnvironment(cfg, publishEnvironment)
	if err != nil {
		log.Fatalf("Failed to resolve environment: %v", err)
	}

	client, err := metastore.Connect(ctx, resolved.MetastoreURL)
	if err != nil {
		log.Fatalf("Failed to connect to metastore: %v", err)
	}
	defer func() { _ = client.Close() }()

	if err := executor.ExecutePublish(ctx, client.DB(), localfs.New(), &plan.Publish, publishVerbose); err != nil {
		log.Fatalf("Failed to publish: %v", err)
	}

	fmt.Fprintf(os.Stderr, "✅ Published %s\n", plan.Dataset)
}
