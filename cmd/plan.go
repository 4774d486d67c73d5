package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/orcify/orcify/hive"
	"github.com/orcify/orcify/hive/metastore"
	"github.com/orcify/orcify/internal/avroschema"
	"github.com/orcify/orcify/internal/config"
	"github.com/orcify/orcify/internal/localfs"
	"github.com/orcify/orcify/internal/planner"
	"github.com/orcify/orcify/internal/state"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan an Avro to ORC conversion for a Hive table or partition",
	Long: `Plan the conversion of an Avro-backed Hive table (or one of its
partitions) into the configured ORC destination.

The plan has two parts: the staging statements that materialize a
converted copy next to the destination, and a publish plan that promotes
the staged data and cleans up afterwards. Staging statements print to
stdout; the publish plan is written with --out and executed later by
'orcify publish'.`,
	Example: `  # Plan one partition of a partitioned source table
  orcify plan --source tracking.pageviews --partition datepartition=2016-02-02 --out plan.json

  # Plan a snapshot (unpartitioned) table with an explicit Avro schema
  orcify plan --source tracking.profiles --schema profiles.avsc --out plan.json

  # Plan the nested layout against the production metastore
  orcify plan --source tracking.pageviews --partition datepartition=2016-02-02 \
      --format nested --environment production --out plan.json`,
	Run: runPlan,
}

var (
	planSource      string
	planPartition   string
	planSchemaPath  string
	planFormat      string
	planEnvironment string
	planOut         string
	planVerbose     bool
)

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVar(&planSource, "source", "", "Source table as database.table (required)")
	planCmd.Flags().StringVar(&planPartition, "partition", "", "Source partition, e.g. datepartition=2016-02-02")
	planCmd.Flags().StringVar(&planSchemaPath, "schema", "", "Avro schema file (.avsc) for the target layout; defaults to the source table's columns")
	planCmd.Flags().StringVar(&planFormat, "format", "flattened", "Output format: flattened or nested")
	planCmd.Flags().StringVar(&planEnvironment, "environment", "", "Environment from orcify.toml providing the metastore connection")
	planCmd.Flags().StringVar(&planOut, "out", "", "Path to write the publish plan file")
	planCmd.Flags().BoolVarP(&planVerbose, "verbose", "v", false, "Enable verbose logging")
}

func runPlan(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	sourceDB, sourceTable, err := splitSource(planSource)
	if err != nil {
		log.Fatalf("Invalid --source: %v", err)
	}

	format := planner.OutputFormat(planFormat)
	if format != planner.OutputFormatFlattened && format != planner.OutputFormatNested {
		log.Fatalf("Invalid --format %q: expected %q or %q", planFormat, planner.OutputFormatFlattened, planner.OutputFormatNested)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config file: %v", err)
	}
	formats, err := cfg.Formats()
	if err != nil {
		log.Fatalf("Failed to read conversion config: %v", err)
	}

	resolved, err := config.ResolveEnvironment(cfg, planEnvironment)
	if err != nil {
		log.Fatalf("Failed to resolve environment: %v", err)
	}
	if planVerbose {
		fmt.Fprintf(os.Stderr, "Using environment %q\n", resolved.Name)
	}

	client, err := metastore.Connect(ctx, resolved.MetastoreURL)
	if err != nil {
		log.Fatalf("Failed to connect to metastore: %v", err)
	}
	defer func() { _ = client.Close() }()

	table, err := client.GetTable(ctx, sourceDB, sourceTable)
	if err != nil {
		log.Fatalf("Failed to read source table: %v", err)
	}
	if planVerbose {
		fmt.Fprintf(os.Stderr, "✓ Found source table %s (%d columns)\n", table.QualifiedName(), len(table.Columns))
	}

	var partition *hive.PartitionMeta
	if planPartition != "" {
		partition, err = findPartition(ctx, client, sourceDB, sourceTable, planPartition)
		if err != nil {
			log.Fatalf("Failed to resolve partition: %v", err)
		}
	} else if table.IsPartitioned() {
		log.Fatalf("Table %s is partitioned; pick a partition with --partition", table.QualifiedName())
	}

	targetSchema, err := resolveTargetSchema(table, format)
	if err != nil {
		log.Fatalf("Failed to resolve target schema: %v", err)
	}

	req := &planner.ConversionRequest{
		Table:        table,
		Partition:    partition,
		TargetSchema: targetSchema,
		CreateTime:   time.Now(),
	}

	p := planner.New(client, localfs.New(), formats)
	plan, err := p.PlanConversion(ctx, req, format)
	if err != nil {
		log.Fatalf("Failed to plan conversion: %v", err)
	}
	if plan == nil {
		fmt.Fprintf(os.Stderr, "No conversion configured for format %q; nothing to do.\n", format)
		return
	}

	if planOut != "" {
		planFile := &state.PlanFile{
			Dataset:         table.QualifiedName(),
			Format:          string(format),
			CreatedAt:       req.CreateTime,
			StagingTable:    plan.StagingTable,
			StagingLocation: plan.StagingLocation,
			Publish:         *plan.Publish,
		}
		if err := state.Save(planOut, planFile); err != nil {
			log.Fatalf("Failed to save publish plan: %v", err)
		}
		if planVerbose {
			fmt.Fprintf(os.Stderr, "✓ Publish plan written to %s\n", planOut)
		}
	}

	jsonBytes, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal plan to JSON: %v", err)
	}
	fmt.Println(string(jsonBytes))
}

func splitSource(source string) (string, string, error) {
	parts := strings.Split(strings.TrimSpace(source), ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("expected database.table, got %q", source)
	}
	return parts[0], parts[1], nil
}

func findPartition(ctx context.Context, catalog hive.Catalog, database, table, name string) (*hive.PartitionMeta, error) {
	partitions, err := catalog.GetPartitions(ctx, database, table)
	if err != nil {
		return nil, err
	}
	for i := range partitions {
		if partitions[i].Name == name {
			return &partitions[i], nil
		}
	}
	return nil, fmt.Errorf("partition %q not found on %s.%s (%d partitions)", name, database, table, len(partitions))
}

// resolveTargetSchema maps the --schema Avro file onto Hive columns, or
// falls back to the source table's own column list.
func resolveTargetSchema(table *hive.TableMeta, format planner.OutputFormat) (hive.Columns, error) {
	if planSchemaPath == "" {
		if len(table.Columns) == 0 {
			return nil, fmt.Errorf("source table has no columns; provide --schema")
		}
		return table.Columns, nil
	}

	data, err := os.ReadFile(planSchemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return avroschema.Columns(data, format == planner.OutputFormatFlattened)
}
