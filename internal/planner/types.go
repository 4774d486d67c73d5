package planner

import (
	"time"

	"github.com/orcify/orcify/hive"
)

// OutputFormat selects a destination ORC layout. Each format carries its own
// ConversionConfig; a format without a config means conversion is not
// requested for it.
type OutputFormat string

const (
	// OutputFormatFlattened lifts nested record fields to top-level columns.
	OutputFormatFlattened OutputFormat = "flattened"
	// OutputFormatNested preserves record structure as Hive struct columns.
	OutputFormatNested OutputFormat = "nested"
)

// ConversionConfig describes one destination format of a convertible dataset.
type ConversionConfig struct {
	DestinationDatabase string            `json:"destination_database" toml:"destination_database"`
	DestinationTable    string            `json:"destination_table" toml:"destination_table"`
	StagingTablePrefix  string            `json:"staging_table_prefix,omitempty" toml:"staging_table_prefix"`
	DestinationDataRoot string            `json:"destination_data_root" toml:"destination_data_root"`
	ClusterBy           []string          `json:"cluster_by,omitempty" toml:"cluster_by"`
	NumBuckets          int               `json:"num_buckets,omitempty" toml:"num_buckets"`
	RowLimit            int               `json:"row_limit,omitempty" toml:"row_limit"`
	TableProperties     map[string]string `json:"table_properties,omitempty" toml:"table_properties"`
	RuntimeProperties   map[string]string `json:"runtime_properties,omitempty" toml:"runtime_properties"`
	EvolutionEnabled    bool              `json:"evolution_enabled" toml:"evolution_enabled"`

	// SourcePathIdentifiers are granularity hints (e.g. "hourly", "daily")
	// matched against the source partition location to derive distinct
	// destination directory names for partitions that share a timestamp.
	SourcePathIdentifiers []string `json:"source_path_identifiers,omitempty" toml:"source_path_identifiers"`
}

func (c *ConversionConfig) stagingPrefix() string {
	if c.StagingTablePrefix != "" {
		return c.StagingTablePrefix
	}
	return c.DestinationTable + "_staging"
}

// ConversionRequest is one work item: a source table, optionally narrowed to
// a single partition, and the target-format schema to convert into.
type ConversionRequest struct {
	Table        *hive.TableMeta
	Partition    *hive.PartitionMeta
	TargetSchema hive.Columns

	// CreateTime is the originating work item's creation timestamp,
	// recorded as a runtime property for tracking.
	CreateTime time.Time
}

// DirectoryMove is one staging-to-final directory swap. The destination's
// previous contents are replaced by the source directory's contents.
type DirectoryMove struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// PublishPlan is the unit handed off (or persisted) for the publish phase:
// statements and directory moves that promote staged data, then the cleanup
// that retires the staging artifacts. Slices execute in order.
type PublishPlan struct {
	PublishStatements  []string        `json:"publish_statements"`
	PublishDirectories []DirectoryMove `json:"publish_directories"`
	CleanupStatements  []string        `json:"cleanup_statements"`
	CleanupDirectories []string        `json:"cleanup_directories"`
}

// DestinationMeta is the catalog's view of the destination table at planning
// time. Table is nil on first-time conversion.
type DestinationMeta struct {
	Table      *hive.TableMeta
	Partitions []hive.PartitionMeta
}

// Exists reports whether the destination table was found in the catalog.
func (d *DestinationMeta) Exists() bool {
	return d != nil && d.Table != nil
}

// ConversionPlan is the immutable result of one planning run: the staging
// statement sequence, the publish plan, and the resolved staging identity.
type ConversionPlan struct {
	StagingTable    string           `json:"staging_table"`
	StagingLocation string           `json:"staging_location"`
	Statements      []string         `json:"statements"`
	Publish         *PublishPlan     `json:"publish"`
	Destination     *DestinationMeta `json:"-"`
}
