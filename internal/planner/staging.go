package planner

import (
	"fmt"
	"sort"

	"github.com/orcify/orcify/hive"
	"github.com/orcify/orcify/hive/hiveql"
)

// Runtime property keys recorded for tracking alongside the configured ones.
const (
	datasetURNKey     = "conversion.datasetUrn"
	partitionNameKey  = "conversion.partitionName"
	workUnitCreateKey = "conversion.workunitCreateTime"
)

// stagingStatements builds the ordered staging phase: runtime property SETs,
// the staging CREATE TABLE, the staging ADD PARTITION when partitioned, and
// the mapping DML that populates staging from the source table.
func stagingStatements(cfg *ConversionConfig, req *ConversionRequest, destination *hive.TableMeta,
	stagingTable, stagingLocation, partitionDir string, partitionCols []hiveql.PartitionColumn) []string {

	var statements []string

	keys := make([]string, 0, len(cfg.RuntimeProperties))
	for k := range cfg.RuntimeProperties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		statements = append(statements, hiveql.SetStatement(k, cfg.RuntimeProperties[k]))
	}

	statements = append(statements, hiveql.SetStatement(datasetURNKey, req.Table.QualifiedName()))
	if req.Partition != nil {
		statements = append(statements, hiveql.SetStatement(partitionNameKey, req.Partition.QualifiedName(req.Table)))
	}
	statements = append(statements, hiveql.SetStatement(workUnitCreateKey, fmt.Sprintf("%d", req.CreateTime.UnixMilli())))

	// With evolution enabled the staging schema follows the destination's
	// order and gains the new target columns. With evolution disabled and a
	// destination present, staging is pinned to the destination schema
	// exactly: nothing widens, and a target schema that drifted from the
	// destination fails in the executor when the mapping DML selects a
	// column the source cannot provide.
	stagingCols := req.TargetSchema
	mappingCols := req.TargetSchema
	backfill := true
	var existing hive.Columns
	if destination != nil {
		if cfg.EvolutionEnabled {
			existing = destination.Columns
			mappingCols = hiveql.AlignColumns(req.TargetSchema, existing)
		} else {
			stagingCols = destination.Columns
			mappingCols = destination.Columns
			backfill = false
		}
	}

	statements = append(statements, hiveql.CreateTableDDL(hiveql.CreateTableOptions{
		Database:         cfg.DestinationDatabase,
		Table:            stagingTable,
		Columns:          stagingCols,
		Location:         stagingLocation,
		PartitionColumns: partitionCols,
		ClusterBy:        cfg.ClusterBy,
		NumBuckets:       cfg.NumBuckets,
		TableProperties:  cfg.TableProperties,
		ExistingColumns:  existing,
	}))

	if len(partitionCols) > 0 {
		partitionLocation := stagingLocation + "/" + partitionDir
		statements = append(statements, hiveql.CreatePartitionDDL(
			cfg.DestinationDatabase, stagingTable, partitionLocation, partitionCols))
	}

	statements = append(statements, hiveql.MappingDML(hiveql.MappingOptions{
		SourceDatabase:      req.Table.Database,
		SourceTable:         req.Table.Name,
		SourceColumns:       req.Table.Columns,
		DestinationDatabase: cfg.DestinationDatabase,
		DestinationTable:    stagingTable,
		TargetColumns:       mappingCols,
		PartitionValues:     partitionCols,
		RowLimit:            cfg.RowLimit,
		StrictSource:        !backfill,
	}))

	return statements
}
