// Package planner plans the conversion of an Avro-backed, catalog-registered
// table (or one of its partitions) into an ORC destination table: the
// staging statements that materialize a converted copy, the additive schema
// evolution for a pre-existing destination, and the publish/cleanup plan
// that promotes staged data without interrupting readers.
package planner

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/orcify/orcify/hive"
)

// Planner plans conversions. Planning is synchronous and touches no shared
// mutable state; concurrent runs are kept apart by per-run staging table
// names and idempotent destination directory creation.
type Planner struct {
	catalog hive.Catalog
	fs      hive.FileSystem
	formats map[OutputFormat]*ConversionConfig

	// Overridable for deterministic tests.
	now       func() time.Time
	randDigit func() int
}

// New creates a Planner over an already-connected catalog. Formats without
// an entry are planned as pass-through.
func New(catalog hive.Catalog, fs hive.FileSystem, formats map[OutputFormat]*ConversionConfig) *Planner {
	return &Planner{
		catalog:   catalog,
		fs:        fs,
		formats:   formats,
		now:       time.Now,
		randDigit: func() int { return rand.Intn(10) },
	}
}

// PlanConversion plans one conversion request for the given output format.
// A nil plan with a nil error means no conversion is configured for the
// format and the work item passes through unchanged.
func (p *Planner) PlanConversion(ctx context.Context, req *ConversionRequest, format OutputFormat) (*ConversionPlan, error) {
	cfg, ok := p.formats[format]
	if !ok || cfg == nil {
		return nil, nil
	}

	if req == nil || req.Table == nil {
		return nil, fmt.Errorf("conversion request must carry a source table")
	}
	if len(req.TargetSchema) == 0 {
		return nil, fmt.Errorf("conversion request must carry a target schema")
	}

	partitionCols, err := ParsePartitionColumns(req.Partition)
	if err != nil {
		return nil, err
	}
	partitionDir := PartitionDirectoryName(cfg.SourcePathIdentifiers, req.Partition)

	stagingTable := stagingTableName(cfg.stagingPrefix(), p.now(), p.randDigit())
	stagingLocation := stagingDataLocation(cfg.DestinationDataRoot, stagingTable)
	finalLocation := finalDataLocation(cfg.DestinationDataRoot)

	destination, err := p.destinationMeta(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := p.createDestinationRoot(req.Table.DataLocation, cfg.DestinationDataRoot); err != nil {
		return nil, err
	}

	var destTable *hive.TableMeta
	if destination.Exists() {
		destTable = destination.Table
	}

	statements := stagingStatements(cfg, req, destTable, stagingTable, stagingLocation, partitionDir, partitionCols)
	evolution := evolutionStatements(cfg, req.TargetSchema, destTable)

	replaced, err := replacedPartitions(req.Partition, partitionCols)
	if err != nil {
		return nil, err
	}

	publish := buildPublishPlan(publishInput{
		cfg:             cfg,
		req:             req,
		destination:     destination,
		stagingTable:    stagingTable,
		stagingLocation: stagingLocation,
		finalLocation:   finalLocation,
		partitionCols:   partitionCols,
		partitionDir:    partitionDir,
		evolution:       evolution,
		replaced:        replaced,
	})

	return &ConversionPlan{
		StagingTable:    stagingTable,
		StagingLocation: stagingLocation,
		Statements:      statements,
		Publish:         publish,
		Destination:     destination,
	}, nil
}

// destinationMeta resolves the destination table in the catalog. Not-found
// is the expected first-time-conversion state; any other lookup failure is
// fatal and aborts planning.
func (p *Planner) destinationMeta(ctx context.Context, cfg *ConversionConfig) (*DestinationMeta, error) {
	table, err := p.catalog.GetTable(ctx, cfg.DestinationDatabase, cfg.DestinationTable)
	if hive.IsNotFound(err) {
		return &DestinationMeta{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not fetch destination table metadata for %s.%s: %w",
			cfg.DestinationDatabase, cfg.DestinationTable, err)
	}

	meta := &DestinationMeta{Table: table}
	if table.IsPartitioned() {
		partitions, err := p.catalog.GetPartitions(ctx, cfg.DestinationDatabase, cfg.DestinationTable)
		if err != nil {
			return nil, fmt.Errorf("could not fetch destination partitions for %s.%s: %w",
				cfg.DestinationDatabase, cfg.DestinationTable, err)
		}
		meta.Partitions = partitions
	}

	return meta, nil
}

// createDestinationRoot creates the destination data root with the same
// permission bits as the source data directory. The bits are reapplied
// after creation because the process umask can mask them during mkdir.
func (p *Planner) createDestinationRoot(sourceLocation, dataRoot string) error {
	perm, err := p.fs.StatPermission(sourceLocation)
	if err != nil {
		return fmt.Errorf("could not stat source data location %s: %w", sourceLocation, err)
	}
	if err := p.fs.Mkdir(dataRoot, perm); err != nil {
		return fmt.Errorf("failed to create %s with permissions %v: %w", dataRoot, perm, err)
	}
	if err := p.fs.SetPermission(dataRoot, perm); err != nil {
		return fmt.Errorf("failed to set permissions %v on %s: %w", perm, dataRoot, err)
	}
	return nil
}
