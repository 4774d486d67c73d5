package planner

import (
	"github.com/orcify/orcify/hive/hiveql"
)

// publishInput carries the planning context the publish phase needs.
type publishInput struct {
	cfg             *ConversionConfig
	req             *ConversionRequest
	destination     *DestinationMeta
	stagingTable    string
	stagingLocation string
	finalLocation   string
	partitionCols   []hiveql.PartitionColumn
	partitionDir    string
	evolution       []string
	replaced        [][]hiveql.PartitionColumn
}

// buildPublishPlan assembles the publish/cleanup plan.
//
// Publish statements start with a create-final-table when the destination is
// absent, then the evolution DDL. A snapshot table publishes by a single
// whole-directory replace; a partitioned table drops the catalog entry for
// the partition, moves its directory, then recreates the partition against
// the new location. The drop must precede the move because the catalog may
// still reference the superseded directory. Cleanup is the same for both
// branches: drop the per-run staging table and delete its directory, which
// covers every staged partition subdirectory. Superseded ("replaced")
// partitions are dropped last.
func buildPublishPlan(in publishInput) *PublishPlan {
	plan := &PublishPlan{}

	if !in.destination.Exists() {
		plan.PublishStatements = append(plan.PublishStatements, hiveql.CreateTableDDL(hiveql.CreateTableOptions{
			Database:         in.cfg.DestinationDatabase,
			Table:            in.cfg.DestinationTable,
			Columns:          in.req.TargetSchema,
			Location:         in.finalLocation,
			PartitionColumns: in.partitionCols,
			ClusterBy:        in.cfg.ClusterBy,
			NumBuckets:       in.cfg.NumBuckets,
			TableProperties:  in.cfg.TableProperties,
		}))
	}

	plan.PublishStatements = append(plan.PublishStatements, in.evolution...)

	if len(in.partitionCols) == 0 {
		// Snapshot table: full-directory replace.
		plan.PublishDirectories = append(plan.PublishDirectories, DirectoryMove{
			From: in.stagingLocation,
			To:   in.finalLocation,
		})
	} else {
		plan.PublishStatements = append(plan.PublishStatements,
			hiveql.DropPartitionDDL(in.cfg.DestinationDatabase, in.cfg.DestinationTable, in.partitionCols))

		finalPartitionLocation := in.finalLocation + "/" + in.partitionDir
		plan.PublishDirectories = append(plan.PublishDirectories, DirectoryMove{
			From: in.stagingLocation + "/" + in.partitionDir,
			To:   finalPartitionLocation,
		})

		plan.PublishStatements = append(plan.PublishStatements,
			hiveql.CreatePartitionDDL(in.cfg.DestinationDatabase, in.cfg.DestinationTable, finalPartitionLocation, in.partitionCols))
	}

	plan.CleanupStatements = append(plan.CleanupStatements,
		hiveql.DropTableDDL(in.cfg.DestinationDatabase, in.stagingTable))
	plan.CleanupDirectories = append(plan.CleanupDirectories, in.stagingLocation)

	for _, tuple := range in.replaced {
		plan.PublishStatements = append(plan.PublishStatements,
			hiveql.DropPartitionDDL(in.cfg.DestinationDatabase, in.cfg.DestinationTable, tuple))
	}

	return plan
}
