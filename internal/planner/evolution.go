package planner

import (
	"github.com/orcify/orcify/hive"
	"github.com/orcify/orcify/hive/hiveql"
)

// evolutionStatements computes the additive DDL reconciling the target
// schema with an existing destination table.
//
// Destination absent: nothing to evolve, the publish step creates the table
// with the full target schema. Evolution disabled: nothing is emitted here
// either; if the staging schema is incompatible with the destination, the
// mapping DML fails at execution time, which is the intended fail-fast for
// that configuration. Otherwise a single ADD COLUMNS statement covers
// exactly the target columns the destination lacks, in target-schema order.
// Existing destination columns are never dropped or retyped.
func evolutionStatements(cfg *ConversionConfig, target hive.Columns, destination *hive.TableMeta) []string {
	if destination == nil || !cfg.EvolutionEnabled {
		return nil
	}

	var added hive.Columns
	for _, col := range target {
		if !destination.Columns.Contains(col.Name) {
			added = append(added, col)
		}
	}
	if len(added) == 0 {
		return nil
	}

	return []string{hiveql.AddColumnsDDL(cfg.DestinationDatabase, cfg.DestinationTable, added)}
}
