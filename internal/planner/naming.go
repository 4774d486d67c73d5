package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/orcify/orcify/hive"
)

// publishedTableSubdirectory is the subdirectory of the destination data
// root that holds published data, keeping it apart from staging directories
// that live under the same root.
const publishedTableSubdirectory = "final"

// stagingTableName derives the per-run staging table name: the configured
// prefix, the current epoch milliseconds and a single random digit. The
// digit keeps two conversions started in the same millisecond apart; the
// scope is one run, so the residual collision chance is accepted.
func stagingTableName(prefix string, now time.Time, digit int) string {
	return fmt.Sprintf("%s_%d%d", prefix, now.UnixMilli(), digit)
}

// PartitionDirectoryName derives the destination directory name for a
// partition: every hint that is a case-insensitive substring of the
// partition's source data location contributes "<hint>_" in hint order, and
// the raw partition spec name follows. A table-level conversion (no
// partition) yields "".
//
// The prefix is what keeps an hourly and a daily partition with the same
// point-in-time value from landing in the same destination directory, so
// in-flight queries on the finer-granularity data keep working during a
// rollup.
func PartitionDirectoryName(hints []string, partition *hive.PartitionMeta) string {
	if partition == nil {
		return ""
	}

	var prefix strings.Builder
	sourceLocation := strings.ToLower(partition.DataLocation)
	for _, hint := range hints {
		lower := strings.ToLower(hint)
		if strings.Contains(sourceLocation, lower) {
			prefix.WriteString(lower)
			prefix.WriteString("_")
		}
	}

	return prefix.String() + partition.Name
}

// finalDataLocation is <destinationDataRoot>/final.
func finalDataLocation(dataRoot string) string {
	return dataRoot + "/" + publishedTableSubdirectory
}

// stagingDataLocation is <destinationDataRoot>/<stagingTableName>.
func stagingDataLocation(dataRoot, stagingTable string) string {
	return dataRoot + "/" + stagingTable
}
