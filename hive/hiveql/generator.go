// Package hiveql generates the HiveQL DDL and DML statements the conversion
// planner emits. Statements are returned as plain strings; nothing here
// executes anything.
package hiveql

import (
	"fmt"
	"sort"
	"strings"

	"github.com/orcify/orcify/hive"
)

// ORC serde and storage handler classes for destination tables.
const (
	orcSerde        = "org.apache.hadoop.hive.ql.io.orc.OrcSerde"
	orcInputFormat  = "org.apache.hadoop.hive.ql.io.orc.OrcInputFormat"
	orcOutputFormat = "org.apache.hadoop.hive.ql.io.orc.OrcOutputFormat"
)

// PartitionColumn is one partition key with its Hive type and, where the
// statement needs it, a concrete value.
type PartitionColumn struct {
	Name  string
	Type  string
	Value string
}

// CreateTableOptions collects everything CreateTableDDL needs.
type CreateTableOptions struct {
	Database         string
	Table            string
	Columns          hive.Columns
	Location         string
	PartitionColumns []PartitionColumn
	ClusterBy        []string
	NumBuckets       int
	TableProperties  map[string]string

	// ExistingColumns, when non-empty, is the column list of a
	// pre-existing destination table. The generated schema then follows
	// the existing order and types for columns both sides share, with
	// new target columns appended. This keeps staging aligned with the
	// destination instead of the raw target schema.
	ExistingColumns hive.Columns
}

// MappingOptions collects the inputs of the staging INSERT ... SELECT.
type MappingOptions struct {
	SourceDatabase      string
	SourceTable         string
	SourceColumns       hive.Columns
	DestinationDatabase string
	DestinationTable    string
	TargetColumns       hive.Columns
	PartitionValues     []PartitionColumn
	RowLimit            int

	// StrictSource selects target columns missing from the source schema by
	// name instead of substituting NULL. The statement then fails in the
	// executor when the source cannot provide the column, which is the
	// contract when schema evolution is disabled.
	StrictSource bool
}

func quoteIdent(name string) string {
	return "`" + name + "`"
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "\\'") + "'"
}

// AlignColumns orders the target schema against an existing destination
// schema: destination columns first (destination order and types), then any
// target columns the destination does not have yet, in target order.
func AlignColumns(target, existing hive.Columns) hive.Columns {
	if len(existing) == 0 {
		return target
	}
	aligned := make(hive.Columns, 0, len(target)+len(existing))
	aligned = append(aligned, existing...)
	for _, col := range target {
		if !existing.Contains(col.Name) {
			aligned = append(aligned, col)
		}
	}
	return aligned
}

// SetStatement emits a runtime property assignment.
func SetStatement(key, value string) string {
	return fmt.Sprintf("SET %s=%s", key, value)
}

// CreateTableDDL generates the CREATE EXTERNAL TABLE statement for an
// ORC-backed destination or staging table.
func CreateTableDDL(opts CreateTableOptions) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("CREATE EXTERNAL TABLE IF NOT EXISTS %s.%s (\n",
		quoteIdent(opts.Database), quoteIdent(opts.Table)))

	columns := AlignColumns(opts.Columns, opts.ExistingColumns)
	for i, col := range columns {
		sb.WriteString("  ")
		sb.WriteString(formatColumnDefinition(col))
		if i < len(columns)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(")")

	if len(opts.PartitionColumns) > 0 {
		var keys []string
		for _, pc := range opts.PartitionColumns {
			keys = append(keys, fmt.Sprintf("%s %s", quoteIdent(pc.Name), pc.Type))
		}
		sb.WriteString(fmt.Sprintf("\nPARTITIONED BY (%s)", strings.Join(keys, ", ")))
	}

	if len(opts.ClusterBy) > 0 {
		var cols []string
		for _, c := range opts.ClusterBy {
			cols = append(cols, quoteIdent(c))
		}
		sb.WriteString(fmt.Sprintf("\nCLUSTERED BY (%s)", strings.Join(cols, ", ")))
		if opts.NumBuckets > 0 {
			sb.WriteString(fmt.Sprintf(" INTO %d BUCKETS", opts.NumBuckets))
		}
	}

	sb.WriteString(fmt.Sprintf("\nROW FORMAT SERDE %s", quoteLiteral(orcSerde)))
	sb.WriteString(fmt.Sprintf("\nSTORED AS INPUTFORMAT %s OUTPUTFORMAT %s",
		quoteLiteral(orcInputFormat), quoteLiteral(orcOutputFormat)))
	sb.WriteString(fmt.Sprintf("\nLOCATION %s", quoteLiteral(opts.Location)))

	if len(opts.TableProperties) > 0 {
		keys := make([]string, 0, len(opts.TableProperties))
		for k := range opts.TableProperties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var props []string
		for _, k := range keys {
			props = append(props, fmt.Sprintf("%s=%s", quoteLiteral(k), quoteLiteral(opts.TableProperties[k])))
		}
		sb.WriteString(fmt.Sprintf("\nTBLPROPERTIES (%s)", strings.Join(props, ", ")))
	}

	return sb.String()
}

// CreatePartitionDDL generates the idempotent ADD PARTITION statement
// pointing a partition at an explicit data location.
func CreatePartitionDDL(db, table, location string, partitions []PartitionColumn) string {
	return fmt.Sprintf("ALTER TABLE %s.%s ADD IF NOT EXISTS PARTITION (%s) LOCATION %s",
		quoteIdent(db), quoteIdent(table), formatPartitionSpec(partitions), quoteLiteral(location))
}

// DropPartitionDDL generates the idempotent DROP PARTITION statement.
// Absence of the partition is not an error.
func DropPartitionDDL(db, table string, partitions []PartitionColumn) string {
	return fmt.Sprintf("ALTER TABLE %s.%s DROP IF EXISTS PARTITION (%s)",
		quoteIdent(db), quoteIdent(table), formatPartitionSpec(partitions))
}

// DropTableDDL generates the idempotent DROP TABLE statement used to tear
// down staging tables.
func DropTableDDL(db, table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s.%s", quoteIdent(db), quoteIdent(table))
}

// AddColumnsDDL generates the single additive evolution statement. Columns
// are emitted in the order given; callers pass target-schema order.
func AddColumnsDDL(db, table string, cols hive.Columns) string {
	var defs []string
	for _, col := range cols {
		defs = append(defs, formatColumnDefinition(col))
	}
	return fmt.Sprintf("ALTER TABLE %s.%s ADD COLUMNS (%s)",
		quoteIdent(db), quoteIdent(table), strings.Join(defs, ", "))
}

// MappingDML generates the INSERT ... SELECT that populates the staging
// table from the source table. Unless StrictSource is set, target columns
// missing from the source schema select NULL so that an evolved destination
// schema stays loadable from an older source.
func MappingDML(opts MappingOptions) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("INSERT OVERWRITE TABLE %s.%s",
		quoteIdent(opts.DestinationDatabase), quoteIdent(opts.DestinationTable)))

	if len(opts.PartitionValues) > 0 {
		sb.WriteString(fmt.Sprintf(" PARTITION (%s)", formatPartitionSpec(opts.PartitionValues)))
	}

	sb.WriteString("\nSELECT\n")
	for i, col := range opts.TargetColumns {
		sb.WriteString("  ")
		if opts.SourceColumns.Contains(col.Name) || opts.StrictSource {
			sb.WriteString(quoteIdent(col.Name))
		} else {
			sb.WriteString(fmt.Sprintf("NULL AS %s", quoteIdent(col.Name)))
		}
		if i < len(opts.TargetColumns)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("FROM %s.%s",
		quoteIdent(opts.SourceDatabase), quoteIdent(opts.SourceTable)))

	if len(opts.PartitionValues) > 0 {
		var conds []string
		for _, pv := range opts.PartitionValues {
			conds = append(conds, fmt.Sprintf("%s=%s", quoteIdent(pv.Name), quoteLiteral(pv.Value)))
		}
		sb.WriteString(fmt.Sprintf("\nWHERE %s", strings.Join(conds, " AND ")))
	}

	if opts.RowLimit > 0 {
		sb.WriteString(fmt.Sprintf("\nLIMIT %d", opts.RowLimit))
	}

	return sb.String()
}

func formatColumnDefinition(col hive.Column) string {
	def := fmt.Sprintf("%s %s", quoteIdent(col.Name), col.Type)
	if col.Comment != "" {
		def += fmt.Sprintf(" COMMENT %s", quoteLiteral(col.Comment))
	}
	return def
}

func formatPartitionSpec(partitions []PartitionColumn) string {
	var parts []string
	for _, pc := range partitions {
		parts = append(parts, fmt.Sprintf("%s=%s", quoteIdent(pc.Name), quoteLiteral(pc.Value)))
	}
	return strings.Join(parts, ", ")
}
