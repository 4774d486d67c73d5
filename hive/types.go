package hive

import "fmt"

// Column represents a single column of a Hive table schema.
type Column struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Comment string `json:"comment,omitempty"`
}

// Columns is an ordered table schema. Order matters: DDL and mapping DML
// emit columns in declaration order.
type Columns []Column

// Names returns the column names in declaration order.
func (c Columns) Names() []string {
	names := make([]string, len(c))
	for i, col := range c {
		names[i] = col.Name
	}
	return names
}

// Contains reports whether a column with the given name exists.
func (c Columns) Contains(name string) bool {
	for _, col := range c {
		if col.Name == name {
			return true
		}
	}
	return false
}

// TableMeta describes a table as registered in the catalog.
type TableMeta struct {
	Database      string            `json:"database"`
	Name          string            `json:"name"`
	DataLocation  string            `json:"data_location"`
	Columns       Columns           `json:"columns"`
	PartitionKeys Columns           `json:"partition_keys,omitempty"`
	Parameters    map[string]string `json:"parameters,omitempty"`
}

// QualifiedName returns the dataset identity string, e.g. "tracking@pageviews".
func (t *TableMeta) QualifiedName() string {
	return fmt.Sprintf("%s@%s", t.Database, t.Name)
}

// IsPartitioned reports whether the table declares partition keys.
func (t *TableMeta) IsPartitioned() bool {
	return len(t.PartitionKeys) > 0
}

// PartitionMeta describes a single partition of a partitioned table.
//
// Name is the raw partition spec, e.g. "datepartition=2016-01-02" or
// "country=us,datepartition=2016-01-02" for composite keys. Values holds the
// partition values in partition-key order. KeyTypes is the comma-separated
// partition column type list the catalog stores alongside the spec
// (the "partition_columns.types" property).
type PartitionMeta struct {
	Name         string            `json:"name"`
	Values       []string          `json:"values"`
	DataLocation string            `json:"data_location"`
	KeyTypes     string            `json:"key_types,omitempty"`
	Parameters   map[string]string `json:"parameters,omitempty"`
}

// QualifiedName returns the partition identity string for a table,
// e.g. "tracking@pageviews@datepartition=2016-01-02".
func (p *PartitionMeta) QualifiedName(table *TableMeta) string {
	return fmt.Sprintf("%s@%s", table.QualifiedName(), p.Name)
}

// ReplacedPartitionsKey is the partition parameter carrying the encoded list
// of partitions this partition supersedes. The key matches what upstream
// ingestion writes to the metastore, so it must not change.
const ReplacedPartitionsKey = "gobblin.replaced.partitions"
