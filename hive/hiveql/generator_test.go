package hiveql

import (
	"strings"
	"testing"

	"github.com/orcify/orcify/hive"
)

func TestCreateTableDDL_Basic(t *testing.T) {
	ddl := CreateTableDDL(CreateTableOptions{
		Database: "orc_db",
		Table:    "pageviews_orc",
		Columns: hive.Columns{
			{Name: "id", Type: "bigint"},
			{Name: "url", Type: "string"},
		},
		Location: "/data/orc_db/pageviews_orc/final",
	})

	if !strings.Contains(ddl, "CREATE EXTERNAL TABLE IF NOT EXISTS `orc_db`.`pageviews_orc`") {
		t.Errorf("Expected create table header, got: %s", ddl)
	}
	if !strings.Contains(ddl, "`id` bigint") {
		t.Errorf("Expected id column definition, got: %s", ddl)
	}
	if !strings.Contains(ddl, "`url` string") {
		t.Errorf("Expected url column definition, got: %s", ddl)
	}
	if !strings.Contains(ddl, "ROW FORMAT SERDE 'org.apache.hadoop.hive.ql.io.orc.OrcSerde'") {
		t.Errorf("Expected ORC serde clause, got: %s", ddl)
	}
	if !strings.Contains(ddl, "LOCATION '/data/orc_db/pageviews_orc/final'") {
		t.Errorf("Expected location clause, got: %s", ddl)
	}
	if strings.Contains(ddl, "PARTITIONED BY") {
		t.Errorf("Unexpected partition clause for snapshot table: %s", ddl)
	}
}

func TestCreateTableDDL_PartitionedClusteredWithProperties(t *testing.T) {
	ddl := CreateTableDDL(CreateTableOptions{
		Database: "orc_db",
		Table:    "events_orc",
		Columns: hive.Columns{
			{Name: "id", Type: "bigint"},
		},
		Location: "/data/events/final",
		PartitionColumns: []PartitionColumn{
			{Name: "datepartition", Type: "string"},
		},
		ClusterBy:  []string{"id"},
		NumBuckets: 4,
		TableProperties: map[string]string{
			"orc.compress": "SNAPPY",
		},
	})

	if !strings.Contains(ddl, "PARTITIONED BY (`datepartition` string)") {
		t.Errorf("Expected partition clause, got: %s", ddl)
	}
	if !strings.Contains(ddl, "CLUSTERED BY (`id`) INTO 4 BUCKETS") {
		t.Errorf("Expected cluster clause, got: %s", ddl)
	}
	if !strings.Contains(ddl, "TBLPROPERTIES ('orc.compress'='SNAPPY')") {
		t.Errorf("Expected table properties, got: %s", ddl)
	}
}

func TestCreateTableDDL_AlignsWithExistingColumns(t *testing.T) {
	ddl := CreateTableDDL(CreateTableOptions{
		Database: "orc_db",
		Table:    "events_orc_stg",
		Columns: hive.Columns{
			{Name: "referrer", Type: "string"},
			{Name: "id", Type: "bigint"},
			{Name: "url", Type: "string"},
		},
		ExistingColumns: hive.Columns{
			{Name: "id", Type: "bigint"},
			{Name: "url", Type: "string"},
		},
		Location: "/data/events/stg",
	})

	idIdx := strings.Index(ddl, "`id`")
	refIdx := strings.Index(ddl, "`referrer`")
	if idIdx == -1 || refIdx == -1 {
		t.Fatalf("Expected both columns in DDL, got: %s", ddl)
	}
	if refIdx < idIdx {
		t.Errorf("Expected existing columns to precede new columns, got: %s", ddl)
	}
}

func TestAlignColumns_NoExisting(t *testing.T) {
	target := hive.Columns{{Name: "a", Type: "int"}, {Name: "b", Type: "string"}}
	aligned := AlignColumns(target, nil)
	if len(aligned) != 2 || aligned[0].Name != "a" || aligned[1].Name != "b" {
		t.Errorf("Expected target order preserved, got: %v", aligned)
	}
}

func TestAlignColumns_ExistingTypeWins(t *testing.T) {
	target := hive.Columns{{Name: "a", Type: "bigint"}}
	existing := hive.Columns{{Name: "a", Type: "int"}}
	aligned := AlignColumns(target, existing)
	if len(aligned) != 1 || aligned[0].Type != "int" {
		t.Errorf("Expected existing column type to be kept, got: %v", aligned)
	}
}

func TestCreatePartitionDDL(t *testing.T) {
	ddl := CreatePartitionDDL("orc_db", "events_orc", "/data/events/final/daily_datepartition=2016-01-02",
		[]PartitionColumn{{Name: "datepartition", Value: "2016-01-02"}})

	want := "ALTER TABLE `orc_db`.`events_orc` ADD IF NOT EXISTS PARTITION (`datepartition`='2016-01-02') LOCATION '/data/events/final/daily_datepartition=2016-01-02'"
	if ddl != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, ddl)
	}
}

func TestDropPartitionDDL_Composite(t *testing.T) {
	ddl := DropPartitionDDL("orc_db", "events_orc", []PartitionColumn{
		{Name: "country", Value: "us"},
		{Name: "datepartition", Value: "2016-01-02"},
	})

	want := "ALTER TABLE `orc_db`.`events_orc` DROP IF EXISTS PARTITION (`country`='us', `datepartition`='2016-01-02')"
	if ddl != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, ddl)
	}
}

func TestDropTableDDL(t *testing.T) {
	ddl := DropTableDDL("orc_db", "events_orc_stg_14545000")
	if ddl != "DROP TABLE IF EXISTS `orc_db`.`events_orc_stg_14545000`" {
		t.Errorf("Unexpected drop table DDL: %s", ddl)
	}
}

func TestAddColumnsDDL(t *testing.T) {
	ddl := AddColumnsDDL("orc_db", "events_orc", hive.Columns{
		{Name: "referrer", Type: "string"},
	})
	if ddl != "ALTER TABLE `orc_db`.`events_orc` ADD COLUMNS (`referrer` string)" {
		t.Errorf("Unexpected add columns DDL: %s", ddl)
	}
}

func TestMappingDML_Snapshot(t *testing.T) {
	dml := MappingDML(MappingOptions{
		SourceDatabase:      "tracking",
		SourceTable:         "pageviews",
		SourceColumns:       hive.Columns{{Name: "id", Type: "bigint"}, {Name: "url", Type: "string"}},
		DestinationDatabase: "orc_db",
		DestinationTable:    "pageviews_orc_stg_14545000",
		TargetColumns:       hive.Columns{{Name: "id", Type: "bigint"}, {Name: "url", Type: "string"}},
	})

	if !strings.Contains(dml, "INSERT OVERWRITE TABLE `orc_db`.`pageviews_orc_stg_14545000`") {
		t.Errorf("Expected insert header, got: %s", dml)
	}
	if !strings.Contains(dml, "`id`,") || !strings.Contains(dml, "`url`") {
		t.Errorf("Expected both columns selected, got: %s", dml)
	}
	if !strings.Contains(dml, "FROM `tracking`.`pageviews`") {
		t.Errorf("Expected from clause, got: %s", dml)
	}
	if strings.Contains(dml, "WHERE") || strings.Contains(dml, "LIMIT") {
		t.Errorf("Unexpected WHERE/LIMIT for snapshot mapping: %s", dml)
	}
}

func TestMappingDML_PartitionedWithRowLimit(t *testing.T) {
	dml := MappingDML(MappingOptions{
		SourceDatabase:      "tracking",
		SourceTable:         "events",
		SourceColumns:       hive.Columns{{Name: "id", Type: "bigint"}},
		DestinationDatabase: "orc_db",
		DestinationTable:    "events_orc_stg_14545000",
		TargetColumns:       hive.Columns{{Name: "id", Type: "bigint"}, {Name: "referrer", Type: "string"}},
		PartitionValues:     []PartitionColumn{{Name: "datepartition", Value: "2016-01-02"}},
		RowLimit:            1000,
	})

	if !strings.Contains(dml, "PARTITION (`datepartition`='2016-01-02')") {
		t.Errorf("Expected partition clause, got: %s", dml)
	}
	if !strings.Contains(dml, "NULL AS `referrer`") {
		t.Errorf("Expected NULL mapping for column missing from source, got: %s", dml)
	}
	if !strings.Contains(dml, "WHERE `datepartition`='2016-01-02'") {
		t.Errorf("Expected where clause, got: %s", dml)
	}
	if !strings.Contains(dml, "LIMIT 1000") {
		t.Errorf("Expected row limit, got: %s", dml)
	}
}

func TestMappingDML_StrictSourceSelectsMissingColumnByName(t *testing.T) {
	dml := MappingDML(MappingOptions{
		SourceDatabase:      "tracking",
		SourceTable:         "events",
		SourceColumns:       hive.Columns{{Name: "id", Type: "bigint"}},
		DestinationDatabase: "orc_db",
		DestinationTable:    "events_orc_stg_14545000",
		TargetColumns:       hive.Columns{{Name: "id", Type: "bigint"}, {Name: "url", Type: "string"}},
		StrictSource:        true,
	})

	// The missing column is selected verbatim so the statement fails at
	// execution time instead of quietly loading NULL.
	if strings.Contains(dml, "NULL AS") {
		t.Errorf("Unexpected NULL substitution in strict mapping: %s", dml)
	}
	if !strings.Contains(dml, "`url`") {
		t.Errorf("Expected missing column selected by name, got: %s", dml)
	}
}

func TestSetStatement(t *testing.T) {
	if got := SetStatement("hive.exec.dynamic.partition", "true"); got != "SET hive.exec.dynamic.partition=true" {
		t.Errorf("Unexpected SET statement: %s", got)
	}
}
