package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/orcify/orcify/hive"
	"github.com/orcify/orcify/internal/planner"
)

func TestSplitSource(t *testing.T) {
	db, table, err := splitSource("tracking.pageviews")
	if err != nil {
		t.Fatalf("Failed to split source: %v", err)
	}
	if db != "tracking" || table != "pageviews" {
		t.Errorf("Unexpected split: %q, %q", db, table)
	}

	for _, bad := range []string{"", "pageviews", "a.b.c", ".pageviews", "tracking."} {
		if _, _, err := splitSource(bad); err == nil {
			t.Errorf("Expected %q to be rejected", bad)
		}
	}
}

type fakeCatalog struct {
	partitions []hive.PartitionMeta
}

func (f *fakeCatalog) GetTable(ctx context.Context, database, table string) (*hive.TableMeta, error) {
	return nil, hive.ErrNotFound
}

func (f *fakeCatalog) GetPartitions(ctx context.Context, database, table string) ([]hive.PartitionMeta, error) {
	return f.partitions, nil
}

func TestFindPartition(t *testing.T) {
	catalog := &fakeCatalog{partitions: []hive.PartitionMeta{
		{Name: "datepartition=2016-02-01"},
		{Name: "datepartition=2016-02-02"},
	}}

	p, err := findPartition(context.Background(), catalog, "tracking", "pageviews", "datepartition=2016-02-02")
	if err != nil {
		t.Fatalf("Failed to find partition: %v", err)
	}
	if p.Name != "datepartition=2016-02-02" {
		t.Errorf("Unexpected partition: %+v", p)
	}

	_, err = findPartition(context.Background(), catalog, "tracking", "pageviews", "datepartition=2016-03-01")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestResolveTargetSchemaFallsBackToTableColumns(t *testing.T) {
	planSchemaPath = ""
	table := &hive.TableMeta{
		Database: "tracking",
		Name:     "pageviews",
		Columns: hive.Columns{
			{Name: "id", Type: "bigint"},
			{Name: "url", Type: "string"},
		},
	}

	cols, err := resolveTargetSchema(table, planner.OutputFormatFlattened)
	if err != nil {
		t.Fatalf("Failed to resolve target schema: %v", err)
	}
	if len(cols) != 2 || cols[0].Name != "id" {
		t.Errorf("Unexpected columns: %+v", cols)
	}

	table.Columns = nil
	if _, err := resolveTargetSchema(table, planner.OutputFormatFlattened); err == nil {
		t.Error("Expected error when the table has no columns and no schema file is given")
	}
}
