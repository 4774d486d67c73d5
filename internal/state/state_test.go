package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/orcify/orcify/internal/planner"
)

func samplePlan() *PlanFile {
	return &PlanFile{
		Dataset:         "tracking@pageviews",
		Format:          "flattened",
		CreatedAt:       time.Date(2016, 2, 3, 12, 0, 0, 0, time.UTC),
		StagingTable:    "pageviews_orc_stg_14545000000007",
		StagingLocation: "/data/tracking/pageviews/orc/pageviews_orc_stg_14545000000007",
		Publish: planner.PublishPlan{
			PublishStatements: []string{
				"ALTER TABLE `orc_db`.`pageviews_orc` DROP IF EXISTS PARTITION (`datepartition`='2016-02-02')",
			},
			PublishDirectories: []planner.DirectoryMove{
				{From: "/data/staging/datepartition=2016-02-02", To: "/data/final/datepartition=2016-02-02"},
			},
			CleanupStatements: []string{
				"DROP TABLE IF EXISTS `orc_db_staging`.`pageviews_orc_stg_14545000000007`",
			},
			CleanupDirectories: []string{"/data/tracking/pageviews/orc/pageviews_orc_stg_14545000000007"},
		},
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans", "pageviews.json")

	if err := Save(path, samplePlan()); err != nil {
		t.Fatalf("Failed to save plan: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load plan: %v", err)
	}

	if loaded.Version != PlanVersion {
		t.Errorf("Expected version %q, got %q", PlanVersion, loaded.Version)
	}
	if loaded.Dataset != "tracking@pageviews" {
		t.Errorf("Unexpected dataset: %q", loaded.Dataset)
	}
	if loaded.StagingTable != "pageviews_orc_stg_14545000000007" {
		t.Errorf("Unexpected staging table: %q", loaded.StagingTable)
	}
	if len(loaded.Publish.PublishStatements) != 1 || len(loaded.Publish.PublishDirectories) != 1 {
		t.Errorf("Publish collections not round-tripped: %+v", loaded.Publish)
	}
	if loaded.Publish.PublishDirectories[0].To != "/data/final/datepartition=2016-02-02" {
		t.Errorf("Unexpected move destination: %q", loaded.Publish.PublishDirectories[0].To)
	}
}

func TestSaveNormalizesEmptyCollections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")

	plan := samplePlan()
	plan.Publish.PublishStatements = nil
	plan.Publish.CleanupDirectories = nil
	if err := Save(path, plan); err != nil {
		t.Fatalf("Failed to save plan: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "null") {
		t.Errorf("Expected empty arrays rather than null collections:\n%s", data)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("Saved plan must load back: %v", err)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	if err := Save(filepath.Join(dir, "plan.json"), samplePlan()); err != nil {
		t.Fatalf("Failed to save plan: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Errorf("Temp file left behind: %s", entry.Name())
		}
	}
}

func TestLoadRejectsInvalidPlan(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing publish",
			body: `{"version": "1", "dataset": "db@t", "format": "flattened", "staging_table": "t_stg_1"}`,
			want: "publish",
		},
		{
			name: "unknown format",
			body: `{"version": "1", "dataset": "db@t", "format": "parquet", "staging_table": "t_stg_1",
				"publish": {"publish_statements": [], "publish_directories": [], "cleanup_statements": [], "cleanup_directories": []}}`,
			want: "format",
		},
		{
			name: "move without destination",
			body: `{"version": "1", "dataset": "db@t", "format": "nested", "staging_table": "t_stg_1",
				"publish": {"publish_statements": [], "publish_directories": [{"from": "/a"}], "cleanup_statements": [], "cleanup_directories": []}}`,
			want: "to",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "plan.json")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := Load(path)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing plan file")
	}
}
