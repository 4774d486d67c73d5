package planner

import (
	"strings"
	"testing"

	"github.com/orcify/orcify/hive"
)

func evolutionConfig(enabled bool) *ConversionConfig {
	return &ConversionConfig{
		DestinationDatabase: "orc_db",
		DestinationTable:    "events_orc",
		EvolutionEnabled:    enabled,
	}
}

func TestEvolutionStatements_DestinationAbsent(t *testing.T) {
	target := hive.Columns{{Name: "id", Type: "bigint"}}

	if got := evolutionStatements(evolutionConfig(true), target, nil); got != nil {
		t.Errorf("Expected no evolution for absent destination, got %v", got)
	}
}

func TestEvolutionStatements_EvolutionDisabled(t *testing.T) {
	target := hive.Columns{{Name: "id", Type: "bigint"}, {Name: "referrer", Type: "string"}}
	destination := &hive.TableMeta{
		Database: "orc_db",
		Name:     "events_orc",
		Columns:  hive.Columns{{Name: "id", Type: "bigint"}},
	}

	if got := evolutionStatements(evolutionConfig(false), target, destination); got != nil {
		t.Errorf("Expected no evolution when disabled, got %v", got)
	}
}

func TestEvolutionStatements_SingleNewColumn(t *testing.T) {
	target := hive.Columns{
		{Name: "id", Type: "bigint"},
		{Name: "url", Type: "string"},
		{Name: "referrer", Type: "string"},
	}
	destination := &hive.TableMeta{
		Database: "orc_db",
		Name:     "events_orc",
		Columns:  hive.Columns{{Name: "id", Type: "bigint"}, {Name: "url", Type: "string"}},
	}

	got := evolutionStatements(evolutionConfig(true), target, destination)
	if len(got) != 1 {
		t.Fatalf("Expected exactly one evolution statement, got %d", len(got))
	}
	if !strings.Contains(got[0], "ADD COLUMNS (`referrer` string)") {
		t.Errorf("Expected add columns for referrer, got: %s", got[0])
	}
	if strings.Contains(got[0], "`id`") || strings.Contains(got[0], "`url`") {
		t.Errorf("Evolution must only name new columns, got: %s", got[0])
	}
}

func TestEvolutionStatements_NewColumnsKeepTargetOrder(t *testing.T) {
	target := hive.Columns{
		{Name: "id", Type: "bigint"},
		{Name: "referrer", Type: "string"},
		{Name: "agent", Type: "string"},
	}
	destination := &hive.TableMeta{
		Database: "orc_db",
		Name:     "events_orc",
		Columns:  hive.Columns{{Name: "id", Type: "bigint"}},
	}

	got := evolutionStatements(evolutionConfig(true), target, destination)
	if len(got) != 1 {
		t.Fatalf("Expected a single statement, got %d", len(got))
	}
	refIdx := strings.Index(got[0], "`referrer`")
	agentIdx := strings.Index(got[0], "`agent`")
	if refIdx == -1 || agentIdx == -1 || refIdx > agentIdx {
		t.Errorf("Expected target-schema order for new columns, got: %s", got[0])
	}
}

func TestEvolutionStatements_NoNewColumns(t *testing.T) {
	target := hive.Columns{{Name: "id", Type: "bigint"}}
	destination := &hive.TableMeta{
		Database: "orc_db",
		Name:     "events_orc",
		Columns:  hive.Columns{{Name: "id", Type: "bigint"}},
	}

	if got := evolutionStatements(evolutionConfig(true), target, destination); got != nil {
		t.Errorf("Expected no statement when schemas match, got %v", got)
	}
}
