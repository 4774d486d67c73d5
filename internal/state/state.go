// Package state persists publish plans so that planning and publishing can
// run as decoupled phases, possibly in different processes. Plan files are
// JSON, written atomically and validated against an embedded schema on load.
package state

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/orcify/orcify/internal/planner"
)

//go:embed publishplan.schema.json
var planSchema []byte

// PlanVersion is the plan file format version.
const PlanVersion = "1"

// PlanFile is the persisted form of one planning run's publish phase.
type PlanFile struct {
	Version         string              `json:"version"`
	Dataset         string              `json:"dataset"`
	Format          string              `json:"format"`
	CreatedAt       time.Time           `json:"created_at"`
	StagingTable    string              `json:"staging_table"`
	StagingLocation string              `json:"staging_location,omitempty"`
	Publish         planner.PublishPlan `json:"publish"`
}

// Save writes the plan file atomically (temp file, then rename) so a
// half-written plan is never picked up by a later publish phase.
func Save(path string, plan *PlanFile) error {
	if plan.Version == "" {
		plan.Version = PlanVersion
	}
	normalize(&plan.Publish)

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create plan directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}
	if err := os.Rename(tempFile, path); err != nil {
		return fmt.Errorf("failed to save plan file: %w", err)
	}

	return nil
}

// Load reads and validates a plan file.
func Load(path string) (*PlanFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	if err := Validate(data); err != nil {
		return nil, err
	}

	var plan PlanFile
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan file: %w", err)
	}
	return &plan, nil
}

// Validate checks plan file bytes against the embedded plan schema.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(planSchema),
		gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("plan validation failed: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("invalid plan file: %s", strings.Join(problems, "; "))
	}
	return nil
}

// normalize replaces nil collections with empty ones so the serialized plan
// always carries the four named collections as arrays.
func normalize(p *planner.PublishPlan) {
	if p.PublishStatements == nil {
		p.PublishStatements = []string{}
	}
	if p.PublishDirectories == nil {
		p.PublishDirectories = []planner.DirectoryMove{}
	}
	if p.CleanupStatements == nil {
		p.CleanupStatements = []string{}
	}
	if p.CleanupDirectories == nil {
		p.CleanupDirectories = []string{}
	}
}
