package cmd

import (
	"strings"
	"testing"
)

func TestBuildVersion(t *testing.T) {
	v := buildVersion()
	if v == "" {
		t.Fatal("Expected a non-empty version string")
	}
	if strings.Contains(v, "(devel)") {
		t.Errorf("Expected the devel placeholder to be normalized, got: %s", v)
	}
}
