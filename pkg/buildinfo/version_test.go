package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	Version, Commit, Date = "v1.2.3", "abc123", "2026-01-01"
	defer func() { Version, Commit, Date = "dev", "none", "unknown" }()

	tmpl := Template()
	for _, want := range []string{"v1.2.3", "abc123", "2026-01-01", "{{.Name}}"} {
		if !strings.Contains(tmpl, want) {
			t.Errorf("Template() = %q, missing %q", tmpl, want)
		}
	}
	if got := ServerHeader(); got != "stripview/v1.2.3" {
		t.Errorf("ServerHeader() = %q, want %q", got, "stripview/v1.2.3")
	}
}

func TestStringDefaults(t *testing.T) {
	want := "version: dev\ncommit: none\nbuilt: unknown"
	if got := String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
