package advisory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/stackbump/pkg/errors"
	"github.com/matzehuels/stackbump/pkg/version"
)

const sample = `advisories:
  - id: GHSA-guava
    dependency: com.google.guava:guava
    vulnerable: ["< 23.5.0"]
  - dependency: org.apache.commons:commons-text
    vulnerable: ["[1.5,1.10.0)"]
    patched: ["[1.10.0,)"]
`

func TestLoad(t *testing.T) {
	got, err := Load(strings.NewReader(sample), version.Maven)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Load() returned %d advisories, want 2", len(got))
	}

	tests := []struct {
		advisory   int
		version    string
		vulnerable bool
	}{
		{0, "23.3-jre", true},
		{0, "23.5-jre", false},
		{1, "1.9", true},
		{1, "1.10.0", false},
		{1, "1.4", false},
	}
	for _, tt := range tests {
		v := version.MustParse(tt.version, version.Maven)
		if got := got[tt.advisory].IsVulnerable(v); got != tt.vulnerable {
			t.Errorf("advisory %d IsVulnerable(%s) = %v, want %v", tt.advisory, tt.version, got, tt.vulnerable)
		}
	}
	if got[0].ID != "GHSA-guava" || got[1].DependencyName != "org.apache.commons:commons-text" {
		t.Errorf("unexpected advisories: %+v", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"unknown field", "advisories:\n  - dependency: a\n    fixed: [\"1.0\"]\n", errors.ErrCodeInvalidConfig},
		{"no dependency", "advisories:\n  - vulnerable: [\"< 1.0\"]\n", errors.ErrCodeInvalidConfig},
		{"no ranges", "advisories:\n  - dependency: a\n", errors.ErrCodeInvalidConfig},
		{"malformed range", "advisories:\n  - dependency: a\n    vulnerable: [\"[1.0\"]\n", errors.ErrCodeMalformedRequirement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.content), version.Maven)
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoadEmpty(t *testing.T) {
	got, err := Load(strings.NewReader(""), version.Npm)
	if err != nil || len(got) != 0 {
		t.Errorf("Load(empty) = %v, %v", got, err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisories.yaml")
	content := "advisories:\n  - dependency: lodash\n    safe: [\">= 4.17.21\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFile(path, version.Npm)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if !got[0].IsVulnerable(version.MustParse("4.17.20", version.Npm)) {
		t.Error("4.17.20 should be outside the safe range")
	}
	if got[0].IsVulnerable(version.MustParse("4.17.21", version.Npm)) {
		t.Error("4.17.21 should be safe")
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), version.Npm); err == nil {
		t.Error("LoadFile(missing) should fail")
	}
}
