package languages

import "testing"

func TestFind(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"java", "java"},
		{"maven", "java"},
		{"JavaScript", "javascript"},
		{"npm", "javascript"},
		{"gomod", "go"},
		{"cargo", "rust"},
		{"cobol", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Find(tt.name)
			got := ""
			if l != nil {
				got = l.Name
			}
			if got != tt.want {
				t.Errorf("Find(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestForFile(t *testing.T) {
	tests := map[string]string{
		"pom.xml":                 "java",
		"core/pom.xml":            "java",
		".mvn/extensions.xml":     "java",
		"packages/a/package.json": "javascript",
		"pnpm-workspace.yaml":     "javascript",
		"go.mod":                  "go",
		"crates/x/Cargo.toml":     "rust",
		"requirements.txt":        "",
	}
	for file, want := range tests {
		l := ForFile(file)
		got := ""
		if l != nil {
			got = l.Name
		}
		if got != want {
			t.Errorf("ForFile(%q) = %q, want %q", file, got, want)
		}
	}
}
