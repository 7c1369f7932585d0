package java

import "testing"

func TestNormalizeCoordinate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		// Already has colon - unchanged
		{"com.google.guava:guava", "com.google.guava:guava"},
		{"org.apache.commons:commons-lang3", "org.apache.commons:commons-lang3"},

		// Underscore converted to colon
		{"com.google.guava_guava", "com.google.guava:guava"},
		{"org.apache.commons_commons-lang3", "org.apache.commons:commons-lang3"},

		// No colon or underscore - unchanged
		{"simple-name", "simple-name"},
		{"", ""},

		// Multiple underscores - only last one converted
		{"com.example_foo_bar", "com.example_foo:bar"},

		// Edge case: underscore at start or end
		{"_test", ":test"},
		{"test_", "test:"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeCoordinate(tt.input); got != tt.want {
				t.Errorf("NormalizeCoordinate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLanguage(t *testing.T) {
	if !Language.Supports("services/api/pom.xml") || !Language.Supports(".mvn/extensions.xml") {
		t.Error("Language should support pom.xml and extensions.xml")
	}
	if Language.Supports("package.json") {
		t.Error("Language should not support package.json")
	}
	if Language.Parser().Type() != "pom.xml" {
		t.Errorf("Parser().Type() = %q", Language.Parser().Type())
	}
	if got := Language.Normalize("com.google.guava_guava"); got != "com.google.guava:guava" {
		t.Errorf("Normalize() = %q", got)
	}
}
