// Package languages provides the complete list of supported ecosystems.
//
// This package exists to break import cycles: the individual language
// packages (java, rust, etc.) import pkg/deps, so pkg/deps cannot import them
// back. Consumers that need the full list import this package instead.
package languages

import (
	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/deps/golang"
	"github.com/matzehuels/stackbump/pkg/deps/java"
	"github.com/matzehuels/stackbump/pkg/deps/javascript"
	"github.com/matzehuels/stackbump/pkg/deps/rust"
)

// All is the canonical list of supported package ecosystems.
var All = []*deps.Language{
	java.Language,
	javascript.Language,
	golang.Language,
	rust.Language,
}

// Find returns the Language with the given name or version family, or nil.
func Find(name string) *deps.Language {
	return deps.FindLanguage(name, All)
}

// ForFile returns the Language that reads filename, or nil.
func ForFile(filename string) *deps.Language {
	return deps.LanguageFor(filename, All)
}
