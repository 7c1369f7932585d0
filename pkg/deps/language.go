package deps

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/stackbump/pkg/cache"
	"github.com/matzehuels/stackbump/pkg/version"
)

// Language ties an ecosystem's version family, file parser and registry
// together. Each ecosystem package exports one as its Language variable.
type Language struct {
	Name            string
	Family          version.Family
	DefaultRegistry string
	RegistryAliases map[string]string
	FileTypes       []string // File names the parser reads, e.g. "pom.xml"
	NewResolver     func(opts RegistryOptions) Resolver
	NewParser       func() FileParser
	NormalizeName   func(string) string
}

// RegistryOptions configures the HTTP client behind a resolver.
type RegistryOptions struct {
	Cache   cache.Cache   // Response cache; nil disables caching
	TTL     time.Duration // Cache duration; zero means DefaultCacheTTL
	BaseURL string        // Overrides the registry endpoint (mirrors, tests)
}

func (o RegistryOptions) withDefaults() RegistryOptions {
	if o.TTL == 0 {
		o.TTL = DefaultCacheTTL
	}
	return o
}

// Registry returns a resolver for the named registry, accepting aliases.
func (l *Language) Registry(name string, opts RegistryOptions) (Resolver, error) {
	name = l.alias(l.RegistryAliases, name)
	if name != l.DefaultRegistry {
		return nil, fmt.Errorf("unknown registry %q (available: %s)", name, l.DefaultRegistry)
	}
	return l.NewResolver(opts.withDefaults()), nil
}

// Resolver returns a resolver for the default registry.
func (l *Language) Resolver(opts RegistryOptions) Resolver {
	return l.NewResolver(opts.withDefaults())
}

// Parser returns the language's file parser.
func (l *Language) Parser() FileParser {
	return l.NewParser()
}

// Supports reports whether filename is one of the language's file types.
func (l *Language) Supports(filename string) bool {
	return slices.Contains(l.FileTypes, path.Base(filename))
}

// Normalize returns the canonical dependency name.
func (l *Language) Normalize(name string) string {
	if l.NormalizeName == nil {
		return name
	}
	return l.NormalizeName(name)
}

func (l *Language) alias(m map[string]string, name string) string {
	if v, ok := m[name]; ok {
		return v
	}
	return name
}

// FindLanguage returns the language with the given name from langs.
// Version family names ("maven", "npm", "cargo") are accepted too.
func FindLanguage(name string, langs []*Language) *Language {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, l := range langs {
		if l.Name == name {
			return l
		}
	}
	if f, err := version.ParseFamily(name); err == nil {
		for _, l := range langs {
			if l.Family == f {
				return l
			}
		}
	}
	return nil
}

// LanguageFor returns the language whose file types include filename.
func LanguageFor(filename string, langs []*Language) *Language {
	for _, l := range langs {
		if l.Supports(filename) {
			return l
		}
	}
	return nil
}
