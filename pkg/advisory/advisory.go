// Package advisory loads security advisories from a YAML file.
//
// The file lists affected and fixed version ranges per dependency, written
// in the requirement grammar of the dependency's ecosystem:
//
//	advisories:
//	  - id: GHSA-xxxx
//	    dependency: com.google.guava:guava
//	    vulnerable: ["< 23.5.0"]
//	    patched: ["[23.5,)"]
//	  - dependency: lodash
//	    safe: [">= 4.17.21"]
package advisory

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stackbump/pkg/constraint"
	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/errors"
	"github.com/matzehuels/stackbump/pkg/version"
)

// File is the on-disk structure.
type File struct {
	Advisories []Entry `yaml:"advisories"`
}

// Entry is one advisory as written in the file.
type Entry struct {
	ID         string   `yaml:"id" json:"id"`
	Dependency string   `yaml:"dependency" json:"dependency"`
	Vulnerable []string `yaml:"vulnerable" json:"vulnerable,omitempty"`
	Patched    []string `yaml:"patched" json:"patched,omitempty"`
	Safe       []string `yaml:"safe" json:"safe,omitempty"`
}

// LoadFile reads and parses the advisories file at path.
func LoadFile(path string, family version.Family) ([]deps.SecurityAdvisory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open advisories: %w", err)
	}
	defer f.Close()
	return Load(f, family)
}

// Load parses advisories from r. Every range is parsed in family; a
// malformed range fails the whole file with MALFORMED_REQUIREMENT so that
// a typo never silently disables an advisory.
func Load(r io.Reader, family version.Family) ([]deps.SecurityAdvisory, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode advisories")
	}

	out := make([]deps.SecurityAdvisory, 0, len(file.Advisories))
	for i, e := range file.Advisories {
		a, err := e.Advisory(family)
		if err != nil {
			return nil, fmt.Errorf("advisory %d: %w", i+1, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// Advisory converts the entry, parsing its ranges in family.
func (e Entry) Advisory(family version.Family) (deps.SecurityAdvisory, error) {
	if e.Dependency == "" {
		return deps.SecurityAdvisory{}, errors.New(errors.ErrCodeInvalidConfig, "advisory %q names no dependency", e.ID)
	}
	if len(e.Vulnerable)+len(e.Patched)+len(e.Safe) == 0 {
		return deps.SecurityAdvisory{}, errors.New(errors.ErrCodeInvalidConfig, "advisory for %s lists no versions", e.Dependency)
	}
	a := deps.SecurityAdvisory{ID: e.ID, DependencyName: e.Dependency}
	var err error
	if a.Vulnerable, err = constraint.ParseAll(e.Vulnerable, family); err != nil {
		return deps.SecurityAdvisory{}, err
	}
	if a.Patched, err = constraint.ParseAll(e.Patched, family); err != nil {
		return deps.SecurityAdvisory{}, err
	}
	if a.Safe, err = constraint.ParseAll(e.Safe, family); err != nil {
		return deps.SecurityAdvisory{}, err
	}
	return a, nil
}
