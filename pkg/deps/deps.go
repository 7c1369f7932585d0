package deps

import (
	"maps"
	"path"
	"slices"
	"time"

	"github.com/matzehuels/stackbump/pkg/constraint"
	"github.com/matzehuels/stackbump/pkg/version"
)

const (
	DefaultCacheTTL = 24 * time.Hour // Default registry cache duration
	DefaultWorkers  = 8              // Default concurrent dependency checks
)

// Metadata keys recorded on requirement occurrences.
const (
	MetaPropertyName   = "property_name"   // Name of the property the version comes from
	MetaPropertySource = "property_source" // File that defines that property
	MetaPackagingType  = "packaging_type"  // Maven packaging: "pom" for parents, "jar" by default
	MetaCatalog        = "catalog"         // pnpm catalog name ("default" for catalog:)
)

// DependencyFile is one file of a project as fetched by the caller.
// The engine never modifies a DependencyFile; updates produce new values.
type DependencyFile struct {
	Name        string // Path relative to Directory, e.g. "core/pom.xml"
	Directory   string // Project directory the files were read from
	Content     string // Raw file content
	SupportFile bool   // Needed for evaluation (e.g. a parent POM) but not itself updated
	Remote      bool   // Fetched from a registry rather than read from the project
}

// Dir returns the directory of the file relative to the project root.
func (f *DependencyFile) Dir() string { return path.Dir(f.Name) }

// Base returns the file name without directories.
func (f *DependencyFile) Base() string { return path.Base(f.Name) }

// WithContent returns a copy of f holding content.
func (f *DependencyFile) WithContent(content string) *DependencyFile {
	cp := *f
	cp.Content = content
	return &cp
}

// FindFile returns the file with the given name.
func FindFile(files []*DependencyFile, name string) (*DependencyFile, bool) {
	for _, f := range files {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Span is a half-open byte range [Start, End) within a file's content.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered.
func (s Span) Len() int { return s.End - s.Start }

// IsZero reports whether the span is unset.
func (s Span) IsZero() bool { return s.Start == 0 && s.End == 0 }

// Overlaps reports whether s and o share at least one byte.
func (s Span) Overlaps(o Span) bool { return s.Start < o.End && o.Start < s.End }

// Requirement is one place a dependency's version is written.
//
// Requirement is empty ("nil") when the occurrence has no version text of
// its own: a multimodule child managed by its parent, or a file that reads
// the version through a property defined elsewhere.
type Requirement struct {
	File        string            `json:"file"`
	Requirement string            `json:"requirement,omitempty"`
	Span        Span              `json:"span"`
	PropertyRef string            `json:"property_ref,omitempty"`
	Groups      []string          `json:"groups,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// IsNil reports whether the occurrence has no requirement text.
func (r Requirement) IsNil() bool { return r.Requirement == "" }

// PropertyName returns the property the requirement reads, if any.
func (r Requirement) PropertyName() string {
	if r.PropertyRef != "" {
		return r.PropertyRef
	}
	return r.Metadata[MetaPropertyName]
}

// PropertySource returns the file defining the property, if known.
func (r Requirement) PropertySource() string { return r.Metadata[MetaPropertySource] }

// Constraint parses the requirement text in family.
func (r Requirement) Constraint(family version.Family) (constraint.Constraint, error) {
	return constraint.Parse(r.Requirement, family)
}

// Clone returns a deep copy.
func (r Requirement) Clone() Requirement {
	r.Groups = slices.Clone(r.Groups)
	r.Metadata = maps.Clone(r.Metadata)
	return r
}

// Dependency is one logical dependency and every place it is declared.
type Dependency struct {
	Name                 string        `json:"name"`
	Version              string        `json:"version,omitempty"`
	PreviousVersion      string        `json:"previous_version,omitempty"`
	Requirements         []Requirement `json:"requirements"`
	PreviousRequirements []Requirement `json:"previous_requirements,omitempty"`
	PackageManager       string        `json:"package_manager"`
}

// Clone returns a deep copy.
func (d Dependency) Clone() Dependency {
	d.Requirements = cloneRequirements(d.Requirements)
	d.PreviousRequirements = cloneRequirements(d.PreviousRequirements)
	return d
}

func cloneRequirements(rs []Requirement) []Requirement {
	if rs == nil {
		return nil
	}
	out := make([]Requirement, len(rs))
	for i, r := range rs {
		out[i] = r.Clone()
	}
	return out
}

// Files returns the distinct files the dependency is declared in.
func (d Dependency) Files() []string {
	var files []string
	for _, r := range d.Requirements {
		if !slices.Contains(files, r.File) {
			files = append(files, r.File)
		}
	}
	return files
}

// FindDependency returns the dependency with the given name.
func FindDependency(all []Dependency, name string) (Dependency, bool) {
	for _, d := range all {
		if d.Name == name {
			return d, true
		}
	}
	return Dependency{}, false
}

// SecurityAdvisory describes the affected versions of one dependency.
type SecurityAdvisory struct {
	ID             string
	DependencyName string
	Vulnerable     []constraint.Constraint
	Patched        []constraint.Constraint
	Safe           []constraint.Constraint
}

// IsVulnerable reports whether v is affected. A version is affected when it
// matches a vulnerable range (or no vulnerable ranges are listed) and matches
// no patched or safe range.
func (a SecurityAdvisory) IsVulnerable(v version.Version) bool {
	if constraint.SatisfiesAny(a.Patched, v) || constraint.SatisfiesAny(a.Safe, v) {
		return false
	}
	if len(a.Vulnerable) == 0 {
		return len(a.Patched) > 0 || len(a.Safe) > 0
	}
	return constraint.SatisfiesAny(a.Vulnerable, v)
}

// AdvisoriesFor returns the advisories that concern the named dependency.
func AdvisoriesFor(all []SecurityAdvisory, name string) []SecurityAdvisory {
	var out []SecurityAdvisory
	for _, a := range all {
		if a.DependencyName == name {
			out = append(out, a)
		}
	}
	return out
}
