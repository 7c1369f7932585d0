// Package pipeline runs dependency checks and updates over a project's
// files for the CLI and the HTTP server.
//
// The pipeline has three stages:
//
//  1. Parse: detect the ecosystem, fetch missing Maven parents and parse the
//     file set into dependencies and a property graph
//  2. Check: fetch available versions and advisories and reach a
//     [checker.Decision] for each selected dependency
//  3. Update: rewrite the requirement texts of every dependency that can
//     move, composing the edits per file
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Batch(ctx, pipeline.Request{Files: files})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range result.Files {
//	    os.WriteFile(f.Name, []byte(f.Content), 0o644)
//	}
//
// Check only decides; Update moves a single dependency; Batch moves every
// selected dependency concurrently and reports failures per dependency.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackbump/pkg/checker"
	"github.com/matzehuels/stackbump/pkg/constraint"
	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/errors"
	"github.com/matzehuels/stackbump/pkg/updater"
	"github.com/matzehuels/stackbump/pkg/version"
)

// DefaultParentDepth bounds how many levels of remote parent POMs are
// fetched.
const DefaultParentDepth = 5

// IgnoreSource supplies the ignore rules of a dependency.
type IgnoreSource interface {
	IgnoredFor(name string, family version.Family) ([]constraint.Constraint, error)
}

// IgnoreMap holds ignore rules keyed by exact dependency name. A name with
// no versions ignores every version.
type IgnoreMap map[string][]string

// IgnoredFor implements IgnoreSource.
func (m IgnoreMap) IgnoredFor(name string, family version.Family) ([]constraint.Constraint, error) {
	raws, ok := m[name]
	if !ok {
		return nil, nil
	}
	if len(raws) == 0 {
		return []constraint.Constraint{constraint.Wildcard(family)}, nil
	}
	return constraint.ParseAll(raws, family)
}

// Options configures a pipeline run.
type Options struct {
	Language        string           `json:"language,omitempty"` // Ecosystem; detected from file names when empty
	Strategy        updater.Strategy `json:"strategy"`
	AllowPrerelease bool             `json:"allow_prerelease,omitempty"`
	FullUnlock      bool             `json:"full_unlock,omitempty"`
	SecurityOnly    bool             `json:"security_only,omitempty"`
	Workers         int              `json:"workers,omitempty"`
	Refresh         bool             `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Ignore     IgnoreSource            `json:"-"`
	Advisories []deps.SecurityAdvisory `json:"-"`
	Logger     *log.Logger             `json:"-"`
}

// Request names the files and dependencies to work on.
type Request struct {
	Files []*deps.DependencyFile

	// Dependencies restricts the run to the named dependencies. Empty means
	// every dependency in the files.
	Dependencies []string

	// TargetVersion caps the versions considered, so that the dependency
	// moves to exactly this version when it can. Only valid with a single
	// dependency.
	TargetVersion string

	Options
}

// Validate checks required fields and applies defaults.
func (r *Request) Validate() error {
	if len(r.Files) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no dependency files given")
	}
	for _, f := range r.Files {
		if err := errors.ValidatePath(f.Name); err != nil {
			return err
		}
	}
	if r.TargetVersion != "" && len(r.Dependencies) != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "a target version needs exactly one dependency")
	}
	if r.Workers <= 0 {
		r.Workers = deps.DefaultWorkers
	}
	if r.Logger == nil {
		r.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

func (o Options) checkerOptions() checker.Options {
	return checker.Options{
		AllowPrerelease:      o.AllowPrerelease,
		RequirementsStrategy: o.Strategy,
		FullUnlock:           o.FullUnlock,
		SecurityOnly:         o.SecurityOnly,
	}
}

// Outcome is the decision reached for one dependency.
type Outcome struct {
	Dependency deps.Dependency  `json:"dependency"`
	Current    string           `json:"current,omitempty"`
	Decision   checker.Decision `json:"decision"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and API responses.
	RunID string `json:"run_id"`

	Language string `json:"language"`

	// Outcomes holds one entry per checked dependency, sorted by name.
	Outcomes []Outcome `json:"outcomes"`

	// Files holds the files whose content changed. Empty for Check.
	Files []*deps.DependencyFile `json:"files,omitempty"`

	// Failures maps dependency names to the error that abandoned them.
	Failures map[string]error `json:"-"`

	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"cache"`
}

// Outcome returns the outcome for the named dependency.
func (r *Result) Outcome(name string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Dependency.Name == name {
			return o, true
		}
	}
	return Outcome{}, false
}

// Updated returns the outcomes that move their dependency.
func (r *Result) Updated() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Decision.Reason.Updates() {
			out = append(out, o)
		}
	}
	return out
}

// Stats contains run statistics.
type Stats struct {
	Dependencies int           `json:"dependencies"`
	FilesChanged int           `json:"files_changed"`
	ParseTime    time.Duration `json:"parse_time"`
	CheckTime    time.Duration `json:"check_time"`
	UpdateTime   time.Duration `json:"update_time"`
}

// CacheInfo tracks which stages hit the cache.
type CacheInfo struct {
	ParseHit bool `json:"parse_hit"`
}
