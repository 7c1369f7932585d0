package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stackbump/pkg/cache"
	"github.com/matzehuels/stackbump/pkg/checker"
	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/deps/java"
	"github.com/matzehuels/stackbump/pkg/errors"
	"github.com/matzehuels/stackbump/pkg/observability"
	"github.com/matzehuels/stackbump/pkg/updater"
	"github.com/matzehuels/stackbump/pkg/version"
)

// AdvisorySource looks up security advisories for a dependency.
type AdvisorySource interface {
	Advisories(ctx context.Context, name string, family version.Family, refresh bool) ([]deps.SecurityAdvisory, error)
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating the check and update logic.
//
// The Runner is stateless apart from its collaborators, so multiple
// goroutines can use the same Runner with different requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Registries overrides registry base URLs by language name ("java").
	Registries map[string]string

	// Resolvers replaces the registry resolver of a language, by name.
	Resolvers map[string]deps.Resolver

	// POMs downloads Maven parents that the file set does not provide.
	// Nil leaves them out.
	POMs java.POMFetcher

	// Advisories adds advisories from a database such as OSV.
	Advisories AdvisorySource

	// Hooks receives check events; nil uses observability.Check().
	Hooks observability.CheckHooks
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Check decides what to do with each selected dependency without
// rewriting any file.
func (r *Runner) Check(ctx context.Context, req Request) (*Result, error) {
	return r.run(ctx, req, false)
}

// Update moves the single dependency named in req. A decision that does
// not move the dependency is reported in the result, not as an error; a
// failure to evaluate or rewrite it is returned.
func (r *Runner) Update(ctx context.Context, req Request) (*Result, error) {
	if len(req.Dependencies) != 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "update needs exactly one dependency, got %d", len(req.Dependencies))
	}
	res, err := r.run(ctx, req, true)
	if err != nil {
		return nil, err
	}
	if err := res.Failures[req.Dependencies[0]]; err != nil {
		return res, err
	}
	return res, nil
}

// Batch checks every selected dependency concurrently, then composes the
// edits of those that can move. A dependency that fails, or whose edits
// collide with ones already accepted, is recorded in Result.Failures and
// the others proceed.
func (r *Runner) Batch(ctx context.Context, req Request) (*Result, error) {
	return r.run(ctx, req, true)
}

func (r *Runner) run(ctx context.Context, req Request, update bool) (*Result, error) {
	if req.Logger == nil {
		req.Logger = r.Logger
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	result := &Result{RunID: uuid.NewString(), Failures: make(map[string]error)}
	logger := req.Logger.With("run", result.RunID[:8])

	parseStart := time.Now()
	project, hit, err := r.Parse(ctx, req.Files, req.Options)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Language = project.Language.Name
	result.Stats.ParseTime = time.Since(parseStart)
	result.CacheInfo.ParseHit = hit
	logger.Debug("parsed dependency files",
		"language", project.Language.Name,
		"files", len(project.Files),
		"dependencies", len(project.Result.Dependencies),
		"cached", hit)

	selected, err := selectDependencies(project, req.Dependencies)
	if err != nil {
		return nil, err
	}
	result.Stats.Dependencies = len(selected)

	checkStart := time.Now()
	outcomes, failures, err := r.evaluate(ctx, project, selected, req, logger)
	if err != nil {
		return nil, err
	}
	result.Outcomes = outcomes
	for name, err := range failures {
		result.Failures[name] = err
	}
	result.Stats.CheckTime = time.Since(checkStart)

	if update {
		updateStart := time.Now()
		files, err := r.compose(ctx, project, result, logger)
		if err != nil {
			return nil, fmt.Errorf("update: %w", err)
		}
		result.Files = files
		result.Stats.FilesChanged = len(files)
		result.Stats.UpdateTime = time.Since(updateStart)
	}

	logger.Info("run complete",
		"dependencies", len(selected),
		"updates", len(result.Updated()),
		"failures", len(result.Failures),
		"files", len(result.Files))
	return result, nil
}

func selectDependencies(p *Project, names []string) ([]deps.Dependency, error) {
	if len(names) == 0 {
		return p.Result.Dependencies, nil
	}
	out := make([]deps.Dependency, 0, len(names))
	for _, name := range names {
		d, ok := p.Result.Dependency(p.Language.Normalize(name))
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "dependency %q is not declared in the given files", name)
		}
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b deps.Dependency) int { return strings.Compare(a.Name, b.Name) })
	return slices.CompactFunc(out, func(a, b deps.Dependency) bool { return a.Name == b.Name }), nil
}

// evaluate reaches a decision for every dependency using up to
// req.Workers goroutines. Outcomes keep the order of selected.
func (r *Runner) evaluate(ctx context.Context, p *Project, selected []deps.Dependency, req Request, logger *log.Logger) ([]Outcome, map[string]error, error) {
	resolver := r.Resolver(p.Language)
	outcomes := make([]Outcome, len(selected))
	errs := make([]error, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(req.Workers)
	for i, dep := range selected {
		g.Go(func() error {
			start := time.Now()
			outcome, err := r.checkOne(gctx, p, resolver, dep, req)
			reason := ""
			if err == nil {
				reason = outcome.Decision.Reason.String()
				logger.Debug("checked dependency",
					"dependency", dep.Name,
					"current", outcome.Current,
					"reason", reason,
					"target", target(outcome.Decision))
			} else {
				logger.Warn("check failed", "dependency", dep.Name, "err", err)
			}
			r.hooks().OnCheckComplete(gctx, dep.Name, reason, time.Since(start), err)
			outcomes[i], errs[i] = outcome, err
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	failures := make(map[string]error)
	kept := outcomes[:0]
	for i, o := range outcomes {
		if errs[i] != nil {
			failures[selected[i].Name] = errs[i]
			continue
		}
		kept = append(kept, o)
	}
	return kept, failures, nil
}

func target(d checker.Decision) string {
	if d.Target == nil {
		return ""
	}
	return d.Target.String()
}

func (r *Runner) checkOne(ctx context.Context, p *Project, resolver deps.Resolver, dep deps.Dependency, req Request) (Outcome, error) {
	family := p.Language.Family
	available, err := resolver.Versions(ctx, dep.Name, req.Refresh)
	if err != nil {
		return Outcome{}, fmt.Errorf("fetch versions of %s: %w", dep.Name, err)
	}
	if req.TargetVersion != "" {
		available, err = capVersions(available, req.TargetVersion, family)
		if err != nil {
			return Outcome{}, err
		}
	}

	in := checker.Input{
		Dependency:      dep,
		Family:          family,
		Available:       available,
		Advisories:      deps.AdvisoriesFor(req.Advisories, dep.Name),
		Graph:           p.Graph,
		AllDependencies: p.Result.Dependencies,
		Options:         req.checkerOptions(),
	}
	if req.Ignore != nil {
		if in.Ignored, err = req.Ignore.IgnoredFor(dep.Name, family); err != nil {
			return Outcome{}, err
		}
	}
	if r.Advisories != nil {
		extra, err := r.Advisories.Advisories(ctx, dep.Name, family, req.Refresh)
		if err != nil {
			return Outcome{}, fmt.Errorf("fetch advisories of %s: %w", dep.Name, err)
		}
		in.Advisories = append(in.Advisories, extra...)
	}

	c := checker.New(in)
	if req.FullUnlock && c.SharedProperty() {
		var failed map[string]error
		in.SiblingVersions, failed = deps.VersionsOf(ctx, resolver, c.Siblings(), req.Workers, req.Refresh)
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		for name, err := range failed {
			if req.Logger != nil {
				req.Logger.Warn("sibling versions unavailable, full unlock blocked",
					"dependency", dep.Name, "sibling", name, "error", err)
			}
		}
		c = checker.New(in)
	}

	out := Outcome{Dependency: dep, Decision: c.Decide()}
	if cur, ok := c.CurrentVersion(); ok {
		out.Current = cur.String()
	}
	return out, nil
}

// capVersions keeps the versions up to and including raw, which must be
// published.
func capVersions(available []version.Version, raw string, family version.Family) ([]version.Version, error) {
	want, err := version.Parse(raw, family)
	if err != nil {
		return nil, err
	}
	if !version.Contains(available, want) {
		return nil, errors.New(errors.ErrCodeNoResolvableVersion, "version %s is not published", raw)
	}
	out := make([]version.Version, 0, len(available))
	for _, v := range available {
		if version.Compare(v, want) <= 0 {
			out = append(out, v)
		}
	}
	return out, nil
}

// compose rewrites files for every outcome that moves its dependency, in
// dependency-name order. Each dependency's edits are accepted or rejected
// as a whole.
func (r *Runner) compose(ctx context.Context, p *Project, res *Result, logger *log.Logger) ([]*deps.DependencyFile, error) {
	start := time.Now()
	composer := updater.NewComposer(p.Files)
	for _, o := range res.Outcomes {
		if !o.Decision.Reason.Updates() {
			continue
		}
		var edits []updater.FileEdit
		var err error
		for _, d := range o.Decision.Dependencies {
			var es []updater.FileEdit
			if es, err = updater.Edits(p.Files, p.Graph, d); err != nil {
				break
			}
			edits = append(edits, es...)
		}
		if err == nil {
			err = composer.Add(edits)
		}
		if err != nil {
			logger.Warn("update rejected", "dependency", o.Dependency.Name, "err", err)
			res.Failures[o.Dependency.Name] = err
		}
	}
	files, err := composer.Files()
	var changed []*deps.DependencyFile
	for _, f := range files {
		if !f.SupportFile {
			changed = append(changed, f)
		}
	}
	r.hooks().OnUpdateComplete(ctx, len(changed), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return changed, nil
}

// Resolver returns the resolver used for a language.
func (r *Runner) Resolver(l *deps.Language) deps.Resolver {
	if res, ok := r.Resolvers[l.Name]; ok {
		return res
	}
	return l.Resolver(deps.RegistryOptions{Cache: r.Cache, BaseURL: r.Registries[l.Name]})
}

func (r *Runner) hooks() observability.CheckHooks {
	if r.Hooks != nil {
		return r.Hooks
	}
	return observability.Check()
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
