package server

import (
	"context"
	"net/http"

	"github.com/matzehuels/stackbump/pkg/advisory"
	"github.com/matzehuels/stackbump/pkg/checker"
	"github.com/matzehuels/stackbump/pkg/constraint"
	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/errors"
	"github.com/matzehuels/stackbump/pkg/pipeline"
	"github.com/matzehuels/stackbump/pkg/updater"
	"github.com/matzehuels/stackbump/pkg/version"
)

// =============================================================================
// Version arithmetic
// =============================================================================

type compareRequest struct {
	Family string `json:"family"`
	A      string `json:"a"`
	B      string `json:"b"`
}

type compareResponse struct {
	Result int `json:"result"` // -1, 0 or 1
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	family, err := version.ParseFamily(req.Family)
	if err != nil {
		writeError(w, err)
		return
	}
	a, err := version.Parse(req.A, family)
	if err != nil {
		writeError(w, err)
		return
	}
	b, err := version.Parse(req.B, family)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, compareResponse{Result: sign(a.Compare(b))})
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

type satisfiesRequest struct {
	Family      string   `json:"family"`
	Requirement string   `json:"requirement"`
	Versions    []string `json:"versions"`
}

type satisfiesResponse struct {
	Matching []string `json:"matching"`
	Highest  string   `json:"highest,omitempty"`
}

func (s *Server) handleSatisfies(w http.ResponseWriter, r *http.Request) {
	var req satisfiesRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	family, err := version.ParseFamily(req.Family)
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := constraint.Parse(req.Requirement, family)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := satisfiesResponse{Matching: []string{}}
	var matching []version.Version
	for _, raw := range req.Versions {
		v, err := version.Parse(raw, family)
		if err != nil {
			writeError(w, err)
			return
		}
		if c.Satisfies(v) {
			matching = append(matching, v)
			resp.Matching = append(resp.Matching, raw)
		}
	}
	if best, ok := version.Max(matching); ok {
		resp.Highest = best.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Check and update
// =============================================================================

type fileBody struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Support bool   `json:"support,omitempty"`
}

type runRequest struct {
	Language        string              `json:"language,omitempty"`
	Files           []fileBody          `json:"files"`
	Dependencies    []string            `json:"dependencies,omitempty"`
	TargetVersion   string              `json:"target_version,omitempty"`
	Available       map[string][]string `json:"available,omitempty"`
	Ignore          pipeline.IgnoreMap  `json:"ignore,omitempty"`
	Advisories      []advisory.Entry    `json:"advisories,omitempty"`
	Strategy        string              `json:"strategy,omitempty"`
	AllowPrerelease bool                `json:"allow_prerelease,omitempty"`
	FullUnlock      bool                `json:"full_unlock,omitempty"`
	SecurityOnly    bool                `json:"security_only,omitempty"`
	Refresh         bool                `json:"refresh,omitempty"`
}

type runResponse struct {
	RunID    string            `json:"run_id"`
	Language string            `json:"language"`
	Outcomes []outcomeBody     `json:"outcomes"`
	Files    []fileBody        `json:"files,omitempty"`
	Failures map[string]string `json:"failures,omitempty"`
	Stats    pipeline.Stats    `json:"stats"`
}

// outcomeBody is the wire form of a pipeline outcome. Versions travel as
// their raw strings; the request's language gives them their family.
type outcomeBody struct {
	Dependency deps.Dependency   `json:"dependency"`
	Current    string            `json:"current,omitempty"`
	Target     string            `json:"target,omitempty"`
	Reason     checker.Reason    `json:"reason"`
	Detail     string            `json:"detail,omitempty"`
	Updated    []deps.Dependency `json:"updated,omitempty"`
}

func newOutcomeBody(o pipeline.Outcome) outcomeBody {
	out := outcomeBody{
		Dependency: o.Dependency,
		Current:    o.Current,
		Reason:     o.Decision.Reason,
		Detail:     o.Decision.Detail,
		Updated:    o.Decision.Dependencies,
	}
	if o.Decision.Target != nil {
		out.Target = o.Decision.Target.String()
	}
	return out
}

func (s *Server) handleRun(update bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body runRequest
		if err := s.decode(w, r, &body); err != nil {
			writeError(w, err)
			return
		}
		resp, err := s.run(r.Context(), body, update)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) run(ctx context.Context, body runRequest, update bool) (*runResponse, error) {
	req, runner, err := s.pipelineRequest(body)
	if err != nil {
		return nil, err
	}
	req.Logger = s.cfg.Logger.With("request", requestIDFrom(ctx))

	var res *pipeline.Result
	switch {
	case !update:
		res, err = runner.Check(ctx, req)
	case len(req.Dependencies) == 1:
		res, err = runner.Update(ctx, req)
	default:
		res, err = runner.Batch(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	resp := &runResponse{
		RunID:    res.RunID,
		Language: res.Language,
		Outcomes: make([]outcomeBody, 0, len(res.Outcomes)),
		Stats:    res.Stats,
	}
	for _, o := range res.Outcomes {
		resp.Outcomes = append(resp.Outcomes, newOutcomeBody(o))
	}
	for _, f := range res.Files {
		resp.Files = append(resp.Files, fileBody{Name: f.Name, Content: f.Content})
	}
	if len(res.Failures) > 0 {
		resp.Failures = make(map[string]string, len(res.Failures))
		for name, err := range res.Failures {
			resp.Failures[name] = err.Error()
		}
	}
	return resp, nil
}

// pipelineRequest converts a request body and picks the runner: the
// configured one, or an offline copy serving the inline versions.
func (s *Server) pipelineRequest(body runRequest) (pipeline.Request, *pipeline.Runner, error) {
	files := make([]*deps.DependencyFile, len(body.Files))
	for i, f := range body.Files {
		files[i] = &deps.DependencyFile{Name: f.Name, Content: f.Content, SupportFile: f.Support}
	}
	lang, err := pipeline.DetectLanguage(body.Language, files)
	if err != nil {
		return pipeline.Request{}, nil, err
	}

	for _, name := range body.Dependencies {
		if err := validateName(lang.Family, name); err != nil {
			return pipeline.Request{}, nil, err
		}
	}
	for name := range body.Available {
		if err := validateName(lang.Family, name); err != nil {
			return pipeline.Request{}, nil, err
		}
	}

	opts := pipeline.Options{
		Language:        lang.Name,
		AllowPrerelease: body.AllowPrerelease,
		FullUnlock:      body.FullUnlock,
		SecurityOnly:    body.SecurityOnly,
		Refresh:         body.Refresh,
	}
	if body.Strategy != "" {
		if opts.Strategy, err = updater.ParseStrategy(body.Strategy); err != nil {
			return pipeline.Request{}, nil, err
		}
	}
	if body.Ignore != nil {
		opts.Ignore = body.Ignore
	}
	for _, e := range body.Advisories {
		a, err := e.Advisory(lang.Family)
		if err != nil {
			return pipeline.Request{}, nil, err
		}
		opts.Advisories = append(opts.Advisories, a)
	}

	req := pipeline.Request{
		Files:         files,
		Dependencies:  body.Dependencies,
		TargetVersion: body.TargetVersion,
		Options:       opts,
	}

	runner := s.cfg.Runner
	if body.Available != nil {
		offline := *runner
		offline.Resolvers = map[string]deps.Resolver{lang.Name: staticResolver{family: lang.Family, versions: body.Available}}
		offline.POMs = nil
		offline.Advisories = nil
		runner = &offline
	}
	return req, runner, nil
}

// validateName rejects dependency names that the family's registry would
// not accept. Names end up in registry URLs and cache keys.
func validateName(family version.Family, name string) error {
	switch family {
	case version.Maven:
		return errors.ValidateMavenCoordinate(name)
	case version.Npm:
		return errors.ValidateNpmPackageName(name)
	case version.Gomod:
		return errors.ValidateGoModulePath(name)
	case version.Cargo:
		return errors.ValidateCratesPackageName(name)
	}
	return errors.ValidatePackageName(name)
}

// staticResolver serves versions supplied with the request.
type staticResolver struct {
	family   version.Family
	versions map[string][]string
}

func (r staticResolver) Name() string { return "inline" }

func (r staticResolver) Versions(_ context.Context, name string, _ bool) ([]version.Version, error) {
	raws, ok := r.versions[name]
	if !ok {
		return nil, errors.New(errors.ErrCodePackageNotFound, "no versions given for %s", name)
	}
	return version.Sorted(version.ParseAll(raws, r.family)), nil
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
