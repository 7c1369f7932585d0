package pipeline

import (
	"context"
	"encoding/json"
	"path"
	"time"

	"github.com/matzehuels/stackbump/pkg/cache"
	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/deps/java"
	"github.com/matzehuels/stackbump/pkg/deps/languages"
	"github.com/matzehuels/stackbump/pkg/errors"
	"github.com/matzehuels/stackbump/pkg/propgraph"
)

// Project is a parsed file set.
type Project struct {
	Language *deps.Language
	Files    []*deps.DependencyFile // Project files plus fetched remote parents
	Result   *deps.ParseResult
	Graph    *propgraph.Graph
}

// DetectLanguage returns the named language, or the language of the first
// file whose name an ecosystem recognizes.
func DetectLanguage(name string, files []*deps.DependencyFile) (*deps.Language, error) {
	if name != "" {
		if l := languages.Find(name); l != nil {
			return l, nil
		}
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported language: %s", name)
	}
	for _, f := range files {
		if l := languages.ForFile(f.Name); l != nil {
			return l, nil
		}
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "no supported dependency file among %d files", len(files))
}

// Parse detects the ecosystem and parses files. For Maven projects with a
// POM fetcher configured, parents that no file provides are downloaded
// first. Parse results are cached by the hash of the file contents.
func (r *Runner) Parse(ctx context.Context, files []*deps.DependencyFile, opts Options) (*Project, bool, error) {
	lang, err := DetectLanguage(opts.Language, files)
	if err != nil {
		return nil, false, err
	}
	parser := lang.Parser()

	var own []*deps.DependencyFile
	for _, f := range files {
		if parser.Supports(path.Base(f.Name)) {
			own = append(own, f)
		}
	}
	if len(own) == 0 {
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "no %s files given", parser.Type())
	}

	if lang == java.Language && r.POMs != nil {
		remote, err := java.FetchParents(ctx, own, r.POMs, DefaultParentDepth)
		if err != nil {
			return nil, false, err
		}
		if len(remote) > 0 {
			r.logger(opts).Debug("fetched parent poms", "count", len(remote))
		}
		own = append(own, remote...)
	}

	hooks := r.hooks()
	hooks.OnParseStart(ctx, parser.Type(), len(own))
	start := time.Now()
	res, hit, err := r.parseCached(ctx, parser, lang, own, opts.Refresh)
	count := 0
	if res != nil {
		count = len(res.Dependencies)
	}
	hooks.OnParseComplete(ctx, parser.Type(), count, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	g, err := propgraph.New(res.Nodes, propgraph.WithConsumers(res.Consumers...))
	if err != nil {
		return nil, false, err
	}
	return &Project{Language: lang, Files: own, Result: res, Graph: g}, hit, nil
}

func (r *Runner) parseCached(ctx context.Context, parser deps.FileParser, lang *deps.Language, files []*deps.DependencyFile, refresh bool) (*deps.ParseResult, bool, error) {
	contents := make(map[string]string, len(files))
	for _, f := range files {
		contents[f.Name] = f.Content
	}
	key := r.Keyer.ParseKey(parser.Type(), cache.HashFiles(contents)+":"+lang.Family.String())

	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var res deps.ParseResult
			if err := json.Unmarshal(data, &res); err == nil {
				return &res, true, nil
			}
		}
	}

	res, err := parser.Parse(files)
	if err != nil {
		return nil, false, err
	}
	if data, err := json.Marshal(res); err == nil {
		_ = r.Cache.Set(ctx, key, data, deps.DefaultCacheTTL)
	}
	return res, false, nil
}
