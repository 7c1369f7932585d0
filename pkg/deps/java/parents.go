package java

import (
	"context"
	"path"
	"strings"

	"github.com/matzehuels/stackbump/pkg/deps"
)

// remoteDir is where downloaded parent POMs are placed in the file set.
const remoteDir = ".maven"

// ParentPOM identifies a parent POM by coordinates and version.
type ParentPOM struct {
	GroupID    string
	ArtifactID string
	Version    string
}

// Coordinate returns "groupId:artifactId".
func (p ParentPOM) Coordinate() string { return p.GroupID + ":" + p.ArtifactID }

// POMFetcher downloads a POM by coordinate and version.
type POMFetcher interface {
	FetchPOM(ctx context.Context, coordinate, version string, refresh bool) (string, error)
}

// MissingParents returns the parents referenced by files that no file in
// the set provides, in first-reference order. Parents whose version is
// written with a property are skipped since they cannot be fetched
// without evaluation.
func MissingParents(files []*deps.DependencyFile) ([]ParentPOM, error) {
	var docs []*pomDoc
	for _, f := range files {
		if !isPOM(f.Name) {
			continue
		}
		root, err := parseXML(f.Name, f.Content)
		if err != nil {
			return nil, err
		}
		docs = append(docs, &pomDoc{file: f, root: root})
	}

	have := coordinateSet(docs, true)
	seen := make(map[string]bool)
	var out []ParentPOM
	for _, d := range docs {
		parent := d.root.child("parent")
		if !d.isProject() || parent == nil {
			continue
		}
		g, _ := parent.childText("groupId")
		a, _ := parent.childText("artifactId")
		v, _ := parent.childText("version")
		p := ParentPOM{GroupID: g, ArtifactID: a, Version: v}
		if g == "" || a == "" || v == "" || strings.Contains(v, "${") {
			continue
		}
		if have[p.Coordinate()] || seen[p.Coordinate()] {
			continue
		}
		seen[p.Coordinate()] = true
		out = append(out, p)
	}
	return out, nil
}

// RemoteFile wraps downloaded POM content as a support file of the set.
func RemoteFile(p ParentPOM, content string) *deps.DependencyFile {
	return &deps.DependencyFile{
		Name:        path.Join(remoteDir, p.GroupID, p.ArtifactID, p.Version, "pom.xml"),
		Content:     content,
		SupportFile: true,
		Remote:      true,
	}
}

// FetchParents downloads missing parent POMs, then their parents, up to
// maxDepth levels. Parents that cannot be fetched are left out; lookups
// that need them later fail with PARENT_UNAVAILABLE.
func FetchParents(ctx context.Context, files []*deps.DependencyFile, fetcher POMFetcher, maxDepth int) ([]*deps.DependencyFile, error) {
	all := append([]*deps.DependencyFile(nil), files...)
	var added []*deps.DependencyFile
	failed := make(map[string]bool)
	for range maxDepth {
		missing, err := MissingParents(all)
		if err != nil {
			return nil, err
		}
		var fetched int
		for _, p := range missing {
			if failed[p.Coordinate()] {
				continue
			}
			content, err := fetcher.FetchPOM(ctx, p.Coordinate(), p.Version, false)
			if err != nil && ctx.Err() != nil {
				return nil, ctx.Err()
			}
			f := RemoteFile(p, content)
			if err == nil {
				_, err = parseXML(f.Name, content)
			}
			if err != nil {
				failed[p.Coordinate()] = true
				continue
			}
			all = append(all, f)
			added = append(added, f)
			fetched++
		}
		if fetched == 0 {
			break
		}
	}
	return added, nil
}
