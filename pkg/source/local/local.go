// Package local reads a project's dependency files from disk and writes
// updated files back.
package local

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/deps/languages"
	"github.com/matzehuels/stackbump/pkg/errors"
)

// maxFileSize bounds the size of a dependency file read from disk.
const maxFileSize = 10 << 20

// skipDirs are never descended into.
var skipDirs = []string{".git", ".hg", "node_modules", "target", "vendor", "build", "dist", ".gradle", ".idea"}

// Load collects every file under dir that a supported ecosystem reads, or
// only those of the named language when lang is not empty. Names are
// slash-separated and relative to dir.
func Load(dir, lang string) ([]*deps.DependencyFile, error) {
	var wanted *deps.Language
	if lang != "" {
		if wanted = languages.Find(lang); wanted == nil {
			return nil, errors.New(errors.ErrCodeUnsupported, "unsupported language: %s", lang)
		}
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read project %s", dir)
	}
	if !info.IsDir() {
		return loadFile(dir, wanted)
	}

	var files []*deps.DependencyFile
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && slices.Contains(skipDirs, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !supported(p, wanted) {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		f, err := read(p, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f.Directory = dir
		files = append(files, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New(errors.ErrCodeFileNotFound, "no dependency files found in %s", dir)
	}
	return files, nil
}

func loadFile(path string, wanted *deps.Language) ([]*deps.DependencyFile, error) {
	if !supported(path, wanted) {
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported dependency file: %s", filepath.Base(path))
	}
	f, err := read(path, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	f.Directory = filepath.Dir(path)
	return []*deps.DependencyFile{f}, nil
}

func supported(path string, wanted *deps.Language) bool {
	if wanted != nil {
		return wanted.Supports(path) || wanted.Parser().Supports(filepath.Base(path))
	}
	return languages.ForFile(path) != nil
}

func read(path, name string) (*deps.DependencyFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxFileSize {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s is larger than %d bytes", name, maxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &deps.DependencyFile{Name: name, Content: string(data)}, nil
}

// Write stores updated files under dir, replacing each file through a
// temporary sibling so that a failed write leaves the original intact.
// Remote and support files are never written.
func Write(dir string, files []*deps.DependencyFile) error {
	for _, f := range files {
		if f.Remote || f.SupportFile {
			continue
		}
		if err := errors.ValidatePath(f.Name); err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.FromSlash(f.Name))
		mode := fs.FileMode(0o644)
		if info, err := os.Stat(target); err == nil {
			mode = info.Mode().Perm()
		}
		tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
		if err != nil {
			return err
		}
		_, werr := tmp.WriteString(f.Content)
		cerr := tmp.Close()
		if werr == nil {
			werr = cerr
		}
		if werr == nil {
			werr = os.Chmod(tmp.Name(), mode)
		}
		if werr == nil {
			werr = os.Rename(tmp.Name(), target)
		}
		if werr != nil {
			_ = os.Remove(tmp.Name())
			return werr
		}
	}
	return nil
}

// Describe returns a short label for a file set, e.g. "pom.xml (+2)".
func Describe(files []*deps.DependencyFile) string {
	var names []string
	for _, f := range files {
		if !f.Remote {
			names = append(names, f.Name)
		}
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	slices.SortFunc(names, func(a, b string) int {
		if d := strings.Count(a, "/") - strings.Count(b, "/"); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	return names[0] + " (+" + strconv.Itoa(len(names)-1) + ")"
}
