package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Source is one discovered data file.
type Source struct {
	Path  string
	Alias string
	Size  int64
}

// dataExtensions are the file types the decoder understands.
var dataExtensions = map[string]bool{
	".csv": true,
	".tsv": true,
	".txt": true,
}

// Discover resolves a path argument into data files. The argument may be a
// single file, a directory (scanned non-recursively), or a doublestar glob
// like "data/**/*.csv".
func Discover(pathArg string) ([]Source, error) {
	// Glob pattern
	if strings.ContainsAny(pathArg, "*?[{") {
		return discoverGlob(pathArg)
	}

	info, err := os.Stat(pathArg)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", pathArg, err)
	}

	if !info.IsDir() {
		return []Source{newSource(pathArg, info.Size())}, nil
	}

	entries, err := os.ReadDir(pathArg)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", pathArg, err)
	}

	var sources []Source
	for _, entry := range entries {
		if entry.IsDir() || !dataExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		full := filepath.Join(pathArg, entry.Name())
		var size int64
		if fi, err := entry.Info(); err == nil {
			size = fi.Size()
		}
		sources = append(sources, newSource(full, size))
	}

	sortSources(sources)
	return sources, nil
}

// discoverGlob expands a doublestar pattern against the filesystem.
func discoverGlob(pattern string) ([]Source, error) {
	base, rest := doublestar.SplitPattern(pattern)
	matches, err := doublestar.Glob(os.DirFS(base), rest)
	if err != nil {
		return nil, fmt.Errorf("bad glob pattern %s: %w", pattern, err)
	}

	var sources []Source
	for _, m := range matches {
		full := filepath.Join(base, m)
		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			continue
		}
		if !dataExtensions[strings.ToLower(filepath.Ext(full))] {
			continue
		}
		sources = append(sources, newSource(full, info.Size()))
	}

	sortSources(sources)
	return sources, nil
}

func newSource(path string, size int64) Source {
	alias := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Source{Path: path, Alias: alias, Size: size}
}

func sortSources(sources []Source) {
	sort.Slice(sources, func(i, j int) bool { return sources[i].Alias < sources[j].Alias })
}
