// Package targets finds flow files to scan.
package targets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Flow file suffixes, metadata format first.
var flowSuffixes = []string{".flow-meta.xml", ".flow"}

var skippedDirs = map[string]struct{}{
	".git":         {},
	".sfdx":        {},
	".sf":          {},
	"node_modules": {},
}

// SkipDir reports whether directories with this name are never searched.
func SkipDir(name string) bool {
	_, ok := skippedDirs[name]
	return ok
}

// IsFlowFile reports whether name looks like a flow definition.
func IsFlowFile(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range flowSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// Finder expands directories into flow files. Include and Exclude use
// path.Match syntax; a pattern containing '/' is matched against the path
// relative to Root, anything else against the file name.
type Finder struct {
	Root    string
	Include []string
	Exclude []string
}

// Find walks the root directory.
func (f *Finder) Find(ctx context.Context) ([]string, error) {
	return f.Expand(ctx, []string{f.Root})
}

// Expand resolves explicit paths. Files are kept when they pass the filters,
// directories are walked concurrently. The result is absolute, sorted and
// deduplicated.
func (f *Finder) Expand(ctx context.Context, paths []string) ([]string, error) {
	g, ctx := errgroup.WithContext(ctx)
	found := make([][]string, len(paths))

	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", p, err)
		}
		if !info.IsDir() {
			if f.keep(abs, true) {
				found[i] = []string{abs}
			}
			continue
		}
		i := i
		g.Go(func() error {
			files, err := f.walk(ctx, abs)
			found[i] = files
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []string
	for _, files := range found {
		for _, file := range files {
			if _, dup := seen[file]; dup {
				continue
			}
			seen[file] = struct{}{}
			out = append(out, file)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *Finder) walk(ctx context.Context, dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if SkipDir(d.Name()) && p != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if f.keep(p, false) {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

// keep applies the suffix and include/exclude filters. Explicitly named files
// skip the suffix check.
func (f *Finder) keep(p string, explicit bool) bool {
	if !explicit && !IsFlowFile(filepath.Base(p)) {
		return false
	}
	rel := f.relative(p)
	name := path.Base(rel)
	if len(f.Include) > 0 && !matchesAnyPattern(f.Include, rel, name) {
		return false
	}
	if len(f.Exclude) > 0 && matchesAnyPattern(f.Exclude, rel, name) {
		return false
	}
	return true
}

func (f *Finder) relative(p string) string {
	if f.Root != "" {
		if rel, err := filepath.Rel(f.Root, p); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(p)
}

func matchesAnyPattern(patterns []string, rel, name string) bool {
	for _, p := range patterns {
		if matchPattern(p, rel, name) {
			return true
		}
	}
	return false
}

func matchPattern(pattern, rel, name string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false
	}
	if strings.Contains(pattern, "/") {
		matched, _ := path.Match(pattern, rel)
		return matched
	}
	matched, _ := path.Match(pattern, name)
	return matched
}
