// Package discover finds C and C++ headers in a source tree.
package discover

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/modgen/internal/lang"
)

// FileEntry represents a discovered header.
type FileEntry struct {
	Path     string // Relative to root, slash separated
	Language string
	Size     int64
}

// Options select which files are returned.
type Options struct {
	Headers []string // glob patterns a file must match
	Ignore  []string // glob patterns that exclude a file
	// MaxFileSize skips larger files. Zero disables the limit.
	MaxFileSize int64
}

// Result holds the discovered files and the ones skipped for size.
type Result struct {
	Files     []FileEntry
	Oversized []FileEntry
}

var skipDirs = map[string]struct{}{
	"node_modules":        {},
	".git":                {},
	".hg":                 {},
	".svn":                {},
	"build":               {},
	"out":                 {},
	"cmake-build-debug":   {},
	"cmake-build-release": {},
	"CMakeFiles":          {},
	"_deps":               {},
	"bazel-out":           {},
}

type pattern struct {
	glob glob.Glob
	// root is the pattern without a leading **/, so **/x also matches x at
	// the top of the tree.
	root glob.Glob
}

func compile(patterns []string) ([]pattern, error) {
	out := make([]pattern, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", p, err)
		}
		cp := pattern{glob: g}
		if rest, ok := strings.CutPrefix(p, "**/"); ok {
			if cp.root, err = glob.Compile(rest, '/'); err != nil {
				return nil, fmt.Errorf("glob %q: %w", p, err)
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

func matchAny(path string, patterns []pattern) bool {
	for _, p := range patterns {
		if p.glob.Match(path) {
			return true
		}
		if p.root != nil && p.root.Match(path) {
			return true
		}
	}
	return false
}

// Files discovers headers under root matching opts. Entries are sorted by
// path.
func Files(root string, opts Options) (*Result, error) {
	headers, err := compile(opts.Headers)
	if err != nil {
		return nil, fmt.Errorf("header patterns: %w", err)
	}
	ignores, err := compile(opts.Ignore)
	if err != nil {
		return nil, fmt.Errorf("ignore patterns: %w", err)
	}

	gitFiles := gitLsFiles(root)
	var gi *ignore.GitIgnore
	if gitFiles == nil {
		gi = loadGitignore(root)
	}

	res := &Result{}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}

		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}

		// Skip symlinks
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if gitFiles != nil {
			if _, ok := gitFiles[rel]; !ok {
				return nil
			}
		} else if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		if !matchAny(rel, headers) || matchAny(rel, ignores) {
			return nil
		}

		entry := FileEntry{Path: rel, Language: lang.ForPath(rel).Name}
		if info, err := d.Info(); err == nil {
			entry.Size = info.Size()
		}
		if opts.MaxFileSize > 0 && entry.Size > opts.MaxFileSize {
			res.Oversized = append(res.Oversized, entry)
			return nil
		}
		res.Files = append(res.Files, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(res.Files, func(i, j int) bool {
		return res.Files[i].Path < res.Files[j].Path
	})
	return res, nil
}

func gitLsFiles(root string) map[string]struct{} {
	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	files := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line != "" {
			files[line] = struct{}{}
		}
	}
	return files
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
