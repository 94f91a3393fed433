// Package walker enumerates candidate source files under a root directory,
// applying include-extension, exclude-directory and file-size rules.
package walker

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/ludo-technologies/tsindex/domain"
)

// Options configures a walk.
type Options struct {
	// IncludeExtensions lists the file extensions to visit (with leading
	// dot, case-insensitive).
	IncludeExtensions []string

	// ExcludeDirs are directory-name globs. A matching directory is pruned
	// entirely: its contents are never visited.
	ExcludeDirs []string

	// MaxFileSize skips files larger than this many bytes. 0 means no
	// limit.
	MaxFileSize int64

	// UseGitignore additionally prunes paths matched by the root's
	// .gitignore, if one exists.
	UseGitignore bool
}

// FileEntry is one candidate file produced by a walk. Path is relative to
// the walk root with forward slashes; AbsPath is the filesystem path.
type FileEntry struct {
	Path    string
	AbsPath string
	Size    int64
}

// Walker produces candidate files under a root. Enumeration is sequential;
// the traversal order is not significant because the index builder re-sorts.
type Walker struct {
	opts Options
}

// New creates a Walker with the given options.
func New(opts Options) *Walker {
	return &Walker{opts: opts}
}

// Walk validates root and streams candidate files to visit, depth-first.
// Symbolic links are not followed. A root that does not exist or is not a
// directory fails with a *domain.ConfigError before any file is visited.
// Returning an error from visit stops the walk; ctx cancellation stops it
// with ctx.Err().
func (w *Walker) Walk(ctx context.Context, root string, visit func(FileEntry) error) error {
	info, err := os.Stat(root)
	if err != nil {
		return &domain.ConfigError{Reason: "root path " + root, Err: err}
	}
	if !info.IsDir() {
		return &domain.ConfigError{Reason: "root path " + root + " is not a directory"}
	}

	var matcher *ignore.GitIgnore
	if w.opts.UseGitignore {
		if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
			matcher = gi
		}
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directories are pruned, not fatal: the extractor
			// summary reports per-file failures, and a directory we cannot
			// list contributes none.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if w.excludedDir(d.Name()) {
				return fs.SkipDir
			}
			if matcher != nil && matcher.MatchesPath(rel+"/") {
				return fs.SkipDir
			}
			return nil
		}

		// Symlinks are skipped to prevent traversal cycles and duplicate
		// file records.
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if !w.included(d.Name()) {
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}

		fi, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		if w.opts.MaxFileSize > 0 && fi.Size() > w.opts.MaxFileSize {
			return nil
		}

		return visit(FileEntry{Path: rel, AbsPath: path, Size: fi.Size()})
	})
}

// Collect runs Walk and returns all entries.
func (w *Walker) Collect(ctx context.Context, root string) ([]FileEntry, error) {
	var entries []FileEntry
	err := w.Walk(ctx, root, func(e FileEntry) error {
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (w *Walker) excludedDir(name string) bool {
	// Hidden directories are always pruned.
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, pattern := range w.opts.ExcludeDirs {
		if pattern == name {
			return true
		}
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

func (w *Walker) included(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, inc := range w.opts.IncludeExtensions {
		if strings.ToLower(inc) == ext {
			return true
		}
	}
	return false
}
