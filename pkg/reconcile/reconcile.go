// Package reconcile implements the post-install update check: it walks
// the installation tree and deletes files left over from a previous
// installation that match the operator's include patterns, are not
// excluded, and were not written by the current session.
package reconcile

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/unpakt/unpakt/pkg/errors"
	"github.com/unpakt/unpakt/pkg/fileset"
	"github.com/unpakt/unpakt/pkg/logging"
	"github.com/unpakt/unpakt/pkg/types"
)

// Options configures a Reconciler
type Options struct {
	FS      types.FS
	Handler types.ProgressHandler

	// Root is the absolute installation root the scan starts from
	Root string

	// Substitute resolves variable references in patterns. Optional.
	Substitute func(string) string

	// DetectCycles refuses to descend into directory symlinks,
	// guarding against circular link structures. Off by default: the
	// default behavior trusts a well-formed filesystem and will not
	// terminate on a tree containing circular directory links.
	DetectCycles bool
}

// Reconciler deletes stale files from a previous installation
type Reconciler struct {
	opts Options
}

// New creates a Reconciler
func New(opts Options) *Reconciler {
	return &Reconciler{opts: opts}
}

type marked struct {
	path string
	dir  bool
}

// Run applies the update-check rules. installed is the set of absolute
// paths written by the current session; those are never deleted. With
// no include patterns the call is a no-op.
//
// A directory that cannot be listed aborts the walk with a TREE_SCAN
// error, but deletions already computed are still applied first —
// partial reconciliation may occur on failure.
func (r *Reconciler) Run(checks []types.UpdateCheck, installed []string) error {
	logger := logging.GetLogger("reconcile")

	compiler := &fileset.Compiler{
		Root:       r.opts.Root,
		Substitute: r.opts.Substitute,
		Handler:    r.opts.Handler,
	}

	var includes, excludes []*fileset.Pattern
	for _, check := range checks {
		includes = append(includes, compiler.CompileAll(check.Includes)...)
		excludes = append(excludes, compiler.CompileAll(check.Excludes)...)
	}

	// do nothing if no update checks were specified
	if len(includes) == 0 {
		return nil
	}

	// sorted set of absolute installed paths for fast membership tests
	installedSet := make([]string, 0, len(installed))
	for _, path := range installed {
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.opts.Root, path)
		}
		installedSet = append(installedSet, filepath.Clean(path))
	}
	sort.Strings(installedSet)

	toDelete, scanErr := r.scan(includes, excludes, installedSet)

	// deletions computed before a scan failure are still applied
	deleted := 0
	for _, m := range toDelete {
		if m.dir {
			// directories cannot be removed safely: they may still
			// contain unmarked children
			continue
		}
		if err := r.opts.FS.Remove(m.path); err != nil {
			logger.Warn().Err(err).Str("path", m.path).Msg("Could not delete stale file")
			continue
		}
		deleted++
		logger.Debug().Str("path", m.path).Msg("Deleted stale file")
	}
	logger.Info().Int("deleted", deleted).Int("marked", len(toDelete)).Msg("Reconciliation done")

	return scanErr
}

// scan walks the installation tree breadth-first using an explicit work
// stack, bounding stack depth on deep trees.
func (r *Reconciler) scan(includes, excludes []*fileset.Pattern, installedSet []string) ([]marked, error) {
	var toDelete []marked

	stack := []string{r.opts.Root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := r.opts.FS.ReadDir(dir)
		if err != nil {
			if r.opts.Handler != nil {
				r.opts.Handler.EmitError("error while performing update checks", err.Error())
			}
			return toDelete, errors.Wrapf(err, errors.ErrTreeScan, "cannot list %s", dir)
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())

			// skip files we just installed
			if contains(installedSet, path) {
				continue
			}

			isDir := entry.IsDir()
			isSymlink := entry.Type()&fs.ModeSymlink != 0
			if isSymlink && !isDir {
				// follow the link: a symlinked directory is scanned
				// like any other directory
				if info, statErr := r.opts.FS.Stat(path); statErr == nil && info.IsDir() {
					isDir = true
				}
			}
			excluded := fileset.MatchAny(excludes, path)

			if fileset.MatchAny(includes, path) && !excluded {
				toDelete = append(toDelete, marked{path: path, dir: isDir})
			}

			if isDir && !excluded {
				if r.opts.DetectCycles && isSymlink {
					continue
				}
				stack = append(stack, path)
			}
		}
	}

	return toDelete, nil
}

func contains(sorted []string, path string) bool {
	i := sort.SearchStrings(sorted, path)
	return i < len(sorted) && sorted[i] == path
}
