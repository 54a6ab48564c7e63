// Package reconcile partitions manifest entries against the files present in
// an installation root into stale, up-to-date and to-fetch sets.
package reconcile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ombicraft/launcher/internal/checksum"
	"github.com/ombicraft/launcher/internal/manifest"
)

// AdminMarker is the file whose presence in the install root suppresses
// stale-file cleanup.
const AdminMarker = ".admin"

// Options controls how entries are classified.
type Options struct {
	ModsDir   string   // mod-content subtree, forward-slash relative (e.g. "mods")
	Preserved []string // user-owned basenames never overwritten once present
}

// Plan is the reconciliation of one manifest against local state.
type Plan struct {
	// Stale lists forward-slash relative paths under the mods subtree that
	// are not named by the manifest. Empty when AdminOverride is set.
	Stale    []string
	UpToDate []manifest.FileEntry
	ToFetch  []manifest.FileEntry

	// Unresolved entries have no usable path; they are neither fetched nor
	// deleted.
	Unresolved    []manifest.FileEntry
	AdminOverride bool
}

// Reconcile reads the installation under root and classifies files.
func Reconcile(root string, files []manifest.FileEntry, opts Options) (*Plan, error) {
	modsDir := strings.Trim(path.Clean("/"+filepath.ToSlash(opts.ModsDir)), "/")
	if modsDir == "" {
		modsDir = "mods"
	}

	preserved := make(map[string]bool, len(opts.Preserved))
	for _, name := range opts.Preserved {
		preserved[name] = true
	}

	plan := &Plan{}
	modNames := make(map[string]bool)

	for _, entry := range files {
		if !Resolvable(entry.Path) {
			plan.Unresolved = append(plan.Unresolved, entry)
			continue
		}
		if strings.HasPrefix(entry.Path, modsDir+"/") {
			modNames[path.Base(entry.Path)] = true
		}

		current, err := isUpToDate(root, entry, preserved)
		if err != nil {
			return nil, err
		}
		if current {
			plan.UpToDate = append(plan.UpToDate, entry)
		} else {
			plan.ToFetch = append(plan.ToFetch, entry)
		}
	}

	admin, err := exists(filepath.Join(root, AdminMarker))
	if err != nil {
		return nil, err
	}
	if admin {
		plan.AdminOverride = true
		return plan, nil
	}

	stale, err := findStale(root, modsDir, modNames)
	if err != nil {
		return nil, err
	}
	plan.Stale = stale
	return plan, nil
}

// Resolvable reports whether a normalized manifest path names a location
// inside the installation root.
func Resolvable(p string) bool {
	if p == "" || path.IsAbs(p) || filepath.IsAbs(p) {
		return false
	}
	return p != ".." && !strings.HasPrefix(p, "../")
}

func isUpToDate(root string, entry manifest.FileEntry, preserved map[string]bool) (bool, error) {
	local := filepath.Join(root, filepath.FromSlash(entry.Path))
	info, err := os.Stat(local)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", entry.Path, err)
	}
	if info.IsDir() {
		return false, nil
	}

	if preserved[path.Base(entry.Path)] {
		return true, nil
	}
	if !entry.HasSHA1() {
		return false, nil
	}

	sum, err := checksum.SHA1File(local)
	if err != nil {
		return false, err
	}
	return checksum.Equal(sum, entry.SHA1), nil
}

func findStale(root, modsDir string, keep map[string]bool) ([]string, error) {
	base := filepath.Join(root, filepath.FromSlash(modsDir))
	ok, err := exists(base)
	if err != nil || !ok {
		return nil, err
	}

	var stale []string
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || keep[d.Name()] {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		stale = append(stale, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", modsDir, err)
	}
	return stale, nil
}

// RemoveStale deletes the plan's stale files, calling onRemove before each.
func RemoveStale(root string, plan *Plan, onRemove func(rel string)) error {
	if plan.AdminOverride {
		return nil
	}
	for _, rel := range plan.Stale {
		if onRemove != nil {
			onRemove(rel)
		}
		if err := os.Remove(filepath.Join(root, filepath.FromSlash(rel))); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing stale file %s: %w", rel, err)
		}
	}
	return nil
}

func exists(p string) (bool, error) {
	_, err := os.Stat(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
