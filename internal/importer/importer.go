// Package importer carries user settings over from a previous vanilla game
// installation into a fresh launcher installation.
package importer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/ombicraft/launcher/internal/events"
)

// marker is the settings file whose presence identifies a configured root.
const marker = "options.txt"

// DefaultItems are the files and directories copied from the source root.
var DefaultItems = []string{
	"options.txt",
	"optionsof.txt",
	"optionsshaders.txt",
	"servers.dat",
	"XaeroWaypoints",
	"XaeroWorldMap",
}

// Result lists what an import copied.
type Result struct {
	Source string
	Copied []string
}

// FindSource returns the candidate under sourceRoot with the most recently
// modified options.txt: sourceRoot itself or any versions/<name> instance.
// Returns "" when no candidate exists.
func FindSource(sourceRoot string) string {
	var candidates []string
	if fileExists(filepath.Join(sourceRoot, marker)) {
		candidates = append(candidates, sourceRoot)
	}
	entries, err := os.ReadDir(filepath.Join(sourceRoot, "versions"))
	if err == nil {
		for _, entry := range entries {
			dir := filepath.Join(sourceRoot, "versions", entry.Name())
			if entry.IsDir() && fileExists(filepath.Join(dir, marker)) {
				candidates = append(candidates, dir)
			}
		}
	}

	var best string
	var bestTime int64
	for _, c := range candidates {
		info, err := os.Stat(filepath.Join(c, marker))
		if err != nil {
			continue
		}
		if t := info.ModTime().UnixNano(); best == "" || t > bestTime {
			best, bestTime = c, t
		}
	}
	return best
}

// Import copies DefaultItems from the best candidate under sourceRoot into
// targetRoot. Nothing happens when targetRoot already has options.txt.
// Existing files in targetRoot are never overwritten. Per-item failures are
// collected and returned together after every item was attempted.
func Import(sourceRoot, targetRoot string, sink events.Sink) (*Result, error) {
	if sink == nil {
		sink = events.Discard
	}
	if fileExists(filepath.Join(targetRoot, marker)) {
		return &Result{}, nil
	}

	sink.Log("Looking for settings from a previous installation...")
	source := FindSource(sourceRoot)
	if source == "" {
		sink.Log("No previous installation found.")
		return &Result{}, nil
	}
	sink.Log(fmt.Sprintf("Importing settings from: %s", source))

	res := &Result{Source: source}
	var errs *multierror.Error
	for _, item := range DefaultItems {
		src := filepath.Join(source, item)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		sink.Log(fmt.Sprintf("Copying %s...", item))
		if err := copyNoClobber(src, filepath.Join(targetRoot, item)); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("copying %s: %w", item, err))
			continue
		}
		res.Copied = append(res.Copied, item)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return res, err
	}
	sink.Log("Settings imported.")
	return res, nil
}

// copyNoClobber recursively copies src to dst, leaving existing files alone.
func copyNoClobber(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return copyFile(src, dst, info.Mode())
	}

	if err := os.MkdirAll(dst, info.Mode().Perm()|0o700); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		// Skip symlinks and other special files.
		if !entry.IsDir() && !entry.Type().IsRegular() {
			continue
		}
		if err := copyNoClobber(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	if fileExists(dst) {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, mode.Perm())
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
