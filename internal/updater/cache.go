package updater

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// CacheFile is the name of the launcher update record in the settings directory.
const CacheFile = "version-check.json"

// DefaultCacheMaxAge bounds how long a recorded check keeps showing the banner.
const DefaultCacheMaxAge = 7 * 24 * time.Hour

// VersionCache is the outcome of the last manifest check, kept so that
// commands can announce an update without touching the network.
type VersionCache struct {
	CurrentVersion  string    `json:"current_version"`
	LatestVersion   string    `json:"latest_version"`
	LauncherURL     string    `json:"launcher_url,omitempty"`
	UpdateAvailable bool      `json:"update_available"`
	CheckedAt       time.Time `json:"checked_at"`
}

// CachePath returns the record location under dir.
func CachePath(dir string) string {
	return filepath.Join(dir, CacheFile)
}

// LoadCache returns nil, nil when no check has been recorded yet.
func LoadCache(dir string) (*VersionCache, error) {
	data, err := os.ReadFile(CachePath(dir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading update record: %w", err)
	}

	var cache VersionCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("parsing update record %s: %w", CachePath(dir), err)
	}
	return &cache, nil
}

// SaveCache replaces the record under dir. A reader never sees a partial file.
func SaveCache(dir string, cache *VersionCache) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding update record: %w", err)
	}

	tmp, err := os.CreateTemp(dir, CacheFile+".*")
	if err != nil {
		return fmt.Errorf("writing update record: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("writing update record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing update record: %w", err)
	}
	return os.Rename(tmp.Name(), CachePath(dir))
}

// IsCacheStale reports whether cache is missing or was recorded more than
// maxAge before now.
func IsCacheStale(cache *VersionCache, maxAge time.Duration, now time.Time) bool {
	return cache == nil || now.Sub(cache.CheckedAt) > maxAge
}
