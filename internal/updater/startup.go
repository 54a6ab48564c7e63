package updater

import (
	"fmt"
	"io"

	"github.com/ombicraft/launcher/internal/branding"
)

// CheckAndPrintBanner prints an update banner when the last recorded check
// found a newer build. It reads only the local cache and never touches the
// network; the cache is refreshed by each sync or check.
func (n *Notifier) CheckAndPrintBanner(w io.Writer, configDir string) {
	cache, err := LoadCache(configDir)
	if err != nil || cache == nil {
		return
	}
	if IsCacheStale(cache, DefaultCacheMaxAge, n.now()) {
		return
	}
	// Recorded by an older build; the user has upgraded since.
	if cache.CurrentVersion != n.currentVersion {
		return
	}
	if cache.UpdateAvailable {
		PrintUpdateBanner(w, Availability{Current: cache.CurrentVersion, Latest: cache.LatestVersion, URL: cache.LauncherURL})
	}
}

// PrintUpdateBanner prints the update notification to w.
func PrintUpdateBanner(w io.Writer, a Availability) {
	fmt.Fprintf(w, "\nUpdate available: %s -> %s\n", a.Current, a.Latest)
	if a.URL != "" {
		fmt.Fprintf(w, "    Download it from %s\n\n", a.URL)
		return
	}
	fmt.Fprintf(w, "    Run `%s check` for details\n\n", branding.CLIName())
}
