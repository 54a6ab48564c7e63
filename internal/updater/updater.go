package updater

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ombicraft/launcher/internal/manifest"
)

// Availability describes a newer launcher build.
type Availability struct {
	Current string `json:"current"`
	Latest  string `json:"latest"`
	URL     string `json:"url,omitempty"`
}

// Notifier compares the running launcher against manifest declarations.
type Notifier struct {
	currentVersion string
	listener       func(Availability)
	cacheDir       string
	now            func() time.Time
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithListener sets the callback invoked when an update is available.
func WithListener(fn func(Availability)) Option {
	return func(n *Notifier) {
		n.listener = fn
	}
}

// WithCacheDir records every check in the version cache under dir.
func WithCacheDir(dir string) Option {
	return func(n *Notifier) {
		n.cacheDir = dir
	}
}

// WithClock overrides the time source (useful for testing).
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) {
		n.now = now
	}
}

// New creates a Notifier for the given running version.
func New(currentVersion string, opts ...Option) *Notifier {
	n := &Notifier{
		currentVersion: currentVersion,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// CurrentVersion returns the version this notifier was created with.
func (n *Notifier) CurrentVersion() string {
	return n.currentVersion
}

// Check returns the availability declared by doc, or nil when the running
// build is current. The listener fires only for a newer build.
func (n *Notifier) Check(doc *manifest.Document) *Availability {
	if doc == nil || doc.LauncherVersion == "" {
		return nil
	}

	available := IsUpdateAvailable(n.currentVersion, doc.LauncherVersion)
	if n.cacheDir != "" {
		cache := &VersionCache{
			LatestVersion:   doc.LauncherVersion,
			CurrentVersion:  n.currentVersion,
			LauncherURL:     doc.LauncherURL,
			CheckedAt:       n.now(),
			UpdateAvailable: available,
		}
		if err := SaveCache(n.cacheDir, cache); err != nil {
			log.Debugf("failed to save version cache: %v", err)
		}
	}
	if !available {
		return nil
	}

	a := &Availability{
		Current: n.currentVersion,
		Latest:  doc.LauncherVersion,
		URL:     doc.LauncherURL,
	}
	if n.listener != nil {
		n.listener(*a)
	}
	return a
}
