package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ombicraft/launcher/internal/config"
	"github.com/ombicraft/launcher/internal/descriptor"
	"github.com/ombicraft/launcher/internal/download"
	"github.com/ombicraft/launcher/internal/events"
	"github.com/ombicraft/launcher/internal/importer"
	"github.com/ombicraft/launcher/internal/manifest"
	"github.com/ombicraft/launcher/internal/reconcile"
	"github.com/ombicraft/launcher/internal/updater"
)

// ErrCycleInProgress is returned by Run while another cycle of the same
// session is still running.
var ErrCycleInProgress = errors.New("an update cycle is already running")

// Result summarizes one cycle.
type Result struct {
	CycleID  string
	Offline  bool
	Manifest *manifest.Document
	Plan     *reconcile.Plan
	Removed  []string
	Download *download.Report

	// Descriptor is nil when the manifest names no target version.
	Descriptor *descriptor.Version
	Update     *updater.Availability
	Imported   *importer.Result
	Duration   time.Duration
}

// Session runs update cycles with a fixed configuration.
type Session struct {
	cfg             config.Config
	sink            events.Sink
	httpClient      *http.Client
	launcherVersion string
	cacheDir        string
	importSource    string
	onUpdate        func(updater.Availability)
	log             *log.Entry
	now             func() time.Time

	running atomic.Bool
}

// Option configures a Session.
type Option func(*Session)

// WithHTTPClient sets the client used for every request of the cycle.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) {
		s.httpClient = c
	}
}

// WithLauncherVersion sets the running launcher version compared against
// the manifest's launcherVersion.
func WithLauncherVersion(v string) Option {
	return func(s *Session) {
		s.launcherVersion = v
	}
}

// WithVersionCache records launcher update checks under dir.
func WithVersionCache(dir string) Option {
	return func(s *Session) {
		s.cacheDir = dir
	}
}

// WithUpdateListener is called when the manifest declares a newer launcher.
func WithUpdateListener(fn func(updater.Availability)) Option {
	return func(s *Session) {
		s.onUpdate = fn
	}
}

// WithSettingsImport imports settings from a previous installation under
// sourceRoot before the first sync of a root.
func WithSettingsImport(sourceRoot string) Option {
	return func(s *Session) {
		s.importSource = sourceRoot
	}
}

// WithLogger sets the structured logger.
func WithLogger(entry *log.Entry) Option {
	return func(s *Session) {
		s.log = entry
	}
}

// NewSession creates a session for cfg reporting to sink.
func NewSession(cfg config.Config, sink events.Sink, opts ...Option) *Session {
	if sink == nil {
		sink = events.Discard
	}
	s := &Session{
		cfg:  cfg,
		sink: sink,
		log:  log.NewEntry(log.StandardLogger()),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.httpClient == nil {
		s.httpClient = &http.Client{Timeout: cfg.DownloadTimeout}
	}
	return s
}

// Run executes one update cycle. Fatal conditions are reported to the sink
// and returned; files written before the failure are kept.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrCycleInProgress
	}
	defer s.running.Store(false)

	start := s.now()
	res := &Result{CycleID: uuid.NewString()}
	entry := s.log.WithField("cycle", res.CycleID)

	err := s.run(ctx, entry, res)
	res.Duration = s.now().Sub(start)
	if err != nil {
		entry.WithError(err).Error("update cycle failed")
		s.sink.Error(err.Error())
		return res, err
	}
	entry.WithField("duration", res.Duration).Info("update cycle finished")
	return res, nil
}

func (s *Session) run(ctx context.Context, entry *log.Entry, res *Result) error {
	root := s.cfg.InstallRoot
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("creating installation root %s: %w", root, err)
	}

	if s.importSource != "" {
		imported, err := importer.Import(s.importSource, root, s.sink)
		if err != nil {
			s.sink.Warn(fmt.Sprintf("Settings import incomplete: %v", err))
		}
		res.Imported = imported
	}

	updateURL, err := config.ResolveUpdateURL(root, s.cfg.UpdateURL)
	if err != nil {
		s.sink.Warn(fmt.Sprintf("Ignoring local launcher config: %v", err))
		updateURL = s.cfg.UpdateURL
	}

	s.sink.Log("Checking for updates...")
	fetcher := manifest.NewFetcher(manifest.WithHTTPClient(s.httpClient), manifest.WithClock(s.now))
	doc, err := fetcher.Fetch(ctx, updateURL)
	if err != nil {
		if errors.Is(err, manifest.ErrUnavailable) {
			entry.WithError(err).Warn("manifest unavailable, continuing offline")
			s.sink.Log(fmt.Sprintf("Could not reach the update server, playing offline: %v", err))
			res.Offline = true
			return nil
		}
		return err
	}
	res.Manifest = doc
	entry.WithFields(log.Fields{"manifest_version": doc.Version, "files": len(doc.Files)}).Info("manifest fetched")

	res.Update = updater.New(s.launcherVersion,
		updater.WithCacheDir(s.cacheDir),
		updater.WithListener(s.onUpdate),
		updater.WithClock(s.now),
	).Check(doc)

	plan, err := reconcile.Reconcile(root, doc.Files, reconcile.Options{
		ModsDir:   s.cfg.ModsDir,
		Preserved: s.cfg.PreservedFiles,
	})
	if err != nil {
		return err
	}
	res.Plan = plan
	for _, u := range plan.Unresolved {
		s.sink.Warn(fmt.Sprintf("Manifest entry without a usable path (url %s). Skipping...", u.URL))
	}
	if plan.AdminOverride {
		s.sink.Log("Admin mode: stale mods are kept.")
	}

	if err := reconcile.RemoveStale(root, plan, func(rel string) {
		s.sink.Log(fmt.Sprintf("Removing old mod: %s", rel))
		res.Removed = append(res.Removed, rel)
	}); err != nil {
		return err
	}

	s.sink.Log(fmt.Sprintf("%d files to download.", len(plan.ToFetch)))
	executor := download.New(s.sink,
		download.WithHTTPClient(s.httpClient),
		download.WithBatchWidth(s.cfg.BatchWidth),
		download.WithLogger(entry.WithField("component", "download")),
	)
	report, err := executor.Run(ctx, root, plan.ToFetch)
	res.Download = report
	if err != nil {
		return err
	}

	if doc.GameVersion != "" {
		inst := descriptor.NewInstaller(s.sink,
			descriptor.WithHTTPClient(s.httpClient),
			descriptor.WithMetaURLs(s.cfg.LoaderMetaURL, s.cfg.GameMetaURL),
			descriptor.WithMergeOptions(MergeOptions(s.cfg)),
			descriptor.WithRetries(s.cfg.MetadataRetries, 0),
			descriptor.WithLogger(entry.WithField("component", "descriptor")),
		)
		v, err := inst.Ensure(ctx, root, doc.GameVersion)
		if err != nil {
			return err
		}
		res.Descriptor = v
	}

	if err := manifest.SaveSnapshot(root, doc); err != nil {
		return err
	}
	s.sink.Log("All updates downloaded.")
	return nil
}

// MergeOptions derives descriptor merge rules from cfg.
func MergeOptions(cfg config.Config) descriptor.MergeOptions {
	return descriptor.MergeOptions{
		LoaderRepository: cfg.LoaderRepository,
		GameRepository:   cfg.GameRepository,
		LoaderGroups:     cfg.LoaderGroups,
		NativePlatforms:  cfg.NativePlatforms,
	}
}
