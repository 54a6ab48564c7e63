package descriptor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"

	"github.com/ombicraft/launcher/internal/events"
)

// ErrVersionNotFound is returned when the base game index has no entry for
// the requested game version.
var ErrVersionNotFound = errors.New("game version not found in version index")

// maxDocumentSize caps metadata responses.
const maxDocumentSize = 16 << 20

// State is the installation state of a target descriptor.
type State int

const (
	Missing State = iota
	Installing
	Present
)

func (s State) String() string {
	switch s {
	case Missing:
		return "missing"
	case Installing:
		return "installing"
	case Present:
		return "present"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Installer creates and re-patches launch descriptors under an installation root.
type Installer struct {
	httpClient *http.Client
	loaderMeta string
	gameMeta   string
	merge      MergeOptions
	retries    int
	interval   time.Duration
	sink       events.Sink
	log        *log.Entry

	mu         sync.Mutex
	installing map[string]bool
}

// Option configures an Installer.
type Option func(*Installer)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(i *Installer) {
		i.httpClient = c
	}
}

// WithMetaURLs sets the loader and game metadata base URLs.
func WithMetaURLs(loaderMeta, gameMeta string) Option {
	return func(i *Installer) {
		i.loaderMeta = strings.TrimRight(loaderMeta, "/")
		i.gameMeta = strings.TrimRight(gameMeta, "/")
	}
}

// WithMergeOptions sets the repository rules and native platforms.
func WithMergeOptions(o MergeOptions) Option {
	return func(i *Installer) {
		i.merge = o
	}
}

// WithRetries sets how many times a failed metadata request is retried.
func WithRetries(n int, interval time.Duration) Option {
	return func(i *Installer) {
		if n >= 0 {
			i.retries = n
		}
		if interval > 0 {
			i.interval = interval
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(entry *log.Entry) Option {
	return func(i *Installer) {
		i.log = entry
	}
}

// NewInstaller creates an Installer reporting to sink.
func NewInstaller(sink events.Sink, opts ...Option) *Installer {
	if sink == nil {
		sink = events.Discard
	}
	i := &Installer{
		httpClient: http.DefaultClient,
		retries:    3,
		interval:   500 * time.Millisecond,
		sink:       sink,
		log:        log.NewEntry(log.StandardLogger()),
		installing: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// DescriptorPath returns versions/<id>/<id>.json under root.
func DescriptorPath(root, id string) string {
	return filepath.Join(root, "versions", id, id+".json")
}

// State reports whether the descriptor for id exists under root.
func (i *Installer) State(root, id string) State {
	i.mu.Lock()
	busy := i.installing[id]
	i.mu.Unlock()
	if busy {
		return Installing
	}
	if info, err := os.Stat(filepath.Join(root, "versions", id)); err == nil && info.IsDir() {
		return Present
	}
	return Missing
}

// Ensure makes sure a launchable descriptor for id exists under root. A
// missing descriptor is built from the loader profile and base descriptor;
// an existing one is merged again against the cached base.
func (i *Installer) Ensure(ctx context.Context, root, id string) (*Version, error) {
	target, err := ParseTargetID(id)
	if err != nil {
		return nil, err
	}

	existing, err := ReadFile(DescriptorPath(root, id))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	var v *Version
	if existing != nil && i.State(root, id) == Present {
		v, err = i.repatch(ctx, root, target, existing)
	} else {
		v, err = i.install(ctx, root, target)
	}
	if err != nil {
		return nil, err
	}
	if err := v.Launchable(); err != nil {
		return nil, err
	}
	return v, nil
}

func (i *Installer) install(ctx context.Context, root string, t Target) (*Version, error) {
	i.mu.Lock()
	i.installing[t.ID] = true
	i.mu.Unlock()
	defer func() {
		i.mu.Lock()
		delete(i.installing, t.ID)
		i.mu.Unlock()
	}()

	i.sink.Log(fmt.Sprintf("Target version %s not found. Installing...", t.ID))
	i.sink.Progress(events.Progress{Current: 0, Total: 3, Kind: events.KindGameDownload})

	loader, err := i.fetchLoaderProfile(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch loader profile for %s: %w", t.ID, err)
	}
	i.sink.Progress(events.Progress{Current: 1, Total: 3, Kind: events.KindGameDownload})

	base, err := i.fetchBase(ctx, t.GameVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch base descriptor %s: %w", t.GameVersion, err)
	}
	if err := WriteFile(DescriptorPath(root, t.GameVersion), base); err != nil {
		return nil, err
	}
	i.sink.Progress(events.Progress{Current: 2, Total: 3, Kind: events.KindGameDownload})

	merged := i.mergeWith(loader, base, t.ID)
	if err := WriteFile(DescriptorPath(root, t.ID), merged); err != nil {
		return nil, err
	}
	i.sink.Progress(events.Progress{Current: 3, Total: 3, Kind: events.KindGameDownload})
	i.sink.Log(fmt.Sprintf("Installed %s.", t.ID))
	return merged, nil
}

func (i *Installer) repatch(ctx context.Context, root string, t Target, existing *Version) (*Version, error) {
	basePath := DescriptorPath(root, t.GameVersion)
	base, err := ReadFile(basePath)
	if errors.Is(err, os.ErrNotExist) {
		base, err = i.fetchBase(ctx, t.GameVersion)
		if err == nil {
			err = WriteFile(basePath, base)
		}
	}
	if err != nil {
		i.sink.Warn(fmt.Sprintf("Base descriptor %s unavailable, keeping %s as is: %v", t.GameVersion, t.ID, err))
		return existing, nil
	}

	i.sink.Log(fmt.Sprintf("Patching descriptor %s...", t.ID))
	merged := i.mergeWith(existing, base, t.ID)
	if err := WriteFile(DescriptorPath(root, t.ID), merged); err != nil {
		return nil, err
	}
	return merged, nil
}

func (i *Installer) mergeWith(loader, base *Version, id string) *Version {
	merged, warnings := Merge(loader, base, i.merge)
	for _, w := range warnings {
		i.sink.Warn(fmt.Sprintf("Skipping library URL: %v", w))
	}
	merged.ID = id
	return merged
}

func (i *Installer) fetchLoaderProfile(ctx context.Context, t Target) (*Version, error) {
	u := fmt.Sprintf("%s/versions/loader/%s/%s/profile/json", i.loaderMeta, t.GameVersion, t.LoaderVersion)
	var v Version
	if err := i.getJSON(ctx, u, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

type versionIndex struct {
	Versions []struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"versions"`
}

func (i *Installer) fetchBase(ctx context.Context, gameVersion string) (*Version, error) {
	var index versionIndex
	if err := i.getJSON(ctx, i.gameMeta+"/game/version_manifest.json", &index); err != nil {
		return nil, err
	}
	for _, entry := range index.Versions {
		if entry.ID != gameVersion {
			continue
		}
		var v Version
		if err := i.getJSON(ctx, entry.URL, &v); err != nil {
			return nil, err
		}
		return &v, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrVersionNotFound, gameVersion)
}

func (i *Installer) getJSON(ctx context.Context, url string, out any) error {
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := i.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, out); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode %s: %w", url, err))
		}
		return nil
	}

	policy := &backoff.ExponentialBackOff{
		InitialInterval:     i.interval,
		RandomizationFactor: 0.5,
		Multiplier:          2,
		MaxInterval:         10 * time.Second,
		MaxElapsedTime:      2 * time.Minute,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	policy.Reset()

	return backoff.RetryNotify(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(i.retries)), ctx),
		func(err error, d time.Duration) {
			i.log.Warnf("metadata request failed, retrying in %v: %v", d, err)
		},
	)
}

// ReadFile loads a descriptor from disk.
func ReadFile(path string) (*Version, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v Version
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor %s: %w", path, err)
	}
	return &v, nil
}

// WriteFile persists v as indented JSON, creating parent directories.
func WriteFile(path string, v *Version) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode descriptor: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write descriptor: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write descriptor: %w", err)
	}
	return nil
}
