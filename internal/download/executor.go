package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ombicraft/launcher/internal/checksum"
	"github.com/ombicraft/launcher/internal/events"
	"github.com/ombicraft/launcher/internal/manifest"
)

// DefaultBatchWidth is the number of concurrent transfers per batch.
const DefaultBatchWidth = 5

// ErrTransport wraps per-entry failures that abort the run.
var ErrTransport = errors.New("transfer failed")

// Report summarizes a run.
type Report struct {
	Downloaded []string
	Missing    []string // skipped after a 404
	Mismatched []string // kept despite a checksum mismatch
	Bytes      int64
}

// Executor downloads manifest entries.
type Executor struct {
	httpClient *http.Client
	width      int
	userAgent  string
	sink       events.Sink
	log        *log.Entry
}

// Option configures an Executor.
type Option func(*Executor)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(e *Executor) {
		e.httpClient = c
	}
}

// WithBatchWidth sets the batch width. Values below 1 are ignored.
func WithBatchWidth(n int) Option {
	return func(e *Executor) {
		if n >= 1 {
			e.width = n
		}
	}
}

// WithUserAgent sets the User-Agent header for file requests.
func WithUserAgent(ua string) Option {
	return func(e *Executor) {
		e.userAgent = ua
	}
}

// WithLogger sets the structured logger.
func WithLogger(entry *log.Entry) Option {
	return func(e *Executor) {
		e.log = entry
	}
}

// New creates an Executor reporting to sink.
func New(sink events.Sink, opts ...Option) *Executor {
	if sink == nil {
		sink = events.Discard
	}
	e := &Executor{
		httpClient: http.DefaultClient,
		width:      DefaultBatchWidth,
		userAgent:  "ombicraft-launcher",
		sink:       sink,
		log:        log.NewEntry(log.StandardLogger()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BatchWidth returns the configured batch width.
func (e *Executor) BatchWidth() int {
	return e.width
}

type outcome int

const (
	outcomeDownloaded outcome = iota
	outcomeMissing
	outcomeMismatch
)

// Run downloads entries into root. Entry paths must be distinct.
func (e *Executor) Run(ctx context.Context, root string, entries []manifest.FileEntry) (*Report, error) {
	report := &Report{}
	total := len(entries)

	var mu sync.Mutex
	processed := 0
	complete := func(entry manifest.FileEntry, res outcome, n int64) {
		mu.Lock()
		defer mu.Unlock()
		switch res {
		case outcomeMissing:
			report.Missing = append(report.Missing, entry.Path)
		case outcomeMismatch:
			report.Mismatched = append(report.Mismatched, entry.Path)
			report.Downloaded = append(report.Downloaded, entry.Path)
		default:
			report.Downloaded = append(report.Downloaded, entry.Path)
		}
		report.Bytes += n
		processed++
		e.sink.Progress(events.Progress{Current: processed, Total: total, Kind: events.KindUpdate})
	}

	for start := 0; start < total; start += e.width {
		end := start + e.width
		if end > total {
			end = total
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, entry := range entries[start:end] {
			g.Go(func() error {
				res, n, err := e.fetch(gctx, root, entry)
				if err != nil {
					return err
				}
				complete(entry, res, n)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return report, err
		}
	}

	return report, nil
}

func (e *Executor) fetch(ctx context.Context, root string, entry manifest.FileEntry) (outcome, int64, error) {
	dest := filepath.Join(root, filepath.FromSlash(entry.Path))
	e.sink.Log(fmt.Sprintf("Downloading: %s", entry.Path))

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, 0, fmt.Errorf("creating directory for %s: %w", entry.Path, err)
	}

	target, err := encodeURL(entry.URL)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s: %v", ErrTransport, entry.Path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s: creating request: %v", ErrTransport, entry.Path, err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s: %v", ErrTransport, entry.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		e.sink.Warn(fmt.Sprintf("File not found (404): %s. Skipping...", entry.Path))
		e.log.WithField("path", entry.Path).Warn("remote file not found")
		return outcomeMissing, 0, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, 0, fmt.Errorf("%w: %s: server returned status %d", ErrTransport, entry.Path, resp.StatusCode)
	}

	n, err := writeAtomic(dest, resp.Body)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s: %v", ErrTransport, entry.Path, err)
	}

	if !entry.HasSHA1() {
		return outcomeDownloaded, n, nil
	}

	sum, err := checksum.SHA1File(dest)
	if err != nil {
		return 0, 0, err
	}
	if !checksum.Equal(sum, entry.SHA1) {
		e.sink.Warn(fmt.Sprintf("Checksum mismatch for %s: expected %s, got %s", entry.Path, entry.SHA1, sum))
		e.log.WithFields(log.Fields{"path": entry.Path, "expected": entry.SHA1, "actual": sum}).Warn("checksum mismatch")
		return outcomeMismatch, n, nil
	}
	return outcomeDownloaded, n, nil
}

// writeAtomic streams body into dest via a sibling .part file.
func writeAtomic(dest string, body io.Reader) (int64, error) {
	part := dest + ".part"
	f, err := os.Create(part)
	if err != nil {
		return 0, fmt.Errorf("creating download file: %w", err)
	}

	n, copyErr := io.Copy(f, body)
	closeErr := f.Close()
	if copyErr != nil {
		_ = os.Remove(part)
		return 0, fmt.Errorf("reading download stream: %w", copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(part)
		return 0, fmt.Errorf("writing download: %w", closeErr)
	}

	if err := os.Rename(part, dest); err != nil {
		_ = os.Remove(part)
		return 0, fmt.Errorf("moving download into place: %w", err)
	}
	return n, nil
}

// encodeURL escapes characters such as spaces that manifests carry unencoded.
func encodeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing URL %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("URL %q is not absolute", raw)
	}
	return u.String(), nil
}
