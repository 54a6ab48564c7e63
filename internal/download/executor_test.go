package download

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ombicraft/launcher/internal/checksum"
	"github.com/ombicraft/launcher/internal/events"
	"github.com/ombicraft/launcher/internal/manifest"
)

func fileServer(t *testing.T, files map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func checkProgress(t *testing.T, got []events.Progress, total int) {
	t.Helper()
	if len(got) != total {
		t.Fatalf("progress events = %d, want %d", len(got), total)
	}
	for i, p := range got {
		if p.Current != i+1 || p.Total != total || p.Kind != events.KindUpdate {
			t.Errorf("progress[%d] = %+v, want {%d %d update}", i, p, i+1, total)
		}
	}
}

func TestRun_DownloadsAndVerifies(t *testing.T) {
	server := fileServer(t, map[string]string{
		"/mods/a.jar":    "alpha",
		"/config/b.json": "{}",
	})
	root := t.TempDir()
	rec := &events.Recorder{}

	entries := []manifest.FileEntry{
		{Path: "mods/a.jar", URL: server.URL + "/mods/a.jar", SHA1: checksum.SHA1Bytes([]byte("alpha"))},
		{Path: "config/b.json", URL: server.URL + "/config/b.json"},
	}

	report, err := New(rec, WithHTTPClient(server.Client())).Run(context.Background(), root, entries)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Downloaded) != 2 || report.Bytes != int64(len("alpha")+len("{}")) {
		t.Errorf("report = %+v", report)
	}

	data, err := os.ReadFile(filepath.Join(root, "mods", "a.jar"))
	if err != nil || string(data) != "alpha" {
		t.Errorf("mods/a.jar = %q, %v", data, err)
	}
	if _, err := os.Stat(filepath.Join(root, "mods", "a.jar.part")); !os.IsNotExist(err) {
		t.Error("partial file left behind")
	}
	checkProgress(t, rec.ProgressEvents(), 2)
	if len(rec.Warnings()) != 0 {
		t.Errorf("unexpected warnings: %v", rec.Warnings())
	}
}

func TestRun_NotFoundSkips(t *testing.T) {
	server := fileServer(t, map[string]string{"/present.txt": "here"})
	root := t.TempDir()
	rec := &events.Recorder{}

	entries := []manifest.FileEntry{
		{Path: "gone.txt", URL: server.URL + "/gone.txt"},
		{Path: "present.txt", URL: server.URL + "/present.txt"},
	}
	report, err := New(rec, WithHTTPClient(server.Client()), WithBatchWidth(1)).Run(context.Background(), root, entries)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Missing) != 1 || report.Missing[0] != "gone.txt" {
		t.Errorf("Missing = %v", report.Missing)
	}
	if _, err := os.Stat(filepath.Join(root, "gone.txt")); !os.IsNotExist(err) {
		t.Error("a 404 entry must not create a file")
	}
	checkProgress(t, rec.ProgressEvents(), 2)
	if len(rec.Warnings()) != 1 || !strings.Contains(rec.Warnings()[0], "gone.txt") {
		t.Errorf("warnings = %v", rec.Warnings())
	}
}

func TestRun_ServerErrorIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	entries := []manifest.FileEntry{{Path: "a.txt", URL: server.URL + "/a.txt"}}
	_, err := New(nil, WithHTTPClient(server.Client())).Run(context.Background(), t.TempDir(), entries)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}

func TestRun_ConnectionFailureIsFatal(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	entries := []manifest.FileEntry{{Path: "a.txt", URL: url + "/a.txt"}}
	_, err := New(nil).Run(context.Background(), t.TempDir(), entries)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}

func TestRun_ChecksumMismatchKeepsFile(t *testing.T) {
	server := fileServer(t, map[string]string{"/mods/c.jar": "actual"})
	root := t.TempDir()
	rec := &events.Recorder{}

	entries := []manifest.FileEntry{
		{Path: "mods/c.jar", URL: server.URL + "/mods/c.jar", SHA1: checksum.SHA1Bytes([]byte("expected"))},
	}
	report, err := New(rec, WithHTTPClient(server.Client())).Run(context.Background(), root, entries)
	if err != nil {
		t.Fatalf("mismatch must not fail the run: %v", err)
	}
	if len(report.Mismatched) != 1 {
		t.Errorf("Mismatched = %v", report.Mismatched)
	}
	data, _ := os.ReadFile(filepath.Join(root, "mods", "c.jar"))
	if string(data) != "actual" {
		t.Errorf("file content = %q, want downloaded content kept", data)
	}
	if len(rec.Warnings()) != 1 {
		t.Errorf("warnings = %v, want one mismatch warning", rec.Warnings())
	}
	checkProgress(t, rec.ProgressEvents(), 1)
}

func TestRun_BoundedConcurrency(t *testing.T) {
	const width = 3
	var inFlight, maxInFlight int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		w.Write([]byte(r.URL.Path))
	}))
	defer server.Close()

	var entries []manifest.FileEntry
	for i := 0; i < 11; i++ {
		name := fmt.Sprintf("mods/m%02d.jar", i)
		entries = append(entries, manifest.FileEntry{Path: name, URL: server.URL + "/" + name})
	}

	rec := &events.Recorder{}
	e := New(rec, WithHTTPClient(server.Client()), WithBatchWidth(width))
	if e.BatchWidth() != width {
		t.Fatalf("BatchWidth = %d", e.BatchWidth())
	}
	if _, err := e.Run(context.Background(), t.TempDir(), entries); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := atomic.LoadInt32(&maxInFlight); got > width {
		t.Errorf("max in-flight = %d, exceeds batch width %d", got, width)
	}
	checkProgress(t, rec.ProgressEvents(), len(entries))
}

func TestRun_ProgressOncePerEntryUnderConcurrency(t *testing.T) {
	server := fileServer(t, map[string]string{"/a": "1", "/b": "2", "/c": "3", "/d": "4"})

	var mu sync.Mutex
	seen := map[int]int{}
	sink := events.Funcs{OnProgress: func(p events.Progress) {
		mu.Lock()
		seen[p.Current]++
		mu.Unlock()
	}}

	entries := []manifest.FileEntry{
		{Path: "a", URL: server.URL + "/a"},
		{Path: "b", URL: server.URL + "/b"},
		{Path: "c", URL: server.URL + "/c"},
		{Path: "missing", URL: server.URL + "/missing"},
		{Path: "d", URL: server.URL + "/d"},
	}
	if _, err := New(sink, WithHTTPClient(server.Client())).Run(context.Background(), t.TempDir(), entries); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= len(entries); i++ {
		if seen[i] != 1 {
			t.Errorf("progress count %d emitted %d times, want once", i, seen[i])
		}
	}
}

func TestEncodeURL(t *testing.T) {
	got, err := encodeURL("https://example.com/mods/My Mod.jar")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://example.com/mods/My%20Mod.jar" {
		t.Errorf("encodeURL = %q", got)
	}
	if _, err := encodeURL("mods/a.jar"); err == nil {
		t.Error("expected error for relative URL")
	}
}
