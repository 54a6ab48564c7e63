package reconcile

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/ombicraft/launcher/internal/checksum"
	"github.com/ombicraft/launcher/internal/manifest"
)

var defaultOpts = Options{
	ModsDir:   "mods",
	Preserved: []string{"options.txt", "optionsof.txt", "optionsshaders.txt", "servers.dat"},
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func paths(entries []manifest.FileEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Path)
	}
	sort.Strings(out)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestReconcile_Partitions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "mods/current.jar", "current")
	writeFile(t, root, "mods/changed.jar", "old bytes")
	writeFile(t, root, "mods/nohash.jar", "whatever")
	writeFile(t, root, "options.txt", "user settings")

	files := []manifest.FileEntry{
		{Path: "mods/current.jar", URL: "u", SHA1: checksum.SHA1Bytes([]byte("current"))},
		{Path: "mods/changed.jar", URL: "u", SHA1: checksum.SHA1Bytes([]byte("new bytes"))},
		{Path: "mods/nohash.jar", URL: "u"},
		{Path: "mods/absent.jar", URL: "u", SHA1: checksum.SHA1Bytes([]byte("x"))},
		{Path: "options.txt", URL: "u", SHA1: checksum.SHA1Bytes([]byte("server default"))},
		{Path: "servers.dat", URL: "u"},
	}

	plan, err := Reconcile(root, files, defaultOpts)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if got, want := paths(plan.UpToDate), []string{"mods/current.jar", "options.txt"}; !equalStrings(got, want) {
		t.Errorf("UpToDate = %v, want %v", got, want)
	}
	if got, want := paths(plan.ToFetch), []string{"mods/absent.jar", "mods/changed.jar", "mods/nohash.jar", "servers.dat"}; !equalStrings(got, want) {
		t.Errorf("ToFetch = %v, want %v", got, want)
	}
	if len(plan.Stale) != 0 {
		t.Errorf("Stale = %v, want none", plan.Stale)
	}
}

func TestReconcile_NoHashNeverUpToDate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "config/a.json", "{}")
	writeFile(t, root, "mods/b.jar", "")

	files := []manifest.FileEntry{
		{Path: "config/a.json", URL: "u"},
		{Path: "mods/b.jar", URL: "u"},
	}
	plan, err := Reconcile(root, files, defaultOpts)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.UpToDate) != 0 {
		t.Errorf("entries without sha1 must never be up to date, got %v", paths(plan.UpToDate))
	}
	if len(plan.ToFetch) != 2 {
		t.Errorf("ToFetch = %v, want both entries", paths(plan.ToFetch))
	}
}

func TestReconcile_StaleMods(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "mods/keep.jar", "k")
	writeFile(t, root, "mods/old.jar", "o")
	writeFile(t, root, "mods/nested/keep-too.jar", "k2")
	writeFile(t, root, "mods/nested/old-nested.jar", "o2")
	writeFile(t, root, "config/unlisted.json", "{}")

	files := []manifest.FileEntry{
		{Path: "mods/keep.jar", URL: "u"},
		{Path: "mods/other/keep-too.jar", URL: "u"},
		{Path: "config/listed.json", URL: "u"},
	}
	plan, err := Reconcile(root, files, defaultOpts)
	if err != nil {
		t.Fatal(err)
	}

	sort.Strings(plan.Stale)
	if want := []string{"mods/nested/old-nested.jar", "mods/old.jar"}; !equalStrings(plan.Stale, want) {
		t.Errorf("Stale = %v, want %v", plan.Stale, want)
	}

	var removed []string
	if err := RemoveStale(root, plan, func(rel string) { removed = append(removed, rel) }); err != nil {
		t.Fatalf("RemoveStale: %v", err)
	}
	if len(removed) != 2 {
		t.Errorf("removed = %v", removed)
	}
	if _, err := os.Stat(filepath.Join(root, "mods", "old.jar")); !os.IsNotExist(err) {
		t.Error("mods/old.jar should be deleted")
	}
	if _, err := os.Stat(filepath.Join(root, "config", "unlisted.json")); err != nil {
		t.Error("files outside the mods subtree must never be deleted")
	}
}

func TestReconcile_AdminMarkerSuppressesCleanup(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "mods/custom.jar", "mine")
	writeFile(t, root, AdminMarker, "")

	plan, err := Reconcile(root, []manifest.FileEntry{{Path: "mods/official.jar", URL: "u"}}, defaultOpts)
	if err != nil {
		t.Fatal(err)
	}
	if !plan.AdminOverride {
		t.Error("AdminOverride should be set")
	}
	if len(plan.Stale) != 0 {
		t.Errorf("Stale = %v, want none under admin marker", plan.Stale)
	}

	// RemoveStale is a no-op even with a hand-built stale list.
	plan.Stale = []string{"mods/custom.jar"}
	if err := RemoveStale(root, plan, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "mods", "custom.jar")); err != nil {
		t.Error("admin marker must prevent deletion")
	}
}

func TestReconcile_Unresolved(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "mods/x.jar", "x")

	files := []manifest.FileEntry{
		{URL: "https://example.com/x.jar"},
		{Path: "../outside.txt", URL: "u"},
		{Path: "mods/x.jar", URL: "u"},
	}
	plan, err := Reconcile(root, files, defaultOpts)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Unresolved) != 2 {
		t.Errorf("Unresolved = %d entries, want 2", len(plan.Unresolved))
	}
	if got := paths(plan.ToFetch); !equalStrings(got, []string{"mods/x.jar"}) {
		t.Errorf("ToFetch = %v", got)
	}
	if len(plan.Stale) != 0 {
		t.Errorf("an entry without a path must not cause deletions, Stale = %v", plan.Stale)
	}
}

func TestReconcile_NoModsDir(t *testing.T) {
	plan, err := Reconcile(t.TempDir(), []manifest.FileEntry{{Path: "mods/a.jar", URL: "u"}}, defaultOpts)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Stale) != 0 || len(plan.ToFetch) != 1 {
		t.Errorf("unexpected plan: %+v", plan)
	}
}

func TestResolvable(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"mods/a.jar", true},
		{"", false},
		{"..", false},
		{"../a", false},
		{"/etc/passwd", false},
		{"..hidden/file", true},
	}
	for _, tt := range tests {
		if got := Resolvable(tt.path); got != tt.want {
			t.Errorf("Resolvable(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
