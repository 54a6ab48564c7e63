//go:build integration

package integration_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

const emptySHA1 = "da39a3ee5e6b4b0d3255bfef95601890afd80709"

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir     string // HOME, contains .ombicraft/config.yaml
	InstallRoot string // OMBICRAFT_INSTALL_ROOT
	SourceRoot  string // OMBICRAFT_IMPORT_SOURCE, a previous vanilla installation
	Server      *fakeServer
}

// setupTestEnv creates isolated temp directories, starts a fake update
// server and points the launcher at both through environment variables.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:     t.TempDir(),
		InstallRoot: filepath.Join(t.TempDir(), ".ombicraft_server"),
		SourceRoot:  t.TempDir(),
		Server:      newFakeServer(t),
	}

	t.Setenv("HOME", env.HomeDir)
	t.Setenv("USERPROFILE", env.HomeDir)
	t.Setenv("OMBICRAFT_INSTALL_ROOT", env.InstallRoot)
	t.Setenv("OMBICRAFT_IMPORT_SOURCE", env.SourceRoot)
	t.Setenv("OMBICRAFT_UPDATE_URL", env.Server.URL+"/manifest.json")
	t.Setenv("OMBICRAFT_LOADER_META_URL", env.Server.URL+"/fabric")
	t.Setenv("OMBICRAFT_GAME_META_URL", env.Server.URL+"/mojang")
	t.Setenv("OMBICRAFT_LOG_FILE", "console")

	return env
}

// fakeServer serves a manifest, its files and the loader/game metadata.
type fakeServer struct {
	*httptest.Server

	mu       sync.Mutex
	manifest string
	files    map[string]string
	hits     map[string]int
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{files: make(map[string]string), hits: make(map[string]int)}

	mux := http.NewServeMux()
	mux.HandleFunc("/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		defer fs.mu.Unlock()
		if fs.manifest == "" {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, fs.manifest)
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/files/")
		fs.mu.Lock()
		fs.hits[name]++
		body, ok := fs.files[name]
		fs.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	})
	mux.HandleFunc("/fabric/versions/loader/1.20.1/0.14.22/profile/json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
  "id": "fabric-loader-0.14.22-1.20.1",
  "inheritsFrom": "1.20.1",
  "mainClass": "net.fabricmc.loader.impl.launch.knot.KnotClient",
  "arguments": {"game": [], "jvm": ["-DFabricMcEmu= net.minecraft.client.main.Main "]},
  "libraries": [
    {"name": "net.fabricmc:fabric-loader:0.14.22", "url": "https://maven.fabricmc.net/"},
    {"name": "org.ow2.asm:asm:9.5", "url": "https://maven.fabricmc.net/"}
  ]
}`)
	})
	mux.HandleFunc("/mojang/game/version_manifest.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"versions":[{"id":"1.20.1","url":"%s/mojang/v1/1.20.1.json"}]}`, fs.URL)
	})
	mux.HandleFunc("/mojang/v1/1.20.1.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
  "id": "1.20.1",
  "type": "release",
  "mainClass": "net.minecraft.client.main.Main",
  "assetIndex": {"id": "5", "url": "https://piston-meta.mojang.com/v1/packages/abc/5.json"},
  "assets": "5",
  "downloads": {"client": {"sha1": "0c3ec587af28e5a785c0b4a7b8a30f9a8f78f838", "size": 23028275, "url": "https://piston-data.mojang.com/client.jar"}},
  "arguments": {"game": ["--username", "${auth_player_name}"], "jvm": ["-cp", "${classpath}"]},
  "libraries": [
    {"name": "org.ow2.asm:asm:9.1"},
    {"name": "org.lwjgl:lwjgl:3.3.1"},
    {"name": "org.lwjgl:lwjgl:3.3.1:natives-windows", "downloads": {"artifact": {"path": "org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1-natives-windows.jar", "size": 10, "url": "https://libraries.minecraft.net/org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1-natives-windows.jar"}}}
  ]
}`)
	})

	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

// publish sets the manifest to gameVersion plus files, each served with the
// given content. Entries with an empty hash are listed without sha1.
func (fs *fakeServer) publish(gameVersion string, files map[string]string, hashes map[string]string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var entries []string
	for name, body := range files {
		fs.files[name] = body
		sha := ""
		if h, ok := hashes[name]; ok && h != "" {
			sha = fmt.Sprintf(`,"sha1":%q`, h)
		}
		entries = append(entries, fmt.Sprintf(`{"path":%q,"url":"%s/files/%s"%s}`, name, fs.URL, name, sha))
	}
	fs.manifest = fmt.Sprintf(`{"version":"1.0.0","gameVersion":%q,"launcherVersion":"1.0.0","files":[%s]}`,
		gameVersion, strings.Join(entries, ","))
}

func (fs *fakeServer) hitCount(name string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.hits[name]
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
