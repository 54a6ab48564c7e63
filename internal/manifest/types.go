package manifest

// Document is the server-published manifest.
type Document struct {
	Version         string      `json:"version"`
	GameVersion     string      `json:"gameVersion"`
	LauncherVersion string      `json:"launcherVersion,omitempty"`
	LauncherURL     string      `json:"launcherUrl,omitempty"`
	VersionType     string      `json:"versionType,omitempty"`
	MinMemory       string      `json:"minMemory,omitempty"`
	MaxMemory       string      `json:"maxMemory,omitempty"`
	Files           []FileEntry `json:"files"`
}

// FileEntry is one file the installation is expected to contain.
type FileEntry struct {
	Path string `json:"path,omitempty"` // relative, forward-slash
	URL  string `json:"url"`
	SHA1 string `json:"sha1,omitempty"`
	Size *int64 `json:"size,omitempty"`
}

// HasSHA1 reports whether the entry declares a checksum.
func (e FileEntry) HasSHA1() bool {
	return e.SHA1 != ""
}
