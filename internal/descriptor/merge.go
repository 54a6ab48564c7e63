package descriptor

import (
	"bytes"
	"encoding/json"
	"strings"
)

// MergeOptions controls repository resolution and native fixups.
type MergeOptions struct {
	// LoaderRepository serves libraries whose group is in LoaderGroups.
	LoaderRepository string
	// GameRepository serves every other library.
	GameRepository string
	LoaderGroups   []string
	// NativePlatforms lists the platforms (windows, linux, osx) whose native
	// bundles get a classifier entry synthesized.
	NativePlatforms []string
}

var nativeClassifiers = map[string]string{
	"windows": "natives-windows",
	"linux":   "natives-linux",
	"osx":     "natives-macos",
}

// NativeClassifier returns the classifier key used for platform, or "" when
// the platform is unknown.
func NativeClassifier(platform string) string {
	return nativeClassifiers[strings.ToLower(strings.TrimSpace(platform))]
}

// Merge folds base into loader and returns a self-contained descriptor.
// Neither input is modified. The returned errors are non-fatal warnings,
// one *CoordinateError per library whose URL could not be synthesized.
//
// Merging the result again against the same base yields an equal descriptor.
func Merge(loader, base *Version, opts MergeOptions) (*Version, []error) {
	out := loader.Clone()
	if out == nil {
		out = &Version{}
	}
	if base == nil {
		base = &Version{}
	}

	out.Libraries = mergeLibraries(out.Libraries, base.Libraries)
	out.Arguments = mergeArguments(base.Arguments, out.Arguments)

	if base.AssetIndex != nil {
		ai := *base.AssetIndex
		out.AssetIndex = &ai
	} else {
		out.AssetIndex = nil
	}
	out.Assets = base.Assets
	out.Downloads = cloneDownloads(base.Downloads)

	var warnings []error
	for i := range out.Libraries {
		if err := synthesizeArtifact(&out.Libraries[i], opts); err != nil {
			warnings = append(warnings, err)
		}
	}
	for i := range out.Libraries {
		for _, platform := range opts.NativePlatforms {
			fixupNative(&out.Libraries[i], platform)
		}
	}

	fillLaunchMetadata(out, base)
	out.InheritsFrom = ""
	return out, warnings
}

func mergeLibraries(retained, base []Library) []Library {
	libs := make([]Library, 0, len(retained)+len(base))
	names := make(map[string]bool, len(retained)+len(base))
	keys := make(map[string]bool, len(retained)+len(base))
	add := func(lib Library) {
		libs = append(libs, lib)
		names[lib.Name] = true
		keys[libraryKey(lib.Name)] = true
	}
	for _, lib := range retained {
		add(lib)
	}
	for _, lib := range base {
		if IsNativeName(lib.Name) {
			if !names[lib.Name] {
				add(lib.Clone())
			}
			continue
		}
		if !keys[libraryKey(lib.Name)] {
			add(lib.Clone())
		}
	}
	return libs
}

func libraryKey(name string) string {
	c, err := ParseCoordinate(name)
	if err != nil {
		return name
	}
	return c.Key()
}

func mergeArguments(base, loader *Arguments) *Arguments {
	if base == nil && loader == nil {
		return nil
	}
	if base == nil {
		base = &Arguments{}
	}
	if loader == nil {
		loader = &Arguments{}
	}
	return &Arguments{
		Game: concatArgs(base.Game, loader.Game),
		JVM:  concatArgs(base.JVM, loader.JVM),
	}
}

// concatArgs returns base followed by extra. An extra list that already
// starts with base is the output of an earlier merge; its prefix is dropped.
func concatArgs(base, extra []json.RawMessage) []json.RawMessage {
	if hasPrefix(extra, base) {
		extra = extra[len(base):]
	}
	if len(base)+len(extra) == 0 {
		return nil
	}
	out := make([]json.RawMessage, 0, len(base)+len(extra))
	out = append(out, cloneRawList(base)...)
	out = append(out, cloneRawList(extra)...)
	return out
}

func hasPrefix(list, prefix []json.RawMessage) bool {
	if len(prefix) == 0 || len(list) < len(prefix) {
		return false
	}
	for i := range prefix {
		if !sameJSON(list[i], prefix[i]) {
			return false
		}
	}
	return true
}

func sameJSON(a, b json.RawMessage) bool {
	if bytes.Equal(a, b) {
		return true
	}
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return false
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}

func synthesizeArtifact(lib *Library, opts MergeOptions) error {
	if lib.Downloads != nil && lib.Downloads.Artifact != nil {
		return nil
	}
	c, err := ParseCoordinate(lib.Name)
	if err != nil {
		return err
	}
	p := c.Path()
	if lib.Downloads == nil {
		lib.Downloads = &LibraryDownloads{}
	}
	lib.Downloads.Artifact = &Artifact{
		Path: p,
		SHA1: lib.SHA1,
		Size: lib.Size,
		URL:  withSlash(repositoryFor(lib, c, opts)) + p,
	}
	return nil
}

func repositoryFor(lib *Library, c Coordinate, opts MergeOptions) string {
	if lib.URL != "" {
		return lib.URL
	}
	for _, g := range opts.LoaderGroups {
		if c.Group == g || strings.HasPrefix(c.Group, g+".") {
			return opts.LoaderRepository
		}
	}
	return opts.GameRepository
}

func withSlash(u string) string {
	if u == "" || strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}

func fixupNative(lib *Library, platform string) {
	classifier := NativeClassifier(platform)
	if classifier == "" || !strings.Contains(lib.Name, classifier) {
		return
	}
	if lib.Downloads == nil || lib.Downloads.Artifact == nil || lib.Downloads.Classifiers != nil {
		return
	}
	lib.Downloads.Classifiers = map[string]Artifact{classifier: *lib.Downloads.Artifact}
	if lib.Natives == nil {
		lib.Natives = make(map[string]string)
	}
	lib.Natives[strings.ToLower(strings.TrimSpace(platform))] = classifier
}

func fillLaunchMetadata(out, base *Version) {
	if out.MainClass == "" {
		out.MainClass = base.MainClass
	}
	if out.Type == "" {
		out.Type = base.Type
	}
	if out.ReleaseTime == "" {
		out.ReleaseTime = base.ReleaseTime
	}
	if out.Time == "" {
		out.Time = base.Time
	}
	if len(out.JavaVersion) == 0 {
		out.JavaVersion = cloneRaw(base.JavaVersion)
	}
	if len(out.Logging) == 0 {
		out.Logging = cloneRaw(base.Logging)
	}
	if out.ComplianceLevel == nil && base.ComplianceLevel != nil {
		n := *base.ComplianceLevel
		out.ComplianceLevel = &n
	}
	if out.MinimumLauncherVersion == nil && base.MinimumLauncherVersion != nil {
		n := *base.MinimumLauncherVersion
		out.MinimumLauncherVersion = &n
	}
}
